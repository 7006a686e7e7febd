package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/blogai/internal/apiclient"
	"github.com/blogai/internal/form"
	"github.com/blogai/internal/service"
	"github.com/blogai/internal/session"
	"github.com/gin-gonic/gin"
)

type writePage struct {
	PostID   string
	Form     form.PostForm
	Errors   form.Errors
	Research form.ResearchForm
}

func (p writePage) action() string {
	if p.PostID == "" {
		return "/write"
	}
	return "/write/" + p.PostID
}

func (a *API) renderWrite(c *gin.Context, status int, page writePage) {
	title := "Write a new post"
	if page.PostID != "" {
		title = "Edit post"
	}
	if page.Research.WordCount == 0 {
		page.Research.WordCount = 800
	}
	a.renderHTML(c, status, "write.html", gin.H{
		"title":    title,
		"postId":   page.PostID,
		"action":   page.action(),
		"form":     page.Form,
		"errors":   page.Errors,
		"research": page.Research,
		"tones":    form.Tones(),
		"editor":   a.editor.Config(),
	})
}

// ShowWrite renders an empty post form.
func (a *API) ShowWrite(c *gin.Context) {
	f := form.PostForm{Status: form.StatusDraft}
	research := form.ResearchForm{Topic: strings.TrimSpace(c.Query("topic"))}
	a.renderWrite(c, http.StatusOK, writePage{Form: f, Research: research})
}

// ShowWriteEdit loads an existing post into the form.
func (a *API) ShowWriteEdit(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	post, err := a.posts.Get(session.Context(c), id)
	if err != nil {
		if a.backendUnauthorized(c, err) {
			return
		}
		if errors.Is(err, service.ErrPostNotFound) {
			session.Failure(c, "Error", "Post not found")
		} else {
			notifyFailure(c, "Error", err, "Failed to load post")
		}
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	a.renderWrite(c, http.StatusOK, writePage{PostID: post.ID, Form: post.Form()})
}

// CreatePost validates the form, uploads a pending image and creates the post.
func (a *API) CreatePost(c *gin.Context) {
	a.savePost(c, "")
}

// UpdatePost validates the form, uploads a pending image and replaces the post.
func (a *API) UpdatePost(c *gin.Context) {
	a.savePost(c, strings.TrimSpace(c.Param("id")))
}

func (a *API) savePost(c *gin.Context, id string) {
	var f form.PostForm
	if err := c.ShouldBind(&f); err != nil {
		respondError(c, http.StatusBadRequest, "invalid post form")
		return
	}
	f.Content = a.editor.Sanitize(f.Content)
	page := writePage{PostID: id, Form: f}

	if err := attachFormImage(c, &f); err != nil {
		notifyUploadFailure(c, err)
		a.renderWrite(c, http.StatusUnprocessableEntity, page)
		return
	}
	if errs := f.Validate(); !errs.Empty() {
		page.Form, page.Errors = f, errs
		a.renderWrite(c, http.StatusUnprocessableEntity, page)
		return
	}
	page.Form = f

	if err := a.resolveFormImage(c, &f); err != nil {
		notifyUploadFailure(c, err)
		a.renderWrite(c, http.StatusBadGateway, page)
		return
	}
	page.Form = f

	ctx := session.Context(c)
	input := service.PostInputFromForm(f)
	var err error
	if id == "" {
		_, err = a.posts.Create(ctx, input)
	} else {
		_, err = a.posts.Update(ctx, id, input)
	}
	if err != nil {
		if a.backendUnauthorized(c, err) {
			return
		}
		fallback := "Failed to create post"
		if id != "" {
			fallback = "Failed to update post"
		}
		notifyFailure(c, "Error", err, fallback)
		a.renderWrite(c, http.StatusBadGateway, page)
		return
	}

	if id == "" {
		session.Success(c, "Success", "Post created successfully")
	} else {
		session.Success(c, "Success", "Post updated successfully")
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

// Research runs the AI research panel and returns its fragment: either the
// suggestion with an adopt form, or the error with a retry button.
func (a *API) Research(c *gin.Context) {
	var f form.ResearchForm
	if err := c.ShouldBind(&f); err != nil {
		a.renderResearchPanel(c, http.StatusBadRequest, f, nil, "Word count must be a number")
		return
	}
	if errs := f.Validate(); !errs.Empty() {
		a.renderResearchPanel(c, http.StatusUnprocessableEntity, f, nil, errs.Error())
		return
	}

	result, err := a.research.Research(session.Context(c), a.callerKey(c), service.ResearchRequest{
		Topic:     f.Topic,
		WordCount: f.WordCount,
		Tone:      f.Tone,
	})
	if err != nil {
		status, message := researchFailure(err)
		a.renderResearchPanel(c, status, f, nil, message)
		return
	}
	a.renderResearchPanel(c, http.StatusOK, f, result, "")
}

func researchFailure(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many research requests. Please wait a minute and try again."
	case errors.Is(err, service.ErrEmptySuggestion):
		return http.StatusBadGateway, "Invalid response format from server"
	default:
		return http.StatusBadGateway, apiclient.UserMessage(err, "Failed to research topic")
	}
}

func (a *API) renderResearchPanel(c *gin.Context, status int, f form.ResearchForm, result *service.ResearchResult, message string) {
	data := gin.H{
		"research":    f,
		"lengthLabel": form.LengthLabel(f.WordCount),
		"error":       message,
		"postId":      c.PostForm("postId"),
	}
	if result != nil {
		data["result"] = result
	}
	if wantsJSON(c) {
		if message != "" {
			respondError(c, status, message)
			return
		}
		c.JSON(status, gin.H{"suggestion": result.Suggestion, "wordCount": result.WordCount, "seoAnalysis": result.SEOAnalysis})
		return
	}
	c.HTML(status, "research_panel.html", data)
}

// AdoptSuggestion copies a research suggestion into the post form and
// re-renders the editor with everything else the user typed kept intact.
func (a *API) AdoptSuggestion(c *gin.Context) {
	var current form.PostForm
	if err := c.ShouldBind(&current); err != nil {
		respondError(c, http.StatusBadRequest, "invalid post form")
		return
	}
	suggestion := service.NormalizeSuggestion(service.ContentSuggestion{
		Title:    c.PostForm("suggestionTitle"),
		Meta:     c.PostForm("suggestionMeta"),
		Keywords: form.SplitList(c.PostForm("suggestionKeywords")),
		Outline:  c.PostForm("suggestionOutline"),
		Slug:     c.PostForm("suggestionSlug"),
	})
	if suggestion.Title == "" && suggestion.Outline == "" {
		session.Failure(c, "Error", "Nothing to apply")
	} else {
		current = suggestion.AdoptInto(current)
		session.Success(c, "Applied", "The suggestion was copied into your post")
	}

	id := strings.TrimSpace(c.PostForm("postId"))
	a.renderWrite(c, http.StatusOK, writePage{PostID: id, Form: current})
}
