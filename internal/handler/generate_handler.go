package handler

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/blogai/internal/apiclient"
	"github.com/blogai/internal/editor"
	"github.com/blogai/internal/form"
	"github.com/blogai/internal/progress"
	"github.com/blogai/internal/service"
	"github.com/blogai/internal/session"
	"github.com/gin-gonic/gin"
)

// fallbackTopics are offered when the backend has no trending topics.
var fallbackTopics = []string{
	"The Future of AI in Content Marketing",
	"How to Optimize Your Website for Voice Search",
	"10 Effective Social Media Strategies for 2025",
	"Sustainable Business Practices That Boost Profits",
	"Remote Work Culture: Building Team Cohesion",
}

// generatedPost is the generator result carried between the result view,
// the save form and the markdown download.
type generatedPost struct {
	Topic       string
	Title       string
	Slug        string
	Content     string
	Description string
	Keywords    []string
	WordCount   int
	SEOAnalysis *service.SEOAnalysis
	// ImagePreview is a pending image carried across a failed save.
	ImagePreview string
}

func (g generatedPost) Markdown() string {
	return editor.Markdown(g.Title, g.Content)
}

func (g generatedPost) KeywordList() string {
	return form.JoinList(g.Keywords)
}

func (a *API) topicSuggestions(c *gin.Context) []string {
	topics, err := a.trends.Legacy(session.Context(c))
	if err != nil {
		log.Printf("[API] trending topics unavailable: %v", err)
	}
	if len(topics) == 0 {
		return fallbackTopics
	}
	return topics
}

func (a *API) renderGenerate(c *gin.Context, status int, data gin.H) {
	payload := gin.H{
		"title":      "Generate content",
		"tones":      form.Tones(),
		"wordCounts": form.WordCounts(),
		"topics":     a.topicSuggestions(c),
		"seed":       time.Now().UnixNano(),
	}
	for key, value := range data {
		payload[key] = value
	}
	a.renderHTML(c, status, "generate.html", payload)
}

// ShowGenerate renders the generator form, prefilled from ?topic=.
func (a *API) ShowGenerate(c *gin.Context) {
	f := form.DefaultGenerateForm()
	f.Topic = strings.TrimSpace(c.Query("topic"))
	a.renderGenerate(c, http.StatusOK, gin.H{"form": f})
}

// Generate researches the chosen topic, or a random trending one when
// auto-generate is on, and renders the result.
func (a *API) Generate(c *gin.Context) {
	var f form.GenerateForm
	if err := c.ShouldBind(&f); err != nil {
		respondError(c, http.StatusBadRequest, "invalid generate form")
		return
	}
	if errs := f.Validate(); !errs.Empty() {
		if errs.Has("topic") {
			session.Failure(c, "Error", errs.Get("topic"))
		}
		a.renderGenerate(c, http.StatusUnprocessableEntity, gin.H{"form": f, "errors": errs})
		return
	}

	topic := f.Topic
	if f.AutoGenerate && topic == "" {
		topics := a.topicSuggestions(c)
		topic = topics[rand.Intn(len(topics))]
	}

	wordCount, _ := strconv.Atoi(f.WordCount)
	result, err := a.research.Research(session.Context(c), a.callerKey(c), service.ResearchRequest{
		Topic:     topic,
		WordCount: wordCount,
		Tone:      f.Tone,
	})
	if err != nil {
		if a.backendUnauthorized(c, err) {
			return
		}
		_, message := researchFailure(err)
		if !errors.Is(err, service.ErrRateLimited) && !errors.Is(err, service.ErrEmptySuggestion) {
			message = apiclient.UserMessage(err, "Failed to generate content. Please try again.")
		}
		session.Failure(c, "Error", message)
		a.renderGenerate(c, http.StatusBadGateway, gin.H{"form": f})
		return
	}

	generated := generatedFromResult(topic, result)
	session.Success(c, "Content generated!", "Your blog post has been generated successfully.")
	a.renderGenerate(c, http.StatusOK, gin.H{"form": f, "generated": generated})
}

func generatedFromResult(topic string, result *service.ResearchResult) generatedPost {
	s := result.Suggestion
	title := s.Title
	if title == "" {
		title = topic + ": A Comprehensive Guide"
	}
	slug := s.Slug
	if slug == "" {
		slug = form.Slugify(title)
	}
	if slug == "" {
		slug = "comprehensive-guide"
	}
	return generatedPost{
		Topic:       topic,
		Title:       title,
		Slug:        slug,
		Content:     string(editor.ToHTML(s.Outline)),
		Description: s.Meta,
		Keywords:    s.Keywords,
		WordCount:   result.WordCount,
		SEOAnalysis: result.SEOAnalysis,
	}
}

func generatedFromForm(c *gin.Context) generatedPost {
	return generatedPost{
		Topic:       strings.TrimSpace(c.PostForm("topic")),
		Title:       strings.TrimSpace(c.PostForm("title")),
		Slug:        strings.TrimSpace(c.PostForm("slug")),
		Content:     c.PostForm("content"),
		Description: strings.TrimSpace(c.PostForm("description")),
		Keywords:    form.SplitList(c.PostForm("keywords")),
	}
}

// SaveGenerated stores the generated post as a draft or publishes it.
func (a *API) SaveGenerated(c *gin.Context) {
	generated := generatedFromForm(c)
	f := form.PostForm{
		Title:        generated.Title,
		Slug:         generated.Slug,
		Content:      a.editor.Sanitize(generated.Content),
		Description:  generated.Description,
		Tags:         generated.KeywordList(),
		Keywords:     generated.KeywordList(),
		Status:       c.PostForm("status"),
		ImagePreview: c.PostForm("imagePreview"),
	}
	formView := form.DefaultGenerateForm()
	formView.Topic = generated.Topic

	if err := attachFormImage(c, &f); err != nil {
		notifyUploadFailure(c, err)
		a.renderGenerate(c, http.StatusUnprocessableEntity, gin.H{"form": formView, "generated": generated})
		return
	}
	generated.ImagePreview = f.ImagePreview

	if errs := f.Validate(); !errs.Empty() {
		session.Failure(c, "Error", errs.Error())
		a.renderGenerate(c, http.StatusUnprocessableEntity, gin.H{"form": formView, "generated": generated})
		return
	}
	if err := a.resolveFormImage(c, &f); err != nil {
		notifyUploadFailure(c, err)
		a.renderGenerate(c, http.StatusBadGateway, gin.H{"form": formView, "generated": generated})
		return
	}
	if _, err := a.posts.Create(session.Context(c), service.PostInputFromForm(f)); err != nil {
		if a.backendUnauthorized(c, err) {
			return
		}
		notifyFailure(c, "Error", err, "Failed to save blog post. Please try again.")
		a.renderGenerate(c, http.StatusBadGateway, gin.H{"form": formView, "generated": generated})
		return
	}

	if f.Status == form.StatusPublished {
		session.Success(c, "Blog published!", "Your blog post has been published successfully.")
	} else {
		session.Success(c, "Draft saved!", "Your draft has been saved.")
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

// DownloadGenerated returns the generated post as a markdown attachment.
func (a *API) DownloadGenerated(c *gin.Context) {
	generated := generatedFromForm(c)
	if generated.Title == "" && strings.TrimSpace(generated.Content) == "" {
		respondError(c, http.StatusBadRequest, "nothing to download")
		return
	}
	slug := generated.Slug
	if slug == "" {
		slug = form.Slugify(generated.Title)
	}
	if slug == "" {
		slug = "post"
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.md"`, slug))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(generated.Markdown()))
}

// GenerateProgress streams simulated progress frames as server-sent events
// while the research request runs in another request. The frames are
// cosmetic and never reflect backend progress. ?done=1 plays only the
// closing fast-forward.
func (a *API) GenerateProgress(c *gin.Context) {
	seed, err := strconv.ParseInt(c.Query("seed"), 10, 64)
	if err != nil {
		seed = time.Now().UnixNano()
	}
	done := make(chan struct{})
	if c.Query("done") == "1" {
		close(done)
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	progress.Run(c.Request.Context(), progress.NewSimulator(seed), a.progressTick, done, func(frame progress.Snapshot) bool {
		c.SSEvent("progress", frame)
		c.Writer.Flush()
		return !frame.Closing
	})
}
