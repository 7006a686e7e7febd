package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/blogai/internal/form"
	"github.com/blogai/internal/service"
	"github.com/blogai/internal/session"
	"github.com/gin-gonic/gin"
)

func (a *API) loadPost(c *gin.Context) (*service.Post, bool) {
	id := strings.TrimSpace(c.Param("id"))
	post, err := a.posts.Get(session.Context(c), id)
	if err == nil {
		return post, true
	}
	if a.backendUnauthorized(c, err) {
		return nil, false
	}
	if errors.Is(err, service.ErrPostNotFound) {
		session.Failure(c, "Error", "Post not found")
	} else {
		notifyFailure(c, "Error", err, "Failed to fetch post")
	}
	c.Redirect(http.StatusFound, "/posts")
	return nil, false
}

func (a *API) renderPostDetail(c *gin.Context, status int, id string, f form.PostForm, errs form.Errors) {
	a.renderHTML(c, status, "post_detail.html", gin.H{
		"title":  "Edit post",
		"postId": id,
		"form":   f,
		"errors": errs,
		"editor": a.editor.Config(),
	})
}

// ShowPostDetail renders the post edit page.
func (a *API) ShowPostDetail(c *gin.Context) {
	post, ok := a.loadPost(c)
	if !ok {
		return
	}
	a.renderPostDetail(c, http.StatusOK, post.ID, post.Form(), nil)
}

// SavePostDetail saves the post as a draft or publishes it, depending on
// which button submitted the form.
func (a *API) SavePostDetail(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	var f form.PostForm
	if err := c.ShouldBind(&f); err != nil {
		respondError(c, http.StatusBadRequest, "invalid post form")
		return
	}
	switch c.PostForm("action") {
	case "publish":
		f.Status = form.StatusPublished
	case "draft":
		f.Status = form.StatusDraft
	}
	f.Content = a.editor.Sanitize(f.Content)

	if err := attachFormImage(c, &f); err != nil {
		notifyUploadFailure(c, err)
		a.renderPostDetail(c, http.StatusUnprocessableEntity, id, f, nil)
		return
	}
	if errs := f.Validate(); !errs.Empty() {
		a.renderPostDetail(c, http.StatusUnprocessableEntity, id, f, errs)
		return
	}
	if err := a.resolveFormImage(c, &f); err != nil {
		notifyUploadFailure(c, err)
		a.renderPostDetail(c, http.StatusBadGateway, id, f, nil)
		return
	}

	if _, err := a.posts.Patch(session.Context(c), id, service.PostInputFromForm(f)); err != nil {
		if a.backendUnauthorized(c, err) {
			return
		}
		notifyFailure(c, "Error", err, "Failed to update post")
		a.renderPostDetail(c, http.StatusBadGateway, id, f, nil)
		return
	}

	if f.Status == form.StatusPublished {
		session.Success(c, "Success", "Post published successfully")
	} else {
		session.Success(c, "Success", "Draft saved successfully")
	}
	c.Redirect(http.StatusFound, "/posts/"+id)
}

// ShowSEOSuggestions returns the SEO suggestions dialog for a post.
func (a *API) ShowSEOSuggestions(c *gin.Context) {
	post, ok := a.loadPost(c)
	if !ok {
		return
	}
	suggestions := a.seo.Suggest(*post)
	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
		return
	}

	tpl := "seo_modal.html"
	if !isFragment(c) {
		tpl = "seo_page.html"
	}
	a.renderHTML(c, http.StatusOK, tpl, gin.H{
		"title":       "SEO suggestions",
		"post":        post,
		"suggestions": suggestions,
	})
}
