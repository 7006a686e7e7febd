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

// ShowDashboard lists the caller's posts with their counters.
func (a *API) ShowDashboard(c *gin.Context) {
	posts, err := a.posts.ListForUser(session.Context(c))
	if err != nil {
		if a.backendUnauthorized(c, err) {
			return
		}
		notifyFailure(c, "Error", err, "Failed to fetch posts")
	}

	a.renderHTML(c, http.StatusOK, "dashboard.html", gin.H{
		"title":     "Dashboard",
		"posts":     posts,
		"stats":     service.CountPosts(posts),
		"loadError": err != nil,
	})
}

// ShowPostList lists every post visible to the caller.
func (a *API) ShowPostList(c *gin.Context) {
	posts, err := a.posts.List(session.Context(c))
	if err != nil {
		if a.backendUnauthorized(c, err) {
			return
		}
		notifyFailure(c, "Error", err, "Failed to fetch posts")
	}

	a.renderHTML(c, http.StatusOK, "posts.html", gin.H{
		"title":     "Posts",
		"posts":     posts,
		"loadError": err != nil,
	})
}

// ConfirmDeletePost renders the confirmation dialog. Nothing is deleted
// until the dialog is submitted.
func (a *API) ConfirmDeletePost(c *gin.Context) {
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
		redirectBack(c, c.Query("redirect"), "/dashboard")
		return
	}

	a.renderHTML(c, http.StatusOK, "post_delete.html", gin.H{
		"title":    "Delete post",
		"post":     post,
		"redirect": localPath(c.Query("redirect"), "/dashboard"),
	})
}

// DeletePost removes the post once the user confirmed. A declined dialog
// returns to the list without calling the backend.
func (a *API) DeletePost(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	target := c.PostForm("redirect")

	if c.PostForm("confirm") != "yes" {
		redirectBack(c, target, "/dashboard")
		return
	}

	if err := a.posts.Delete(session.Context(c), id); err != nil {
		if a.backendUnauthorized(c, err) {
			return
		}
		if wantsJSON(c) {
			respondError(c, http.StatusBadGateway, err.Error())
			return
		}
		notifyFailure(c, "Error", err, "Failed to delete post")
		redirectBack(c, target, "/dashboard")
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}
	session.Success(c, "Success", "Post deleted successfully")
	redirectBack(c, target, "/dashboard")
}

// TogglePostStatus publishes a draft or unpublishes a post.
func (a *API) TogglePostStatus(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	status := strings.ToLower(strings.TrimSpace(c.PostForm("status")))
	target := c.PostForm("redirect")

	if !form.ValidStatus(status) {
		session.Failure(c, "Error", service.ErrInvalidPostStatus.Error())
		redirectBack(c, target, "/dashboard")
		return
	}

	if _, err := a.posts.SetStatus(session.Context(c), id, status); err != nil {
		if a.backendUnauthorized(c, err) {
			return
		}
		notifyFailure(c, "Error", err, "Failed to update post status")
		redirectBack(c, target, "/dashboard")
		return
	}

	if status == form.StatusPublished {
		session.Success(c, "Success", "Post published successfully")
	} else {
		session.Success(c, "Success", "Post moved to drafts")
	}
	redirectBack(c, target, "/dashboard")
}
