package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/blogai/internal/apiclient"
	"github.com/blogai/internal/session"
	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// wantsJSON reports whether the caller asked for a JSON response instead of a page.
func wantsJSON(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// isFragment reports an htmx request, which expects a partial instead of a full page.
func isFragment(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

// notifyFailure queues an error notification carrying the backend message,
// or fallback when the error has none worth showing.
func notifyFailure(c *gin.Context, title string, err error, fallback string) {
	session.Failure(c, title, apiclient.UserMessage(err, fallback))
}

// redirectBack sends the user to target when it is a local path, else to fallback.
func redirectBack(c *gin.Context, target, fallback string) {
	c.Redirect(http.StatusFound, localPath(target, fallback))
}

func localPath(target, fallback string) string {
	target = strings.TrimSpace(target)
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return fallback
	}
	parsed, err := url.Parse(target)
	if err != nil || parsed.Host != "" || parsed.Scheme != "" {
		return fallback
	}
	return target
}

// backendUnauthorized clears a rejected session and bounces to the login page.
// It returns false when err is not an authorization failure.
func (a *API) backendUnauthorized(c *gin.Context, err error) bool {
	if !apiclient.IsUnauthorized(err) {
		return false
	}
	_ = a.sessions.Clear(c)
	session.Failure(c, "Session expired", "Please log in again.")
	c.Redirect(http.StatusFound, "/login")
	return true
}
