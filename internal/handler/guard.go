package handler

import (
	"net/http"
	"strings"

	"github.com/blogai/internal/session"
	"github.com/gin-gonic/gin"
)

var protectedSegments = []string{
	"/dashboard",
	"/onboarding",
	"/write",
	"/generate",
	"/posts",
	"/settings",
	"/scraper",
}

// IsProtectedPath reports whether path needs a session token. Matching is by
// substring, so nested routes inherit their section's protection.
func IsProtectedPath(path string) bool {
	for _, segment := range protectedSegments {
		if strings.Contains(path, segment) {
			return true
		}
	}
	return false
}

// IsAuthPath reports the login and signup pages.
func IsAuthPath(path string) bool {
	return path == "/login" || path == "/signup"
}

// RouteGuard redirects visitors without an auth-token cookie away from the
// dashboard, and logged in users away from the login and signup pages. It
// only checks that the cookie is present; the backend validates it.
func RouteGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		hasToken := session.Token(c) != ""

		if IsProtectedPath(path) && !hasToken {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		if IsAuthPath(path) && hasToken {
			c.Redirect(http.StatusFound, "/dashboard")
			c.Abort()
			return
		}
		c.Next()
	}
}
