package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/blogai/internal/apiclient"
	"github.com/blogai/internal/service"
	"github.com/blogai/internal/session"
	"github.com/gin-gonic/gin"
)

// ShowTrending lists trending topics grouped into source tabs. A failed
// fetch renders the error state with a retry link to the same tab.
func (a *API) ShowTrending(c *gin.Context) {
	tab := strings.ToLower(strings.TrimSpace(c.DefaultQuery("tab", service.TabAll)))

	topics, err := a.trends.List(session.Context(c))
	if err != nil {
		if a.backendUnauthorized(c, err) {
			return
		}
		message := apiclient.UserMessage(err, "Failed to fetch trending topics")
		var apiErr *apiclient.Error
		if !errors.As(err, &apiErr) {
			message = err.Error()
		}
		a.renderHTML(c, http.StatusOK, "trending.html", gin.H{
			"title":    "Trending topics",
			"tab":      tab,
			"error":    message,
			"retryUrl": "/trending?tab=" + url.QueryEscape(tab),
		})
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"data": service.Partition(topics, tab), "sources": service.Sources(topics)})
		return
	}
	a.renderHTML(c, http.StatusOK, "trending.html", gin.H{
		"title":  "Trending topics",
		"tab":    tab,
		"tabs":   service.Sources(topics),
		"topics": service.Partition(topics, tab),
	})
}
