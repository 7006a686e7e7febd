package handler

import (
	"net/http"

	"github.com/blogai/internal/db"
	"github.com/gin-gonic/gin"
)

// HealthCheck reports the local ledger and, when configured, the rate limit store.
func (a *API) HealthCheck(c *gin.Context) {
	if a.db != nil {
		if err := db.Ping(a.db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "error",
				"message": "database unreachable",
			})
			return
		}
	}

	payload := gin.H{
		"status":   "ok",
		"database": "up",
	}
	if a.db == nil {
		payload["database"] = "disabled"
	}
	if a.cache != nil {
		if err := a.cache.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "error",
				"message": "rate limit store unreachable",
			})
			return
		}
		payload["cache"] = "up"
	}
	c.JSON(http.StatusOK, payload)
}
