package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/rankscrape/models"
)

// Health returns a handler for GET /health. It never touches the browser.
func Health(startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:    "OK",
			Timestamp: now.UTC(),
			Uptime:    now.Sub(startTime).Round(time.Second).String(),
		})
	}
}
