package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/rankscrape/api/middleware"
	"github.com/use-agent/rankscrape/models"
	"github.com/use-agent/rankscrape/scraper"
)

// ContentWaitHeader reports how the soft content wait ended.
const ContentWaitHeader = "X-Content-Wait"

// Scraper is the pipeline the scrape handler drives.
type Scraper interface {
	Scrape(ctx context.Context, rawURL string) (*scraper.Report, error)
}

// Scrape returns a handler for POST /scrape.
//
//  1. Parse the body. A missing body is treated as {} so the pipeline
//     reports "URL is required".
//  2. Run the pipeline under the request context.
//  3. Assemble exactly one response.
func Scrape(sc Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, models.ScrapeResponse{
				Success: false,
				Error:   models.MsgInvalidBody,
				Code:    models.ErrCodeInvalidInput,
			})
			return
		}

		rep, err := sc.Scrape(c.Request.Context(), req.URL)
		res := scraper.Assemble(rep, err)
		if res.OK() {
			c.Header(ContentWaitHeader, res.Wait.String())
		} else if res.Err.Code != models.ErrCodeInvalidInput {
			slog.Warn("scrape request failed",
				"request_id", middleware.GetRequestID(c),
				"url", req.URL,
				"code", res.Err.Code,
				"error", err,
			)
		}

		status, body := res.Response()
		c.JSON(status, body)
	}
}
