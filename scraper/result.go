package scraper

import (
	"net/http"

	"github.com/use-agent/rankscrape/models"
)

// Result is the outcome of one request: exactly one of Record or Err is set.
type Result struct {
	Record *models.ScrapedRecord
	Wait   WaitOutcome
	Err    *models.ScrapeError
}

// Assemble folds a pipeline return into a Result. Errors that are not
// *models.ScrapeError become internal errors.
func Assemble(rep *Report, err error) Result {
	if err != nil {
		return Result{Err: models.AsScrapeError(err)}
	}
	if rep == nil || rep.Record == nil {
		return Result{Err: models.NewScrapeError(models.ErrCodeInternal, "scrape produced no record", nil)}
	}
	return Result{Record: rep.Record, Wait: rep.Wait}
}

// OK reports whether the result is a success.
func (r Result) OK() bool {
	return r.Err == nil
}

// Response returns the HTTP status and JSON envelope for r.
func (r Result) Response() (int, models.ScrapeResponse) {
	if r.OK() {
		return http.StatusOK, models.ScrapeResponse{Success: true, Data: r.Record}
	}

	status := StatusFor(r.Err.Code)
	resp := models.ScrapeResponse{Success: false, Code: r.Err.Code}
	switch r.Err.Code {
	case models.ErrCodeInvalidInput:
		resp.Error = r.Err.Message
	case models.ErrCodeRateLimited:
		resp.Error = models.MsgRateLimited
	case models.ErrCodeInternal:
		resp.Error = models.MsgScrapeFailed
		resp.Message = models.MsgInternalFailed
	default:
		resp.Error = models.MsgScrapeFailed
		resp.Message = r.Err.Message
	}
	return status, resp
}

// StatusFor translates error codes to HTTP status codes.
func StatusFor(code string) int {
	switch code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	default:
		return http.StatusInternalServerError // 500
	}
}
