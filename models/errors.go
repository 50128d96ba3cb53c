package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
const (
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeResourceUnavailable = "RESOURCE_UNAVAILABLE"
	ErrCodeNavigationTimeout   = "NAVIGATION_TIMEOUT"
	ErrCodeNavigation          = "NAVIGATION_FAILED"
	ErrCodeExtractionFailed    = "EXTRACTION_FAILED"
	ErrCodeTimeout             = "SCRAPE_TIMEOUT"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
// Message is safe to show to callers; Err is for logs only.
type ScrapeError struct {
	Code    string
	Message string
	URL     string // target URL, when the failure is tied to one
	Err     error  // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// WithURL returns a copy of e bound to the target URL.
func (e *ScrapeError) WithURL(u string) *ScrapeError {
	cp := *e
	cp.URL = u
	return &cp
}

// AsScrapeError unwraps err into a *ScrapeError. Anything else is reported
// as an internal error without exposing its text.
func AsScrapeError(err error) *ScrapeError {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se
	}
	return NewScrapeError(ErrCodeInternal, "unexpected internal error", err)
}

// CodeOf returns the error code of err, or "" for nil.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	return AsScrapeError(err).Code
}
