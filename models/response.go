package models

import "time"

// Fixed user-facing failure strings.
const (
	MsgScrapeFailed   = "Failed to scrape the website"
	MsgURLRequired    = "URL is required"
	MsgInvalidURL     = "Invalid URL format"
	MsgInvalidBody    = "Invalid request body"
	MsgRateLimited    = "Too many requests, please try again later"
	MsgInternalFailed = "Internal server error"
)

// ScrapeResponse is the envelope for POST /scrape.
type ScrapeResponse struct {
	// Success indicates whether the scrape completed without errors.
	Success bool `json:"success"`

	// Data is populated only when Success is true.
	Data *ScrapedRecord `json:"data,omitempty"`

	// Error is a short, stable description of the failure class.
	Error string `json:"error,omitempty"`

	// Code is the machine-readable error code.
	Code string `json:"code,omitempty"`

	// Message adds detail (e.g. the target URL) without internal traces.
	Message string `json:"message,omitempty"`
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
}
