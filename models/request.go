package models

// ScrapeRequest is the payload for POST /scrape.
// URL is validated by the scrape pipeline, not by gin binding tags.
type ScrapeRequest struct {
	// URL is the target page to scrape. Required.
	URL string `json:"url"`
}
