package scraper

import (
	"net/url"
	"strings"

	"github.com/use-agent/rankscrape/models"
)

// ValidateURL checks that raw is an absolute http(s) URL with a host.
// It runs before any browser resource is acquired.
func ValidateURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, models.MsgURLRequired, nil)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, models.MsgInvalidURL, err)
	}
	if !u.IsAbs() || u.Host == "" || u.Hostname() == "" {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, models.MsgInvalidURL, nil)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, models.MsgInvalidURL, nil)
	}
	return u, nil
}
