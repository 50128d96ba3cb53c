package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/rankscrape/models"
)

func TestFormatRecord(t *testing.T) {
	rec := &models.ScrapedRecord{
		ZoneName:  "Aberrus",
		TableRows: []models.TableRow{{JobName: "Mage", Score: "98.2", Count: "1200"}},
		Timestamp: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	out := formatRecord(rec)
	assert.Contains(t, out, "Zone: Aberrus")
	assert.Contains(t, out, "Boss: -")
	assert.Contains(t, out, "| Mage | 98.2 | 1200 |")

	empty := formatRecord(&models.ScrapedRecord{TableRows: []models.TableRow{}})
	assert.Contains(t, empty, "No ranking rows found.")
}

func TestFormatFailure(t *testing.T) {
	got := formatFailure(models.ScrapeResponse{
		Error:   models.MsgScrapeFailed,
		Code:    models.ErrCodeNavigationTimeout,
		Message: "navigation to https://x.test timed out after 30s",
	})
	assert.Equal(t, "[NAVIGATION_TIMEOUT] Failed to scrape the website: navigation to https://x.test timed out after 30s", got)
	assert.Equal(t, "scrape failed", formatFailure(models.ScrapeResponse{}))
}

func TestAPIPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/scrape", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req models.ScrapeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://example.com", req.URL)

		_ = json.NewEncoder(w).Encode(models.ScrapeResponse{Success: true})
	}))
	defer srv.Close()

	body, err := apiPost(context.Background(), srv.Client(), srv.URL, "/scrape", models.ScrapeRequest{URL: "https://example.com"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true}`, string(body))
}
