package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/rankscrape/models"
)

func main() {
	apiURL := os.Getenv("RANKSCRAPE_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:3000"
	}
	apiURL = strings.TrimRight(apiURL, "/")

	s := server.NewMCPServer(
		"rankscrape",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	scrapeTool := mcp.NewTool("scrape_rankings",
		mcp.WithDescription("Render a ranking page in a headless browser and return its zone name, boss name and ranking table rows (job, score, count)."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Absolute http(s) URL of the ranking page"),
		),
	)
	s.AddTool(scrapeTool, handleScrapeRankings(apiURL))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleScrapeRankings(apiURL string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		respBody, err := apiPost(ctx, client, apiURL, "/scrape", models.ScrapeRequest{URL: url})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var resp models.ScrapeResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if !resp.Success || resp.Data == nil {
			return mcp.NewToolResultError(formatFailure(resp)), nil
		}
		return mcp.NewToolResultText(formatRecord(resp.Data)), nil
	}
}

// apiPost sends a POST request to the rankscrape API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func formatFailure(resp models.ScrapeResponse) string {
	msg := resp.Error
	if msg == "" {
		msg = "scrape failed"
	}
	if resp.Code != "" {
		msg = fmt.Sprintf("[%s] %s", resp.Code, msg)
	}
	if resp.Message != "" {
		msg += ": " + resp.Message
	}
	return msg
}

func formatRecord(rec *models.ScrapedRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Zone: %s\n", orDash(rec.ZoneName))
	fmt.Fprintf(&b, "Boss: %s\n", orDash(rec.BossName))
	fmt.Fprintf(&b, "Captured: %s\n", rec.Timestamp.Format(time.RFC3339))

	if len(rec.TableRows) == 0 {
		b.WriteString("\nNo ranking rows found.")
		return b.String()
	}

	b.WriteString("\n| Job | Score | Count |\n|---|---|---|\n")
	for _, r := range rec.TableRows {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", r.JobName, r.Score, r.Count)
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
