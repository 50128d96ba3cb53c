package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/rankscrape/scraper"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "Scrapes one URL and prints the response envelope as JSON.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, sc := newScraper()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = eng.Close(ctx)
		}()

		rep, err := sc.Scrape(cmd.Context(), args[0])
		res := scraper.Assemble(rep, err)
		status, body := res.Response()

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(body); err != nil {
			return err
		}
		if !res.OK() {
			return fmt.Errorf("scrape failed with status %d (%s)", status, res.Err.Code)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}
