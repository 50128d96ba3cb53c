package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/use-agent/rankscrape/config"
	"github.com/use-agent/rankscrape/engine"
	"github.com/use-agent/rankscrape/extract"
	"github.com/use-agent/rankscrape/scraper"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "rankscrape",
	Short: "rankscrape renders ranking pages in headless Chromium and returns structured records.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Log.Level = lvl
		}
		initLogger(cfg.Log)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Override RANKSCRAPE_LOG_LEVEL (debug, info, warn, error).")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newScraper builds the browser engine and the pipeline on top of it.
func newScraper() (*engine.RodEngine, *scraper.Scraper) {
	eng := engine.NewRodEngine(engine.RodConfig{
		Headless:   cfg.Browser.Headless,
		NoSandbox:  cfg.Browser.NoSandbox,
		BrowserBin: cfg.Browser.BrowserBin,
		Proxy:      cfg.Browser.Proxy,
	})
	sc := scraper.New(eng, cfg.Browser, cfg.Scraper, extract.New(extract.DefaultRules()))
	return eng, sc
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
