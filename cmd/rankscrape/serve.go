package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/rankscrape/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve [--host <host>] [--port <port>]",
	Short: "Runs the HTTP scrape service.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("host") {
			cfg.Server.Host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		return serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().String("host", "", "Listen host (overrides RANKSCRAPE_HOST).")
	serveCmd.Flags().Int("port", 0, "Listen port (overrides RANKSCRAPE_PORT).")
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context) error {
	slog.Info("rankscrape starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"maxSessions", cfg.Browser.MaxSessions,
	)

	// ── 1. Browser engine ───────────────────────────────────────────
	eng, sc := newScraper()
	if cfg.Browser.LaunchOnStart {
		if err := eng.Start(ctx); err != nil {
			return fmt.Errorf("start engine: %w", err)
		}
	}

	// ── 2. Router and HTTP server ───────────────────────────────────
	router := api.NewRouter(sc, cfg, time.Now())
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// ── 3. Graceful shutdown ────────────────────────────────────────
	var serveErr error
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case serveErr = <-errCh:
		slog.Error("HTTP server error", "error", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	if err := eng.Close(shutdownCtx); err != nil {
		slog.Error("browser shutdown incomplete", "error", err)
	}

	st := sc.Sessions().Stats()
	slog.Info("rankscrape stopped", "sessionsAcquired", st.Acquired, "sessionsReleased", st.Released)
	return serveErr
}
