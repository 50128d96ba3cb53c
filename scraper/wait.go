package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/use-agent/rankscrape/engine"
)

// WaitOutcome reports how the content wait ended. None of the outcomes is
// a failure: a page may legitimately have no matching content.
type WaitOutcome int

const (
	ContentReady WaitOutcome = iota
	ContentTimedOut
	ContentSkipped
)

func (o WaitOutcome) String() string {
	switch o {
	case ContentReady:
		return "ready"
	case ContentTimedOut:
		return "timeout"
	default:
		return "skipped"
	}
}

// Waiter bridges "DOM constructed" and "content visible" for pages that
// render asynchronously.
type Waiter struct {
	selectors []string
	timeout   time.Duration
}

// NewWaiter races selectors for at most timeout. With no selectors or a
// non-positive timeout the wait is skipped.
func NewWaiter(selectors []string, timeout time.Duration) *Waiter {
	return &Waiter{
		selectors: append([]string(nil), selectors...),
		timeout:   timeout,
	}
}

// Wait blocks until any ready selector matches or the sub-timeout expires.
func (w *Waiter) Wait(ctx context.Context, sess engine.Session) WaitOutcome {
	if len(w.selectors) == 0 || w.timeout <= 0 {
		return ContentSkipped
	}

	waitCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	matched, err := sess.WaitForAny(waitCtx, w.selectors)
	if err != nil {
		slog.Warn("expected content not observed, extracting anyway",
			"timeout", w.timeout,
			"waited", time.Since(start).Round(time.Millisecond),
			"error", err,
		)
		return ContentTimedOut
	}

	slog.Debug("content ready", "selector", matched, "waited", time.Since(start).Round(time.Millisecond))
	return ContentReady
}
