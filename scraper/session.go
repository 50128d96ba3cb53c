package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/use-agent/rankscrape/engine"
	"github.com/use-agent/rankscrape/models"
	"golang.org/x/sync/semaphore"
)

// SessionManager hands out one isolated browser session per scrape and
// guarantees its release. Sessions are never shared or pooled.
// It is safe for concurrent use.
type SessionManager struct {
	eng      engine.Engine
	identity engine.Identity
	sem      *semaphore.Weighted
	max      int64

	acquired atomic.Int64
	released atomic.Int64
}

// SessionStats is a snapshot of session accounting.
type SessionStats struct {
	Max      int64
	Active   int64
	Acquired int64
	Released int64
}

// NewSessionManager caps concurrently open sessions at maxSessions
// (minimum 1).
func NewSessionManager(eng engine.Engine, id engine.Identity, maxSessions int) *SessionManager {
	if maxSessions < 1 {
		maxSessions = 1
	}
	return &SessionManager{
		eng:      eng,
		identity: id,
		sem:      semaphore.NewWeighted(int64(maxSessions)),
		max:      int64(maxSessions),
	}
}

// Stats returns current counters.
func (m *SessionManager) Stats() SessionStats {
	acq, rel := m.acquired.Load(), m.released.Load()
	return SessionStats{
		Max:      m.max,
		Active:   acq - rel,
		Acquired: acq,
		Released: rel,
	}
}

// WithSession acquires a session, runs fn with it and releases it on every
// exit path: normal return, error, cancellation or panic. A panic inside fn
// is converted into an internal error after the release.
func (m *SessionManager) WithSession(ctx context.Context, fn func(engine.Session) error) (err error) {
	sess, release, err := m.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("scrape session panicked", "panic", fmt.Sprint(r))
			err = models.NewScrapeError(models.ErrCodeInternal, "unexpected fault during scrape", fmt.Errorf("panic: %v", r))
		}
	}()

	return fn(sess)
}

// acquire returns a session and its idempotent release func.
func (m *SessionManager) acquire(ctx context.Context) (engine.Session, func(), error) {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return nil, nil, models.NewScrapeError(
			models.ErrCodeResourceUnavailable,
			"no browser session available before the deadline",
			err,
		)
	}

	sess, err := m.eng.NewSession(ctx, m.identity)
	if err != nil {
		m.sem.Release(1)
		msg := "failed to start browser session"
		if errors.Is(err, engine.ErrClosed) {
			msg = "browser is shutting down"
		}
		return nil, nil, models.NewScrapeError(models.ErrCodeResourceUnavailable, msg, err)
	}
	m.acquired.Add(1)

	var once sync.Once
	release := func() {
		once.Do(func() {
			if err := sess.Close(); err != nil {
				slog.Warn("browser session release reported an error", "error", err)
			}
			m.released.Add(1)
			m.sem.Release(1)
		})
	}
	return sess, release, nil
}
