// Package enginetest provides an in-memory engine.Engine for tests.
//
// The fake serves a fixed HTML document and can inject a fault at every
// stage of a session (open, navigate, wait, snapshot). It counts opened and
// closed sessions so callers can assert that every acquire was paired with
// exactly one release.
package enginetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/use-agent/rankscrape/engine"
)

// Stage names a point in the session lifecycle.
type Stage int

const (
	StageNone Stage = iota
	StageNavigate
	StageWait
	StageHTML
)

// Fake is a fault-injecting engine.Engine. Configure fields before use.
type Fake struct {
	// HTML is returned by Session.HTML.
	HTML string

	// OpenErr fails NewSession.
	OpenErr error

	// NavigateErr fails Navigate immediately.
	NavigateErr error

	// HTMLErr fails HTML.
	HTMLErr error

	// Block makes the given stage block until its context is done.
	Block Stage

	// Panic makes the given stage panic.
	Panic Stage

	opened   atomic.Int64
	closed   atomic.Int64
	closes   atomic.Int64 // Close calls, including repeats
	started  atomic.Bool
	shutdown atomic.Bool

	mu         sync.Mutex
	identities []engine.Identity
	navigated  []string
}

var _ engine.Engine = (*Fake)(nil)

// Opened returns the number of sessions handed out.
func (f *Fake) Opened() int64 { return f.opened.Load() }

// Closed returns the number of sessions released (first Close only).
func (f *Fake) Closed() int64 { return f.closed.Load() }

// CloseCalls returns every Close call, including repeated ones.
func (f *Fake) CloseCalls() int64 { return f.closes.Load() }

// Started reports whether Start was called.
func (f *Fake) Started() bool { return f.started.Load() }

// Shutdown reports whether Close was called on the engine.
func (f *Fake) Shutdown() bool { return f.shutdown.Load() }

// Identities returns the identities sessions were opened with.
func (f *Fake) Identities() []engine.Identity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]engine.Identity(nil), f.identities...)
}

// Navigated returns every URL passed to Navigate.
func (f *Fake) Navigated() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.navigated...)
}

func (f *Fake) Start(ctx context.Context) error {
	if f.shutdown.Load() {
		return engine.ErrClosed
	}
	f.started.Store(true)
	return ctx.Err()
}

func (f *Fake) NewSession(ctx context.Context, id engine.Identity) (engine.Session, error) {
	if f.shutdown.Load() {
		return nil, engine.ErrClosed
	}
	if f.OpenErr != nil {
		return nil, f.OpenErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.identities = append(f.identities, id)
	f.mu.Unlock()
	f.opened.Add(1)
	return &session{f: f}, nil
}

func (f *Fake) Close(context.Context) error {
	f.shutdown.Store(true)
	return nil
}

type session struct {
	f      *Fake
	closed atomic.Bool
}

func (s *session) stage(ctx context.Context, st Stage) error {
	if s.f.Panic == st {
		panic(fmt.Sprintf("enginetest: injected panic at stage %d", st))
	}
	if s.f.Block == st {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (s *session) Navigate(ctx context.Context, url string) error {
	s.f.mu.Lock()
	s.f.navigated = append(s.f.navigated, url)
	s.f.mu.Unlock()

	if err := s.stage(ctx, StageNavigate); err != nil {
		return err
	}
	return s.f.NavigateErr
}

func (s *session) WaitForAny(ctx context.Context, selectors []string) (string, error) {
	if err := s.stage(ctx, StageWait); err != nil {
		return "", err
	}
	if len(selectors) == 0 {
		return "", errors.New("enginetest: no selectors")
	}
	return selectors[0], nil
}

func (s *session) HTML(ctx context.Context) (string, error) {
	if err := s.stage(ctx, StageHTML); err != nil {
		return "", err
	}
	if s.f.HTMLErr != nil {
		return "", s.f.HTMLErr
	}
	return s.f.HTML, nil
}

func (s *session) Close() error {
	s.f.closes.Add(1)
	if s.closed.CompareAndSwap(false, true) {
		s.f.closed.Add(1)
	}
	return nil
}
