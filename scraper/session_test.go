package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/rankscrape/engine"
	"github.com/use-agent/rankscrape/engine/enginetest"
	"github.com/use-agent/rankscrape/models"
)

func TestWithSession_ReleasesOnReturn(t *testing.T) {
	fake := &enginetest.Fake{}
	m := NewSessionManager(fake, engine.Identity{}, 1)

	sentinel := errors.New("boom")
	err := m.WithSession(context.Background(), func(engine.Session) error { return sentinel })
	assert.ErrorIs(t, err, sentinel)

	assert.EqualValues(t, 1, fake.Opened())
	assert.EqualValues(t, 1, fake.Closed())
	assert.Equal(t, SessionStats{Max: 1, Active: 0, Acquired: 1, Released: 1}, m.Stats())
}

func TestWithSession_PanicBecomesInternalError(t *testing.T) {
	fake := &enginetest.Fake{}
	m := NewSessionManager(fake, engine.Identity{}, 1)

	err := m.WithSession(context.Background(), func(engine.Session) error {
		panic("kaboom")
	})
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeInternal, models.CodeOf(err))
	assert.EqualValues(t, 1, fake.Closed())

	// The slot came back: a second session can be taken.
	err = m.WithSession(context.Background(), func(engine.Session) error { return nil })
	assert.NoError(t, err)
	assert.EqualValues(t, 2, fake.Closed())
}

func TestWithSession_CapacityBoundedByDeadline(t *testing.T) {
	fake := &enginetest.Fake{}
	m := NewSessionManager(fake, engine.Identity{}, 1)

	hold := make(chan struct{})
	inside := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- m.WithSession(context.Background(), func(engine.Session) error {
			close(inside)
			<-hold
			return nil
		})
	}()
	<-inside

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := m.WithSession(ctx, func(engine.Session) error {
		t.Fatal("second session must not be handed out while the first is held")
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeResourceUnavailable, models.CodeOf(err))
	assert.Equal(t, int64(1), m.Stats().Active)

	close(hold)
	require.NoError(t, <-done)
	assert.Zero(t, m.Stats().Active)
	assert.EqualValues(t, 1, fake.Opened())
}

func TestWithSession_OpenFailureReleasesSlot(t *testing.T) {
	fake := &enginetest.Fake{OpenErr: errors.New("chrome died")}
	m := NewSessionManager(fake, engine.Identity{}, 1)

	for i := 0; i < 3; i++ {
		err := m.WithSession(context.Background(), func(engine.Session) error { return nil })
		se := models.AsScrapeError(err)
		assert.Equal(t, models.ErrCodeResourceUnavailable, se.Code)
		assert.Equal(t, "failed to start browser session", se.Message)
	}
	assert.Zero(t, fake.Opened())
	assert.Zero(t, m.Stats().Acquired)
}

func TestNewSessionManager_MinimumOne(t *testing.T) {
	m := NewSessionManager(&enginetest.Fake{}, engine.Identity{}, 0)
	assert.EqualValues(t, 1, m.Stats().Max)
}

func TestWaiter(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		sess := openFake(t, &enginetest.Fake{})
		assert.Equal(t, ContentReady, NewWaiter([]string{"table"}, time.Second).Wait(context.Background(), sess))
	})
	t.Run("timeout", func(t *testing.T) {
		sess := openFake(t, &enginetest.Fake{Block: enginetest.StageWait})
		start := time.Now()
		out := NewWaiter([]string{"table"}, 30*time.Millisecond).Wait(context.Background(), sess)
		assert.Equal(t, ContentTimedOut, out)
		assert.Less(t, time.Since(start), time.Second)
	})
	t.Run("skipped", func(t *testing.T) {
		sess := openFake(t, &enginetest.Fake{Block: enginetest.StageWait})
		assert.Equal(t, ContentSkipped, NewWaiter(nil, time.Second).Wait(context.Background(), sess))
		assert.Equal(t, ContentSkipped, NewWaiter([]string{"table"}, 0).Wait(context.Background(), sess))
	})
	t.Run("strings", func(t *testing.T) {
		assert.Equal(t, "ready", ContentReady.String())
		assert.Equal(t, "timeout", ContentTimedOut.String())
		assert.Equal(t, "skipped", ContentSkipped.String())
	})
}

func openFake(t *testing.T, f *enginetest.Fake) engine.Session {
	t.Helper()
	sess, err := f.NewSession(context.Background(), engine.Identity{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })
	return sess
}
