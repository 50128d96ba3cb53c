package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests never reach Chromium: every path exercised here returns
// before launchLocked would run.

func TestRodEngine_CloseBeforeStart(t *testing.T) {
	e := NewRodEngine(RodConfig{Headless: true})

	require.NoError(t, e.Close(context.Background()))
	// A second close is a no-op.
	require.NoError(t, e.Close(context.Background()))
}

func TestRodEngine_NewSessionAfterClose(t *testing.T) {
	e := NewRodEngine(RodConfig{Headless: true})
	require.NoError(t, e.Close(context.Background()))

	sess, err := e.NewSession(context.Background(), Identity{})
	assert.Nil(t, sess)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRodEngine_StartAfterClose(t *testing.T) {
	e := NewRodEngine(RodConfig{Headless: true})
	require.NoError(t, e.Close(context.Background()))

	assert.ErrorIs(t, e.Start(context.Background()), ErrClosed)
}

func TestRodEngine_StartHonoursCanceledContext(t *testing.T) {
	e := NewRodEngine(RodConfig{Headless: true})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, e.Start(ctx), context.Canceled)
}
