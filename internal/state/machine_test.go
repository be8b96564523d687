package state

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMachine_TransitionTo(t *testing.T) {
	m := NewMachine(RoundTransitions, StateIdle, testLogger())

	require.NoError(t, m.TransitionTo(StateSpinning))
	assert.Equal(t, StateSpinning, m.Current())

	err := m.TransitionTo(StateSettled)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StateSpinning, m.Current())

	require.NoError(t, m.TransitionTo(StateResolving))
	require.NoError(t, m.TransitionTo(StateSettled))
	assert.ErrorIs(t, m.TransitionTo(StateCancelled), ErrInvalidTransition)
}

func TestMachine_RecordsTransitions(t *testing.T) {
	var (
		mu       sync.Mutex
		recorded []string
	)
	RegisterTransitionRecorder(func(from, to string) {
		mu.Lock()
		defer mu.Unlock()
		recorded = append(recorded, from+"->"+to)
	})
	t.Cleanup(func() { RegisterTransitionRecorder(nil) })

	m := NewMachine(SessionTransitions, StateUnauthenticated, testLogger())
	require.NoError(t, m.TransitionTo(StateAuthenticating))
	require.NoError(t, m.TransitionTo(StateAuthenticated))
	require.Error(t, m.TransitionTo(StateAuthenticated))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"unauthenticated->authenticating", "authenticating->authenticated"}, recorded)
}

func TestMachine_Reset(t *testing.T) {
	m := NewMachine(SessionTransitions, StateAuthenticated, nil)
	m.Reset(StateUnauthenticated)
	assert.Equal(t, StateUnauthenticated, m.Current())
}

func TestTicker_RunsUntilDone(t *testing.T) {
	ticker := NewTicker(time.Millisecond)

	var ticks int
	err := ticker.Run(context.Background(), func(tick int) bool {
		ticks = tick
		return tick < 5
	})

	require.NoError(t, err)
	assert.Equal(t, 5, ticks)
}

func TestTicker_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ticker := NewTicker(time.Millisecond)

	var ticks atomic.Int32
	err := ticker.Run(ctx, func(tick int) bool {
		if ticks.Add(1) == 3 {
			cancel()
		}
		return true
	})

	assert.True(t, errors.Is(err, context.Canceled))
	assert.GreaterOrEqual(t, ticks.Load(), int32(3))
}

func TestTicker_Stop(t *testing.T) {
	ticker := NewTicker(time.Hour)
	ticker.Stop()
	ticker.Stop()

	err := ticker.Run(context.Background(), func(int) bool {
		t.Fatal("callback must not run after stop")
		return false
	})
	assert.ErrorIs(t, err, ErrTickerStopped)
}
