package state

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTickerStopped is returned by Run when Stop was called before fn finished.
var ErrTickerStopped = errors.New("ticker stopped")

// Ticker runs a callback on a fixed interval until the callback reports it
// is done, the context is cancelled or Stop is called.
type Ticker struct {
	interval time.Duration
	stop     chan struct{}
	once     sync.Once
}

// NewTicker constructs a Ticker. A non-positive interval fires back to back.
func NewTicker(interval time.Duration) *Ticker {
	return &Ticker{
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Run blocks, invoking fn with a 1-based tick count after every interval.
// It returns nil once fn returns false.
func (t *Ticker) Run(ctx context.Context, fn func(tick int) bool) error {
	interval := t.interval
	if interval <= 0 {
		interval = time.Nanosecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for tick := 1; ; tick++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.stop:
			return ErrTickerStopped
		case <-ticker.C:
			if !fn(tick) {
				return nil
			}
		}
	}
}

// Stop ends Run. It is safe to call more than once.
func (t *Ticker) Stop() {
	t.once.Do(func() { close(t.stop) })
}
