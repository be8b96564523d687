package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/red-syndicate/internal/models"
	"github.com/hongminglow/red-syndicate/internal/storage/memory"
)

var errQuotaExceeded = errors.New("quota exceeded")

// flakyMedium wraps the memory medium and fails on demand.
type flakyMedium struct {
	*memory.Medium

	mu        sync.Mutex
	failReads bool
	failWrite bool
}

func (f *flakyMedium) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	fail := f.failReads
	f.mu.Unlock()
	if fail {
		return nil, errQuotaExceeded
	}
	return f.Medium.Get(ctx, key)
}

func (f *flakyMedium) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	fail := f.failWrite
	f.mu.Unlock()
	if fail {
		return errQuotaExceeded
	}
	return f.Medium.Set(ctx, key, value)
}

func (f *flakyMedium) setFailures(reads, writes bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failReads = reads
	f.failWrite = writes
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *flakyMedium, *fakeClock) {
	t.Helper()

	medium := &flakyMedium{Medium: memory.New()}
	clock := &fakeClock{now: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.Now)}, opts...)

	store := New(medium, testLogger(), opts...)
	require.NoError(t, store.Init(context.Background()))
	return store, medium, clock
}

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func mustCreate(t *testing.T, s *Store, username, email string, balance int64) *models.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), NewUser{
		Username:     username,
		Email:        email,
		PasswordHash: hash(t, "hunter22"),
		Balance:      decimal.NewFromInt(balance),
	})
	require.NoError(t, err)
	return u
}
