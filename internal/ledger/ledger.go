// Package ledger persists users, sessions and their transaction history as
// whole JSON collections on a storage.Medium.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/hongminglow/red-syndicate/internal/models"
	"github.com/hongminglow/red-syndicate/internal/storage"
)

// Keys of the persisted layout.
const (
	KeyUsers        = "casino_users"
	KeySessions     = "casino_sessions"
	KeySessionToken = "casino_session_token"

	probeKey = "test_storage"
)

// DefaultSessionTTL is how long a new session stays valid.
const DefaultSessionTTL = 24 * time.Hour

var (
	// ErrDuplicateUser is returned when the email or username is taken.
	ErrDuplicateUser = fmt.Errorf("user already exists: %w", storage.ErrAlreadyExists)
	// ErrUserNotFound is returned when an operation targets an unknown user id.
	ErrUserNotFound = fmt.Errorf("user not found: %w", storage.ErrNotFound)
	// ErrInsufficientFunds is returned when a debit exceeds the balance.
	ErrInsufficientFunds = errors.New("insufficient balance")
	// ErrNegativeBalance is returned when an update would set a negative balance.
	ErrNegativeBalance = errors.New("balance cannot be negative")
	// ErrSessionExpired is returned for unknown or expired session tokens.
	ErrSessionExpired = errors.New("session expired or unknown")
	// ErrNotInitialized is returned by writes issued before Init succeeded.
	ErrNotInitialized = fmt.Errorf("ledger not initialized: %w", storage.ErrStorage)
)

// TokenGenerator issues the bearer token for a new session.
type TokenGenerator func(user models.User, expiresAt time.Time) (string, error)

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSessionTTL overrides DefaultSessionTTL.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithTokenGenerator overrides the default random token generator.
func WithTokenGenerator(gen TokenGenerator) Option {
	return func(s *Store) {
		if gen != nil {
			s.newToken = gen
		}
	}
}

// Store is the ledger. It must be initialized with Init before use; until
// then reads return empty data and writes fail with ErrNotInitialized.
type Store struct {
	medium storage.Medium
	log    *slog.Logger

	// mu serializes every read-modify-write cycle over the collections.
	mu          sync.Mutex
	initialized atomic.Bool

	now      func() time.Time
	ttl      time.Duration
	newToken TokenGenerator
}

// New constructs a Store over medium.
func New(medium storage.Medium, log *slog.Logger, opts ...Option) *Store {
	if log == nil {
		log = slog.Default()
	}

	s := &Store{
		medium: medium,
		log:    log,
		now:    time.Now,
		ttl:    DefaultSessionTTL,
		newToken: func(models.User, time.Time) (string, error) {
			return uuid.NewString(), nil
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init verifies the medium accepts writes. It is safe to call more than once.
func (s *Store) Init(ctx context.Context) error {
	if s.initialized.Load() {
		return nil
	}

	if err := s.medium.Set(ctx, probeKey, []byte(`"test"`)); err != nil {
		s.log.Error("ledger initialization failed", slog.Any("error", err))
		return fmt.Errorf("%w: probe write: %v", storage.ErrStorage, err)
	}
	if err := s.medium.Delete(ctx, probeKey); err != nil {
		s.log.Error("ledger initialization failed", slog.Any("error", err))
		return fmt.Errorf("%w: probe delete: %v", storage.ErrStorage, err)
	}

	s.initialized.Store(true)
	s.log.Info("ledger initialized")
	return nil
}

// Ping reports whether the underlying medium is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.medium.Ping(ctx)
}

// Close releases the medium.
func (s *Store) Close() error {
	return s.medium.Close()
}

func (s *Store) clock() time.Time {
	return s.now().UTC()
}

func (s *Store) loadUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.load(ctx, KeyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) saveUsers(ctx context.Context, users []models.User) error {
	return s.save(ctx, KeyUsers, users)
}

func (s *Store) loadSessions(ctx context.Context) ([]models.Session, error) {
	var sessions []models.Session
	if err := s.load(ctx, KeySessions, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *Store) saveSessions(ctx context.Context, sessions []models.Session) error {
	return s.save(ctx, KeySessions, sessions)
}

// load decodes key into out. A missing key leaves out untouched.
func (s *Store) load(ctx context.Context, key string, out any) error {
	if !s.initialized.Load() {
		return ErrNotInitialized
	}

	data, err := s.medium.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		s.log.Error("ledger read failed", slog.String("key", key), slog.Any("error", err))
		return fmt.Errorf("%w: read %s: %v", storage.ErrStorage, key, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		s.log.Error("ledger decode failed", slog.String("key", key), slog.Any("error", err))
		return fmt.Errorf("%w: decode %s: %v", storage.ErrStorage, key, err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, key string, value any) error {
	if !s.initialized.Load() {
		return ErrNotInitialized
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.medium.Set(ctx, key, data); err != nil {
		s.log.Error("ledger write failed", slog.String("key", key), slog.Any("error", err))
		return fmt.Errorf("%w: write %s: %v", storage.ErrStorage, key, err)
	}
	return nil
}

func indexOfUser(users []models.User, id string) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}
