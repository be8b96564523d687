// Package auth orchestrates registration, login and session restoration
// against the ledger and keeps the authenticated user for one client.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/red-syndicate/internal/ledger"
	"github.com/hongminglow/red-syndicate/internal/models"
	"github.com/hongminglow/red-syndicate/internal/state"
)

// DefaultWelcomeBalance is credited to every new account.
var DefaultWelcomeBalance = decimal.NewFromInt(1000)

var (
	// ErrInvalidCredentials is returned when email and password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotAuthenticated is returned by operations that need a current user.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrInvalidInput wraps a rejected username, email or password.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInProgress is recorded when another attempt holds Authenticating.
	ErrInProgress = errors.New("authentication already in progress")
)

// Ledger is the subset of the ledger store the service depends on.
type Ledger interface {
	CreateUser(ctx context.Context, in ledger.NewUser) (*models.User, error)
	AuthenticateUser(ctx context.Context, email, password string) *models.User
	UpdateUser(ctx context.Context, id string, update ledger.UserUpdate) (*models.User, error)
	CreateSession(ctx context.Context, userID string) (*models.Session, error)
	LookupSession(ctx context.Context, token string) (*models.User, error)
	DestroySession(ctx context.Context, token string) error
	CurrentToken(ctx context.Context) string
	ClearCurrentToken(ctx context.Context)
}

type registration struct {
	Username string `validate:"required,min=3,max=50"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Option customizes a Service.
type Option func(*Service)

// WithWelcomeBalance overrides DefaultWelcomeBalance.
func WithWelcomeBalance(amount decimal.Decimal) Option {
	return func(s *Service) {
		if !amount.IsNegative() {
			s.welcome = amount
		}
	}
}

// WithPasswordCost overrides bcrypt.DefaultCost.
func WithPasswordCost(cost int) Option {
	return func(s *Service) {
		s.cost = cost
	}
}

// Service holds the authentication state of one client. Operations report
// success as a bool and log failures; they never panic.
type Service struct {
	ledger   Ledger
	log      *slog.Logger
	validate *validator.Validate
	welcome  decimal.Decimal
	cost     int

	machine *state.Machine

	mu      sync.RWMutex
	user    *models.User
	token   string
	lastErr error
}

// NewService constructs an unauthenticated Service.
func NewService(l Ledger, log *slog.Logger, opts ...Option) *Service {
	if log == nil {
		log = slog.Default()
	}

	s := &Service{
		ledger:   l,
		log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		welcome:  DefaultWelcomeBalance,
		cost:     bcrypt.DefaultCost,
		machine:  state.NewMachine(state.SessionTransitions, state.StateUnauthenticated, log),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// User returns a copy of the authenticated user, or nil.
func (s *Service) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the current session token, or "".
func (s *Service) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// State returns the session state.
func (s *Service) State() state.State {
	return s.machine.Current()
}

// Err returns why the last Register or Login failed, or nil after a success.
func (s *Service) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Service) setErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

// IsLoading reports whether an authentication attempt is in flight.
func (s *Service) IsLoading() bool {
	return s.machine.Current() == state.StateAuthenticating
}

// Register creates an account with the welcome balance and signs it in.
func (s *Service) Register(ctx context.Context, username, email, password string) bool {
	in := registration{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	s.setErr(nil)
	if err := s.validate.Struct(in); err != nil {
		s.log.Warn("registration rejected", slog.Any("error", err))
		s.setErr(fmt.Errorf("%w: %w", ErrInvalidInput, err))
		return false
	}

	prev, ok := s.begin()
	if !ok {
		return false
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		s.log.Error("hash password failed", slog.Any("error", err))
		s.setErr(fmt.Errorf("hash password: %w", err))
		s.fail(prev)
		return false
	}

	user, err := s.ledger.CreateUser(ctx, ledger.NewUser{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         models.NormalUser,
		Balance:      s.welcome,
	})
	if err != nil {
		s.log.Warn("registration failed", slog.String("username", in.Username), slog.Any("error", err))
		s.setErr(err)
		s.fail(prev)
		return false
	}

	return s.openSession(ctx, user, prev)
}

// Login signs in with email and password.
func (s *Service) Login(ctx context.Context, email, password string) bool {
	in := credentials{Email: strings.TrimSpace(email), Password: password}
	s.setErr(nil)
	if err := s.validate.Struct(in); err != nil {
		s.log.Warn("login rejected", slog.Any("error", err))
		s.setErr(fmt.Errorf("%w: %w", ErrInvalidInput, err))
		return false
	}

	prev, ok := s.begin()
	if !ok {
		return false
	}

	user := s.ledger.AuthenticateUser(ctx, in.Email, in.Password)
	if user == nil {
		s.log.Warn("login failed", slog.String("email", in.Email), slog.Any("error", ErrInvalidCredentials))
		s.setErr(ErrInvalidCredentials)
		s.fail(prev)
		return false
	}

	return s.openSession(ctx, user, prev)
}

// Logout destroys the current session and clears the user.
func (s *Service) Logout(ctx context.Context) {
	s.mu.Lock()
	token := s.token
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	if token != "" {
		if err := s.ledger.DestroySession(ctx, token); err != nil {
			s.log.Error("destroy session failed", slog.Any("error", err))
		}
	}
	s.machine.Reset(state.StateUnauthenticated)
}

// Restore resumes the session whose token the ledger keeps for this client.
// An unusable token is discarded.
func (s *Service) Restore(ctx context.Context) bool {
	token := s.ledger.CurrentToken(ctx)
	if token == "" {
		return false
	}
	if s.Resume(ctx, token) {
		return true
	}
	s.ledger.ClearCurrentToken(ctx)
	return false
}

// Resume authenticates with an existing session token.
func (s *Service) Resume(ctx context.Context, token string) bool {
	if strings.TrimSpace(token) == "" {
		return false
	}

	prev, ok := s.begin()
	if !ok {
		return false
	}

	user, err := s.ledger.LookupSession(ctx, token)
	if err != nil {
		s.log.Debug("session not resumed", slog.Any("error", err))
		s.fail(prev)
		return false
	}

	s.mu.Lock()
	s.user = user
	s.token = token
	s.mu.Unlock()

	return s.machine.TransitionTo(state.StateAuthenticated) == nil
}

// UpdateUser applies update to the current user and refreshes the local copy.
func (s *Service) UpdateUser(ctx context.Context, update ledger.UserUpdate) bool {
	current := s.User()
	if current == nil {
		s.log.Warn("update user failed", slog.Any("error", ErrNotAuthenticated))
		return false
	}

	updated, err := s.ledger.UpdateUser(ctx, current.ID, update)
	if err != nil {
		s.log.Error("update user failed", slog.String("user_id", current.ID), slog.Any("error", err))
		return false
	}
	if updated == nil {
		s.log.Warn("update user failed: user vanished", slog.String("user_id", current.ID))
		return false
	}

	s.mu.Lock()
	s.user = updated
	s.mu.Unlock()
	return true
}

// Refresh replaces the cached user with u when it is the current user.
func (s *Service) Refresh(u *models.User) {
	if u == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user != nil && s.user.ID == u.ID {
		copied := *u
		s.user = &copied
	}
}

func (s *Service) openSession(ctx context.Context, user *models.User, prev state.State) bool {
	session, err := s.ledger.CreateSession(ctx, user.ID)
	if err != nil {
		s.log.Error("create session failed", slog.String("user_id", user.ID), slog.Any("error", err))
		s.setErr(err)
		s.fail(prev)
		return false
	}

	s.mu.Lock()
	s.user = user
	s.token = session.Token
	s.mu.Unlock()

	if err := s.machine.TransitionTo(state.StateAuthenticated); err != nil {
		return false
	}
	s.log.Info("user authenticated", slog.String("user_id", user.ID))
	return true
}

// begin enters Authenticating. It fails when another attempt is in flight.
func (s *Service) begin() (state.State, bool) {
	prev := s.machine.Current()
	if err := s.machine.TransitionTo(state.StateAuthenticating); err != nil {
		s.log.Warn("authentication already in progress")
		s.setErr(ErrInProgress)
		return prev, false
	}
	return prev, true
}

// fail leaves Authenticating, returning to the previous session if one is held.
func (s *Service) fail(prev state.State) {
	s.mu.RLock()
	hasUser := s.user != nil
	s.mu.RUnlock()

	if prev == state.StateAuthenticated && hasUser {
		_ = s.machine.TransitionTo(state.StateAuthenticated)
		return
	}
	_ = s.machine.TransitionTo(state.StateUnauthenticated)
}
