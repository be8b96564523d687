package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hongminglow/red-syndicate/internal/models"
	"github.com/hongminglow/red-syndicate/internal/storage"
)

// CreateSession issues a token for userID, persists it and stores it as the
// current client token.
func (s *Store) CreateSession(ctx context.Context, userID string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOfUser(users, userID)
	if idx == -1 {
		return nil, ErrUserNotFound
	}

	sessions, err := s.loadSessions(ctx)
	if err != nil {
		return nil, err
	}

	expiresAt := s.clock().Add(s.ttl)
	token, err := s.newToken(users[idx], expiresAt)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	session := models.Session{UserID: userID, Token: token, ExpiresAt: expiresAt}
	sessions = append(sessions, session)
	if err := s.saveSessions(ctx, sessions); err != nil {
		return nil, err
	}

	if err := s.save(ctx, KeySessionToken, token); err != nil {
		// The session itself is persisted; only the client slot is missing.
		s.log.Warn("session token slot not stored", slog.String("user_id", userID))
	}

	return &session, nil
}

// LookupSession returns the user for token or ErrSessionExpired when the
// token is unknown or past its expiry.
func (s *Store) LookupSession(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrSessionExpired
	}

	sessions, err := s.loadSessions(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	for _, session := range sessions {
		if session.Token != token {
			continue
		}
		if session.Expired(now) {
			return nil, ErrSessionExpired
		}
		user := s.GetUserByID(ctx, session.UserID)
		if user == nil {
			return nil, ErrUserNotFound
		}
		return user, nil
	}
	return nil, ErrSessionExpired
}

// ValidateSession returns the user for a live session, or nil.
func (s *Store) ValidateSession(ctx context.Context, token string) *models.User {
	user, err := s.LookupSession(ctx, token)
	if err != nil {
		return nil
	}
	return user
}

// DestroySession removes the session for token and clears the client slot.
// Destroying an unknown token is a no-op.
func (s *Store) DestroySession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.loadSessions(ctx)
	if err != nil {
		return err
	}

	kept := sessions[:0]
	for _, session := range sessions {
		if session.Token != token {
			kept = append(kept, session)
		}
	}
	if err := s.saveSessions(ctx, kept); err != nil {
		return err
	}

	if current := s.currentToken(ctx); current == token {
		if err := s.medium.Delete(ctx, KeySessionToken); err != nil {
			s.log.Error("session token slot not cleared", slog.Any("error", err))
		}
	}
	return nil
}

// CurrentToken returns the token stored for the local client, or "".
func (s *Store) CurrentToken(ctx context.Context) string {
	return s.currentToken(ctx)
}

// ClearCurrentToken discards the local client token.
func (s *Store) ClearCurrentToken(ctx context.Context) {
	if !s.initialized.Load() {
		return
	}
	if err := s.medium.Delete(ctx, KeySessionToken); err != nil {
		s.log.Error("session token slot not cleared", slog.Any("error", err))
	}
}

func (s *Store) currentToken(ctx context.Context) string {
	if !s.initialized.Load() {
		return ""
	}

	data, err := s.medium.Get(ctx, KeySessionToken)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Error("session token slot read failed", slog.Any("error", err))
		}
		return ""
	}

	var token string
	if err := json.Unmarshal(data, &token); err != nil {
		return ""
	}
	return token
}

// PurgeExpiredSessions drops every expired session and returns how many were removed.
func (s *Store) PurgeExpiredSessions(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.loadSessions(ctx)
	if err != nil {
		return 0, err
	}

	now := s.clock()
	kept := sessions[:0]
	for _, session := range sessions {
		if !session.Expired(now) {
			kept = append(kept, session)
		}
	}
	removed := len(sessions) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	if err := s.saveSessions(ctx, kept); err != nil {
		return 0, err
	}
	return removed, nil
}
