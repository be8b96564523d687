package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/red-syndicate/internal/models"
)

func TestStore_CreateAndValidateSession(t *testing.T) {
	s, _, clock := newTestStore(t)
	ctx := context.Background()
	u := mustCreate(t, s, "switch", "switch@matrix.io", 0)

	session, err := s.CreateSession(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, clock.Now().Add(DefaultSessionTTL), session.ExpiresAt)
	assert.Equal(t, session.Token, s.CurrentToken(ctx))

	got := s.ValidateSession(ctx, session.Token)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	assert.Nil(t, s.ValidateSession(ctx, "unknown"))

	_, err = s.CreateSession(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStore_SessionExpiresWithoutDestroy(t *testing.T) {
	s, _, clock := newTestStore(t, WithSessionTTL(time.Hour))
	ctx := context.Background()
	u := mustCreate(t, s, "apoc", "apoc@matrix.io", 0)

	session, err := s.CreateSession(ctx, u.ID)
	require.NoError(t, err)

	clock.Advance(59 * time.Minute)
	assert.NotNil(t, s.ValidateSession(ctx, session.Token))

	clock.Advance(time.Minute)
	assert.Nil(t, s.ValidateSession(ctx, session.Token))

	_, err = s.LookupSession(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestStore_DestroySessionIsIdempotent(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	u := mustCreate(t, s, "mouse", "mouse@matrix.io", 0)

	first, err := s.CreateSession(ctx, u.ID)
	require.NoError(t, err)
	second, err := s.CreateSession(ctx, u.ID)
	require.NoError(t, err)

	require.NoError(t, s.DestroySession(ctx, second.Token))
	require.NoError(t, s.DestroySession(ctx, second.Token))

	assert.Nil(t, s.ValidateSession(ctx, second.Token))
	assert.NotNil(t, s.ValidateSession(ctx, first.Token), "other sessions survive")
	assert.Empty(t, s.CurrentToken(ctx))
}

func TestStore_PurgeExpiredSessions(t *testing.T) {
	s, _, clock := newTestStore(t, WithSessionTTL(time.Hour))
	ctx := context.Background()
	u := mustCreate(t, s, "cypher", "cypher@matrix.io", 0)

	_, err := s.CreateSession(ctx, u.ID)
	require.NoError(t, err)
	clock.Advance(2 * time.Hour)
	live, err := s.CreateSession(ctx, u.ID)
	require.NoError(t, err)

	removed, err := s.PurgeExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	sessions, err := s.loadSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, live.Token, sessions[0].Token)
}

func TestStore_CustomTokenGenerator(t *testing.T) {
	s, _, _ := newTestStore(t, WithTokenGenerator(func(u models.User, _ time.Time) (string, error) {
		return "tok-" + u.Username, nil
	}))
	u := mustCreate(t, s, "niobe", "niobe@matrix.io", 0)

	session, err := s.CreateSession(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok-niobe", session.Token)
}
