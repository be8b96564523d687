package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/red-syndicate/internal/models"
	"github.com/hongminglow/red-syndicate/internal/storage"
	"github.com/hongminglow/red-syndicate/internal/storage/memory"
)

func TestStore_RequiresInit(t *testing.T) {
	ctx := context.Background()
	s := New(memory.New(), testLogger())

	_, err := s.CreateUser(ctx, NewUser{Username: "a", Email: "a@x.io"})
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, err, storage.ErrStorage)
	assert.Nil(t, s.GetUserByID(ctx, "anything"))
	assert.Empty(t, s.CurrentToken(ctx))

	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Init(ctx))

	_, err = s.CreateUser(ctx, NewUser{Username: "a", Email: "a@x.io"})
	assert.NoError(t, err)
}

func TestStore_InitFailsOnBrokenMedium(t *testing.T) {
	medium := &flakyMedium{Medium: memory.New()}
	medium.setFailures(false, true)

	s := New(medium, testLogger())
	err := s.Init(context.Background())
	assert.ErrorIs(t, err, storage.ErrStorage)
}

func TestStore_CreateUserDefaults(t *testing.T) {
	s, _, clock := newTestStore(t)

	u := mustCreate(t, s, "neo", "neo@matrix.io", 1000)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, models.NormalUser, u.Role)
	assert.True(t, decimal.NewFromInt(1000).Equal(u.Balance))
	assert.Equal(t, models.DefaultSettings(), u.Settings)
	assert.Empty(t, u.Transactions)
	assert.False(t, u.IsVerified)
	assert.False(t, u.TwoFactorEnabled)
	assert.Equal(t, clock.Now(), u.CreatedAt)

	stored := s.GetUserByID(context.Background(), u.ID)
	require.NotNil(t, stored)
	assert.Equal(t, u.Username, stored.Username)
}

func TestStore_CreateUserDuplicate(t *testing.T) {
	s, _, _ := newTestStore(t)
	mustCreate(t, s, "neo", "neo@matrix.io", 1000)

	tests := []struct {
		name     string
		username string
		email    string
	}{
		{name: "same email", username: "other", email: "neo@matrix.io"},
		{name: "same username", username: "neo", email: "other@matrix.io"},
		{name: "email differs only in case", username: "other", email: "NEO@matrix.io"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateUser(context.Background(), NewUser{Username: tt.username, Email: tt.email})
			assert.ErrorIs(t, err, ErrDuplicateUser)
			assert.ErrorIs(t, err, storage.ErrAlreadyExists)
		})
	}

	users, err := s.loadUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestStore_AuthenticateUser(t *testing.T) {
	s, _, clock := newTestStore(t)
	ctx := context.Background()
	u := mustCreate(t, s, "trinity", "trinity@matrix.io", 10)

	assert.Nil(t, s.AuthenticateUser(ctx, "trinity@matrix.io", "wrong"))
	assert.Nil(t, s.AuthenticateUser(ctx, "nobody@matrix.io", "hunter22"))

	clock.Advance(90 * time.Second)
	got := s.AuthenticateUser(ctx, "trinity@matrix.io", "hunter22")
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, clock.Now(), got.LastLogin)
}

func TestStore_UpdateUser(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	u := mustCreate(t, s, "morpheus", "morpheus@matrix.io", 100)

	balance := decimal.NewFromInt(250)
	addr := "bc1qexample"
	settings := u.Settings
	settings.Theme = models.ThemeLight

	updated, err := s.UpdateUser(ctx, u.ID, UserUpdate{Balance: &balance, WalletAddress: &addr, Settings: &settings})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.True(t, balance.Equal(updated.Balance))
	assert.Equal(t, addr, *updated.WalletAddress)
	assert.Equal(t, models.ThemeLight, updated.Settings.Theme)
	assert.Equal(t, u.Email, updated.Email)

	missing, err := s.UpdateUser(ctx, "missing", UserUpdate{Balance: &balance})
	assert.NoError(t, err)
	assert.Nil(t, missing)

	negative := decimal.NewFromInt(-1)
	_, err = s.UpdateUser(ctx, u.ID, UserUpdate{Balance: &negative})
	assert.ErrorIs(t, err, ErrNegativeBalance)
}

func TestStore_AddTransaction(t *testing.T) {
	s, _, clock := newTestStore(t)
	ctx := context.Background()
	u := mustCreate(t, s, "tank", "tank@matrix.io", 0)

	_, err := s.AddTransaction(ctx, "missing", models.TransactionInput{Type: models.TransactionDeposit})
	assert.ErrorIs(t, err, ErrUserNotFound)

	tx, err := s.AddTransaction(ctx, u.ID, models.TransactionInput{
		Type:        models.TransactionDeposit,
		Amount:      decimal.NewFromInt(42),
		Description: "BTC Deposit",
		Hash:        "tx_abc",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, clock.Now(), tx.Timestamp)
	assert.Equal(t, models.StatusCompleted, tx.Status)
	assert.Equal(t, "USD", tx.Currency)

	_, err = s.AddTransaction(ctx, u.ID, models.TransactionInput{Type: models.TransactionBet, Amount: decimal.NewFromInt(1)})
	require.NoError(t, err)

	history, err := s.Transactions(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.TransactionBet, history[0].Type, "newest first")
	assert.Equal(t, tx.ID, history[1].ID)
}

func TestStore_ReadFailureDegradesToEmpty(t *testing.T) {
	s, medium, _ := newTestStore(t)
	ctx := context.Background()
	u := mustCreate(t, s, "dozer", "dozer@matrix.io", 5)

	medium.setFailures(true, false)

	assert.Nil(t, s.GetUserByID(ctx, u.ID))
	assert.Nil(t, s.AuthenticateUser(ctx, "dozer@matrix.io", "hunter22"))
	assert.Nil(t, s.ValidateSession(ctx, "tok"))

	_, err := s.CreateUser(ctx, NewUser{Username: "x", Email: "x@x.io"})
	assert.ErrorIs(t, err, storage.ErrStorage, "a failed read must not be followed by a blind overwrite")

	medium.setFailures(false, false)
	assert.NotNil(t, s.GetUserByID(ctx, u.ID))
}
