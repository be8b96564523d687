package bonus

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/red-syndicate/internal/ledger"
	"github.com/hongminglow/red-syndicate/internal/models"
	"github.com/hongminglow/red-syndicate/internal/storage/memory"
)

// 2026-01-07 is a Wednesday.
var weekday = time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, role string, now time.Time) (*Service, *ledger.Store, string) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := ledger.New(memory.New(), log)
	require.NoError(t, store.Init(context.Background()))
	user, err := store.CreateUser(context.Background(), ledger.NewUser{
		Username: "lucky",
		Email:    "lucky@casino.io",
		Role:     role,
		Balance:  decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	return NewService(store, log, func() time.Time { return now }), store, user.ID
}

func TestClaimWelcomeCreditsOnce(t *testing.T) {
	ctx := context.Background()
	svc, store, userID := newTestService(t, models.NormalUser, weekday)

	user, err := svc.Claim(ctx, userID, "welcome_100")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1100).Equal(user.Balance))
	assert.Equal(t, []string{"welcome_100"}, user.ClaimedBonuses)
	require.Len(t, user.Transactions, 1)
	assert.Equal(t, models.TransactionBonus, user.Transactions[0].Type)

	_, err = svc.Claim(ctx, userID, "welcome_100")
	assert.ErrorIs(t, err, ErrAlreadyClaimed)

	stored := store.GetUserByID(ctx, userID)
	assert.True(t, decimal.NewFromInt(1100).Equal(stored.Balance))
}

func TestClaimNonCashBonusOnlyMarks(t *testing.T) {
	ctx := context.Background()
	svc, _, userID := newTestService(t, models.NormalUser, weekday)

	user, err := svc.Claim(ctx, userID, "free_spins_50")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(user.Balance))
	assert.Empty(t, user.Transactions)
	assert.True(t, user.HasClaimed("free_spins_50"))
}

func TestClaimEligibility(t *testing.T) {
	ctx := context.Background()

	svc, _, userID := newTestService(t, models.NormalUser, weekday)
	_, err := svc.Claim(ctx, userID, "vip_reload")
	assert.ErrorIs(t, err, ErrNotEligible)
	_, err = svc.Claim(ctx, userID, "weekend_boost")
	assert.ErrorIs(t, err, ErrNotEligible)
	_, err = svc.Claim(ctx, userID, "jackpot_9000")
	assert.ErrorIs(t, err, ErrUnknownBonus)

	saturday := weekday.AddDate(0, 0, 3)
	vip, _, vipID := newTestService(t, models.VIPUser, saturday)
	user, err := vip.Claim(ctx, vipID, "vip_reload")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(600).Equal(user.Balance))
	_, err = vip.Claim(ctx, vipID, "weekend_boost")
	assert.NoError(t, err)
}

func TestOffers(t *testing.T) {
	ctx := context.Background()
	svc, _, userID := newTestService(t, models.NormalUser, weekday)

	_, err := svc.Claim(ctx, userID, "daily_cashback")
	require.NoError(t, err)

	offers, err := svc.Offers(ctx, userID)
	require.NoError(t, err)
	require.Len(t, offers, 5)

	byID := map[string]Offer{}
	for _, o := range offers {
		byID[o.ID] = o
	}
	assert.True(t, byID["daily_cashback"].Claimed)
	assert.False(t, byID["welcome_100"].Claimed)
	assert.False(t, byID["vip_reload"].Eligible)
	assert.True(t, byID["welcome_100"].Eligible)

	_, err = svc.Offers(ctx, "missing")
	assert.ErrorIs(t, err, ledger.ErrUserNotFound)
}
