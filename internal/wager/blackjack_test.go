package wager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/red-syndicate/internal/models"
)

func TestBlackjack_StandWinEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1000)
	f.script(deal("10", "9", "10", "7")...)

	round, err := f.engine.StartBlackjack(ctx, f.userID, dec("100"))
	require.NoError(t, err)
	assert.Equal(t, PhasePlaying, round.Phase)
	assert.True(t, round.Dealer[1].Hidden)
	assert.Equal(t, 10, round.DealerValue)
	assert.Equal(t, 19, round.PlayerValue)

	requireBalance(t, f, "900")
	assert.Empty(t, f.user(t).Transactions, "the reservation writes no transaction")

	round, err = f.engine.Stand(ctx, f.userID, round.ID)
	require.NoError(t, err)
	assert.Equal(t, PhaseFinished, round.Phase)
	assert.False(t, round.Dealer[1].Hidden)
	assert.Len(t, round.Dealer, 2)
	require.NotNil(t, round.Outcome)
	assert.True(t, dec("2").Equal(round.Outcome.Multiplier))

	requireBalance(t, f, "1100")
	txs := f.user(t).Transactions
	require.Len(t, txs, 1)
	assert.Equal(t, models.TransactionWin, txs[0].Type)
	assert.True(t, dec("100").Equal(txs[0].Amount))
	assert.Equal(t, testSeed.Hash(), txs[0].Hash)
	assert.Equal(t, []string{"blackjack:win"}, f.recorder.entries)
}

func TestBlackjack_NaturalFinishesOnDeal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1000)
	f.script(deal("A", "K", "9", "9")...)

	round, err := f.engine.StartBlackjack(ctx, f.userID, dec("100"))
	require.NoError(t, err)
	assert.Equal(t, PhaseFinished, round.Phase)
	assert.False(t, round.CanHit)
	assert.True(t, dec("2.5").Equal(round.Outcome.Multiplier))

	requireBalance(t, f, "1150")

	_, err = f.engine.Hit(ctx, f.userID, round.ID)
	assert.ErrorIs(t, err, ErrRoundFinished)
}

func TestBlackjack_HitOutcomes(t *testing.T) {
	tests := []struct {
		name        string
		draws       []string
		wantBalance string
		wantType    models.TransactionType
		wantAmount  string
	}{
		{
			name:        "bust loses stake",
			draws:       []string{"10", "6", "10", "7", "K"},
			wantBalance: "900",
			wantType:    models.TransactionBet,
			wantAmount:  "100",
		},
		{
			name:        "reaching 21 finishes without dealer draw",
			draws:       []string{"5", "6", "10", "9", "K"},
			wantBalance: "1100",
			wantType:    models.TransactionWin,
			wantAmount:  "100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, 1000)
			f.script(deal(tt.draws...)...)

			round, err := f.engine.StartBlackjack(ctx, f.userID, dec("100"))
			require.NoError(t, err)

			round, err = f.engine.Hit(ctx, f.userID, round.ID)
			require.NoError(t, err)
			assert.Equal(t, PhaseFinished, round.Phase)
			assert.Len(t, round.Dealer, 2)

			requireBalance(t, f, tt.wantBalance)
			txs := f.user(t).Transactions
			require.Len(t, txs, 1)
			assert.Equal(t, tt.wantType, txs[0].Type)
			assert.True(t, dec(tt.wantAmount).Equal(txs[0].Amount))
		})
	}
}

func TestBlackjack_StandOutcomes(t *testing.T) {
	tests := []struct {
		name        string
		draws       []string
		wantBalance string
		wantDealer  int
	}{
		{name: "push returns stake", draws: []string{"10", "8", "10", "8"}, wantBalance: "1000", wantDealer: 18},
		{name: "dealer draws to 17", draws: []string{"10", "8", "10", "6", "5"}, wantBalance: "900", wantDealer: 21},
		{name: "dealer busts", draws: []string{"10", "2", "10", "6", "K"}, wantBalance: "1100", wantDealer: 26},
		{name: "dealer higher", draws: []string{"10", "7", "10", "9"}, wantBalance: "900", wantDealer: 19},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, 1000)
			f.script(deal(tt.draws...)...)

			round, err := f.engine.StartBlackjack(ctx, f.userID, dec("100"))
			require.NoError(t, err)
			round, err = f.engine.Stand(ctx, f.userID, round.ID)
			require.NoError(t, err)

			assert.Equal(t, tt.wantDealer, round.DealerValue)
			requireBalance(t, f, tt.wantBalance)
			assert.Len(t, f.user(t).Transactions, 1)
		})
	}
}

func TestBlackjack_PushWritesZeroBet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1000)
	f.script(deal("10", "8", "10", "8")...)

	round, err := f.engine.StartBlackjack(ctx, f.userID, dec("50"))
	require.NoError(t, err)
	_, err = f.engine.Stand(ctx, f.userID, round.ID)
	require.NoError(t, err)

	txs := f.user(t).Transactions
	require.Len(t, txs, 1)
	assert.Equal(t, models.TransactionBet, txs[0].Type)
	assert.True(t, txs[0].Amount.IsZero())
	assert.Equal(t, []string{"blackjack:push"}, f.recorder.entries)
}

func TestBlackjack_InvalidStake(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100)

	for _, stake := range []string{"0", "-5", "100.01"} {
		_, err := f.engine.StartBlackjack(ctx, f.userID, dec(stake))
		assert.ErrorIs(t, err, ErrInvalidStake, stake)
	}

	requireBalance(t, f, "100")
	assert.Empty(t, f.user(t).Transactions)
}

func TestBlackjack_RoundsAreScopedToUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1000)
	f.script(deal("10", "6", "10", "7")...)

	round, err := f.engine.StartBlackjack(ctx, f.userID, dec("10"))
	require.NoError(t, err)

	_, err = f.engine.Hit(ctx, "someone-else", round.ID)
	assert.ErrorIs(t, err, ErrRoundNotFound)
	_, err = f.engine.Stand(ctx, f.userID, "missing")
	assert.ErrorIs(t, err, ErrRoundNotFound)

	view, err := f.engine.BlackjackRound(f.userID, round.ID)
	require.NoError(t, err)
	assert.Equal(t, round.ID, view.ID)
}

func TestBlackjack_PurgeFinished(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1000)
	f.script(deal("A", "K", "9", "9")...)
	f.script(deal("10", "6", "10", "7")...)

	finished, err := f.engine.StartBlackjack(ctx, f.userID, dec("10"))
	require.NoError(t, err)
	playing, err := f.engine.StartBlackjack(ctx, f.userID, dec("10"))
	require.NoError(t, err)

	assert.Equal(t, 1, f.engine.PurgeFinishedBlackjack())

	_, err = f.engine.BlackjackRound(f.userID, finished.ID)
	assert.ErrorIs(t, err, ErrRoundNotFound)
	_, err = f.engine.BlackjackRound(f.userID, playing.ID)
	assert.NoError(t, err)
}

func TestBlackjack_ExpireIdleStandsAbandonedRound(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, 1000, WithClock(func() time.Time { return now }))
	f.script(deal("10", "6", "10", "7")...)

	round, err := f.engine.StartBlackjack(ctx, f.userID, dec("100"))
	require.NoError(t, err)
	requireBalance(t, f, "900")

	now = now.Add(5 * time.Minute)
	assert.Zero(t, f.engine.ExpireIdleBlackjack(ctx, 10*time.Minute), "a recent round is left alone")

	now = now.Add(10 * time.Minute)
	assert.Equal(t, 1, f.engine.ExpireIdleBlackjack(ctx, 10*time.Minute))

	requireBalance(t, f, "900")
	txs := f.user(t).Transactions
	require.Len(t, txs, 1)
	assert.Equal(t, models.TransactionBet, txs[0].Type)
	assert.True(t, dec("100").Equal(txs[0].Amount))

	view, err := f.engine.BlackjackRound(f.userID, round.ID)
	require.NoError(t, err)
	assert.Equal(t, PhaseFinished, view.Phase)
	assert.Equal(t, "Dealer wins!", view.Result)

	assert.Zero(t, f.engine.ExpireIdleBlackjack(ctx, 10*time.Minute))
	assert.Equal(t, 1, f.engine.PurgeFinishedBlackjack())
}

func TestBlackjack_HitResetsIdleClock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, 1000, WithClock(func() time.Time { return now }))
	f.script(deal("2", "3", "10", "7", "4")...)

	round, err := f.engine.StartBlackjack(ctx, f.userID, dec("50"))
	require.NoError(t, err)

	now = now.Add(9 * time.Minute)
	_, err = f.engine.Hit(ctx, f.userID, round.ID)
	require.NoError(t, err)

	now = now.Add(9 * time.Minute)
	assert.Zero(t, f.engine.ExpireIdleBlackjack(ctx, 10*time.Minute))

	view, err := f.engine.BlackjackRound(f.userID, round.ID)
	require.NoError(t, err)
	assert.Equal(t, PhasePlaying, view.Phase)
	assert.Equal(t, 9, view.PlayerValue)
}

func TestBlackjackMultiplierOrder(t *testing.T) {
	tests := []struct {
		name   string
		player []Card
		dealer []Card
		want   string
	}{
		{name: "player bust beats dealer bust", player: hand("10", "6", "K"), dealer: hand("10", "6", "Q"), want: "0"},
		{name: "dealer bust", player: hand("10", "2"), dealer: hand("10", "6", "Q"), want: "2"},
		{name: "natural beats dealer 21", player: hand("A", "K"), dealer: hand("7", "7", "7"), want: "2.5"},
		{name: "three card 21 ties dealer 21", player: hand("7", "7", "7"), dealer: hand("A", "K"), want: "1"},
		{name: "higher total", player: hand("10", "9"), dealer: hand("10", "8"), want: "2"},
		{name: "lower total", player: hand("10", "7"), dealer: hand("10", "8"), want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := BlackjackMultiplier(tt.player, tt.dealer)
			assert.True(t, dec(tt.want).Equal(got), "got %s", got)
		})
	}
}
