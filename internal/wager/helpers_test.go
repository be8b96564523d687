package wager

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/red-syndicate/internal/ledger"
	"github.com/hongminglow/red-syndicate/internal/models"
	"github.com/hongminglow/red-syndicate/internal/storage/memory"
)

// scriptedSource replays fixed draws. IntN values are reduced mod n.
type scriptedSource struct {
	mu     sync.Mutex
	ints   []int
	floats []float64
}

func (s *scriptedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func (s *scriptedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

var rankIndex = map[string]int{
	"A": 0, "2": 1, "3": 2, "4": 3, "5": 4, "6": 5, "7": 6,
	"8": 7, "9": 8, "10": 9, "J": 10, "Q": 11, "K": 12,
}

// deal turns ranks into suit/rank draw pairs, all spades.
func deal(ranks ...string) []int {
	out := make([]int, 0, 2*len(ranks))
	for _, r := range ranks {
		out = append(out, 0, rankIndex[r])
	}
	return out
}

func hand(ranks ...string) []Card {
	out := make([]Card, len(ranks))
	for i, r := range ranks {
		out[i] = Card{Suit: "♠", Rank: r, Color: "black"}
	}
	return out
}

var testSeed = Seed{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []string
}

func (f *fakeRecorder) RecordWager(game, outcome string, _, _ decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, game+":"+outcome)
}

type fixture struct {
	store    *ledger.Store
	engine   *Engine
	src      *scriptedSource
	recorder *fakeRecorder
	userID   string
}

func newFixture(t *testing.T, balance int64, opts ...Option) *fixture {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := ledger.New(memory.New(), log)
	require.NoError(t, store.Init(context.Background()))

	user, err := store.CreateUser(context.Background(), ledger.NewUser{
		Username: "player",
		Email:    "player@casino.io",
		Balance:  decimal.NewFromInt(balance),
	})
	require.NoError(t, err)

	f := &fixture{store: store, src: &scriptedSource{}, recorder: &fakeRecorder{}, userID: user.ID}
	fast := Animation{Frames: 3, Interval: time.Microsecond}
	opts = append([]Option{
		WithSeedGenerator(func() (Seed, error) { return testSeed, nil }),
		WithSourceFactory(func(Seed) Source { return f.src }),
		WithAnimation(GameSlots, fast),
		WithAnimation(GameRoulette, fast),
		WithAnimation(GameWheel, fast),
		WithRecorder(f.recorder),
	}, opts...)
	f.engine = NewEngine(store, log, opts...)
	return f
}

func (f *fixture) script(ints ...int) {
	f.src.mu.Lock()
	defer f.src.mu.Unlock()
	f.src.ints = append(f.src.ints, ints...)
}

func (f *fixture) user(t *testing.T) *models.User {
	t.Helper()
	u := f.store.GetUserByID(context.Background(), f.userID)
	require.NotNil(t, u)
	return u
}

func (f *fixture) round() Round {
	return Round{UserID: f.userID}
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func requireBalance(t *testing.T, f *fixture, want string) {
	t.Helper()
	got := f.user(t).Balance
	require.Truef(t, dec(want).Equal(got), "balance = %s, want %s", got, want)
}
