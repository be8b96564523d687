package sportsbook

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hongminglow/red-syndicate/internal/ledger"
	"github.com/hongminglow/red-syndicate/internal/models"
	"github.com/hongminglow/red-syndicate/internal/state"
)

// DefaultWinProbability is the chance each placed bet wins.
const DefaultWinProbability = 0.4

// Ledger is the subset of the ledger store the sportsbook needs.
type Ledger interface {
	Settle(ctx context.Context, userID string, st ledger.Settlement) (*models.User, error)
}

// PlacedBet is a staked slip entry accepted by the book.
type PlacedBet struct {
	Entry
	BetID    string    `json:"bet_id"`
	PlacedAt time.Time `json:"placed_at"`
}

// Placement is the result of Place.
type Placement struct {
	Bets       []PlacedBet     `json:"bets"`
	TotalStake decimal.Decimal `json:"total_stake"`
	Balance    decimal.Decimal `json:"balance"`
}

// Resolution is the result of Resolve.
type Resolution struct {
	Won      []PlacedBet     `json:"won"`
	Lost     []PlacedBet     `json:"lost"`
	Winnings decimal.Decimal `json:"winnings"`
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithSource overrides the randomness used to settle bets.
func WithSource(src Source) ServiceOption {
	return func(s *Service) {
		if src != nil {
			s.src = src
		}
	}
}

// WithAutoResolve resolves each placement after delay in the background. A
// zero delay resolves on the next tick.
func WithAutoResolve(delay time.Duration) ServiceOption {
	return func(s *Service) {
		s.autoResolve = true
		s.resolveDelay = delay
	}
}

// Service binds the book, per-user slips and the ledger.
type Service struct {
	book   *Book
	ledger Ledger
	log    *slog.Logger
	src    Source

	autoResolve  bool
	resolveDelay time.Duration

	mu    sync.Mutex
	slips map[string]*Slip

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService constructs a Service.
func NewService(book *Book, l Ledger, log *slog.Logger, opts ...ServiceOption) *Service {
	if log == nil {
		log = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		book:   book,
		ledger: l,
		log:    log,
		src:    globalSource{},
		slips:  make(map[string]*Slip),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Book returns the match catalog.
func (s *Service) Book() *Book {
	return s.book
}

// Slip returns the user's slip, creating it on first use.
func (s *Service) Slip(userID string) *Slip {
	s.mu.Lock()
	defer s.mu.Unlock()

	slip, ok := s.slips[userID]
	if !ok {
		slip = &Slip{}
		s.slips[userID] = slip
	}
	return slip
}

// Add puts the current price of a selection on the user's slip.
func (s *Service) Add(userID, matchID, marketID, optionID string) (Entry, error) {
	match, market, option, err := s.book.Selection(matchID, marketID, optionID)
	if err != nil {
		return Entry{}, err
	}
	return s.Slip(userID).Add(match, market, option)
}

// Place debits the total stake of every staked entry in one ledger update
// and clears the slip.
func (s *Service) Place(ctx context.Context, userID string) (*Placement, error) {
	slip := s.Slip(userID)
	staked, all := slip.take()
	if len(staked) == 0 {
		return nil, ErrEmptySlip
	}

	total := decimal.Zero
	for _, e := range staked {
		total = total.Add(e.Stake)
	}

	user, err := s.ledger.Settle(ctx, userID, ledger.Settlement{
		Debit: total,
		Transaction: &models.TransactionInput{
			Type:        models.TransactionBet,
			Amount:      total,
			Currency:    "USD",
			Status:      models.StatusCompleted,
			Description: fmt.Sprintf("Sports bet slip: %d bet(s)", len(staked)),
			Hash:        uuid.NewString(),
		},
	})
	if err != nil {
		slip.restore(all)
		return nil, err
	}

	now := time.Now().UTC()
	placed := make([]PlacedBet, len(staked))
	for i, e := range staked {
		placed[i] = PlacedBet{Entry: e, BetID: uuid.NewString(), PlacedAt: now}
	}

	s.log.Info("sports bets placed",
		slog.String("user_id", userID),
		slog.Int("bets", len(placed)),
		slog.String("total_stake", total.String()),
	)

	if s.autoResolve {
		s.scheduleResolve(userID, placed)
	}

	return &Placement{Bets: placed, TotalStake: total, Balance: user.Balance}, nil
}

// Resolve settles placed bets: each wins with DefaultWinProbability and
// winners are credited their potential win in one ledger update.
func (s *Service) Resolve(ctx context.Context, userID string, placed []PlacedBet) (*Resolution, error) {
	res := &Resolution{Winnings: decimal.Zero}
	for _, bet := range placed {
		if s.src.Float64() < DefaultWinProbability {
			res.Won = append(res.Won, bet)
			res.Winnings = res.Winnings.Add(bet.PotentialWin)
		} else {
			res.Lost = append(res.Lost, bet)
		}
	}

	if !res.Winnings.IsPositive() {
		return res, nil
	}

	_, err := s.ledger.Settle(ctx, userID, ledger.Settlement{
		Credit: res.Winnings,
		Transaction: &models.TransactionInput{
			Type:        models.TransactionWin,
			Amount:      res.Winnings,
			Currency:    "USD",
			Status:      models.StatusCompleted,
			Description: fmt.Sprintf("Sports winnings: %d bet(s)", len(res.Won)),
			Hash:        uuid.NewString(),
		},
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("sports bets resolved",
		slog.String("user_id", userID),
		slog.Int("won", len(res.Won)),
		slog.String("winnings", res.Winnings.String()),
	)
	return res, nil
}

func (s *Service) scheduleResolve(userID string, placed []PlacedBet) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		delay := state.NewTicker(s.resolveDelay)
		if err := delay.Run(s.ctx, func(int) bool { return false }); err != nil {
			return
		}
		if _, err := s.Resolve(s.ctx, userID, placed); err != nil {
			s.log.Error("sports bets not resolved", slog.String("user_id", userID), slog.Any("error", err))
		}
	}()
}

// Close stops pending background resolutions and waits for them.
func (s *Service) Close() {
	s.cancel()
	s.wg.Wait()
}
