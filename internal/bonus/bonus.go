// Package bonus holds the promotional catalog and records claims on the
// user's ledger record.
package bonus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/red-syndicate/internal/ledger"
	"github.com/hongminglow/red-syndicate/internal/models"
)

var (
	ErrUnknownBonus   = errors.New("unknown bonus")
	ErrAlreadyClaimed = errors.New("bonus already claimed")
	ErrNotEligible    = errors.New("not eligible for bonus")
)

// Kind groups bonuses by how they are earned.
type Kind string

const (
	KindWelcome   Kind = "welcome"
	KindDeposit   Kind = "deposit"
	KindCashback  Kind = "cashback"
	KindFreeSpins Kind = "free_spins"
	KindVIP       Kind = "vip"
)

// Bonus is a catalog entry. Only bonuses denominated in USD move the balance.
type Bonus struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Kind         Kind            `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Requirements string          `json:"requirements"`

	eligible func(u models.User, now time.Time) bool
}

// Credits reports whether claiming adds Amount to the balance.
func (b Bonus) Credits() bool {
	return b.Currency == "USD"
}

var catalog = []Bonus{
	{
		ID: "welcome_100", Title: "Welcome Bonus", Kind: KindWelcome,
		Description:  "100% match on your first deposit up to $1000",
		Amount:       decimal.NewFromInt(1000),
		Currency:     "USD",
		Requirements: "Minimum deposit $50, 30x wagering",
	},
	{
		ID: "daily_cashback", Title: "Daily Cashback", Kind: KindCashback,
		Description:  "Get 10% cashback on all losses today",
		Amount:       decimal.NewFromInt(10),
		Currency:     "%",
		Requirements: "Minimum $100 in losses",
	},
	{
		ID: "free_spins_50", Title: "50 Free Spins", Kind: KindFreeSpins,
		Description:  "Free spins on Lightning Slots",
		Amount:       decimal.NewFromInt(50),
		Currency:     "spins",
		Requirements: "No wagering requirements",
	},
	{
		ID: "vip_reload", Title: "VIP Reload Bonus", Kind: KindVIP,
		Description:  "50% reload bonus for VIP members",
		Amount:       decimal.NewFromInt(500),
		Currency:     "USD",
		Requirements: "VIP Gold status required",
		eligible: func(u models.User, _ time.Time) bool {
			return models.IsVIP(u.Role)
		},
	},
	{
		ID: "weekend_boost", Title: "Weekend Boost", Kind: KindDeposit,
		Description:  "25% extra on all deposits this weekend",
		Amount:       decimal.NewFromInt(25),
		Currency:     "%",
		Requirements: "Weekend deposits only",
		eligible: func(_ models.User, now time.Time) bool {
			day := now.UTC().Weekday()
			return day == time.Saturday || day == time.Sunday
		},
	},
}

// Lookup returns the bonus with id.
func Lookup(id string) (Bonus, error) {
	for _, b := range catalog {
		if b.ID == id {
			return b, nil
		}
	}
	return Bonus{}, fmt.Errorf("%w: %q", ErrUnknownBonus, id)
}

// Offer is a bonus as seen by one user.
type Offer struct {
	Bonus
	Claimed  bool `json:"claimed"`
	Eligible bool `json:"eligible"`
}

// Ledger is the subset of the ledger store claims need.
type Ledger interface {
	GetUserByID(ctx context.Context, id string) *models.User
	Settle(ctx context.Context, userID string, st ledger.Settlement) (*models.User, error)
}

// Service lists and claims bonuses.
type Service struct {
	ledger Ledger
	log    *slog.Logger
	now    func() time.Time
}

// NewService constructs a Service. now may be nil.
func NewService(l Ledger, log *slog.Logger, now func() time.Time) *Service {
	if log == nil {
		log = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{ledger: l, log: log, now: now}
}

// Offers lists the catalog with the user's claim state.
func (s *Service) Offers(ctx context.Context, userID string) ([]Offer, error) {
	user := s.ledger.GetUserByID(ctx, userID)
	if user == nil {
		return nil, ledger.ErrUserNotFound
	}

	now := s.now()
	out := make([]Offer, len(catalog))
	for i, b := range catalog {
		out[i] = Offer{
			Bonus:    b,
			Claimed:  user.HasClaimed(b.ID),
			Eligible: b.eligible == nil || b.eligible(*user, now),
		}
	}
	return out, nil
}

// Claim marks bonusID claimed and, for USD bonuses, credits the balance with
// a bonus transaction. Both happen in one ledger update.
func (s *Service) Claim(ctx context.Context, userID, bonusID string) (*models.User, error) {
	b, err := Lookup(bonusID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	st := ledger.Settlement{
		Check: func(u *models.User) error {
			if u.HasClaimed(b.ID) {
				return ErrAlreadyClaimed
			}
			if b.eligible != nil && !b.eligible(*u, now) {
				return fmt.Errorf("%w: %s", ErrNotEligible, b.Requirements)
			}
			u.ClaimedBonuses = append(u.ClaimedBonuses, b.ID)
			return nil
		},
	}
	if b.Credits() {
		st.Credit = b.Amount
		st.Transaction = &models.TransactionInput{
			Type:        models.TransactionBonus,
			Amount:      b.Amount,
			Currency:    b.Currency,
			Status:      models.StatusCompleted,
			Description: b.Title,
		}
	}

	user, err := s.ledger.Settle(ctx, userID, st)
	if err != nil {
		return nil, err
	}

	s.log.Info("bonus claimed", slog.String("user_id", userID), slog.String("bonus_id", b.ID))
	return user, nil
}
