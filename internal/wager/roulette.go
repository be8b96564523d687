package wager

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BetKind is a roulette bet type.
type BetKind string

const (
	BetRed    BetKind = "red"
	BetBlack  BetKind = "black"
	BetEven   BetKind = "even"
	BetOdd    BetKind = "odd"
	BetNumber BetKind = "number"
)

const (
	evenMoneyMultiplier = 2
	straightMultiplier  = 35
	rouletteRotationInc = 20
)

var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true, 14: true, 16: true, 18: true,
	19: true, 21: true, 23: true, 25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

// RouletteBet is one chip on the table. Number is used only by BetNumber.
type RouletteBet struct {
	Kind   BetKind         `json:"kind"`
	Number int             `json:"number,omitempty"`
	Amount decimal.Decimal `json:"amount"`
}

// RouletteOutcome is a settled roulette spin.
type RouletteOutcome struct {
	Outcome
	Number int    `json:"number"`
	Color  string `json:"color"`
}

// IsRed reports whether n is a red pocket.
func IsRed(n int) bool { return redNumbers[n] }

// IsBlack reports whether n is a black pocket. Zero is neither red nor black.
func IsBlack(n int) bool { return n != 0 && !redNumbers[n] }

// PocketColor returns "green", "red" or "black".
func PocketColor(n int) string {
	switch {
	case n == 0:
		return "green"
	case IsRed(n):
		return "red"
	default:
		return "black"
	}
}

// Wins reports whether b wins when the ball lands on n.
func (b RouletteBet) Wins(n int) bool {
	switch b.Kind {
	case BetRed:
		return IsRed(n)
	case BetBlack:
		return IsBlack(n)
	case BetEven:
		return n != 0 && n%2 == 0
	case BetOdd:
		return n%2 == 1
	case BetNumber:
		return b.Number == n
	default:
		return false
	}
}

// Payout is what b returns when the ball lands on n, stake included.
func (b RouletteBet) Payout(n int) decimal.Decimal {
	if !b.Wins(n) {
		return decimal.Zero
	}
	if b.Kind == BetNumber {
		return b.Amount.Mul(decimal.NewFromInt(straightMultiplier))
	}
	return b.Amount.Mul(decimal.NewFromInt(evenMoneyMultiplier))
}

func (b RouletteBet) validate() error {
	if !b.Amount.IsPositive() {
		return fmt.Errorf("%w: %s bet amount must be positive", ErrInvalidBet, b.Kind)
	}
	switch b.Kind {
	case BetRed, BetBlack, BetEven, BetOdd:
		return nil
	case BetNumber:
		if b.Number < 0 || b.Number > 36 {
			return fmt.Errorf("%w: number %d out of range", ErrInvalidBet, b.Number)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidBet, b.Kind)
	}
}

// SpinRoulette debits the sum of bets and credits every winning bet.
func (e *Engine) SpinRoulette(ctx context.Context, round Round, bets []RouletteBet) (*RouletteOutcome, error) {
	if len(bets) == 0 {
		return nil, fmt.Errorf("%w: no bets placed", ErrInvalidStake)
	}
	total := decimal.Zero
	for _, b := range bets {
		if err := b.validate(); err != nil {
			return nil, err
		}
		total = total.Add(b.Amount)
	}
	if err := e.checkStake(ctx, round.UserID, total); err != nil {
		return nil, err
	}

	run, err := e.newRound(round.UserID, round.ID)
	if err != nil {
		return nil, err
	}

	anim := e.animations[GameRoulette]
	spin := func(tick int) Frame {
		return Frame{Tick: tick, Rotation: float64(tick * rouletteRotationInc), At: time.Now()}
	}
	if err := e.animate(ctx, run, GameRoulette, anim.Frames, spin, round.OnFrame); err != nil {
		return nil, err
	}

	number := run.src.IntN(37)
	payout := decimal.Zero
	for _, b := range bets {
		payout = payout.Add(b.Payout(number))
	}

	color := PocketColor(number)
	result := fmt.Sprintf("Number %d (%s)", number, color)
	out, err := e.settle(ctx, run, round.UserID, GameRoulette, total, payout, result)
	if err != nil {
		return nil, err
	}
	return &RouletteOutcome{Outcome: *out, Number: number, Color: color}, nil
}
