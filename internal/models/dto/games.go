package dto

import (
	"github.com/shopspring/decimal"

	"github.com/hongminglow/red-syndicate/internal/wager"
)

// StakeRequest starts a single-stake round. RoundID lets the client cancel
// an animated round while it spins.
type StakeRequest struct {
	Stake   decimal.Decimal `json:"stake"`
	RoundID string          `json:"round_id,omitempty" validate:"omitempty,uuid"`
}

type RouletteRequest struct {
	Bets    []wager.RouletteBet `json:"bets" validate:"required,min=1,dive"`
	RoundID string              `json:"round_id,omitempty" validate:"omitempty,uuid"`
}

type BaccaratRequest struct {
	Stake decimal.Decimal `json:"stake"`
	Side  wager.Side      `json:"side" validate:"required,oneof=player banker tie"`
}
