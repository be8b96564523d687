package dto

import (
	"github.com/shopspring/decimal"

	"github.com/hongminglow/red-syndicate/internal/sportsbook"
)

type SlipAddRequest struct {
	MatchID  string `json:"match_id" validate:"required"`
	MarketID string `json:"market_id" validate:"required"`
	OptionID string `json:"option_id" validate:"required"`
}

type SlipStakeRequest struct {
	Stake decimal.Decimal `json:"stake"`
}

type SlipResponse struct {
	Entries      []sportsbook.Entry `json:"entries"`
	TotalStake   decimal.Decimal    `json:"total_stake"`
	PotentialWin decimal.Decimal    `json:"potential_win"`
}
