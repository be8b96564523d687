package wager

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Side is what a baccarat bet backs.
type Side string

const (
	SidePlayer Side = "player"
	SideBanker Side = "banker"
	SideTie    Side = "tie"
)

var (
	playerMultiplier = decimal.NewFromInt(2)
	bankerMultiplier = decimal.RequireFromString("1.95")
	tieMultiplier    = decimal.NewFromInt(8)
)

const baccaratDrawBelow = 6

// BaccaratOutcome is a settled baccarat hand.
type BaccaratOutcome struct {
	Outcome
	Side        Side   `json:"side"`
	Winner      Side   `json:"winner"`
	Player      []Card `json:"player"`
	Banker      []Card `json:"banker"`
	PlayerValue int    `json:"player_value"`
	BankerValue int    `json:"banker_value"`
}

// BaccaratMultiplier returns the payout multiplier of side given the winner.
func BaccaratMultiplier(side, winner Side) decimal.Decimal {
	switch {
	case winner == SideTie && side == SideTie:
		return tieMultiplier
	case winner == SideTie:
		return decimal.NewFromInt(1)
	case side == winner && side == SidePlayer:
		return playerMultiplier
	case side == winner && side == SideBanker:
		return bankerMultiplier
	default:
		return decimal.Zero
	}
}

// PlayBaccarat deals two cards to each hand, draws a third to any hand
// below 6 and settles the bet on side.
func (e *Engine) PlayBaccarat(ctx context.Context, round Round, stake decimal.Decimal, side Side) (*BaccaratOutcome, error) {
	switch side {
	case SidePlayer, SideBanker, SideTie:
	default:
		return nil, fmt.Errorf("%w: unknown side %q", ErrInvalidBet, side)
	}
	if err := e.checkStake(ctx, round.UserID, stake); err != nil {
		return nil, err
	}

	run, err := e.newRound(round.UserID, round.ID)
	if err != nil {
		return nil, err
	}

	player := []Card{drawCard(run.src), drawCard(run.src)}
	banker := []Card{drawCard(run.src), drawCard(run.src)}
	if BaccaratValue(player) < baccaratDrawBelow {
		player = append(player, drawCard(run.src))
	}
	if BaccaratValue(banker) < baccaratDrawBelow {
		banker = append(banker, drawCard(run.src))
	}

	pv, bv := BaccaratValue(player), BaccaratValue(banker)
	winner := SideTie
	result := "Tie!"
	switch {
	case pv > bv:
		winner, result = SidePlayer, "Player wins!"
	case bv > pv:
		winner, result = SideBanker, "Banker wins!"
	}

	payout := stake.Mul(BaccaratMultiplier(side, winner))
	out, err := e.settle(ctx, run, round.UserID, GameBaccarat, stake, payout, result)
	if err != nil {
		return nil, err
	}
	return &BaccaratOutcome{
		Outcome:     *out,
		Side:        side,
		Winner:      winner,
		Player:      player,
		Banker:      banker,
		PlayerValue: pv,
		BankerValue: bv,
	}, nil
}
