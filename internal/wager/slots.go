package wager

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
)

// SlotSymbols are the reel symbols in draw order.
var SlotSymbols = [...]string{"🍒", "🍋", "🍊", "🍇", "⭐", "💎", "🔥", "💰"}

// slotPaytable maps a three-of-a-kind symbol to its multiplier.
var slotPaytable = map[string]int64{
	"💰": 50,
	"💎": 25,
	"🔥": 15,
	"⭐": 10,
	"🍇": 8,
	"🍊": 6,
	"🍋": 4,
	"🍒": 3,
}

const slotPairMultiplier = 2

// SlotsOutcome is a settled slots spin.
type SlotsOutcome struct {
	Outcome
	Reels [3]string `json:"reels"`
}

// SlotsMultiplier returns the payout multiplier of a final reel triple.
func SlotsMultiplier(reels [3]string) int64 {
	if reels[0] == reels[1] && reels[1] == reels[2] {
		return slotPaytable[reels[0]]
	}
	if reels[0] == reels[1] || reels[1] == reels[2] || reels[0] == reels[2] {
		return slotPairMultiplier
	}
	return 0
}

// SpinSlots animates the reels and settles three independently drawn symbols.
func (e *Engine) SpinSlots(ctx context.Context, round Round, stake decimal.Decimal) (*SlotsOutcome, error) {
	if err := e.checkStake(ctx, round.UserID, stake); err != nil {
		return nil, err
	}

	run, err := e.newRound(round.UserID, round.ID)
	if err != nil {
		return nil, err
	}

	anim := e.animations[GameSlots]
	preview := func(tick int) Frame {
		return Frame{Tick: tick, Reels: previewReels(), At: time.Now()}
	}
	if err := e.animate(ctx, run, GameSlots, anim.Frames, preview, round.OnFrame); err != nil {
		return nil, err
	}

	var reels [3]string
	for i := range reels {
		reels[i] = SlotSymbols[run.src.IntN(len(SlotSymbols))]
	}

	mult := SlotsMultiplier(reels)
	var result string
	switch {
	case mult > slotPairMultiplier:
		result = fmt.Sprintf("JACKPOT! Three %ss!", reels[0])
	case mult == slotPairMultiplier:
		result = "Two of a kind!"
	default:
		result = "No match. Try again!"
	}

	payout := stake.Mul(decimal.NewFromInt(mult))
	out, err := e.settle(ctx, run, round.UserID, GameSlots, stake, payout, result)
	if err != nil {
		return nil, err
	}
	return &SlotsOutcome{Outcome: *out, Reels: reels}, nil
}

// previewReels are cosmetic and do not consume the round's source.
func previewReels() []string {
	return []string{
		SlotSymbols[rand.IntN(len(SlotSymbols))],
		SlotSymbols[rand.IntN(len(SlotSymbols))],
		SlotSymbols[rand.IntN(len(SlotSymbols))],
	}
}
