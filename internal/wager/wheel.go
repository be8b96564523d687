package wager

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// WheelSegments are the wheel's multipliers in clockwise order.
var WheelSegments = [...]int64{1, 2, 5, 10, 20, 50}

const (
	wheelBaseRotation = 1800.0
	wheelRotationInc  = 10.0
)

// WheelOutcome is a settled wheel spin.
type WheelOutcome struct {
	Outcome
	Rotation float64 `json:"rotation"`
	Segment  int     `json:"segment"`
}

// WheelSegment returns the segment index the pointer rests on after the
// wheel turned rotation degrees.
func WheelSegment(rotation float64) int {
	n := len(WheelSegments)
	segmentAngle := 360.0 / float64(n)
	normalized := math.Mod(math.Mod(rotation, 360)+360, 360)
	return int(math.Floor((360-normalized)/segmentAngle)) % n
}

// SpinWheel turns the wheel 1800 + U[0,360) degrees and pays the segment's multiplier.
func (e *Engine) SpinWheel(ctx context.Context, round Round, stake decimal.Decimal) (*WheelOutcome, error) {
	if err := e.checkStake(ctx, round.UserID, stake); err != nil {
		return nil, err
	}

	run, err := e.newRound(round.UserID, round.ID)
	if err != nil {
		return nil, err
	}

	rotation := wheelBaseRotation + run.src.Float64()*360
	frames := int(math.Ceil(rotation / wheelRotationInc))
	turn := func(tick int) Frame {
		return Frame{Tick: tick, Rotation: math.Min(float64(tick)*wheelRotationInc, rotation), At: time.Now()}
	}
	if err := e.animate(ctx, run, GameWheel, frames, turn, round.OnFrame); err != nil {
		return nil, err
	}

	segment := WheelSegment(rotation)
	mult := WheelSegments[segment]
	payout := stake.Mul(decimal.NewFromInt(mult))

	result := fmt.Sprintf("%dx Multiplier!", mult)
	out, err := e.settle(ctx, run, round.UserID, GameWheel, stake, payout, result)
	if err != nil {
		return nil, err
	}
	return &WheelOutcome{Outcome: *out, Rotation: rotation, Segment: segment}, nil
}
