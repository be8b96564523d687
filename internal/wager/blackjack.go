package wager

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/red-syndicate/internal/ledger"
	"github.com/hongminglow/red-syndicate/internal/state"
)

// BlackjackPhase is the lifecycle of a blackjack round.
type BlackjackPhase string

const (
	PhasePlaying  BlackjackPhase = "playing"
	PhaseFinished BlackjackPhase = "finished"
)

const (
	blackjack       = 21
	dealerStandsAt  = 17
	naturalCards    = 2
	dealerHoleIndex = 1
)

var (
	multBust    = decimal.Zero
	multWin     = decimal.NewFromInt(2)
	multNatural = decimal.NewFromFloat(2.5)
	multPush    = decimal.NewFromInt(1)
)

// BlackjackRound is a stateful round. The stake is taken from the balance
// when the round is dealt; the payout is credited when it finishes.
type BlackjackRound struct {
	mu sync.Mutex

	id     string
	userID string
	stake  decimal.Decimal
	player []Card
	dealer []Card
	phase  BlackjackPhase
	result string
	out    *Outcome
	run    *roundRun
	// lastAction is when the round was dealt or last hit.
	lastAction time.Time
}

// BlackjackView is a snapshot of a round safe to show the player: the
// dealer's hole card stays hidden while the round is playing.
type BlackjackView struct {
	ID          string          `json:"id"`
	Stake       decimal.Decimal `json:"stake"`
	Player      []Card          `json:"player"`
	Dealer      []Card          `json:"dealer"`
	PlayerValue int             `json:"player_value"`
	DealerValue int             `json:"dealer_value"`
	Phase       BlackjackPhase  `json:"phase"`
	CanHit      bool            `json:"can_hit"`
	CanStand    bool            `json:"can_stand"`
	Result      string          `json:"result,omitempty"`
	Outcome     *Outcome        `json:"outcome,omitempty"`
}

func (r *BlackjackRound) view() BlackjackView {
	dealer := append([]Card(nil), r.dealer...)
	if r.phase == PhasePlaying && len(dealer) > dealerHoleIndex {
		dealer[dealerHoleIndex] = Card{Hidden: true}
	}

	pv := BlackjackValue(r.player)
	return BlackjackView{
		ID:          r.id,
		Stake:       r.stake,
		Player:      append([]Card(nil), r.player...),
		Dealer:      dealer,
		PlayerValue: pv,
		DealerValue: BlackjackValue(dealer),
		Phase:       r.phase,
		CanHit:      r.phase == PhasePlaying && pv < blackjack,
		CanStand:    r.phase == PhasePlaying,
		Result:      r.result,
		Outcome:     r.out,
	}
}

// BlackjackMultiplier settles finished hands: player bust, dealer bust,
// natural, higher total, push, otherwise loss.
func BlackjackMultiplier(player, dealer []Card) (decimal.Decimal, string) {
	pv, dv := BlackjackValue(player), BlackjackValue(dealer)
	switch {
	case pv > blackjack:
		return multBust, "Bust! You lose!"
	case dv > blackjack:
		return multWin, "Dealer busts! You win!"
	case pv == blackjack && len(player) == naturalCards:
		return multNatural, "Blackjack! You win!"
	case pv > dv:
		return multWin, "You win!"
	case pv == dv:
		return multPush, "Push! Tie game!"
	default:
		return multBust, "Dealer wins!"
	}
}

// StartBlackjack reserves the stake and deals two cards each. A natural 21
// finishes the round immediately.
func (e *Engine) StartBlackjack(ctx context.Context, userID string, stake decimal.Decimal) (*BlackjackView, error) {
	if err := e.checkStake(ctx, userID, stake); err != nil {
		return nil, err
	}

	run, err := e.newRound(userID, "")
	if err != nil {
		return nil, err
	}

	if _, err := e.ledger.Settle(ctx, userID, ledger.Settlement{Debit: stake}); err != nil {
		if isInsufficient(err) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidStake, err)
		}
		return nil, err
	}

	round := &BlackjackRound{
		id:     run.id,
		userID: userID,
		stake:  stake,
		player: []Card{drawCard(run.src), drawCard(run.src)},
		dealer: []Card{drawCard(run.src), drawCard(run.src)},
		phase:  PhasePlaying,
		run:    run,

		lastAction: e.now(),
	}
	if err := run.machine.TransitionTo(state.StateSpinning); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.blackjack[round.id] = round
	e.mu.Unlock()

	round.mu.Lock()
	defer round.mu.Unlock()

	if BlackjackValue(round.player) == blackjack {
		if err := e.finishBlackjack(ctx, round); err != nil {
			return nil, err
		}
	}

	v := round.view()
	return &v, nil
}

// Hit draws a card for the player. Reaching 21 or more finishes the round
// without the dealer drawing.
func (e *Engine) Hit(ctx context.Context, userID, roundID string) (*BlackjackView, error) {
	round, err := e.lookupBlackjack(userID, roundID)
	if err != nil {
		return nil, err
	}

	round.mu.Lock()
	defer round.mu.Unlock()

	if round.phase != PhasePlaying {
		return nil, ErrRoundFinished
	}
	if BlackjackValue(round.player) < blackjack {
		round.player = append(round.player, drawCard(round.run.src))
		round.lastAction = e.now()
	}
	if BlackjackValue(round.player) >= blackjack {
		if err := e.finishBlackjack(ctx, round); err != nil {
			return nil, err
		}
	}

	v := round.view()
	return &v, nil
}

// Stand lets the dealer draw to 17 and finishes the round.
func (e *Engine) Stand(ctx context.Context, userID, roundID string) (*BlackjackView, error) {
	round, err := e.lookupBlackjack(userID, roundID)
	if err != nil {
		return nil, err
	}

	round.mu.Lock()
	defer round.mu.Unlock()

	if round.phase != PhasePlaying {
		return nil, ErrRoundFinished
	}
	if err := e.standBlackjack(ctx, round); err != nil {
		return nil, err
	}

	v := round.view()
	return &v, nil
}

// standBlackjack draws the dealer to 17 and finishes. The caller holds round.mu.
func (e *Engine) standBlackjack(ctx context.Context, round *BlackjackRound) error {
	for BlackjackValue(round.dealer) < dealerStandsAt {
		round.dealer = append(round.dealer, drawCard(round.run.src))
	}
	return e.finishBlackjack(ctx, round)
}

// BlackjackRound returns the current view of a round.
func (e *Engine) BlackjackRound(userID, roundID string) (*BlackjackView, error) {
	round, err := e.lookupBlackjack(userID, roundID)
	if err != nil {
		return nil, err
	}

	round.mu.Lock()
	defer round.mu.Unlock()

	v := round.view()
	return &v, nil
}

func (e *Engine) lookupBlackjack(userID, roundID string) (*BlackjackRound, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	round, ok := e.blackjack[roundID]
	if !ok || round.userID != userID {
		return nil, ErrRoundNotFound
	}
	return round, nil
}

// finishBlackjack credits the payout with the round's summary transaction.
// The caller holds round.mu. On a ledger failure the round stays playing.
func (e *Engine) finishBlackjack(ctx context.Context, round *BlackjackRound) error {
	mult, result := BlackjackMultiplier(round.player, round.dealer)
	payout := round.stake.Mul(mult)

	out, err := e.settleWith(ctx, round.run, round.userID, GameBlackjack, decimal.Zero, round.stake, payout, result)
	if err != nil {
		e.log.Error("blackjack settlement failed", slog.String("round_id", round.id), slog.Any("error", err))
		round.run.machine.Reset(state.StateSpinning)
		return err
	}

	round.phase = PhaseFinished
	round.result = result
	round.out = out
	return nil
}

// ExpireIdleBlackjack finishes rounds still playing after idle without a
// player action, as if the player stood. A hand already on 21 or more
// finishes without the dealer drawing. It returns how many rounds settled;
// rounds whose settlement fails stay playing for the next sweep.
func (e *Engine) ExpireIdleBlackjack(ctx context.Context, idle time.Duration) int {
	cutoff := e.now().Add(-idle)

	e.mu.Lock()
	var stale []*BlackjackRound
	for _, round := range e.blackjack {
		round.mu.Lock()
		if round.phase == PhasePlaying && !round.lastAction.After(cutoff) {
			stale = append(stale, round)
		}
		round.mu.Unlock()
	}
	e.mu.Unlock()

	settled := 0
	for _, round := range stale {
		round.mu.Lock()
		var err error
		switch {
		case round.phase != PhasePlaying:
			round.mu.Unlock()
			continue
		case BlackjackValue(round.player) >= blackjack:
			err = e.finishBlackjack(ctx, round)
		default:
			err = e.standBlackjack(ctx, round)
		}
		round.mu.Unlock()

		if err != nil {
			e.log.Warn("idle blackjack round not settled", slog.String("round_id", round.id), slog.Any("error", err))
			continue
		}
		e.log.Info("idle blackjack round stood", slog.String("round_id", round.id), slog.String("user_id", round.userID))
		settled++
	}
	return settled
}

// PurgeFinishedBlackjack forgets finished rounds and returns how many were removed.
func (e *Engine) PurgeFinishedBlackjack() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	removed := 0
	for id, round := range e.blackjack {
		round.mu.Lock()
		finished := round.phase == PhaseFinished
		round.mu.Unlock()
		if finished {
			delete(e.blackjack, id)
			removed++
		}
	}
	return removed
}
