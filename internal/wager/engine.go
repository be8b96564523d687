// Package wager runs casino rounds against the ledger. Every round validates
// its stake before touching the balance and settles in a single atomic
// ledger update carrying one summary transaction.
package wager

import (
	"context"
	"errors"
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

// Game names a casino game.
type Game string

const (
	GameBlackjack Game = "blackjack"
	GameSlots     Game = "slots"
	GameRoulette  Game = "roulette"
	GameWheel     Game = "wheel"
	GameBaccarat  Game = "baccarat"
)

// Title is the display name used in transaction descriptions.
func (g Game) Title() string {
	switch g {
	case GameBlackjack:
		return "Blackjack"
	case GameSlots:
		return "Slots"
	case GameRoulette:
		return "Roulette"
	case GameWheel:
		return "Fortune Wheel"
	case GameBaccarat:
		return "Baccarat"
	default:
		return string(g)
	}
}

// Outcome labels used by the Recorder.
const (
	OutcomeWin  = "win"
	OutcomeLoss = "loss"
	OutcomePush = "push"
)

// Ledger is the subset of the ledger store the engine depends on.
type Ledger interface {
	GetUserByID(ctx context.Context, id string) *models.User
	Settle(ctx context.Context, userID string, st ledger.Settlement) (*models.User, error)
}

// Recorder observes settled rounds.
type Recorder interface {
	RecordWager(game, outcome string, stake, payout decimal.Decimal)
}

// Animation paces the frames shown before a round resolves.
type Animation struct {
	Frames   int
	Interval time.Duration
}

// Default animations.
var (
	SlotsAnimation    = Animation{Frames: 30, Interval: 100 * time.Millisecond}
	RouletteAnimation = Animation{Frames: 60, Interval: 50 * time.Millisecond}
	// WheelAnimation.Frames is ignored: the wheel turns 10 degrees a frame
	// until it reaches its final rotation.
	WheelAnimation = Animation{Interval: 50 * time.Millisecond}
)

// Frame is one animation step reported to Round.OnFrame.
type Frame struct {
	Tick     int       `json:"tick"`
	Reels    []string  `json:"reels,omitempty"`
	Rotation float64   `json:"rotation,omitempty"`
	At       time.Time `json:"at"`
}

// Round identifies who plays an animated round and where frames go.
type Round struct {
	// ID is optional; a uuid is assigned when empty. It is the handle for Engine.Cancel.
	ID      string
	UserID  string
	OnFrame func(Frame)
}

// Outcome is the settled result common to every game.
type Outcome struct {
	RoundID    string          `json:"round_id"`
	Game       Game            `json:"game"`
	Stake      decimal.Decimal `json:"stake"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Payout     decimal.Decimal `json:"payout"`
	Net        decimal.Decimal `json:"net"`
	Result     string          `json:"result"`
	Seed       string          `json:"seed"`
	Hash       string          `json:"hash"`
	Balance    decimal.Decimal `json:"balance"`
}

// Option customizes an Engine.
type Option func(*Engine)

// WithSeedGenerator overrides NewSeed.
func WithSeedGenerator(gen func() (Seed, error)) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newSeed = gen
		}
	}
}

// WithSourceFactory overrides NewSource.
func WithSourceFactory(factory func(Seed) Source) Option {
	return func(e *Engine) {
		if factory != nil {
			e.newSource = factory
		}
	}
}

// WithAnimation overrides the default animation of game.
func WithAnimation(game Game, a Animation) Option {
	return func(e *Engine) {
		e.animations[game] = a
	}
}

// WithClock overrides time.Now for idle round expiry.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRecorder registers a Recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// Engine plays rounds. It is safe for concurrent use.
type Engine struct {
	ledger     Ledger
	log        *slog.Logger
	newSeed    func() (Seed, error)
	newSource  func(Seed) Source
	animations map[Game]Animation
	recorder   Recorder
	now        func() time.Time

	mu        sync.Mutex
	active    map[activeKey]*state.Ticker
	blackjack map[string]*BlackjackRound
}

// NewEngine constructs an Engine over l.
func NewEngine(l Ledger, log *slog.Logger, opts ...Option) *Engine {
	if log == nil {
		log = slog.Default()
	}

	e := &Engine{
		ledger:    l,
		log:       log,
		newSeed:   NewSeed,
		newSource: NewSource,
		now:       time.Now,
		animations: map[Game]Animation{
			GameSlots:    SlotsAnimation,
			GameRoulette: RouletteAnimation,
			GameWheel:    WheelAnimation,
		},
		active:    make(map[activeKey]*state.Ticker),
		blackjack: make(map[string]*BlackjackRound),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// activeKey scopes client-chosen round ids to their player.
type activeKey struct {
	userID  string
	roundID string
}

// Cancel stops the animation of one of userID's in-flight rounds. The round
// settles nothing. It reports whether the round was found.
func (e *Engine) Cancel(userID, roundID string) bool {
	e.mu.Lock()
	ticker, ok := e.active[activeKey{userID: userID, roundID: roundID}]
	e.mu.Unlock()

	if ok {
		ticker.Stop()
	}
	return ok
}

// checkStake rejects non-positive stakes and stakes above the balance.
func (e *Engine) checkStake(ctx context.Context, userID string, stake decimal.Decimal) error {
	if !stake.IsPositive() {
		return fmt.Errorf("%w: stake must be positive", ErrInvalidStake)
	}

	user := e.ledger.GetUserByID(ctx, userID)
	if user == nil {
		return ledger.ErrUserNotFound
	}
	if user.Balance.LessThan(stake) {
		return fmt.Errorf("%w: %w", ErrInvalidStake, ledger.ErrInsufficientFunds)
	}
	return nil
}

type roundRun struct {
	id      string
	userID  string
	seed    Seed
	src     Source
	machine *state.Machine
}

func (e *Engine) newRound(userID, id string) (*roundRun, error) {
	seed, err := e.newSeed()
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = uuid.NewString()
	}

	return &roundRun{
		id:      id,
		userID:  userID,
		seed:    seed,
		src:     e.newSource(seed),
		machine: state.NewMachine(state.RoundTransitions, state.StateIdle, e.log),
	}, nil
}

// animate runs frames ticks of the game's animation. A cancelled animation
// leaves the round in StateCancelled and returns ErrRoundCancelled.
func (e *Engine) animate(ctx context.Context, run *roundRun, game Game, frames int, frame func(tick int) Frame, onFrame func(Frame)) error {
	if frames <= 0 {
		return nil
	}

	ticker := state.NewTicker(e.animations[game].Interval)
	key := activeKey{userID: run.userID, roundID: run.id}

	e.mu.Lock()
	if _, dup := e.active[key]; dup {
		e.mu.Unlock()
		return fmt.Errorf("%w: round %s already running", ErrInvalidBet, run.id)
	}
	e.active[key] = ticker
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		delete(e.active, key)
		e.mu.Unlock()
	}()

	if err := run.machine.TransitionTo(state.StateSpinning); err != nil {
		return err
	}

	err := ticker.Run(ctx, func(tick int) bool {
		if onFrame != nil {
			onFrame(frame(tick))
		}
		return tick < frames
	})
	if err != nil {
		_ = run.machine.TransitionTo(state.StateCancelled)
		e.log.Info("round cancelled", slog.String("round_id", run.id), slog.String("game", string(game)), slog.Any("reason", err))
		if errors.Is(err, state.ErrTickerStopped) {
			return ErrRoundCancelled
		}
		return fmt.Errorf("%w: %w", ErrRoundCancelled, err)
	}
	return nil
}

// settle debits stake and credits payout in one ledger update, recording the
// round's summary transaction.
func (e *Engine) settle(ctx context.Context, run *roundRun, userID string, game Game, stake, payout decimal.Decimal, result string) (*Outcome, error) {
	return e.settleWith(ctx, run, userID, game, stake, stake, payout, result)
}

func (e *Engine) settleWith(ctx context.Context, run *roundRun, userID string, game Game, debit, stake, payout decimal.Decimal, result string) (*Outcome, error) {
	if run.machine.Current() != state.StateResolving {
		if err := run.machine.TransitionTo(state.StateResolving); err != nil {
			return nil, err
		}
	}

	summary := summarize(game, stake, payout, run.seed.Hash(), result)
	user, err := e.ledger.Settle(ctx, userID, ledger.Settlement{
		Debit:       debit,
		Credit:      payout,
		Transaction: &summary,
	})
	if err != nil {
		_ = run.machine.TransitionTo(state.StateCancelled)
		if isInsufficient(err) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidStake, err)
		}
		return nil, err
	}
	if err := run.machine.TransitionTo(state.StateSettled); err != nil {
		return nil, err
	}

	out := &Outcome{
		RoundID:    run.id,
		Game:       game,
		Stake:      stake,
		Multiplier: payout.Div(stake),
		Payout:     payout,
		Net:        payout.Sub(stake),
		Result:     result,
		Seed:       run.seed.String(),
		Hash:       run.seed.Hash(),
		Balance:    user.Balance,
	}
	e.record(out)

	e.log.Info("round settled",
		slog.String("round_id", run.id),
		slog.String("user_id", userID),
		slog.String("game", string(game)),
		slog.String("stake", stake.String()),
		slog.String("payout", payout.String()),
	)
	return out, nil
}

func (e *Engine) record(out *Outcome) {
	if e.recorder == nil {
		return
	}

	outcome := OutcomePush
	switch {
	case out.Payout.GreaterThan(out.Stake):
		outcome = OutcomeWin
	case out.Payout.LessThan(out.Stake):
		outcome = OutcomeLoss
	}
	e.recorder.RecordWager(string(out.Game), outcome, out.Stake, out.Payout)
}

// summarize builds the single transaction of a round: a win for the net
// profit, otherwise a bet for the net loss.
func summarize(game Game, stake, payout decimal.Decimal, hash, result string) models.TransactionInput {
	in := models.TransactionInput{
		Type:        models.TransactionBet,
		Amount:      stake.Sub(payout),
		Currency:    "USD",
		Status:      models.StatusCompleted,
		Description: fmt.Sprintf("%s: %s", game.Title(), result),
		Hash:        hash,
	}
	if payout.GreaterThan(stake) {
		in.Type = models.TransactionWin
		in.Amount = payout.Sub(stake)
	}
	return in
}
