package wager

import (
	"errors"

	"github.com/hongminglow/red-syndicate/internal/ledger"
)

var (
	// ErrInvalidStake is returned when the stake is not positive or exceeds the balance.
	ErrInvalidStake = errors.New("invalid stake")
	// ErrInvalidBet is returned for malformed roulette or baccarat bets.
	ErrInvalidBet = errors.New("invalid bet")
	// ErrRoundNotFound is returned for unknown or foreign blackjack rounds.
	ErrRoundNotFound = errors.New("round not found")
	// ErrRoundFinished is returned when acting on a finished round.
	ErrRoundFinished = errors.New("round already finished")
	// ErrRoundCancelled is returned when a round's animation was cancelled.
	ErrRoundCancelled = errors.New("round cancelled")
)

func isInsufficient(err error) bool {
	return errors.Is(err, ledger.ErrInsufficientFunds)
}
