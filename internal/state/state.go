package state

// State represents a finite-state machine state.
type State string

// Round states drive animated wager rounds.
const (
	// StateIdle indicates that the round has been created but not started.
	StateIdle State = "idle"
	// StateSpinning indicates that the animation ticker is running.
	StateSpinning State = "spinning"
	// StateResolving indicates that the outcome is being settled against the ledger.
	StateResolving State = "resolving"
	// StateSettled indicates that the round is finished and the balance adjusted.
	StateSettled State = "settled"
	// StateCancelled indicates that the round was abandoned before settlement.
	StateCancelled State = "cancelled"
)

// Session states track a client's authentication.
const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
)

// Deposit states follow a crypto deposit from address generation to credit.
const (
	StateGenerating State = "generating"
	StatePending    State = "pending"
	StateConfirming State = "confirming"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Terminal reports whether no transition leaves s in any table.
func (s State) Terminal() bool {
	switch s {
	case StateSettled, StateCancelled, StateCompleted, StateFailed:
		return true
	default:
		return false
	}
}
