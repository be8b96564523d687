package state

// Table lists, per state, the states it may move to.
type Table map[State][]State

// RoundTransitions is the table of an animated wager round.
var RoundTransitions = Table{
	StateIdle: {
		StateSpinning,
		StateResolving,
		StateCancelled,
	},
	StateSpinning: {
		StateResolving,
		StateCancelled,
	},
	StateResolving: {
		StateSettled,
		StateCancelled,
	},
}

// SessionTransitions is the table of the auth service.
var SessionTransitions = Table{
	StateUnauthenticated: {
		StateAuthenticating,
	},
	StateAuthenticating: {
		StateAuthenticated,
		StateUnauthenticated,
	},
	StateAuthenticated: {
		StateAuthenticating,
		StateUnauthenticated,
	},
}

// DepositTransitions is the table of a crypto deposit.
var DepositTransitions = Table{
	StateGenerating: {
		StatePending,
		StateFailed,
	},
	StatePending: {
		StateConfirming,
		StateFailed,
	},
	StateConfirming: {
		StateConfirming,
		StateCompleted,
		StateFailed,
	},
}

// IsTransitionAllowed reports whether moving from one state to another is valid.
func (t Table) IsTransitionAllowed(from, to State) bool {
	allowed, ok := t[from]
	if !ok {
		return false
	}

	for _, state := range allowed {
		if state == to {
			return true
		}
	}

	return false
}
