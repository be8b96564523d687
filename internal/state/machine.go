package state

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrInvalidTransition indicates that a requested FSM transition is not allowed.
var ErrInvalidTransition = errors.New("invalid state transition")

var (
	recorderMu         sync.RWMutex
	transitionRecorder = func(from, to string) {}
)

// RegisterTransitionRecorder allows external packages to observe FSM transitions.
func RegisterTransitionRecorder(recorder func(from, to string)) {
	recorderMu.Lock()
	defer recorderMu.Unlock()

	if recorder == nil {
		transitionRecorder = func(string, string) {}
		return
	}

	transitionRecorder = recorder
}

func recordTransition(from, to State) {
	recorderMu.RLock()
	recorder := transitionRecorder
	recorderMu.RUnlock()

	recorder(string(from), string(to))
}

// Machine is an in-process FSM guarded by a transition table. It is safe for
// concurrent use.
type Machine struct {
	mu        sync.Mutex
	table     Table
	current   State
	updatedAt time.Time
	log       *slog.Logger
}

// NewMachine creates a machine in the initial state.
func NewMachine(table Table, initial State, log *slog.Logger) *Machine {
	if log == nil {
		log = slog.Default()
	}

	return &Machine{
		table:     table,
		current:   initial,
		updatedAt: time.Now(),
		log:       log,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// UpdatedAt returns when the machine last changed state.
func (m *Machine) UpdatedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updatedAt
}

// TransitionTo changes the state if the transition is allowed.
func (m *Machine) TransitionTo(newState State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.current
	if !m.table.IsTransitionAllowed(current, newState) {
		m.log.Warn("invalid state transition", "from", current, "to", newState)
		return ErrInvalidTransition
	}

	m.current = newState
	m.updatedAt = time.Now()
	recordTransition(current, newState)
	return nil
}

// Reset forces the machine into s without consulting the table.
func (m *Machine) Reset(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = s
	m.updatedAt = time.Now()
}
