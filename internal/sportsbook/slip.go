package sportsbook

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	// ErrDuplicateSelection is returned when the selection is already on the slip.
	ErrDuplicateSelection = errors.New("selection already in bet slip")
	// ErrEntryNotFound is returned for an unknown slip entry id.
	ErrEntryNotFound = errors.New("bet slip entry not found")
	// ErrInvalidStake is returned for a negative stake.
	ErrInvalidStake = errors.New("stake must not be negative")
	// ErrEmptySlip is returned when no entry carries a stake.
	ErrEmptySlip = errors.New("no bets with a stake")
)

// Entry is one selection on a bet slip. Odds are fixed when added.
type Entry struct {
	ID           string          `json:"id"`
	MatchID      string          `json:"match_id"`
	MarketID     string          `json:"market_id"`
	OptionID     string          `json:"option_id"`
	MatchName    string          `json:"match_name"`
	Selection    string          `json:"selection"`
	Odds         decimal.Decimal `json:"odds"`
	Stake        decimal.Decimal `json:"stake"`
	PotentialWin decimal.Decimal `json:"potential_win"`
}

// Slip is a user's pending selections.
type Slip struct {
	mu      sync.Mutex
	entries []Entry
}

// Add puts a selection on the slip with a zero stake.
func (s *Slip) Add(match Match, market Market, option Option) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := match.ID + "_" + market.ID + "_" + option.ID
	for _, e := range s.entries {
		if e.ID == id {
			return Entry{}, ErrDuplicateSelection
		}
	}

	entry := Entry{
		ID:           id,
		MatchID:      match.ID,
		MarketID:     market.ID,
		OptionID:     option.ID,
		MatchName:    match.Name(),
		Selection:    market.Name + ": " + option.Name,
		Odds:         option.Odds,
		Stake:        decimal.Zero,
		PotentialWin: decimal.Zero,
	}
	s.entries = append(s.entries, entry)
	return entry, nil
}

// SetStake sets an entry's stake and recomputes its potential win.
func (s *Slip) SetStake(id string, stake decimal.Decimal) (Entry, error) {
	if stake.IsNegative() {
		return Entry{}, ErrInvalidStake
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i].Stake = stake
			s.entries[i].PotentialWin = stake.Mul(s.entries[i].Odds)
			return s.entries[i], nil
		}
	}
	return Entry{}, ErrEntryNotFound
}

// Remove drops an entry. It reports whether the entry existed.
func (s *Slip) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the slip.
func (s *Slip) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

// Entries returns a copy of the slip.
func (s *Slip) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}

// Totals sums stakes and potential wins.
func (s *Slip) Totals() (stake, potentialWin decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stake, potentialWin = decimal.Zero, decimal.Zero
	for _, e := range s.entries {
		stake = stake.Add(e.Stake)
		potentialWin = potentialWin.Add(e.PotentialWin)
	}
	return stake, potentialWin
}

// take empties the slip, returning the staked entries and everything that was on it.
func (s *Slip) take() (staked, all []Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all = s.entries
	for _, e := range all {
		if e.Stake.IsPositive() {
			staked = append(staked, e)
		}
	}
	if len(staked) > 0 {
		s.entries = nil
	}
	return staked, all
}

// restore puts entries back after a failed placement.
func (s *Slip) restore(entries []Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(entries, s.entries...)
}
