// Package sportsbook serves a fixed catalog of matches with drifting odds,
// per-user bet slips and simulated settlement.
package sportsbook

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/red-syndicate/internal/state"
)

// ErrUnknownSelection is returned for a match, market or option not in the book.
var ErrUnknownSelection = errors.New("unknown selection")

// Match statuses.
const (
	StatusLive     = "live"
	StatusUpcoming = "upcoming"
	StatusFinished = "finished"
)

// Source is the randomness used for odds drift and settlement.
type Source interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// Option is a priced outcome within a market.
type Option struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Odds decimal.Decimal `json:"odds"`
}

type Market struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Options []Option `json:"options"`
}

type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

type Match struct {
	ID       string   `json:"id"`
	Sport    string   `json:"sport"`
	League   string   `json:"league"`
	HomeTeam string   `json:"home_team"`
	AwayTeam string   `json:"away_team"`
	Status   string   `json:"status"`
	Time     string   `json:"time"`
	Score    *Score   `json:"score,omitempty"`
	Minute   int      `json:"minute,omitempty"`
	Markets  []Market `json:"markets"`
}

// Name is "Home vs Away".
func (m Match) Name() string {
	return m.HomeTeam + " vs " + m.AwayTeam
}

func (m Match) clone() Match {
	out := m
	if m.Score != nil {
		score := *m.Score
		out.Score = &score
	}
	out.Markets = make([]Market, len(m.Markets))
	for i, market := range m.Markets {
		out.Markets[i] = market
		out.Markets[i].Options = append([]Option(nil), market.Options...)
	}
	return out
}

var (
	minOdds   = decimal.RequireFromString("1.1")
	driftSpan = 0.1
)

// Book holds the match catalog. It is safe for concurrent use.
type Book struct {
	mu      sync.RWMutex
	matches []Match
	log     *slog.Logger
}

// NewBook returns a book loaded with the default catalog.
func NewBook(log *slog.Logger) *Book {
	if log == nil {
		log = slog.Default()
	}
	return &Book{matches: defaultMatches(), log: log}
}

// Matches lists the catalog, optionally filtered by sport (case-insensitive).
func (b *Book) Matches(sport string) []Match {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Match, 0, len(b.matches))
	for _, m := range b.matches {
		if sport == "" || strings.EqualFold(sport, "all") || strings.EqualFold(m.Sport, sport) {
			out = append(out, m.clone())
		}
	}
	return out
}

// Selection resolves ids to the current match, market and option.
func (b *Book) Selection(matchID, marketID, optionID string) (Match, Market, Option, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, m := range b.matches {
		if m.ID != matchID {
			continue
		}
		for _, market := range m.Markets {
			if market.ID != marketID {
				continue
			}
			for _, opt := range market.Options {
				if opt.ID == optionID {
					return m.clone(), market, opt, nil
				}
			}
		}
	}
	return Match{}, Market{}, Option{}, ErrUnknownSelection
}

// Drift moves every price by U(-0.05, 0.05), never below 1.1, and
// occasionally advances live scores.
func (b *Book) Drift(src Source) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.matches {
		m := &b.matches[i]
		for j := range m.Markets {
			for k := range m.Markets[j].Options {
				opt := &m.Markets[j].Options[k]
				delta := decimal.NewFromFloat((src.Float64() - 0.5) * driftSpan)
				opt.Odds = decimal.Max(minOdds, opt.Odds.Add(delta)).Round(4)
			}
		}

		if m.Status == StatusLive && m.Score != nil && src.Float64() > 0.95 {
			if src.Float64() > 0.7 {
				m.Score.Home++
			}
			if src.Float64() > 0.7 {
				m.Score.Away++
			}
			m.Minute = min(90, m.Minute+1)
		}
	}
}

// Run drifts the book every interval until ctx ends.
func (b *Book) Run(ctx context.Context, interval time.Duration, src Source) {
	if src == nil {
		src = globalSource{}
	}

	ticker := state.NewTicker(interval)
	err := ticker.Run(ctx, func(int) bool {
		b.Drift(src)
		return true
	})
	b.log.Info("odds drift stopped", slog.Any("reason", err))
}

func odds(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func defaultMatches() []Match {
	return []Match{
		{
			ID: "1", Sport: "Football", League: "Premier League",
			HomeTeam: "Manchester United", AwayTeam: "Liverpool",
			Status: StatusLive, Time: "45'", Score: &Score{Home: 1, Away: 1}, Minute: 45,
			Markets: []Market{
				{ID: "match_result", Name: "Match Result", Options: []Option{
					{ID: "home", Name: "Manchester United", Odds: odds("2.45")},
					{ID: "draw", Name: "Draw", Odds: odds("3.2")},
					{ID: "away", Name: "Liverpool", Odds: odds("2.8")},
				}},
				{ID: "total_goals", Name: "Total Goals", Options: []Option{
					{ID: "over_2_5", Name: "Over 2.5", Odds: odds("1.85")},
					{ID: "under_2_5", Name: "Under 2.5", Odds: odds("1.95")},
				}},
			},
		},
		{
			ID: "2", Sport: "Basketball", League: "NBA",
			HomeTeam: "Lakers", AwayTeam: "Warriors",
			Status: StatusLive, Time: "Q3 8:45", Score: &Score{Home: 89, Away: 92},
			Markets: []Market{
				{ID: "match_winner", Name: "Match Winner", Options: []Option{
					{ID: "home", Name: "Lakers", Odds: odds("1.9")},
					{ID: "away", Name: "Warriors", Odds: odds("1.9")},
				}},
				{ID: "total_points", Name: "Total Points", Options: []Option{
					{ID: "over_220", Name: "Over 220.5", Odds: odds("1.95")},
					{ID: "under_220", Name: "Under 220.5", Odds: odds("1.85")},
				}},
			},
		},
		{
			ID: "3", Sport: "Tennis", League: "ATP",
			HomeTeam: "Djokovic", AwayTeam: "Nadal",
			Status: StatusUpcoming, Time: "15:30",
			Markets: []Market{
				{ID: "match_winner", Name: "Match Winner", Options: []Option{
					{ID: "home", Name: "Djokovic", Odds: odds("1.75")},
					{ID: "away", Name: "Nadal", Odds: odds("2.1")},
				}},
				{ID: "total_sets", Name: "Total Sets", Options: []Option{
					{ID: "over_3_5", Name: "Over 3.5", Odds: odds("2.2")},
					{ID: "under_3_5", Name: "Under 3.5", Odds: odds("1.65")},
				}},
			},
		},
		{
			ID: "4", Sport: "Football", League: "Champions League",
			HomeTeam: "Barcelona", AwayTeam: "PSG",
			Status: StatusUpcoming, Time: "20:00",
			Markets: []Market{
				{ID: "match_result", Name: "Match Result", Options: []Option{
					{ID: "home", Name: "Barcelona", Odds: odds("2.1")},
					{ID: "draw", Name: "Draw", Odds: odds("3.1")},
					{ID: "away", Name: "PSG", Odds: odds("3.4")},
				}},
			},
		},
	}
}
