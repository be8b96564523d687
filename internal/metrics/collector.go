// Package metrics exposes the casino's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/hongminglow/red-syndicate/internal/state"
)

var (
	wagersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casino_wagers_total",
			Help: "Settled wagers labeled by game and outcome",
		},
		[]string{"game", "outcome"},
	)
	wagerStakeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casino_wager_stake_total",
			Help: "Total amount staked per game",
		},
		[]string{"game"},
	)
	wagerPayoutTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casino_wager_payout_total",
			Help: "Total amount paid out per game",
		},
		[]string{"game"},
	)
	roundTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casino_round_transitions_total",
			Help: "State machine transitions",
		},
		[]string{"from", "to"},
	)
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casino_http_requests_total",
			Help: "HTTP requests labeled by method, route and status",
		},
		[]string{"method", "path", "status"},
	)
	httpDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "casino_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

func init() {
	state.RegisterTransitionRecorder(RecordStateTransition)
}

// RecordStateTransition counts one state change.
func RecordStateTransition(from, to string) {
	roundTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordHTTPRequest counts a handled request. path should be the route
// pattern, not the raw URL.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if path == "" {
		path = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDurationSeconds.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Wagers records settled rounds. It satisfies wager.Recorder.
type Wagers struct{}

func (Wagers) RecordWager(game, outcome string, stake, payout decimal.Decimal) {
	wagersTotal.WithLabelValues(game, outcome).Inc()
	wagerStakeTotal.WithLabelValues(game).Add(stake.InexactFloat64())
	wagerPayoutTotal.WithLabelValues(game).Add(payout.InexactFloat64())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
