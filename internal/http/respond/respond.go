// Package respond writes the {code,message,data} envelope every endpoint
// returns and maps domain errors onto HTTP statuses.
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"

	"github.com/hongminglow/red-syndicate/internal/auth"
	"github.com/hongminglow/red-syndicate/internal/bonus"
	"github.com/hongminglow/red-syndicate/internal/deposit"
	"github.com/hongminglow/red-syndicate/internal/ledger"
	"github.com/hongminglow/red-syndicate/internal/logger"
	"github.com/hongminglow/red-syndicate/internal/sportsbook"
	"github.com/hongminglow/red-syndicate/internal/storage"
	"github.com/hongminglow/red-syndicate/internal/wager"
)

// Envelope is the standard API response wrapper used across handlers.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes a success or informational response using the common envelope.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{Code: status, Message: message, Data: data})
}

// Error writes an error response with the shared envelope structure.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Code: status, Message: message})
}

func write(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("respond: encode payload failed", slog.Any("error", err))
	}
}

// Order matters: a stake rejected for insufficient funds wraps both
// wager.ErrInvalidStake and ledger.ErrInsufficientFunds.
var statuses = []struct {
	err    error
	status int
}{
	{ledger.ErrInsufficientFunds, http.StatusPaymentRequired},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized},
	{deposit.ErrLimitExceeded, http.StatusUnprocessableEntity},
	{bonus.ErrNotEligible, http.StatusForbidden},

	{storage.ErrAlreadyExists, http.StatusConflict},
	{auth.ErrInProgress, http.StatusConflict},
	{wager.ErrRoundFinished, http.StatusConflict},
	{wager.ErrRoundCancelled, http.StatusConflict},
	{bonus.ErrAlreadyClaimed, http.StatusConflict},
	{sportsbook.ErrDuplicateSelection, http.StatusConflict},

	{storage.ErrNotFound, http.StatusNotFound},
	{wager.ErrRoundNotFound, http.StatusNotFound},
	{deposit.ErrNotFound, http.StatusNotFound},
	{sportsbook.ErrEntryNotFound, http.StatusNotFound},
	{bonus.ErrUnknownBonus, http.StatusNotFound},

	{auth.ErrInvalidInput, http.StatusBadRequest},
	{wager.ErrInvalidStake, http.StatusBadRequest},
	{wager.ErrInvalidBet, http.StatusBadRequest},
	{deposit.ErrUnknownCurrency, http.StatusBadRequest},
	{deposit.ErrBelowMinimum, http.StatusBadRequest},
	{deposit.ErrInvalidAmount, http.StatusBadRequest},
	{deposit.ErrInvalidAddress, http.StatusBadRequest},
	{sportsbook.ErrUnknownSelection, http.StatusBadRequest},
	{sportsbook.ErrInvalidStake, http.StatusBadRequest},
	{sportsbook.ErrEmptySlip, http.StatusBadRequest},
	{ledger.ErrNegativeBalance, http.StatusBadRequest},

	{storage.ErrStorage, http.StatusServiceUnavailable},
}

// Status maps a domain error to an HTTP status. Unknown errors are 500.
func Status(err error) int {
	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Failure writes err as an envelope. Server-side failures are logged and
// reported to Sentry; their message is not exposed.
func Failure(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status := Status(err)
	if status < http.StatusInternalServerError {
		Error(w, status, err.Error())
		return
	}

	logger.FromContext(r.Context(), log).Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.Any("error", err),
	)
	if hub := sentry.CurrentHub(); hub.Client() != nil {
		hub.CaptureException(err)
	}
	Error(w, status, http.StatusText(status))
}
