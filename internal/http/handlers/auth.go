package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hongminglow/red-syndicate/internal/auth"
	"github.com/hongminglow/red-syndicate/internal/http/respond"
	"github.com/hongminglow/red-syndicate/internal/middleware"
	"github.com/hongminglow/red-syndicate/internal/models"
	"github.com/hongminglow/red-syndicate/internal/models/dto"
	"github.com/hongminglow/red-syndicate/internal/storage"
)

// TransactionLister lists a user's history, newest first.
type TransactionLister interface {
	Transactions(ctx context.Context, userID string) ([]models.Transaction, error)
}

// AuthHandler owns account and session endpoints.
type AuthHandler struct {
	authn   *middleware.Authenticator
	history TransactionLister
	log     *slog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authn *middleware.Authenticator, history TransactionLister, log *slog.Logger) *AuthHandler {
	return &AuthHandler{authn: authn, history: history, log: log}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /register", h.handleRegister)
	mux.HandleFunc("POST /login", h.handleLogin)
	mux.Handle("POST /logout", h.authn.Require(h.handleLogout))
	mux.Handle("GET /me", h.authn.Require(h.handleMe))
	mux.Handle("PATCH /me/settings", h.authn.Require(h.handleSettings))
	mux.Handle("GET /transactions", h.authn.Require(h.handleTransactions))
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	svc := h.authn.Service(r.Context())
	if !svc.Register(r.Context(), req.Username, req.Email, req.Password) {
		err := svc.Err()
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			respond.Error(w, http.StatusConflict, "registration failed: username or email already in use")
		case err == nil:
			respond.Error(w, http.StatusBadRequest, "registration failed")
		default:
			respond.Failure(w, r, h.log, fmt.Errorf("registration failed: %w", err))
		}
		return
	}
	respond.JSON(w, http.StatusCreated, "User created successfully", session(svc))
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	svc := h.authn.Service(r.Context())
	if !svc.Login(r.Context(), req.Email, req.Password) {
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	respond.JSON(w, http.StatusOK, "login successful", session(svc))
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	middleware.Session(r.Context()).Logout(r.Context())
	respond.JSON(w, http.StatusOK, "logged out", nil)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.Session(r.Context()).User().Public()
	user.Transactions = nil
	respond.JSON(w, http.StatusOK, "ok", user)
}

func (h *AuthHandler) handleTransactions(w http.ResponseWriter, r *http.Request) {
	user := middleware.Session(r.Context()).User()
	txs, err := h.history.Transactions(r.Context(), user.ID)
	if err != nil {
		respond.Failure(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", txs)
}

func (h *AuthHandler) handleSettings(w http.ResponseWriter, r *http.Request) {
	var req dto.SettingsRequest
	if !decode(w, r, &req) {
		return
	}

	svc := middleware.Session(r.Context())
	if field, ok := applySettings(r.Context(), svc, req); !ok {
		respond.Error(w, http.StatusBadRequest, "invalid setting: "+field)
		return
	}
	respond.JSON(w, http.StatusOK, "settings updated", svc.User().Settings)
}

// applySettings stops at the first rejected field and returns its name.
func applySettings(ctx context.Context, svc *auth.Service, req dto.SettingsRequest) (string, bool) {
	type step struct {
		field string
		set   bool
		apply func() bool
	}
	steps := []step{
		{"theme", req.Theme != nil, func() bool { return svc.SetTheme(ctx, strings.ToLower(*req.Theme)) }},
		{"language", req.Language != nil, func() bool { return svc.SetLanguage(ctx, *req.Language) }},
		{"currency", req.Currency != nil, func() bool { return svc.SetCurrency(ctx, strings.ToUpper(*req.Currency)) }},
		{"notifications", req.Notifications != nil, func() bool { return svc.SetNotifications(ctx, *req.Notifications) }},
		{"privacy", req.Privacy != nil, func() bool { return svc.SetPrivacy(ctx, *req.Privacy) }},
	}
	if l := req.Limits; l != nil {
		steps = append(steps,
			step{"limits.daily_deposit", l.DailyDeposit != nil, func() bool { return svc.SetDailyDepositLimit(ctx, *l.DailyDeposit) }},
			step{"limits.daily_withdrawal", l.DailyWithdrawal != nil, func() bool { return svc.SetDailyWithdrawalLimit(ctx, *l.DailyWithdrawal) }},
			step{"limits.session_time", l.SessionTime != nil, func() bool { return svc.SetSessionTimeLimit(ctx, *l.SessionTime) }},
		)
	}

	for _, s := range steps {
		if s.set && !s.apply() {
			return s.field, false
		}
	}
	return "", true
}

func session(svc *auth.Service) dto.LoginResponse {
	user := svc.User().Public()
	user.Transactions = nil
	return dto.LoginResponse{Token: svc.Token(), User: user}
}
