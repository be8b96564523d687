package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hongminglow/red-syndicate/internal/deposit"
	"github.com/hongminglow/red-syndicate/internal/http/respond"
	"github.com/hongminglow/red-syndicate/internal/middleware"
	"github.com/hongminglow/red-syndicate/internal/models/dto"
)

// WalletHandler serves crypto deposits and withdrawals.
type WalletHandler struct {
	deposits *deposit.Service
	authn    *middleware.Authenticator
	log      *slog.Logger
}

func NewWalletHandler(deposits *deposit.Service, authn *middleware.Authenticator, log *slog.Logger) *WalletHandler {
	return &WalletHandler{deposits: deposits, authn: authn, log: log}
}

func (h *WalletHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /wallet/currencies", h.handleCurrencies)
	mux.Handle("POST /wallet/deposits", h.authn.Require(h.handleStart))
	mux.Handle("GET /wallet/deposits/{id}", h.authn.Require(h.handleGet))
	mux.Handle("DELETE /wallet/deposits/{id}", h.authn.Require(h.handleCancel))
	mux.Handle("POST /wallet/withdrawals", h.authn.Require(h.handleWithdraw))
}

func (h *WalletHandler) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, "ok", deposit.Currencies())
}

func (h *WalletHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := h.deposits.Start(r.Context(), userID(r), req.Currency, req.Amount)
	if err != nil {
		respond.Failure(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusAccepted, "deposit pending", d)
}

func (h *WalletHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	d, err := h.deposits.Get(userID(r), r.PathValue("id"))
	if err != nil {
		respond.Failure(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", d)
}

func (h *WalletHandler) handleCancel(w http.ResponseWriter, r *http.Request) {
	if err := h.deposits.Cancel(userID(r), r.PathValue("id")); err != nil {
		respond.Failure(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "deposit cancelled", nil)
}

func (h *WalletHandler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req dto.WithdrawalRequest
	if !decode(w, r, &req) {
		return
	}
	tx, err := h.deposits.Withdraw(r.Context(), userID(r), req.Amount, req.Address)
	if err != nil {
		respond.Failure(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "withdrawal completed", tx)
}
