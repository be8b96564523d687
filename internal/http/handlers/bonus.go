package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hongminglow/red-syndicate/internal/bonus"
	"github.com/hongminglow/red-syndicate/internal/http/respond"
	"github.com/hongminglow/red-syndicate/internal/middleware"
)

type BonusHandler struct {
	bonuses *bonus.Service
	authn   *middleware.Authenticator
	log     *slog.Logger
}

func NewBonusHandler(bonuses *bonus.Service, authn *middleware.Authenticator, log *slog.Logger) *BonusHandler {
	return &BonusHandler{bonuses: bonuses, authn: authn, log: log}
}

func (h *BonusHandler) Register(mux *http.ServeMux) {
	mux.Handle("GET /bonuses", h.authn.Require(h.handleList))
	mux.Handle("POST /bonuses/{id}/claim", h.authn.Require(h.handleClaim))
}

func (h *BonusHandler) handleList(w http.ResponseWriter, r *http.Request) {
	offers, err := h.bonuses.Offers(r.Context(), userID(r))
	if err != nil {
		respond.Failure(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", offers)
}

func (h *BonusHandler) handleClaim(w http.ResponseWriter, r *http.Request) {
	user, err := h.bonuses.Claim(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		respond.Failure(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "bonus claimed", map[string]any{
		"balance":         user.Balance,
		"claimed_bonuses": user.ClaimedBonuses,
	})
}
