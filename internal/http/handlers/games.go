package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hongminglow/red-syndicate/internal/http/respond"
	"github.com/hongminglow/red-syndicate/internal/middleware"
	"github.com/hongminglow/red-syndicate/internal/models/dto"
	"github.com/hongminglow/red-syndicate/internal/wager"
)

// GameHandler plays wager rounds for the authenticated user.
type GameHandler struct {
	engine *wager.Engine
	authn  *middleware.Authenticator
	log    *slog.Logger
}

func NewGameHandler(engine *wager.Engine, authn *middleware.Authenticator, log *slog.Logger) *GameHandler {
	return &GameHandler{engine: engine, authn: authn, log: log}
}

func (h *GameHandler) Register(mux *http.ServeMux) {
	mux.Handle("POST /games/blackjack", h.authn.Require(h.handleBlackjackStart))
	mux.Handle("GET /games/blackjack/{id}", h.authn.Require(h.handleBlackjackGet))
	mux.Handle("POST /games/blackjack/{id}/hit", h.authn.Require(h.handleBlackjackHit))
	mux.Handle("POST /games/blackjack/{id}/stand", h.authn.Require(h.handleBlackjackStand))
	mux.Handle("POST /games/slots", h.authn.Require(h.handleSlots))
	mux.Handle("POST /games/roulette", h.authn.Require(h.handleRoulette))
	mux.Handle("POST /games/wheel", h.authn.Require(h.handleWheel))
	mux.Handle("POST /games/baccarat", h.authn.Require(h.handleBaccarat))
	mux.Handle("DELETE /games/rounds/{id}", h.authn.Require(h.handleCancel))
}

func userID(r *http.Request) string {
	return middleware.Session(r.Context()).User().ID
}

func (h *GameHandler) handleBlackjackStart(w http.ResponseWriter, r *http.Request) {
	var req dto.StakeRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := h.engine.StartBlackjack(r.Context(), userID(r), req.Stake)
	h.reply(w, r, view, err)
}

func (h *GameHandler) handleBlackjackGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.engine.BlackjackRound(userID(r), r.PathValue("id"))
	h.reply(w, r, view, err)
}

func (h *GameHandler) handleBlackjackHit(w http.ResponseWriter, r *http.Request) {
	view, err := h.engine.Hit(r.Context(), userID(r), r.PathValue("id"))
	h.reply(w, r, view, err)
}

func (h *GameHandler) handleBlackjackStand(w http.ResponseWriter, r *http.Request) {
	view, err := h.engine.Stand(r.Context(), userID(r), r.PathValue("id"))
	h.reply(w, r, view, err)
}

func (h *GameHandler) handleSlots(w http.ResponseWriter, r *http.Request) {
	var req dto.StakeRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := h.engine.SpinSlots(r.Context(), wager.Round{ID: req.RoundID, UserID: userID(r)}, req.Stake)
	h.reply(w, r, out, err)
}

func (h *GameHandler) handleRoulette(w http.ResponseWriter, r *http.Request) {
	var req dto.RouletteRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := h.engine.SpinRoulette(r.Context(), wager.Round{ID: req.RoundID, UserID: userID(r)}, req.Bets)
	h.reply(w, r, out, err)
}

func (h *GameHandler) handleWheel(w http.ResponseWriter, r *http.Request) {
	var req dto.StakeRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := h.engine.SpinWheel(r.Context(), wager.Round{ID: req.RoundID, UserID: userID(r)}, req.Stake)
	h.reply(w, r, out, err)
}

func (h *GameHandler) handleBaccarat(w http.ResponseWriter, r *http.Request) {
	var req dto.BaccaratRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := h.engine.PlayBaccarat(r.Context(), wager.Round{UserID: userID(r)}, req.Stake, req.Side)
	h.reply(w, r, out, err)
}

func (h *GameHandler) handleCancel(w http.ResponseWriter, r *http.Request) {
	if !h.engine.Cancel(userID(r), r.PathValue("id")) {
		respond.Error(w, http.StatusNotFound, wager.ErrRoundNotFound.Error())
		return
	}
	respond.JSON(w, http.StatusAccepted, "round cancelled", nil)
}

func (h *GameHandler) reply(w http.ResponseWriter, r *http.Request, data any, err error) {
	if err != nil {
		respond.Failure(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", data)
}
