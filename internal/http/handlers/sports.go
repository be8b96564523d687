package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hongminglow/red-syndicate/internal/http/respond"
	"github.com/hongminglow/red-syndicate/internal/middleware"
	"github.com/hongminglow/red-syndicate/internal/models/dto"
	"github.com/hongminglow/red-syndicate/internal/sportsbook"
)

// SportsHandler exposes the match catalog and each user's bet slip.
type SportsHandler struct {
	book  *sportsbook.Service
	authn *middleware.Authenticator
	log   *slog.Logger
}

func NewSportsHandler(book *sportsbook.Service, authn *middleware.Authenticator, log *slog.Logger) *SportsHandler {
	return &SportsHandler{book: book, authn: authn, log: log}
}

func (h *SportsHandler) Register(mux *http.ServeMux) {
	mux.Handle("GET /sports/matches", h.authn.Require(h.handleMatches))
	mux.Handle("GET /sports/slip", h.authn.Require(h.handleSlip))
	mux.Handle("POST /sports/slip", h.authn.Require(h.handleAdd))
	mux.Handle("PATCH /sports/slip/{id}", h.authn.Require(h.handleStake))
	mux.Handle("DELETE /sports/slip/{id}", h.authn.Require(h.handleRemove))
	mux.Handle("DELETE /sports/slip", h.authn.Require(h.handleClear))
	mux.Handle("POST /sports/slip/place", h.authn.Require(h.handlePlace))
}

func (h *SportsHandler) handleMatches(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, "ok", h.book.Book().Matches(r.URL.Query().Get("sport")))
}

func (h *SportsHandler) handleSlip(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, "ok", slipView(h.book.Slip(userID(r))))
}

func (h *SportsHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req dto.SlipAddRequest
	if !decode(w, r, &req) {
		return
	}
	entry, err := h.book.Add(userID(r), req.MatchID, req.MarketID, req.OptionID)
	if err != nil {
		respond.Failure(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "added to bet slip", entry)
}

func (h *SportsHandler) handleStake(w http.ResponseWriter, r *http.Request) {
	var req dto.SlipStakeRequest
	if !decode(w, r, &req) {
		return
	}
	entry, err := h.book.Slip(userID(r)).SetStake(r.PathValue("id"), req.Stake)
	if err != nil {
		respond.Failure(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "stake updated", entry)
}

func (h *SportsHandler) handleRemove(w http.ResponseWriter, r *http.Request) {
	if !h.book.Slip(userID(r)).Remove(r.PathValue("id")) {
		respond.Failure(w, r, h.log, sportsbook.ErrEntryNotFound)
		return
	}
	respond.JSON(w, http.StatusOK, "removed from bet slip", nil)
}

func (h *SportsHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	h.book.Slip(userID(r)).Clear()
	respond.JSON(w, http.StatusOK, "bet slip cleared", nil)
}

func (h *SportsHandler) handlePlace(w http.ResponseWriter, r *http.Request) {
	placement, err := h.book.Place(r.Context(), userID(r))
	if err != nil {
		respond.Failure(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "bets placed", placement)
}

func slipView(slip *sportsbook.Slip) dto.SlipResponse {
	stake, win := slip.Totals()
	return dto.SlipResponse{Entries: slip.Entries(), TotalStake: stake, PotentialWin: win}
}
