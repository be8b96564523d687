package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/hongminglow/red-syndicate/internal/http/respond"
)

// Pinger reports whether the storage medium is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler returns uptime and storage status.
type HealthHandler struct {
	startedAt time.Time
	store     Pinger
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time, store Pinger) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, store: store}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	body := map[string]string{
		"status":  "ok",
		"storage": "ok",
		"uptime":  time.Since(h.startedAt).Truncate(time.Second).String(),
	}
	if err := h.store.Ping(ctx); err != nil {
		body["status"] = "degraded"
		body["storage"] = err.Error()
		respond.JSON(w, http.StatusServiceUnavailable, "storage unavailable", body)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", body)
}
