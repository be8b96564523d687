package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hongminglow/red-syndicate/internal/bonus"
	"github.com/hongminglow/red-syndicate/internal/config"
	"github.com/hongminglow/red-syndicate/internal/deposit"
	"github.com/hongminglow/red-syndicate/internal/http/handlers"
	"github.com/hongminglow/red-syndicate/internal/ledger"
	"github.com/hongminglow/red-syndicate/internal/metrics"
	"github.com/hongminglow/red-syndicate/internal/middleware"
	"github.com/hongminglow/red-syndicate/internal/sportsbook"
	"github.com/hongminglow/red-syndicate/internal/wager"
)

// Services groups the domain services the HTTP surface fronts.
type Services struct {
	Ledger   *ledger.Store
	Authn    *middleware.Authenticator
	Wager    *wager.Engine
	Deposits *deposit.Service
	Sports   *sportsbook.Service
	Bonuses  *bonus.Service
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// Routes builds the full handler chain.
func Routes(cfg config.Config, svc Services, log *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now(), svc.Ledger).Register(mux)
	mux.Handle("GET /metrics", metrics.Handler())
	handlers.NewAuthHandler(svc.Authn, svc.Ledger, log).Register(mux)
	handlers.NewGameHandler(svc.Wager, svc.Authn, log).Register(mux)
	handlers.NewWalletHandler(svc.Deposits, svc.Authn, log).Register(mux)
	handlers.NewSportsHandler(svc.Sports, svc.Authn, log).Register(mux)
	handlers.NewBonusHandler(svc.Bonuses, svc.Authn, log).Register(mux)

	return middleware.Logging(log, middleware.CORS(cfg.CORSOrigins(), middleware.Metrics(mux)))
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, svc Services, log *slog.Logger) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           Routes(cfg, svc, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Animated rounds hold the response until they settle.
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(log.Handler(), slog.LevelError),
	}

	return &Server{inner: httpServer}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
