package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hongminglow/red-syndicate/internal/auth"
	"github.com/hongminglow/red-syndicate/internal/http/respond"
	"github.com/hongminglow/red-syndicate/internal/logger"
)

type sessionKey struct{}

// TokenParser rejects tokens that were not issued by this server.
type TokenParser interface {
	Parse(raw string) (*auth.Claims, error)
}

// Authenticator resumes a ledger session from the bearer token of each
// request and stores the authenticated auth.Service in the context.
type Authenticator struct {
	ledger auth.Ledger
	tokens TokenParser
	log    *slog.Logger
	opts   []auth.Option
}

// NewAuthenticator builds an Authenticator. tokens may be nil when session
// tokens are not JWTs.
func NewAuthenticator(l auth.Ledger, tokens TokenParser, log *slog.Logger, opts ...auth.Option) *Authenticator {
	if log == nil {
		log = slog.Default()
	}
	return &Authenticator{ledger: l, tokens: tokens, log: log, opts: opts}
}

// Service returns a fresh unauthenticated auth.Service for this request.
func (a *Authenticator) Service(ctx context.Context) *auth.Service {
	return auth.NewService(a.ledger, logger.FromContext(ctx, a.log), a.opts...)
}

// Require rejects requests without a live session.
func (a *Authenticator) Require(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			respond.Error(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if a.tokens != nil {
			if _, err := a.tokens.Parse(token); err != nil {
				respond.Error(w, http.StatusUnauthorized, "invalid token")
				return
			}
		}

		svc := a.Service(r.Context())
		if !svc.Resume(r.Context(), token) {
			respond.Error(w, http.StatusUnauthorized, "session expired")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, svc)))
	})
}

// Session returns the auth.Service stored by Require, or nil.
func Session(ctx context.Context) *auth.Service {
	svc, _ := ctx.Value(sessionKey{}).(*auth.Service)
	return svc
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
