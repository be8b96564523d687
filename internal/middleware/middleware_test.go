package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/red-syndicate/internal/auth"
	"github.com/hongminglow/red-syndicate/internal/ledger"
	"github.com/hongminglow/red-syndicate/internal/logger"
	"github.com/hongminglow/red-syndicate/internal/storage/memory"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	h := CORS([]string{"https://Casino.io"}, next)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://casino.io")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "https://casino.io", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/login", nil)
	req.Header.Set("Origin", "https://evil.io")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestLoggingAssignsCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	var seen string
	h := Logging(log, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.CorrelationIDFromContext(r.Context())
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/register", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(CorrelationHeader))
	assert.Contains(t, buf.String(), "status=201")
	assert.Contains(t, buf.String(), "correlation_id="+seen)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(CorrelationHeader, "2f1c7c5e-8d7e-4c55-9b0a-3f3d2f1e0a11")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "2f1c7c5e-8d7e-4c55-9b0a-3f3d2f1e0a11", seen)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	assert.Empty(t, BearerToken(req))

	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, BearerToken(req))

	req.Header.Set("Authorization", "bearer  tok ")
	assert.Equal(t, "tok", BearerToken(req))
}

func TestRequire(t *testing.T) {
	ctx := context.Background()
	tokens := auth.NewTokenManager("0123456789abcdef0123", "red-syndicate")
	store := ledger.New(memory.New(), logger.Discard(), ledger.WithTokenGenerator(tokens.Generate))
	require.NoError(t, store.Init(ctx))

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := store.CreateUser(ctx, ledger.NewUser{
		Username: "lucky", Email: "lucky@casino.io", PasswordHash: string(hash), Balance: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	session, err := store.CreateSession(ctx, user.ID)
	require.NoError(t, err)

	a := NewAuthenticator(store, tokens, logger.Discard())
	h := a.Require(func(w http.ResponseWriter, r *http.Request) {
		svc := Session(r.Context())
		require.NotNil(t, svc)
		_, _ = w.Write([]byte(svc.User().Username))
	})

	serve := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := serve(session.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "lucky", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve("").Code)
	assert.Equal(t, http.StatusUnauthorized, serve("not-a-jwt").Code)

	forged, err := tokens.Generate(*user, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(forged).Code)

	require.NoError(t, store.DestroySession(ctx, session.Token))
	assert.Equal(t, http.StatusUnauthorized, serve(session.Token).Code)
}
