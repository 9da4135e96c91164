package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bryanspearman/event-listener-server/internal/config"
	"github.com/stretchr/testify/require"
)

func limitedHandler(cfg config.RateLimitConfig) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return LoginRateLimit(cfg)(next)
}

func TestLoginRateLimit_BlocksAfterBurst(t *testing.T) {
	handler := limitedHandler(config.RateLimitConfig{LoginPerMinute: 1, LoginBurst: 3})

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/v1/login", nil)
		r.RemoteAddr = "203.0.113.7:5000"
		handler.ServeHTTP(rec, r)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/login", nil)
	r.RemoteAddr = "203.0.113.7:5000"
	handler.ServeHTTP(rec, r)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestLoginRateLimit_PerClient(t *testing.T) {
	handler := limitedHandler(config.RateLimitConfig{LoginPerMinute: 1, LoginBurst: 1})

	first := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/login", nil)
	r.RemoteAddr = "203.0.113.7:5000"
	handler.ServeHTTP(first, r)
	require.Equal(t, http.StatusOK, first.Code)

	// A different client has its own bucket.
	second := httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/api/v1/login", nil)
	r.RemoteAddr = "203.0.113.8:5000"
	handler.ServeHTTP(second, r)
	require.Equal(t, http.StatusOK, second.Code)
}

func TestLoginRateLimit_Disabled(t *testing.T) {
	handler := limitedHandler(config.RateLimitConfig{LoginPerMinute: 0})

	for i := 0; i < 20; i++ {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/v1/login", nil)
		r.RemoteAddr = "203.0.113.7:5000"
		handler.ServeHTTP(rec, r)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}
