package httpmiddleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	rl := &rateLimiter{
		cfg:     RateLimitConfig{Max: 2, Window: time.Minute},
		clients: make(map[string]*window),
	}

	remaining, _, ok := rl.allow("a", now)
	require.True(t, ok)
	assert.Equal(t, 1, remaining)

	remaining, _, ok = rl.allow("a", now)
	require.True(t, ok)
	assert.Equal(t, 0, remaining)

	_, resetAt, ok := rl.allow("a", now)
	assert.False(t, ok)
	assert.Equal(t, now.Add(time.Minute), resetAt)

	// Other clients have their own window.
	_, _, ok = rl.allow("b", now)
	assert.True(t, ok)

	// A new window opens once the old one expires.
	_, _, ok = rl.allow("a", now.Add(time.Minute))
	assert.True(t, ok)
}

func TestRateLimiter_Evict(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	rl := &rateLimiter{
		cfg:     RateLimitConfig{Max: 5, Window: time.Minute},
		clients: make(map[string]*window),
	}

	rl.allow("stale", now)
	rl.allow("fresh", now.Add(30*time.Second))

	rl.evict(now.Add(time.Minute))

	assert.NotContains(t, rl.clients, "stale")
	assert.Contains(t, rl.clients, "fresh")
}

func TestRateLimit_Middleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := Wrap(okHandler(), RateLimit(ctx, RateLimitConfig{
		Max:    2,
		Window: time.Minute,
	}))

	do := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := do("10.0.0.1:1234")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))

	rec = do("10.0.0.1:1234")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do("10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// A different client is unaffected.
	rec = do("10.0.0.2:1234")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "10.0.0.1:1234",
			want:       "10.0.0.1",
		},
		{
			name:       "x-forwarded-for wins",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.5"},
			want:       "203.0.113.5",
		},
		{
			name:       "first hop of x-forwarded-for chain",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.5, 70.41.3.18"},
			want:       "203.0.113.5",
		},
		{
			name:       "x-real-ip fallback",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-IP": "203.0.113.9"},
			want:       "203.0.113.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}
