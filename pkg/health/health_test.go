package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe_FailureThreshold(t *testing.T) {
	failing := &probe{
		name:    "db",
		timeout: time.Second,
		check: func(_ context.Context) error {
			return errors.New("connection refused")
		},
	}
	failing.healthy.Store(true)

	ctx := context.Background()

	// Below the threshold the probe still reports healthy.
	for range failureThreshold - 1 {
		failing.tick(ctx)
	}
	_, failed := failing.failure()
	assert.False(t, failed)

	failing.tick(ctx)
	msg, failed := failing.failure()
	require.True(t, failed)
	assert.Equal(t, "connection refused", msg)
}

func TestProbe_RecoversAfterSuccess(t *testing.T) {
	var healthy bool
	p := &probe{
		name:    "db",
		timeout: time.Second,
		check: func(_ context.Context) error {
			if healthy {
				return nil
			}
			return errors.New("down")
		},
	}
	p.healthy.Store(true)

	ctx := context.Background()
	for range failureThreshold {
		p.tick(ctx)
	}
	_, failed := p.failure()
	require.True(t, failed)

	healthy = true
	p.tick(ctx)
	_, failed = p.failure()
	assert.False(t, failed)
}

func TestService_Endpoints(t *testing.T) {
	svc := New()
	svc.AddLivenessCheck("always-ok", time.Second, func(_ context.Context) error {
		return nil
	})
	svc.AddReadinessCheck("dep", time.Second, func(_ context.Context) error {
		return nil
	})

	t.Run("not ready until SetReady", func(t *testing.T) {
		rec := httptest.NewRecorder()
		svc.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "_readiness")
	})

	t.Run("live and ready once marked", func(t *testing.T) {
		svc.SetReady(true)

		rec := httptest.NewRecorder()
		svc.LiveEndpoint(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"ok"`)

		rec = httptest.NewRecorder()
		svc.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("draining flips readiness but not liveness", func(t *testing.T) {
		svc.SetReady(false)

		rec := httptest.NewRecorder()
		svc.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		rec = httptest.NewRecorder()
		svc.LiveEndpoint(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestService_FailingProbeSurfacesInResponse(t *testing.T) {
	svc := New()
	svc.AddReadinessCheck("postgres", time.Second, func(_ context.Context) error {
		return errors.New("dial tcp: refused")
	})
	svc.SetReady(true)

	// Drive the probe past the failure threshold without starting the
	// background goroutines.
	p := svc.readiness[0]
	for range failureThreshold {
		p.tick(context.Background())
	}

	rec := httptest.NewRecorder()
	svc.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "postgres")
	assert.Contains(t, rec.Body.String(), "dial tcp: refused")
}

func TestGoroutineCountCheck(t *testing.T) {
	require.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	require.Error(t, GoroutineCountCheck(0)(context.Background()))
}
