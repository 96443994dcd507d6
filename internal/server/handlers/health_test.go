package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/movelens/movelens/internal/errors"
)

type checkerFunc func(context.Context) error

func (f checkerFunc) CheckHealth(ctx context.Context) error { return f(ctx) }

func healthy() HealthChecker { return checkerFunc(func(context.Context) error { return nil }) }

func failing(msg string) HealthChecker {
	return checkerFunc(func(context.Context) error { return errors.New(msg) })
}

func call(h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthHandlerHealthy(t *testing.T) {
	hm := NewHealthManager("1.2.3")
	hm.RegisterChecker("store", healthy())
	hm.RegisterChecker("app_identity", healthy())

	rec := call(hm.HealthHandler, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, statusHealthy, resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, map[string]string{"store": statusHealthy, "app_identity": statusHealthy}, resp.Checks)
}

func TestHealthHandlerRequiredFailure(t *testing.T) {
	hm := NewHealthManager("1.2.3")
	hm.RegisterChecker("store", failing("database is locked"))
	hm.RegisterOptionalChecker("pokeapi", healthy())

	rec := call(hm.HealthHandler, "/health")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp apperrors.HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "SERVICE_UNAVAILABLE", resp.Error.Code)
	checks, ok := resp.Error.Details["checks"].(map[string]interface{})
	require.True(t, ok, "details: %v", resp.Error.Details)
	assert.Equal(t, statusUnhealthy, checks["store"])
	assert.Equal(t, statusHealthy, checks["pokeapi"])
	assert.Equal(t, "aggregate", resp.Error.Details["probe"])
}

func TestOptionalFailureDegrades(t *testing.T) {
	hm := NewHealthManager("dev")
	hm.RegisterChecker("store", healthy())
	hm.RegisterOptionalChecker("pokeapi", failing("backing off"))

	rec := call(hm.ReadinessHandler, "/health/ready")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ProbeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, statusDegraded, resp.Status)
}

func TestReadinessFailsOnRequiredChecker(t *testing.T) {
	hm := NewHealthManager("dev")
	hm.RegisterChecker("telemetry", failing("not initialized"))

	assert.Equal(t, http.StatusServiceUnavailable, call(hm.ReadinessHandler, "/health/ready").Code)
	assert.Equal(t, http.StatusServiceUnavailable, call(hm.StartupHandler, "/health/startup").Code)
}

func TestLivenessIgnoresCheckers(t *testing.T) {
	hm := NewHealthManager("dev")
	hm.RegisterChecker("store", failing("gone"))

	rec := call(hm.LivenessHandler, "/health/live")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCheckerHonoursDeadline(t *testing.T) {
	hm := NewHealthManager("dev")
	hm.RegisterChecker("slow", checkerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	checks := hm.runHealthChecks(ctx)
	assert.Equal(t, statusTimeout, checks["slow"])
	assert.Equal(t, statusDegraded, hm.determineOverallStatus(checks))
}

func TestDetermineOverallStatus(t *testing.T) {
	hm := NewHealthManager("dev")
	assert.Equal(t, statusHealthy, hm.determineOverallStatus(nil))
	assert.Equal(t, statusDegraded, hm.determineOverallStatus(map[string]string{"a": statusHealthy, "b": statusTimeout}))
	assert.Equal(t, statusUnhealthy, hm.determineOverallStatus(map[string]string{"a": statusDegraded, "b": statusUnhealthy}))
}

func TestGlobalHandlersWithoutManager(t *testing.T) {
	previous := globalHealthManager
	globalHealthManager = nil
	t.Cleanup(func() { globalHealthManager = previous })

	for _, h := range []http.HandlerFunc{HealthHandler, LivenessHandler, ReadinessHandler, StartupHandler} {
		assert.Equal(t, http.StatusServiceUnavailable, call(h, "/health").Code)
	}

	InitHealthManager("9.9.9")
	require.NotNil(t, GetHealthManager())
	assert.Equal(t, http.StatusOK, call(HealthHandler, "/health").Code)
}
