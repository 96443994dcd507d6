package handlers

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/fulmenhq/gofulmen/errors"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/movelens/movelens/internal/errors"
	"github.com/movelens/movelens/internal/metrics"
)

// Check results reported per checker.
const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
	statusTimeout   = "timeout"
)

// HealthResponse is the body of a passing /health request.
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ProbeResponse is the body of a passing Kubernetes-style probe.
type ProbeResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthChecker is implemented by anything the server depends on.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

type registeredChecker struct {
	checker  HealthChecker
	optional bool
}

// HealthManager runs registered checkers for the health and probe routes.
// A failing optional checker degrades the service instead of failing it.
type HealthManager struct {
	mu       sync.RWMutex
	checkers map[string]registeredChecker
	version  string
}

// NewHealthManager returns a manager with no checkers.
func NewHealthManager(version string) *HealthManager {
	return &HealthManager{
		checkers: make(map[string]registeredChecker),
		version:  version,
	}
}

// RegisterChecker adds a checker whose failure makes the service unhealthy.
func (hm *HealthManager) RegisterChecker(name string, checker HealthChecker) {
	hm.register(name, checker, false)
}

// RegisterOptionalChecker adds a checker whose failure only degrades the
// service, such as an upstream that is backing off.
func (hm *HealthManager) RegisterOptionalChecker(name string, checker HealthChecker) {
	hm.register(name, checker, true)
}

func (hm *HealthManager) register(name string, checker HealthChecker, optional bool) {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	hm.checkers[name] = registeredChecker{checker: checker, optional: optional}
}

// runHealthChecks runs every checker concurrently under ctx.
func (hm *HealthManager) runHealthChecks(ctx context.Context) map[string]string {
	hm.mu.RLock()
	checkers := make(map[string]registeredChecker, len(hm.checkers))
	for name, c := range hm.checkers {
		checkers[name] = c
	}
	hm.mu.RUnlock()

	var (
		mu      sync.Mutex
		results = make(map[string]string, len(checkers))
		g       errgroup.Group
	)
	for name, c := range checkers {
		g.Go(func() error {
			started := time.Now()
			err := c.checker.CheckHealth(ctx)
			metrics.RecordHealthCheck(name, err == nil, time.Since(started))

			result := statusHealthy
			switch {
			case err == nil:
			case ctx.Err() != nil:
				result = statusTimeout
			case c.optional:
				result = statusDegraded
			default:
				result = statusUnhealthy
			}

			mu.Lock()
			results[name] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// determineOverallStatus folds check results into one status. Any unhealthy
// check wins, then any degraded or timed out check.
func (hm *HealthManager) determineOverallStatus(checks map[string]string) string {
	overall := statusHealthy
	for _, result := range checks {
		switch result {
		case statusUnhealthy:
			return statusUnhealthy
		case statusDegraded, statusTimeout:
			overall = statusDegraded
		}
	}
	return overall
}

type probe struct {
	name    string
	timeout time.Duration
	failure string
}

var (
	aggregateProbe = probe{name: "aggregate", timeout: 5 * time.Second, failure: "aggregate health check failed"}
	readyProbe     = probe{name: "ready", timeout: 5 * time.Second, failure: "readiness probe failed"}
	startupProbe   = probe{name: "startup", timeout: 3 * time.Second, failure: "startup probe failed"}
)

func (hm *HealthManager) evaluate(r *http.Request, p probe) (string, map[string]string) {
	ctx, cancel := context.WithTimeout(r.Context(), p.timeout)
	defer cancel()

	checks := hm.runHealthChecks(ctx)
	return hm.determineOverallStatus(checks), checks
}

func (hm *HealthManager) serveProbe(w http.ResponseWriter, r *http.Request, p probe) {
	status, checks := hm.evaluate(r, p)
	if status == statusUnhealthy {
		respondWithError(w, r, probeFailure(p, status, checks))
		return
	}
	writeJSON(w, http.StatusOK, ProbeResponse{Status: status, Timestamp: time.Now().UTC()})
}

// HealthHandler serves GET /health with per-check results.
func (hm *HealthManager) HealthHandler(w http.ResponseWriter, r *http.Request) {
	status, checks := hm.evaluate(r, aggregateProbe)
	if status == statusUnhealthy {
		respondWithError(w, r, probeFailure(aggregateProbe, status, checks))
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    status,
		Version:   hm.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

// LivenessHandler reports the process as alive without running checkers,
// so an upstream outage never gets the server restarted.
func (hm *HealthManager) LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ProbeResponse{Status: statusHealthy, Timestamp: time.Now().UTC()})
}

// ReadinessHandler fails while any required checker fails.
func (hm *HealthManager) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	hm.serveProbe(w, r, readyProbe)
}

// StartupHandler fails until required checkers pass once initialization is done.
func (hm *HealthManager) StartupHandler(w http.ResponseWriter, r *http.Request) {
	hm.serveProbe(w, r, startupProbe)
}

func probeFailure(p probe, status string, checks map[string]string) *errors.ErrorEnvelope {
	details := map[string]interface{}{"status": status, "probe": p.name}
	if len(checks) > 0 {
		details["checks"] = checks
	}
	envelope := apperrors.NewServiceUnavailableError(p.failure).WithDetails(details)

	var failing []string
	for name, result := range checks {
		if result != statusHealthy {
			failing = append(failing, name)
		}
	}
	if len(failing) == 0 {
		return envelope
	}
	sort.Strings(failing)
	if withContext, err := envelope.WithContext(map[string]interface{}{"unhealthy_checks": failing}); err == nil {
		envelope = withContext
	}
	return envelope
}

var globalHealthManager *HealthManager

// InitHealthManager replaces the manager used by the package-level handlers.
func InitHealthManager(version string) {
	globalHealthManager = NewHealthManager(version)
}

// GetHealthManager returns the manager set by InitHealthManager.
func GetHealthManager() *HealthManager {
	return globalHealthManager
}

func withManager(p probe, serve func(*HealthManager, http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hm := globalHealthManager; hm != nil {
			serve(hm, w, r)
			return
		}
		respondWithError(w, r, apperrors.NewServiceUnavailableError("health manager not initialized").
			WithDetails(map[string]interface{}{"probe": p.name, "status": "unknown"}))
	}
}

// Package-level handlers backed by the global manager.
var (
	HealthHandler    = withManager(aggregateProbe, (*HealthManager).HealthHandler)
	LivenessHandler  = withManager(probe{name: "live"}, (*HealthManager).LivenessHandler)
	ReadinessHandler = withManager(readyProbe, (*HealthManager).ReadinessHandler)
	StartupHandler   = withManager(startupProbe, (*HealthManager).StartupHandler)
)
