package engine

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/movelens/movelens/internal/core"
)

// RateLimiter keeps PokeAPI traffic inside a per-host request budget. Window
// and backoff state live in the store so concurrent CLI runs and the server
// share one budget.
type RateLimiter struct {
	Store  RateLimitStore
	Limits map[string]RateLimit
	Clock  func() time.Time
	Margin float64
}

// RateLimit is a request budget per window.
type RateLimit struct {
	RequestsPerWindow int
	WindowDuration    time.Duration
}

// RateLimitStore persists limiter state per host.
type RateLimitStore interface {
	GetRateLimit(ctx context.Context, endpoint string) (*core.RateLimitState, error)
	UpdateRateLimit(ctx context.Context, endpoint string, state *core.RateLimitState) error
}

// DefaultLimits covers the public PokeAPI hosts. There is no published quota;
// fair use is roughly 100 requests per minute.
var DefaultLimits = map[string]RateLimit{
	"pokeapi.co":      {RequestsPerWindow: 100, WindowDuration: time.Minute},
	"beta.pokeapi.co": {RequestsPerWindow: 60, WindowDuration: time.Minute},
}

var fallbackLimit = RateLimit{RequestsPerWindow: 60, WindowDuration: time.Minute}

// Allow reports whether a request to endpoint fits the budget. When it does
// not, the returned duration is how long to wait. Store errors fail open.
func (r *RateLimiter) Allow(ctx context.Context, endpoint string) (bool, time.Duration, error) {
	if r == nil || r.Store == nil {
		return true, 0, nil
	}
	state, err := r.load(ctx, endpoint)
	if err != nil {
		return true, 0, err
	}

	now := r.now()
	if wait := state.BackoffRemaining(now); wait > 0 {
		return false, wait, nil
	}

	limit := r.getLimit(endpoint)
	windowEnd := state.WindowStart.Add(limit.WindowDuration)
	if now.After(windowEnd) {
		return true, 0, nil
	}
	if state.RequestCount >= limit.RequestsPerWindow {
		return false, windowEnd.Sub(now), nil
	}
	return true, 0, nil
}

// Record counts one request against the current window, starting a new
// window when the previous one has elapsed.
func (r *RateLimiter) Record(ctx context.Context, endpoint string) error {
	return r.update(ctx, endpoint, func(state *core.RateLimitState, now time.Time) {
		limit := r.getLimit(endpoint)
		if state.WindowStart.IsZero() || now.After(state.WindowStart.Add(limit.WindowDuration)) {
			state.WindowStart = now
			state.RequestCount = 0
		}
		state.RequestCount++
	})
}

// Record429 notes a throttled response and, when the upstream named a
// Retry-After, blocks the host until then.
func (r *RateLimiter) Record429(ctx context.Context, endpoint string, retryAfter time.Duration) error {
	return r.update(ctx, endpoint, func(state *core.RateLimitState, now time.Time) {
		at := now
		state.Last429At = &at
		if retryAfter > 0 {
			until := now.Add(retryAfter)
			state.BackoffUntil = &until
		}
	})
}

// Backoff returns how long endpoint remains blocked by an earlier 429.
func (r *RateLimiter) Backoff(ctx context.Context, endpoint string) (time.Duration, error) {
	if r == nil || r.Store == nil {
		return 0, nil
	}
	state, err := r.load(ctx, endpoint)
	if err != nil {
		return 0, err
	}
	return state.BackoffRemaining(r.now()), nil
}

// ApplyOverrides replaces per-host budgets with requests-per-minute values
// from config. Blank hosts and non-positive values are ignored.
func (r *RateLimiter) ApplyOverrides(overrides map[string]int) {
	if r == nil || len(overrides) == 0 {
		return
	}
	if r.Limits == nil {
		r.Limits = make(map[string]RateLimit, len(DefaultLimits)+len(overrides))
		for host, limit := range DefaultLimits {
			r.Limits[host] = limit
		}
	}
	for host, perMinute := range overrides {
		host = strings.TrimSpace(host)
		if host == "" || perMinute <= 0 {
			continue
		}
		r.Limits[host] = RateLimit{RequestsPerWindow: perMinute, WindowDuration: time.Minute}
	}
}

// ApplySafetyMargin scales every budget by margin, which must be in (0, 1].
func (r *RateLimiter) ApplySafetyMargin(margin float64) {
	if r == nil || margin <= 0 || margin > 1 {
		return
	}
	r.Margin = margin
}

func (r *RateLimiter) load(ctx context.Context, endpoint string) (*core.RateLimitState, error) {
	state, err := r.Store.GetRateLimit(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = &core.RateLimitState{WindowStart: r.now()}
	}
	return state, nil
}

func (r *RateLimiter) update(ctx context.Context, endpoint string, mutate func(*core.RateLimitState, time.Time)) error {
	if r == nil || r.Store == nil {
		return nil
	}
	state, err := r.load(ctx, endpoint)
	if err != nil {
		return err
	}
	mutate(state, r.now())
	return r.Store.UpdateRateLimit(ctx, endpoint, state)
}

// LimitFor returns the effective budget for endpoint after overrides and
// the safety margin.
func (r *RateLimiter) LimitFor(endpoint string) RateLimit {
	return r.getLimit(endpoint)
}

// getLimit resolves the budget for endpoint. Subdomains inherit the closest
// configured parent host.
func (r *RateLimiter) getLimit(endpoint string) RateLimit {
	if r == nil {
		return RateLimit{RequestsPerWindow: 1, WindowDuration: time.Minute}
	}
	limits := r.Limits
	if limits == nil {
		limits = DefaultLimits
	}

	for host := endpoint; host != ""; {
		if limit, ok := limits[host]; ok {
			return r.applyMargin(limit)
		}
		_, parent, ok := strings.Cut(host, ".")
		if !ok || !strings.Contains(parent, ".") {
			break
		}
		host = parent
	}
	return r.applyMargin(fallbackLimit)
}

func (r *RateLimiter) now() time.Time {
	if r != nil && r.Clock != nil {
		return r.Clock()
	}
	return time.Now().UTC()
}

func (r *RateLimiter) applyMargin(limit RateLimit) RateLimit {
	if r.Margin <= 0 || r.Margin > 1 {
		return limit
	}
	limit.RequestsPerWindow = max(1, int(math.Floor(float64(limit.RequestsPerWindow)*r.Margin)))
	return limit
}
