package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/movelens/movelens/internal/core"
	"github.com/movelens/movelens/internal/core/engine"
	"github.com/movelens/movelens/internal/metrics"
)

const (
	// DefaultBaseURL is the public PokeAPI v2 root.
	DefaultBaseURL = "https://pokeapi.co/api/v2"

	// Source labels analyses resolved through this provider.
	Source = "pokeapi"

	ResourcePokemon = "pokemon"
	ResourceMove    = "move"

	maxPayloadBytes = 8 << 20
)

var (
	// ErrNotFound reports an unknown species or move.
	ErrNotFound = errors.New("resource not found")

	// ErrRateLimited reports a request refused by the local limiter or by
	// an upstream 429.
	ErrRateLimited = engine.ErrRateLimited

	// ErrPayloadTooLarge reports a body over maxPayloadBytes.
	ErrPayloadTooLarge = errors.New("payload too large")
)

// StatusError is an unexpected upstream HTTP status.
type StatusError struct {
	Resource   string
	Key        string
	StatusCode int
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("pokeapi %s %q: unexpected status %d", e.Resource, e.Key, e.StatusCode)
}

// Unwrap lets callers match 429 responses against ErrRateLimited.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	return nil
}

// Temporary marks throttling and server-side failures as worth retrying.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// PayloadStore persists raw upstream payloads.
type PayloadStore interface {
	GetCachedPayload(ctx context.Context, resource, key string) (*core.CachedPayload, error)
	SetCachedPayload(ctx context.Context, resource, key string, payload []byte, ttl time.Duration) error
}

// Client fetches species and move data from PokeAPI.
type Client struct {
	Store       PayloadStore
	HTTPClient  *http.Client
	Limiter     *engine.RateLimiter
	CachePolicy CachePolicy
	UseCache    bool
	BaseURL     string
	UserAgent   string
	Clock       func() time.Time
}

// FetchSpecies returns the species bundle for a name or national dex id.
func (c *Client) FetchSpecies(ctx context.Context, identifier string) (*core.PokemonData, error) {
	if c == nil {
		return nil, errors.New("pokeapi client is not configured")
	}

	key := strings.ToLower(strings.TrimSpace(identifier))
	if key == "" {
		return nil, errors.New("species identifier is required")
	}

	target := c.resourceURL(ResourcePokemon, key)
	payload, fresh, err := c.get(ctx, ResourcePokemon, key, target)
	if err != nil {
		return nil, err
	}

	var pokemon core.PokemonData
	if err := json.Unmarshal(payload, &pokemon); err != nil {
		return nil, fmt.Errorf("decode pokemon %s: %w", key, err)
	}
	if fresh {
		c.cachePayload(ctx, ResourcePokemon, key, payload)
	}
	return &pokemon, nil
}

// FetchMoveDetail returns move details, following the reference URL when it
// is absolute.
func (c *Client) FetchMoveDetail(ctx context.Context, ref core.MoveRef) (*core.MoveDetail, error) {
	if c == nil {
		return nil, errors.New("pokeapi client is not configured")
	}

	key := strings.ToLower(strings.TrimSpace(ref.Name))
	if key == "" {
		return nil, errors.New("move name is required")
	}

	target := c.resourceURL(ResourceMove, key)
	if parsed, err := url.Parse(strings.TrimSpace(ref.URL)); err == nil && parsed.IsAbs() {
		target = parsed.String()
	}

	payload, fresh, err := c.get(ctx, ResourceMove, key, target)
	if err != nil {
		return nil, err
	}

	var detail core.MoveDetail
	if err := json.Unmarshal(payload, &detail); err != nil {
		return nil, fmt.Errorf("decode move %s: %w", key, err)
	}
	if fresh {
		c.cachePayload(ctx, ResourceMove, key, payload)
	}
	if detail.Name == "" {
		detail.Name = key
	}
	return &detail, nil
}

// get returns the payload for one resource. fresh is set when it came from
// upstream rather than the store; callers cache it once it decodes.
func (c *Client) get(ctx context.Context, resource, key, target string) (payload []byte, fresh bool, err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if c.UseCache && c.Store != nil {
		if cached, err := c.Store.GetCachedPayload(ctx, resource, key); err == nil && cached != nil {
			metrics.RecordUpstreamRequest(resource, "cache", 0)
			return cached.Payload, false, nil
		}
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return nil, false, fmt.Errorf("invalid %s url: %w", resource, err)
	}
	endpoint := parsed.Hostname()

	if c.Limiter != nil && endpoint != "" {
		allowed, wait, err := c.Limiter.Allow(ctx, endpoint)
		if err != nil {
			return nil, false, err
		}
		if !allowed {
			metrics.RecordUpstreamRequest(resource, "rate_limited", 0)
			return nil, false, fmt.Errorf("%s %s: %w, retry in %s", resource, key, ErrRateLimited, wait.Round(time.Second))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if ua := strings.TrimSpace(c.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	if c.Limiter != nil && endpoint != "" {
		if err := c.Limiter.Record(ctx, endpoint); err != nil {
			return nil, false, err
		}
	}

	start := c.now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(resource, "error", c.now().Sub(start))
		return nil, false, fmt.Errorf("fetch %s %s: %w", resource, key, err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	metrics.RecordUpstreamRequest(resource, statusClass(resp.StatusCode), c.now().Sub(start))

	switch {
	case resp.StatusCode == http.StatusOK:
		payload, err = io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes+1))
		if err != nil {
			return nil, false, fmt.Errorf("read %s %s: %w", resource, key, err)
		}
		if len(payload) > maxPayloadBytes {
			return nil, false, fmt.Errorf("read %s %s: %w", resource, key, ErrPayloadTooLarge)
		}
		return payload, true, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, fmt.Errorf("%s %q: %w", resource, key, ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		wait := retryAfterHeader(resp)
		if c.Limiter != nil && endpoint != "" && wait > 0 {
			_ = c.Limiter.Record429(ctx, endpoint, wait)
		}
		return nil, false, &StatusError{Resource: resource, Key: key, StatusCode: resp.StatusCode, RetryAfter: wait}
	default:
		return nil, false, &StatusError{Resource: resource, Key: key, StatusCode: resp.StatusCode}
	}
}

func (c *Client) cachePayload(ctx context.Context, resource, key string, payload []byte) {
	if c.Store == nil || !c.UseCache || len(payload) == 0 {
		return
	}

	ttl := cacheTTL(c.CachePolicy, resource)
	if ttl <= 0 {
		return
	}

	_ = c.Store.SetCachedPayload(ctx, resource, key, payload, ttl)
}

func (c *Client) resourceURL(resource, key string) string {
	return c.baseURL() + "/" + resource + "/" + url.PathEscape(key)
}

func (c *Client) baseURL() string {
	if c != nil {
		if base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/"); base != "" {
			return base
		}
	}
	return DefaultBaseURL
}

// Host is the upstream hostname that rate limits are keyed on.
func (c *Client) Host() string {
	parsed, err := url.Parse(c.baseURL())
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func (c *Client) now() time.Time {
	if c != nil && c.Clock != nil {
		return c.Clock()
	}
	return time.Now().UTC()
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return fmt.Sprintf("%dxx", code/100)
}
