package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/movelens/movelens/internal/core"
	"github.com/movelens/movelens/internal/metrics"
)

var (
	// ErrNoCompetitiveData marks an identifier whose analysis failed. It
	// wraps the underlying cause.
	ErrNoCompetitiveData = errors.New("no competitive data available")

	// ErrRateLimited reports a request refused because the upstream budget
	// is spent, locally or by a 429.
	ErrRateLimited = errors.New("rate limited")
)

// Analyzer produces a species analysis.
type Analyzer interface {
	Analyze(ctx context.Context, identifier string) (*core.SpeciesAnalysis, error)
}

// ServiceOptions configures the result cache.
type ServiceOptions struct {
	CacheSize int
	CacheTTL  time.Duration
	Logger    *logging.Logger
}

type cacheEntry struct {
	analysis *core.SpeciesAnalysis
	cause    error
}

// Service caches analyses per identifier. Definitive failures are cached
// too, transient ones are not.
type Service struct {
	analyzer Analyzer
	logger   *logging.Logger
	cache    *lru.LRU[string, cacheEntry]
}

// NewService wraps an analyzer with an expiring LRU cache.
func NewService(analyzer Analyzer, opts ServiceOptions) *Service {
	size := opts.CacheSize
	if size <= 0 {
		size = 256
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Service{
		analyzer: analyzer,
		logger:   opts.Logger,
		cache:    lru.NewLRU[string, cacheEntry](size, nil, ttl),
	}
}

// MoveSets returns the cached analysis for identifier, computing it on a miss.
func (s *Service) MoveSets(ctx context.Context, identifier string) (*core.SpeciesAnalysis, error) {
	key := cacheKey(identifier)
	if key == "" {
		return nil, errors.New("species identifier is required")
	}

	if entry, ok := s.cache.Get(key); ok {
		metrics.RecordMoveSetCache(true)
		s.debug("Move set cache hit", zap.String("species", key))
		if entry.analysis == nil {
			return nil, fmt.Errorf("%w: %w", ErrNoCompetitiveData, entry.cause)
		}
		cached := *entry.analysis
		cached.Provenance.FromCache = true
		return &cached, nil
	}

	metrics.RecordMoveSetCache(false)
	return s.compute(ctx, key)
}

// Refresh bypasses the cache and stores the new result.
func (s *Service) Refresh(ctx context.Context, identifier string) (*core.SpeciesAnalysis, error) {
	key := cacheKey(identifier)
	if key == "" {
		return nil, errors.New("species identifier is required")
	}
	return s.compute(ctx, key)
}

// Purge clears the cache.
func (s *Service) Purge() {
	s.cache.Purge()
}

// Len reports the number of cached identifiers.
func (s *Service) Len() int {
	return s.cache.Len()
}

func (s *Service) compute(ctx context.Context, key string) (*core.SpeciesAnalysis, error) {
	if s.analyzer == nil {
		return nil, errors.New("move set analyzer is not configured")
	}

	start := time.Now()
	analysis, err := s.analyzer.Analyze(ctx, key)
	if err != nil {
		metrics.RecordMoveSetGenerated(false, time.Since(start))
		if s.logger != nil {
			s.logger.Warn("Failed to generate competitive move sets",
				zap.String("species", key),
				zap.Error(err))
		}
		if !transient(err) {
			s.cache.Add(key, cacheEntry{cause: err})
		}
		return nil, fmt.Errorf("%w: %w", ErrNoCompetitiveData, err)
	}

	metrics.RecordMoveSetGenerated(true, time.Since(start))
	s.cache.Add(key, cacheEntry{analysis: analysis})
	return analysis, nil
}

// transient reports failures that say nothing about the species itself,
// such as a canceled caller or an exhausted upstream budget.
func transient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrRateLimited) {
		return true
	}
	var temp interface{ Temporary() bool }
	return errors.As(err, &temp) && temp.Temporary()
}

func (s *Service) debug(msg string, fields ...zap.Field) {
	if s.logger != nil {
		s.logger.Debug(msg, fields...)
	}
}

func cacheKey(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}
