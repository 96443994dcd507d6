package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movelens/movelens/internal/core"
)

type countingAnalyzer struct {
	calls map[string]int
	err   error
}

func (a *countingAnalyzer) Analyze(_ context.Context, identifier string) (*core.SpeciesAnalysis, error) {
	if a.calls == nil {
		a.calls = map[string]int{}
	}
	a.calls[identifier]++
	if a.err != nil {
		return nil, a.err
	}
	return &core.SpeciesAnalysis{Species: identifier, MoveSets: core.EmptyMoveSets()}, nil
}

func TestServiceCachesAnalyses(t *testing.T) {
	analyzer := &countingAnalyzer{}
	svc := NewService(analyzer, ServiceOptions{})

	first, err := svc.MoveSets(context.Background(), "Garchomp")
	require.NoError(t, err)
	assert.False(t, first.Provenance.FromCache)

	second, err := svc.MoveSets(context.Background(), " garchomp")
	require.NoError(t, err)
	assert.True(t, second.Provenance.FromCache)
	assert.Equal(t, "garchomp", second.Species)

	assert.Equal(t, 1, analyzer.calls["garchomp"])
	assert.Equal(t, 1, svc.Len())
}

func TestServiceCachesFailures(t *testing.T) {
	errUpstream := errors.New("species not found")
	analyzer := &countingAnalyzer{err: errUpstream}
	svc := NewService(analyzer, ServiceOptions{})

	_, err := svc.MoveSets(context.Background(), "missingno")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoCompetitiveData)
	assert.ErrorIs(t, err, errUpstream)

	_, err = svc.MoveSets(context.Background(), "missingno")
	assert.ErrorIs(t, err, ErrNoCompetitiveData)
	assert.Equal(t, 1, analyzer.calls["missingno"])
}

type temporaryError struct{}

func (temporaryError) Error() string   { return "upstream 503" }
func (temporaryError) Temporary() bool { return true }

func TestServiceSkipsCachingTransientFailures(t *testing.T) {
	cases := map[string]error{
		"canceled":     context.Canceled,
		"deadline":     context.DeadlineExceeded,
		"rate limited": fmt.Errorf("pokemon garchomp: %w, retry in 30s", ErrRateLimited),
		"temporary":    fmt.Errorf("fetch: %w", temporaryError{}),
	}
	for name, cause := range cases {
		t.Run(name, func(t *testing.T) {
			analyzer := &countingAnalyzer{err: cause}
			svc := NewService(analyzer, ServiceOptions{})

			_, err := svc.MoveSets(context.Background(), "garchomp")
			require.ErrorIs(t, err, ErrNoCompetitiveData)
			assert.Equal(t, 0, svc.Len())

			analyzer.err = nil
			analysis, err := svc.MoveSets(context.Background(), "garchomp")
			require.NoError(t, err)
			assert.False(t, analysis.Provenance.FromCache)
			assert.Equal(t, 2, analyzer.calls["garchomp"])
		})
	}
}

type analyzerFunc func(ctx context.Context, identifier string) (*core.SpeciesAnalysis, error)

func (f analyzerFunc) Analyze(ctx context.Context, identifier string) (*core.SpeciesAnalysis, error) {
	return f(ctx, identifier)
}

func TestServiceRecoversAfterCanceledCaller(t *testing.T) {
	calls := 0
	svc := NewService(analyzerFunc(func(ctx context.Context, identifier string) (*core.SpeciesAnalysis, error) {
		calls++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return &core.SpeciesAnalysis{Species: identifier, MoveSets: core.EmptyMoveSets()}, nil
	}), ServiceOptions{})

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.MoveSets(canceled, "garchomp")
	require.ErrorIs(t, err, context.Canceled)

	analysis, err := svc.MoveSets(context.Background(), "garchomp")
	require.NoError(t, err)
	assert.Equal(t, "garchomp", analysis.Species)
	assert.Equal(t, 2, calls)
}

func TestServiceRefreshAndPurge(t *testing.T) {
	analyzer := &countingAnalyzer{}
	svc := NewService(analyzer, ServiceOptions{CacheSize: 4, CacheTTL: time.Minute})

	_, err := svc.MoveSets(context.Background(), "lapras")
	require.NoError(t, err)
	_, err = svc.Refresh(context.Background(), "lapras")
	require.NoError(t, err)
	assert.Equal(t, 2, analyzer.calls["lapras"])
	assert.Equal(t, 1, svc.Len())

	svc.Purge()
	assert.Equal(t, 0, svc.Len())
}

func TestServiceRejectsBlankIdentifier(t *testing.T) {
	svc := NewService(&countingAnalyzer{}, ServiceOptions{})

	_, err := svc.MoveSets(context.Background(), " ")
	assert.Error(t, err)
	assert.Equal(t, 0, svc.Len())
}

func TestServiceWithGenerator(t *testing.T) {
	gen, moves := newGarchompGenerator()
	svc := NewService(gen, ServiceOptions{})

	analysis, err := svc.MoveSets(context.Background(), "garchomp")
	require.NoError(t, err)
	assert.Len(t, analysis.MoveSets.Sweeper, RoleSetSize)

	_, err = svc.MoveSets(context.Background(), "garchomp")
	require.NoError(t, err)
	assert.Equal(t, 8, moves.calls)
}
