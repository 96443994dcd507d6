package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movelens/movelens/internal/core"
	"github.com/movelens/movelens/internal/core/engine"
)

type stubMoveSetSource struct {
	results map[string]*core.SpeciesAnalysis
	calls   []string
}

func (s *stubMoveSetSource) MoveSets(_ context.Context, identifier string) (*core.SpeciesAnalysis, error) {
	s.calls = append(s.calls, identifier)
	if analysis, ok := s.results[identifier]; ok {
		return analysis, nil
	}
	return nil, fmt.Errorf("%w: fetch species %s: not found", engine.ErrNoCompetitiveData, identifier)
}

func TestNormalizeIdentifiers(t *testing.T) {
	got := normalizeIdentifiers([]string{" Garchomp ", "ferrothorn,GARCHOMP", "", " , 445"})
	assert.Equal(t, []string{"garchomp", "ferrothorn", "445"}, got)
	assert.Empty(t, normalizeIdentifiers([]string{" ", ","}))
}

func TestAnalyzeAllKeepsOrderAndMarksFailures(t *testing.T) {
	source := &stubMoveSetSource{results: map[string]*core.SpeciesAnalysis{
		"garchomp":   {Species: "garchomp", MoveSets: core.EmptyMoveSets()},
		"ferrothorn": {Species: "ferrothorn", MoveSets: core.EmptyMoveSets()},
	}}

	analyses, failed := analyzeAll(context.Background(), source, []string{"garchomp", "missingno", "ferrothorn"})
	require.Len(t, analyses, 3)
	assert.Equal(t, 1, failed)
	assert.Equal(t, []string{"garchomp", "missingno", "ferrothorn"}, source.calls)

	assert.Equal(t, "garchomp", analyses[0].Species)
	assert.False(t, analyses[0].Unavailable)

	missing := analyses[1]
	assert.Equal(t, "missingno", missing.Species)
	assert.True(t, missing.Unavailable)
	assert.True(t, strings.HasPrefix(missing.Message, engine.ErrNoCompetitiveData.Error()))
	assert.NotNil(t, missing.MoveSets.Sweeper)

	assert.Equal(t, "ferrothorn", analyses[2].Species)
}

func TestUnavailableAnalysis(t *testing.T) {
	analysis := unavailableAnalysis("missingno", nil)
	assert.True(t, analysis.Unavailable)
	assert.Equal(t, engine.ErrNoCompetitiveData.Error(), analysis.Message)
	assert.Equal(t, []string{}, analysis.Types)
	assert.Equal(t, []string{}, analysis.Weaknesses)

	analysis = unavailableAnalysis("missingno", errors.New("boom"))
	assert.Equal(t, "boom", analysis.Message)
}
