package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movelens/movelens/internal/core"
)

type stubSpecies struct {
	pokemon map[string]*core.PokemonData
	err     error
}

func (s *stubSpecies) FetchSpecies(_ context.Context, identifier string) (*core.PokemonData, error) {
	if s.err != nil {
		return nil, s.err
	}
	if p, ok := s.pokemon[identifier]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("unknown species %q", identifier)
}

type stubMoves struct {
	details map[string]*core.MoveDetail
	fail    map[string]error
	delay   time.Duration

	mu       sync.Mutex
	calls    int
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (s *stubMoves) FetchMoveDetail(ctx context.Context, ref core.MoveRef) (*core.MoveDetail, error) {
	current := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		peak := s.peak.Load()
		if current <= peak || s.peak.CompareAndSwap(peak, current) {
			break
		}
	}

	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err, ok := s.fail[ref.Name]; ok {
		return nil, err
	}
	if detail, ok := s.details[ref.Name]; ok {
		return detail, nil
	}
	return statusMove(ref.Name, "normal"), nil
}

func garchompFixture() (*core.PokemonData, map[string]*core.MoveDetail) {
	pokemon := newPokemon("garchomp", []string{"dragon", "ground"}, 108, 130, 95, 80, 85, 102,
		"swords-dance", "earthquake", "outrage", "stone-edge", "fire-fang", "stealth-rock", "splash", "toxic")

	details := map[string]*core.MoveDetail{
		"swords-dance": statusMove("swords-dance", "normal"),
		"earthquake":   newMove("earthquake", "ground", core.DamageClassPhysical, 100, 100),
		"outrage":      newMove("outrage", "dragon", core.DamageClassPhysical, 120, 100),
		"stone-edge":   newMove("stone-edge", "rock", core.DamageClassPhysical, 100, 80),
		"fire-fang":    newMove("fire-fang", "fire", core.DamageClassPhysical, 65, 95),
		"stealth-rock": statusMove("stealth-rock", "rock"),
		"splash":       statusMove("splash", "normal"),
		"toxic":        statusMove("toxic", "poison"),
	}
	return pokemon, details
}

func newGarchompGenerator() (*Generator, *stubMoves) {
	pokemon, details := garchompFixture()
	moves := &stubMoves{details: details}
	return &Generator{
		Species: &stubSpecies{pokemon: map[string]*core.PokemonData{"garchomp": pokemon}},
		Moves:   moves,
		Clock:   func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	}, moves
}

func TestGenerateGarchomp(t *testing.T) {
	gen, _ := newGarchompGenerator()

	sets, err := gen.Generate(context.Background(), "Garchomp")
	require.NoError(t, err)

	assert.Equal(t, []string{"swords-dance", "outrage", "earthquake", "stone-edge"}, recommendationNames(sets.Sweeper))
	assert.Equal(t, []string{"setup", "stab", "stab", "coverage"}, recommendationRoles(sets.Sweeper))
	assert.Equal(t, []string{"outrage", "earthquake", "stone-edge", "fire-fang"}, recommendationNames(sets.Wallbreaker))
	assert.NotNil(t, sets.Tank)
	assert.Empty(t, sets.Tank)
	assert.Equal(t, []string{"stealth-rock", "toxic", "outrage", "earthquake"}, recommendationNames(sets.Support))
	assert.Equal(t, []string{"hazard", "status", "stab", "stab"}, recommendationRoles(sets.Support))

	assert.Equal(t, "BP 100 with 100% accuracy. Takes advantage of STAB. Role: stab", sets.Sweeper[2].Reason)
	assert.Equal(t, "Sets entry hazards. Role: hazard", sets.Support[0].Reason)
}

func TestAnalyzeGarchomp(t *testing.T) {
	gen, _ := newGarchompGenerator()
	gen.Source = "pokeapi"
	gen.ToolVersion = "1.2.3"

	analysis, err := gen.Analyze(context.Background(), " garchomp ")
	require.NoError(t, err)

	assert.Equal(t, "garchomp", analysis.Species)
	assert.Equal(t, []string{"dragon", "ground"}, analysis.Types)
	assert.Equal(t, []string{"ice", "dragon", "fairy"}, analysis.Weaknesses)
	assert.Equal(t, core.BiasPhysical, analysis.Profile.OffensiveBias)
	assert.True(t, analysis.Profile.IsSweeper)
	assert.False(t, analysis.Profile.IsTank)
	assert.Equal(t, 288, analysis.Profile.Bulk)
	assert.Equal(t, 8, analysis.Candidates)
	assert.Equal(t, 7, analysis.Viable)
	assert.NotEmpty(t, analysis.Provenance.AnalysisID)
	assert.Equal(t, "pokeapi", analysis.Provenance.Source)
	assert.Equal(t, "1.2.3", analysis.Provenance.ToolVersion)
	assert.False(t, analysis.Provenance.FromCache)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	pokemon, detailMap := garchompFixture()
	details := make([]*core.MoveDetail, 0, len(pokemon.Moves))
	for _, ref := range pokemon.MoveRefs() {
		details = append(details, detailMap[ref.Name])
	}

	first := Evaluate(pokemon, details, core.Tuning{})
	second := Evaluate(pokemon, details, core.Tuning{})
	assert.Equal(t, first, second)

	require.Len(t, first.Viable, 7)
	assert.Equal(t, "outrage", first.Viable[0].Name)
	assert.Equal(t, 170.0, first.Viable[0].Score)
	assert.InDelta(t, 86.75, first.Viable[3].Score, 1e-9)
}

func TestGenerateFetchesInBoundedBatches(t *testing.T) {
	names := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		names = append(names, fmt.Sprintf("move-%02d", i))
	}
	pokemon := newPokemon("ditto", []string{"normal"}, 48, 48, 48, 48, 48, 48, names...)
	moves := &stubMoves{delay: 5 * time.Millisecond}
	gen := &Generator{
		Species: &stubSpecies{pokemon: map[string]*core.PokemonData{"ditto": pokemon}},
		Moves:   moves,
	}

	sets, err := gen.Generate(context.Background(), "ditto")
	require.NoError(t, err)
	assert.True(t, sets.IsEmpty())
	assert.Equal(t, 25, moves.calls)
	assert.LessOrEqual(t, moves.peak.Load(), int32(10))
	assert.Greater(t, moves.peak.Load(), int32(1))
}

func TestFetchMoveDetailsPreservesOrder(t *testing.T) {
	refs := []core.MoveRef{{Name: "c"}, {Name: "a"}, {Name: "b"}}
	moves := &stubMoves{}

	details, err := FetchMoveDetails(context.Background(), moves, refs, 2)
	require.NoError(t, err)
	require.Len(t, details, 3)
	assert.Equal(t, "c", details[0].Name)
	assert.Equal(t, "a", details[1].Name)
	assert.Equal(t, "b", details[2].Name)
}

func TestGeneratePropagatesMoveFailure(t *testing.T) {
	gen, moves := newGarchompGenerator()
	errBoom := errors.New("upstream unavailable")
	moves.fail = map[string]error{"stone-edge": errBoom}

	sets, err := gen.Generate(context.Background(), "garchomp")
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "stone-edge")
	assert.True(t, sets.IsEmpty())
}

func TestGeneratePropagatesSpeciesFailure(t *testing.T) {
	errMissing := errors.New("not found")
	gen := &Generator{Species: &stubSpecies{err: errMissing}, Moves: &stubMoves{}}

	_, err := gen.Generate(context.Background(), "missingno")
	assert.ErrorIs(t, err, errMissing)
}

func TestGenerateRejectsBlankIdentifier(t *testing.T) {
	gen, _ := newGarchompGenerator()

	_, err := gen.Generate(context.Background(), "   ")
	assert.Error(t, err)

	var unconfigured *Generator
	_, err = unconfigured.Generate(context.Background(), "garchomp")
	assert.Error(t, err)
}

func TestGenerateNoViableMoves(t *testing.T) {
	pokemon := newPokemon("magikarp", []string{"water"}, 20, 10, 55, 15, 20, 80, "splash")
	gen := &Generator{
		Species: &stubSpecies{pokemon: map[string]*core.PokemonData{"magikarp": pokemon}},
		Moves:   &stubMoves{},
	}

	sets, err := gen.Generate(context.Background(), "magikarp")
	require.NoError(t, err)
	assert.True(t, sets.IsEmpty())
	for _, role := range sets.Roles() {
		assert.NotNil(t, role.Moves)
	}
}
