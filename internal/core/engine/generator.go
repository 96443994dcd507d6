package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/movelens/movelens/internal/core"
	"github.com/movelens/movelens/internal/core/typechart"
)

// SpeciesProvider supplies the species bundle for an identifier.
type SpeciesProvider interface {
	FetchSpecies(ctx context.Context, identifier string) (*core.PokemonData, error)
}

// MoveDetailProvider supplies move details for a move reference.
type MoveDetailProvider interface {
	FetchMoveDetail(ctx context.Context, ref core.MoveRef) (*core.MoveDetail, error)
}

// Generator coordinates species lookup, batched move fetches and scoring.
type Generator struct {
	Species     SpeciesProvider
	Moves       MoveDetailProvider
	Tuning      core.Tuning
	Source      string
	ToolVersion string
	Clock       func() time.Time
}

// Evaluation is the pure result of scoring one species.
type Evaluation struct {
	Types      []string
	Profile    core.BattleProfile
	Weaknesses []string
	Viable     []*core.MoveScore
	MoveSets   core.CompetitiveMoveSets
}

// Generate returns the competitive move sets for a species.
func (g *Generator) Generate(ctx context.Context, identifier string) (core.CompetitiveMoveSets, error) {
	analysis, err := g.Analyze(ctx, identifier)
	if err != nil {
		return core.EmptyMoveSets(), err
	}
	return analysis.MoveSets, nil
}

// Analyze runs the full pipeline and keeps the intermediate profile data.
func (g *Generator) Analyze(ctx context.Context, identifier string) (*core.SpeciesAnalysis, error) {
	if g == nil || g.Species == nil || g.Moves == nil {
		return nil, errors.New("move set generator is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	key := strings.ToLower(strings.TrimSpace(identifier))
	if key == "" {
		return nil, errors.New("species identifier is required")
	}

	requestedAt := g.now()
	tuning := g.Tuning.WithDefaults()

	pokemon, err := g.Species.FetchSpecies(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch species %s: %w", key, err)
	}
	if pokemon == nil {
		return nil, fmt.Errorf("fetch species %s: empty response", key)
	}

	candidates := SelectCandidates(pokemon.MoveRefs(), tuning.MaxCandidates)
	details, err := FetchMoveDetails(ctx, g.Moves, candidates, tuning.FetchBatchSize)
	if err != nil {
		return nil, err
	}

	eval := Evaluate(pokemon, details, tuning)

	name := pokemon.Name
	if name == "" {
		name = key
	}

	return &core.SpeciesAnalysis{
		Species:    name,
		Types:      eval.Types,
		Profile:    eval.Profile,
		Weaknesses: eval.Weaknesses,
		Candidates: len(candidates),
		Viable:     len(eval.Viable),
		MoveSets:   eval.MoveSets,
		Provenance: core.Provenance{
			AnalysisID:  uuid.New().String(),
			RequestedAt: requestedAt,
			ResolvedAt:  g.now(),
			Source:      g.source(),
			ToolVersion: g.ToolVersion,
		},
	}, nil
}

// Evaluate scores fetched move details for a species and builds the role
// sets. It performs no I/O.
func Evaluate(pokemon *core.PokemonData, details []*core.MoveDetail, tuning core.Tuning) Evaluation {
	tuning = tuning.WithDefaults()

	types := pokemon.TypeNames()
	profile := ClassifyProfile(StatLineFor(pokemon), tuning)
	weaknesses := typechart.Weaknesses(types)

	viable := ScoreMoves(details, ScoringContext{
		SpeciesTypes: types,
		Profile:      profile,
		Weaknesses:   weaknesses,
	}, tuning)

	return Evaluation{
		Types:      types,
		Profile:    profile,
		Weaknesses: weaknesses,
		Viable:     viable,
		MoveSets:   BuildMoveSets(viable, profile, tuning),
	}
}

// FetchMoveDetails fetches move details in sequential chunks of batchSize,
// running each chunk concurrently. Output order matches refs.
func FetchMoveDetails(ctx context.Context, provider MoveDetailProvider, refs []core.MoveRef, batchSize int) ([]*core.MoveDetail, error) {
	if provider == nil {
		return nil, errors.New("move detail provider is not configured")
	}
	if batchSize <= 0 {
		batchSize = core.DefaultTuning().FetchBatchSize
	}

	details := make([]*core.MoveDetail, len(refs))
	for start := 0; start < len(refs); start += batchSize {
		end := min(start+batchSize, len(refs))

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			ref := refs[i]
			g.Go(func() error {
				detail, err := provider.FetchMoveDetail(gctx, ref)
				if err != nil {
					return fmt.Errorf("fetch move %s: %w", ref.Name, err)
				}
				details[i] = detail
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	return details, nil
}

func (g *Generator) source() string {
	if g != nil && g.Source != "" {
		return g.Source
	}
	return "engine"
}

func (g *Generator) now() time.Time {
	if g != nil && g.Clock != nil {
		return g.Clock()
	}
	return time.Now().UTC()
}
