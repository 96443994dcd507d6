package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/movelens/movelens/internal/core"
	"github.com/movelens/movelens/internal/core/engine"
	"github.com/movelens/movelens/internal/core/pokeapi"
	"github.com/movelens/movelens/internal/core/typechart"
	apperrors "github.com/movelens/movelens/internal/errors"
)

// MoveSetService is the subset of engine.Service the API needs.
type MoveSetService interface {
	MoveSets(ctx context.Context, identifier string) (*core.SpeciesAnalysis, error)
	Refresh(ctx context.Context, identifier string) (*core.SpeciesAnalysis, error)
}

var moveSetService MoveSetService

// SetMoveSetService injects the service used by the /v1/pokemon routes.
func SetMoveSetService(service MoveSetService) {
	moveSetService = service
}

// MoveSetsResponse is returned by GET /v1/pokemon/{identifier}/movesets.
type MoveSetsResponse struct {
	Species    string                   `json:"species"`
	Types      []string                 `json:"types"`
	MoveSets   core.CompetitiveMoveSets `json:"movesets"`
	Candidates int                      `json:"candidates"`
	Viable     int                      `json:"viable"`
	Provenance core.Provenance          `json:"provenance"`
}

// ProfileResponse is returned by GET /v1/pokemon/{identifier}/profile.
type ProfileResponse struct {
	Species    string             `json:"species"`
	Types      []string           `json:"types"`
	Profile    core.BattleProfile `json:"profile"`
	Weaknesses []string           `json:"weaknesses"`
}

// TypeWeaknessesResponse is returned by GET /v1/types/weaknesses.
type TypeWeaknessesResponse struct {
	Types       []string           `json:"types"`
	Weaknesses  []string           `json:"weaknesses"`
	Multipliers map[string]float64 `json:"multipliers"`
}

// TypeCoverageResponse is returned by GET /v1/types/{type}/coverage.
type TypeCoverageResponse struct {
	Type          string   `json:"type"`
	StrongAgainst []string `json:"strong_against"`
	WeakAgainst   []string `json:"weak_against"`
	ImmuneTo      []string `json:"immune_to"`
}

// MoveSetsHandler serves the competitive move sets for one species.
func MoveSetsHandler(w http.ResponseWriter, r *http.Request) {
	analysis, ok := lookupAnalysis(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, MoveSetsResponse{
		Species:    analysis.Species,
		Types:      nonNil(analysis.Types),
		MoveSets:   analysis.MoveSets,
		Candidates: analysis.Candidates,
		Viable:     analysis.Viable,
		Provenance: analysis.Provenance,
	})
}

// ProfileHandler serves the battle profile for one species.
func ProfileHandler(w http.ResponseWriter, r *http.Request) {
	analysis, ok := lookupAnalysis(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{
		Species:    analysis.Species,
		Types:      nonNil(analysis.Types),
		Profile:    analysis.Profile,
		Weaknesses: nonNil(analysis.Weaknesses),
	})
}

// TypeWeaknessesHandler serves the weaknesses of a type combination.
func TypeWeaknessesHandler(w http.ResponseWriter, r *http.Request) {
	types := splitTypes(r.URL.Query().Get("types"))
	if len(types) == 0 {
		respondWithError(w, r, apperrors.NewInvalidInputError("query parameter 'types' is required"))
		return
	}
	for _, name := range types {
		if !typechart.IsKnown(name) {
			respondWithError(w, r, apperrors.NewInvalidInputError("unknown type: "+name))
			return
		}
	}

	weaknesses := typechart.Weaknesses(types)
	multipliers := make(map[string]float64, len(weaknesses))
	for _, attackType := range weaknesses {
		multipliers[attackType] = typechart.Multiplier(attackType, types)
	}

	writeJSON(w, http.StatusOK, TypeWeaknessesResponse{
		Types:       types,
		Weaknesses:  weaknesses,
		Multipliers: multipliers,
	})
}

// TypeCoverageHandler serves the chart row for one attacking type.
func TypeCoverageHandler(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "type")))
	relations, ok := typechart.Lookup(name)
	if !ok {
		respondWithError(w, r, apperrors.NewNotFoundError("unknown type: "+name))
		return
	}

	writeJSON(w, http.StatusOK, TypeCoverageResponse{
		Type:          name,
		StrongAgainst: nonNil(relations.StrongAgainst),
		WeakAgainst:   nonNil(relations.WeakAgainst),
		ImmuneTo:      nonNil(relations.ImmuneTo),
	})
}

func lookupAnalysis(w http.ResponseWriter, r *http.Request) (*core.SpeciesAnalysis, bool) {
	if moveSetService == nil {
		respondWithError(w, r, apperrors.NewInternalError("move set service is not configured"))
		return nil, false
	}

	identifier := strings.TrimSpace(chi.URLParam(r, "identifier"))
	if identifier == "" {
		respondWithError(w, r, apperrors.NewInvalidInputError("species identifier is required"))
		return nil, false
	}

	ctx := r.Context()
	var (
		analysis *core.SpeciesAnalysis
		err      error
	)
	if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh {
		analysis, err = moveSetService.Refresh(ctx, identifier)
	} else {
		analysis, err = moveSetService.MoveSets(ctx, identifier)
	}
	if err != nil {
		respondWithError(w, r, envelopeForLookup(ctx, err, identifier))
		return nil, false
	}
	return analysis, true
}

// envelopeForLookup maps provider failures onto API error codes.
func envelopeForLookup(ctx context.Context, err error, identifier string) error {
	switch {
	case errors.Is(err, pokeapi.ErrNotFound):
		return apperrors.WrapNotFound(ctx, err, "species not found: "+identifier)
	case errors.Is(err, pokeapi.ErrRateLimited):
		return apperrors.WrapRateLimited(ctx, err, "upstream rate limit reached, try again later")
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.WrapTimeout(ctx, err, "upstream request timed out")
	case errors.Is(err, engine.ErrNoCompetitiveData):
		return apperrors.WrapExternalService(ctx, err, "no competitive data available for "+identifier)
	default:
		return apperrors.WrapInternal(ctx, err, "move set lookup failed")
	}
}

func splitTypes(raw string) []string {
	var types []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			types = append(types, part)
		}
	}
	return types
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
