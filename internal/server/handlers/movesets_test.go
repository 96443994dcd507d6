package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movelens/movelens/internal/core"
	"github.com/movelens/movelens/internal/core/engine"
	"github.com/movelens/movelens/internal/core/pokeapi"
	apperrors "github.com/movelens/movelens/internal/errors"
)

type stubMoveSetService struct {
	analysis  *core.SpeciesAnalysis
	err       error
	calls     []string
	refreshes []string
}

func (s *stubMoveSetService) MoveSets(_ context.Context, identifier string) (*core.SpeciesAnalysis, error) {
	s.calls = append(s.calls, identifier)
	return s.analysis, s.err
}

func (s *stubMoveSetService) Refresh(_ context.Context, identifier string) (*core.SpeciesAnalysis, error) {
	s.refreshes = append(s.refreshes, identifier)
	return s.analysis, s.err
}

func newV1Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/pokemon/{identifier}/movesets", MoveSetsHandler)
	r.Get("/v1/pokemon/{identifier}/profile", ProfileHandler)
	r.Get("/v1/types/weaknesses", TypeWeaknessesHandler)
	r.Get("/v1/types/{type}/coverage", TypeCoverageHandler)
	return r
}

func withService(t *testing.T, service MoveSetService) {
	t.Helper()
	SetMoveSetService(service)
	t.Cleanup(func() { SetMoveSetService(nil) })
}

func serve(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	newV1Router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.HTTPErrorResponse {
	t.Helper()
	var resp apperrors.HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func garchompAnalysis() *core.SpeciesAnalysis {
	sets := core.EmptyMoveSets()
	sets.Sweeper = []core.Recommendation{
		{Name: "swords-dance", Type: "normal", RoleTag: "setup", Reason: "Provides immediate setup. Role: setup"},
		{Name: "outrage", Type: "dragon", RoleTag: "stab", Reason: "Role: stab"},
		{Name: "earthquake", Type: "ground", RoleTag: "stab", Reason: "Role: stab"},
		{Name: "stone-edge", Type: "rock", RoleTag: "coverage", Reason: "Role: coverage"},
	}
	return &core.SpeciesAnalysis{
		Species:    "garchomp",
		Types:      []string{"dragon", "ground"},
		Profile:    core.BattleProfile{OffensiveBias: core.BiasPhysical, Speed: 102, Bulk: 288, IsSweeper: true},
		Weaknesses: []string{"ice", "dragon", "fairy"},
		Candidates: 8,
		Viable:     7,
		MoveSets:   sets,
		Provenance: core.Provenance{AnalysisID: "a-1", Source: "pokeapi"},
	}
}

func TestMoveSetsHandlerReturnsSets(t *testing.T) {
	service := &stubMoveSetService{analysis: garchompAnalysis()}
	withService(t, service)

	rec := serve(t, "/v1/pokemon/Garchomp/movesets")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp MoveSetsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "garchomp", resp.Species)
	assert.Equal(t, []string{"dragon", "ground"}, resp.Types)
	require.Len(t, resp.MoveSets.Sweeper, 4)
	assert.Equal(t, "swords-dance", resp.MoveSets.Sweeper[0].Name)
	assert.Empty(t, resp.MoveSets.Tank)
	assert.Equal(t, 7, resp.Viable)
	assert.Equal(t, "pokeapi", resp.Provenance.Source)

	assert.Equal(t, []string{"Garchomp"}, service.calls)
	assert.Empty(t, service.refreshes)
}

func TestMoveSetsHandlerEmptySetsEncodeAsArrays(t *testing.T) {
	analysis := garchompAnalysis()
	analysis.MoveSets = core.EmptyMoveSets()
	withService(t, &stubMoveSetService{analysis: analysis})

	rec := serve(t, "/v1/pokemon/garchomp/movesets")
	require.Equal(t, http.StatusOK, rec.Code)

	var raw struct {
		MoveSets map[string]json.RawMessage `json:"movesets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	for _, role := range []string{"sweeper", "wallbreaker", "tank", "support"} {
		assert.JSONEq(t, "[]", string(raw.MoveSets[role]), role)
	}
}

func TestMoveSetsHandlerRefreshBypassesCache(t *testing.T) {
	service := &stubMoveSetService{analysis: garchompAnalysis()}
	withService(t, service)

	rec := serve(t, "/v1/pokemon/garchomp/movesets?refresh=true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, service.calls)
	assert.Equal(t, []string{"garchomp"}, service.refreshes)
}

func TestMoveSetsHandlerMapsErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{
			name:   "not found",
			err:    fmt.Errorf("%w: fetch species missingno: %w", engine.ErrNoCompetitiveData, pokeapi.ErrNotFound),
			status: http.StatusNotFound,
			code:   "NOT_FOUND",
		},
		{
			name:   "rate limited",
			err:    fmt.Errorf("%w: %w", engine.ErrNoCompetitiveData, &pokeapi.StatusError{Resource: "pokemon", Key: "garchomp", StatusCode: http.StatusTooManyRequests}),
			status: http.StatusTooManyRequests,
			code:   "RATE_LIMITED",
		},
		{
			name:   "upstream failure",
			err:    fmt.Errorf("%w: %w", engine.ErrNoCompetitiveData, &pokeapi.StatusError{Resource: "move", Key: "outrage", StatusCode: http.StatusBadGateway}),
			status: http.StatusBadGateway,
			code:   "EXTERNAL_SERVICE_ERROR",
		},
		{
			name:   "timeout",
			err:    fmt.Errorf("%w: %w", engine.ErrNoCompetitiveData, context.DeadlineExceeded),
			status: http.StatusGatewayTimeout,
			code:   "TIMEOUT",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			withService(t, &stubMoveSetService{err: tc.err})

			rec := serve(t, "/v1/pokemon/garchomp/movesets")
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, decodeError(t, rec).Error.Code)
		})
	}
}

func TestMoveSetsHandlerWithoutService(t *testing.T) {
	withService(t, nil)

	rec := serve(t, "/v1/pokemon/garchomp/movesets")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, rec).Error.Code)
}

func TestProfileHandler(t *testing.T) {
	withService(t, &stubMoveSetService{analysis: garchompAnalysis()})

	rec := serve(t, "/v1/pokemon/garchomp/profile")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ProfileResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, core.BiasPhysical, resp.Profile.OffensiveBias)
	assert.Equal(t, 288, resp.Profile.Bulk)
	assert.True(t, resp.Profile.IsSweeper)
	assert.Equal(t, []string{"ice", "dragon", "fairy"}, resp.Weaknesses)
}

func TestTypeWeaknessesHandler(t *testing.T) {
	rec := serve(t, "/v1/types/weaknesses?types=Water,%20ground")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TypeWeaknessesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []string{"water", "ground"}, resp.Types)
	assert.Equal(t, []string{"grass"}, resp.Weaknesses)
	assert.Equal(t, 4.0, resp.Multipliers["grass"])
}

func TestTypeWeaknessesHandlerRejectsInput(t *testing.T) {
	rec := serve(t, "/v1/types/weaknesses")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decodeError(t, rec).Error.Code)

	rec = serve(t, "/v1/types/weaknesses?types=water,shadow")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error.Message, "shadow")
}

func TestTypeCoverageHandler(t *testing.T) {
	rec := serve(t, "/v1/types/ICE/coverage")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TypeCoverageResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ice", resp.Type)
	assert.Equal(t, []string{"grass", "ground", "flying", "dragon"}, resp.StrongAgainst)
	assert.Equal(t, []string{}, resp.ImmuneTo)

	rec = serve(t, "/v1/types/shadow/coverage")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
