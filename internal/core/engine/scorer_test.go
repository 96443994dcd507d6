package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movelens/movelens/internal/core"
	"github.com/movelens/movelens/internal/core/typechart"
)

func contextFor(types []string, bias core.OffensiveBias) ScoringContext {
	return ScoringContext{
		SpeciesTypes: types,
		Profile:      core.BattleProfile{OffensiveBias: bias},
		Weaknesses:   typechart.Weaknesses(types),
	}
}

func TestScoreMoveStabAndBias(t *testing.T) {
	move := newMove("body-slam", "normal", core.DamageClassPhysical, 90, 100)

	score := ScoreMove(move, contextFor([]string{"normal"}, core.BiasPhysical))
	require.NotNil(t, score)
	assert.Equal(t, 125.0, score.Score)
	assert.Equal(t, core.Tags{core.TagStab}, score.Tags)
	assert.True(t, score.IsStab)
	assert.True(t, score.IsDamaging)
}

func TestScoreMoveStealthRockIsFixed(t *testing.T) {
	contexts := []ScoringContext{
		contextFor([]string{"rock"}, core.BiasPhysical),
		contextFor([]string{"grass"}, core.BiasSpecial),
		contextFor([]string{"water", "ground"}, core.BiasMixed),
	}

	for _, sc := range contexts {
		score := ScoreMove(statusMove("stealth-rock", "rock"), sc)
		require.NotNil(t, score)
		assert.Equal(t, 70.0, score.Score)
		assert.Equal(t, core.Tags{core.TagHazard, core.TagUtility}, score.Tags)
		assert.False(t, score.IsDamaging)
	}
}

func TestScoreMoveNonScoring(t *testing.T) {
	assert.Nil(t, ScoreMove(statusMove("splash", "normal"), contextFor([]string{"water"}, core.BiasMixed)))
	assert.Nil(t, ScoreMove(nil, contextFor([]string{"water"}, core.BiasMixed)))
}

func TestScoreMoveDefaultAccuracy(t *testing.T) {
	move := newMove("psywave", "fire", core.DamageClassSpecial, 100, 0)

	score := ScoreMove(move, contextFor([]string{"normal"}, core.BiasMixed))
	require.NotNil(t, score)
	assert.InDelta(t, 85.0, score.Score, 1e-9)
	assert.Empty(t, score.Tags)
}

func TestScoreMoveCoverage(t *testing.T) {
	move := newMove("ice-beam", "ice", core.DamageClassSpecial, 90, 100)

	score := ScoreMove(move, contextFor([]string{"water"}, core.BiasSpecial))
	require.NotNil(t, score)
	assert.Equal(t, 115.0, score.Score)
	assert.Equal(t, []string{"grass"}, score.CoverageTargets)
	assert.True(t, score.Tags.Has(core.TagCoverage))
	assert.False(t, score.IsStab)
}

func TestScoreMoveDrainAndRecoil(t *testing.T) {
	drain := newMove("giga-drain", "grass", core.DamageClassSpecial, 75, 100)
	drain.Meta = &core.MoveMeta{Drain: 50}
	score := ScoreMove(drain, contextFor([]string{"normal"}, core.BiasMixed))
	require.NotNil(t, score)
	assert.Equal(t, 90.0, score.Score)
	assert.Equal(t, core.Tags{core.TagDrain}, score.Tags)

	recoil := newMove("brave-bird", "flying", core.DamageClassPhysical, 120, 100)
	recoil.Meta = &core.MoveMeta{Drain: -33}
	score = ScoreMove(recoil, contextFor([]string{"fire"}, core.BiasMixed))
	require.NotNil(t, score)
	assert.Equal(t, 110.0, score.Score)
	assert.Empty(t, score.Tags)
}

func TestScoreMovePriority(t *testing.T) {
	move := newMove("extreme-speed", "normal", core.DamageClassPhysical, 80, 100)
	move.Priority = 2

	score := ScoreMove(move, contextFor([]string{"normal"}, core.BiasPhysical))
	require.NotNil(t, score)
	assert.Equal(t, 140.0, score.Score)
	assert.Equal(t, core.Tags{core.TagStab, core.TagPriority}, score.Tags)
}

func TestScoreMoveSetupAndRecovery(t *testing.T) {
	sc := contextFor([]string{"water"}, core.BiasMixed)

	setup := ScoreMove(statusMove("swords-dance", "normal"), sc)
	require.NotNil(t, setup)
	assert.Equal(t, 60.0, setup.Score)
	assert.Equal(t, core.Tags{core.TagSetup}, setup.Tags)

	recovery := ScoreMove(statusMove("recover", "normal"), sc)
	require.NotNil(t, recovery)
	assert.Equal(t, 50.0, recovery.Score)
	assert.Equal(t, core.Tags{core.TagRecovery}, recovery.Tags)

	healPulse := statusMove("heal-pulse", "psychic")
	healPulse.Meta = &core.MoveMeta{Healing: 50}
	healing := ScoreMove(healPulse, sc)
	require.NotNil(t, healing)
	assert.Equal(t, 50.0, healing.Score)
}

func TestScoreMoveLeechSeedExcludesRecoveryBonus(t *testing.T) {
	seed := statusMove("leech-seed", "grass")
	seed.Meta = &core.MoveMeta{Healing: 50}

	score := ScoreMove(seed, contextFor([]string{"grass"}, core.BiasMixed))
	require.NotNil(t, score)
	assert.Equal(t, 35.0, score.Score)
	assert.Equal(t, core.Tags{core.TagRecovery, core.TagStatus}, score.Tags)
}

func TestScoreMovesFiltersAndRanks(t *testing.T) {
	moves := []*core.MoveDetail{
		newMove("pound", "normal", core.DamageClassPhysical, 20, 100),
		statusMove("will-o-wisp", "fire"),
		statusMove("taunt", "dark"),
		statusMove("splash", "normal"),
		statusMove("stealth-rock", "rock"),
		nil,
	}

	viable := ScoreMoves(moves, contextFor([]string{"fire"}, core.BiasMixed), core.Tuning{})
	require.Len(t, viable, 3)
	assert.Equal(t, "stealth-rock", viable[0].Name)
	assert.Equal(t, "will-o-wisp", viable[1].Name)
	assert.Equal(t, "taunt", viable[2].Name)
	for _, move := range viable {
		assert.GreaterOrEqual(t, move.Score, 30.0)
	}
}

func TestScoreMovesCustomThreshold(t *testing.T) {
	moves := []*core.MoveDetail{statusMove("taunt", "dark"), statusMove("stealth-rock", "rock")}

	viable := ScoreMoves(moves, contextFor([]string{"fire"}, core.BiasMixed), core.Tuning{ViabilityThreshold: 50})
	require.Len(t, viable, 1)
	assert.Equal(t, "stealth-rock", viable[0].Name)
}
