package engine

import (
	"sort"

	"github.com/movelens/movelens/internal/core"
	"github.com/movelens/movelens/internal/core/typechart"
)

// ScoringContext is the species-level input shared by every move score.
type ScoringContext struct {
	SpeciesTypes []string
	Profile      core.BattleProfile
	Weaknesses   []string
}

// ScoreMove applies the additive point model to one move. It returns nil
// when no rule contributed.
func ScoreMove(move *core.MoveDetail, sc ScoringContext) *core.MoveScore {
	if move == nil || move.Name == "" {
		return nil
	}

	typeName := move.TypeName()
	class := move.Class()
	power := move.PowerValue()
	isStab := containsString(sc.SpeciesTypes, typeName)
	isDamaging := class != core.DamageClassStatus && power > 0

	var (
		score    float64
		tags     core.Tags
		coverage []string
	)

	if isDamaging {
		accuracy := defaultAccuracy
		if move.Accuracy != nil && *move.Accuracy > 0 {
			accuracy = float64(*move.Accuracy) / 100
		}
		score += float64(power) * accuracy

		if isStab {
			score += stabBonus
			tags = tags.Add(core.TagStab)
		}
		if biasMatches(class, sc.Profile.OffensiveBias) {
			score += biasBonus
		}
		if move.Priority > 0 {
			score += priorityBonus
			tags = tags.Add(core.TagPriority)
		}
		if move.Meta != nil {
			switch {
			case move.Meta.Drain < 0:
				score += recoilPenalty
			case move.Meta.Drain > 0:
				score += drainBonus
				tags = tags.Add(core.TagDrain)
			}
		}
	}

	if bonus, ok := setupBonuses[move.Name]; ok {
		score += bonus
		tags = tags.Add(core.TagSetup)
	}

	if utility, ok := utilityBonuses[move.Name]; ok {
		score += utility.Bonus
		tags = tags.Add(utility.Tag).Add(core.TagUtility)
	}

	if move.Name == leechSeedMove {
		score += leechSeedBonus
		tags = tags.Add(core.TagRecovery).Add(core.TagStatus)
	} else if isReliableRecovery(move) {
		score += recoveryBonus
		tags = tags.Add(core.TagRecovery)
	}

	// Coverage counts for damaging moves only. Status moves keep a fixed
	// score per species, so stealth-rock stays at 70 whatever the weaknesses.
	if isDamaging {
		coverage = coverageAgainst(typeName, sc.Weaknesses)
		if len(coverage) > 0 {
			score += coverageBonus
			tags = tags.Add(core.TagCoverage)
		}
	}

	if score == 0 {
		return nil
	}

	if tags == nil {
		tags = core.Tags{}
	}

	return &core.MoveScore{
		Move:            move,
		Name:            move.Name,
		Type:            typeName,
		Class:           class,
		Score:           score,
		Tags:            tags,
		IsDamaging:      isDamaging,
		IsStab:          isStab,
		Power:           power,
		Accuracy:        move.Accuracy,
		CoverageTargets: coverage,
		EnglishEffect:   move.EnglishEffect(),
	}
}

// ScoreMoves scores every move and keeps those at or above the viability
// threshold, ranked by descending score with input order breaking ties.
func ScoreMoves(moves []*core.MoveDetail, sc ScoringContext, tuning core.Tuning) []*core.MoveScore {
	tuning = tuning.WithDefaults()

	viable := make([]*core.MoveScore, 0, len(moves))
	for _, move := range moves {
		scored := ScoreMove(move, sc)
		if scored == nil || scored.Score < tuning.ViabilityThreshold {
			continue
		}
		viable = append(viable, scored)
	}

	sort.SliceStable(viable, func(i, j int) bool {
		return viable[i].Score > viable[j].Score
	})
	return viable
}

func biasMatches(class core.DamageClass, bias core.OffensiveBias) bool {
	switch bias {
	case core.BiasPhysical:
		return class == core.DamageClassPhysical
	case core.BiasSpecial:
		return class == core.DamageClassSpecial
	default:
		return false
	}
}

func isReliableRecovery(move *core.MoveDetail) bool {
	if _, ok := reliableRecovery[move.Name]; ok {
		return true
	}
	return move.Meta != nil && move.Meta.Healing > 0
}

func coverageAgainst(typeName string, weaknesses []string) []string {
	if len(weaknesses) == 0 {
		return nil
	}
	var targets []string
	for _, target := range typechart.CoverageTargets(typeName) {
		if containsString(weaknesses, target) {
			targets = append(targets, target)
		}
	}
	return targets
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
