package engine

import (
	"sort"

	"github.com/movelens/movelens/internal/core"
)

// RoleSetSize is the only non-zero length a role set may have.
const RoleSetSize = 4

// claimed tracks the moves a single builder has already used.
type claimed map[string]struct{}

func (c claimed) has(name string) bool {
	_, ok := c[name]
	return ok
}

// pick claims up to count of the highest-scoring unclaimed moves matching
// keep. Ties keep input order.
func (c claimed) pick(moves []*core.MoveScore, count int, keep func(*core.MoveScore) bool) []*core.MoveScore {
	pool := make([]*core.MoveScore, 0, len(moves))
	for _, move := range moves {
		if move == nil || c.has(move.Name) || !keep(move) {
			continue
		}
		pool = append(pool, move)
	}
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Score > pool[j].Score
	})

	if len(pool) > count {
		pool = pool[:count]
	}
	for _, move := range pool {
		c[move.Name] = struct{}{}
	}
	return pool
}

func (c claimed) pickOne(moves []*core.MoveScore, keep func(*core.MoveScore) bool) *core.MoveScore {
	picked := c.pick(moves, 1, keep)
	if len(picked) == 0 {
		return nil
	}
	return picked[0]
}

func withTag(tags ...core.Tag) func(*core.MoveScore) bool {
	return func(move *core.MoveScore) bool {
		return move.Tags.HasAny(tags...)
	}
}

// commit enforces the all-or-nothing rule.
func commit(selection []core.Recommendation) []core.Recommendation {
	if len(selection) != RoleSetSize {
		return []core.Recommendation{}
	}
	return selection
}

// BuildMoveSets runs every role builder independently against the ranked
// move list.
func BuildMoveSets(moves []*core.MoveScore, profile core.BattleProfile, tuning core.Tuning) core.CompetitiveMoveSets {
	sets := core.EmptyMoveSets()
	if len(moves) == 0 {
		return sets
	}

	tuning = tuning.WithDefaults()
	sets.Sweeper = BuildSweeper(moves, profile, tuning)
	sets.Wallbreaker = BuildWallbreaker(moves, profile, tuning)
	if profile.IsTank {
		sets.Tank = BuildTank(moves)
	}
	sets.Support = BuildSupport(moves)
	return sets
}

// BuildSweeper assembles an optional setup move, two strong STAB moves and
// one closer.
func BuildSweeper(moves []*core.MoveScore, profile core.BattleProfile, tuning core.Tuning) []core.Recommendation {
	tuning = tuning.WithDefaults()
	c := claimed{}
	selection := make([]core.Recommendation, 0, RoleSetSize)

	if setup := c.pickOne(moves, withTag(core.TagSetup)); setup != nil {
		selection = append(selection, Recommend(setup, string(core.TagSetup)))
	}

	stab := c.pickStrongStab(moves, profile, tuning, 2)
	if len(stab) < 2 {
		return commit(nil)
	}
	for _, move := range stab {
		selection = append(selection, Recommend(move, string(core.TagStab)))
	}

	closer := c.pickOne(moves, func(move *core.MoveScore) bool {
		return move.Tags.HasAny(core.TagCoverage, core.TagPriority) ||
			(!move.IsStab && move.Power >= tuning.StrongPower)
	})
	if closer == nil {
		return commit(nil)
	}
	selection = append(selection, Recommend(closer, RoleTag(closer)))

	return commit(selection)
}

// BuildWallbreaker assembles two strong STAB moves and two coverage moves.
func BuildWallbreaker(moves []*core.MoveScore, profile core.BattleProfile, tuning core.Tuning) []core.Recommendation {
	tuning = tuning.WithDefaults()
	c := claimed{}
	selection := make([]core.Recommendation, 0, RoleSetSize)

	stab := c.pickStrongStab(moves, profile, tuning, 2)
	if len(stab) < 2 {
		return commit(nil)
	}
	for _, move := range stab {
		selection = append(selection, Recommend(move, string(core.TagStab)))
	}

	coverage := c.pick(moves, 2, func(move *core.MoveScore) bool {
		return move.IsDamaging && !move.IsStab &&
			(move.Tags.Has(core.TagCoverage) || move.Power >= tuning.StrongPower)
	})
	if len(coverage) < 2 {
		return commit(nil)
	}
	for _, move := range coverage {
		selection = append(selection, Recommend(move, string(core.TagCoverage)))
	}

	return commit(selection)
}

// BuildTank assembles one STAB attack, one recovery, one status and one
// utility move.
func BuildTank(moves []*core.MoveScore) []core.Recommendation {
	c := claimed{}
	selection := make([]core.Recommendation, 0, RoleSetSize)

	stab := c.pickOne(moves, func(move *core.MoveScore) bool {
		return move.IsDamaging && move.IsStab
	})
	if stab == nil {
		return commit(nil)
	}
	selection = append(selection, Recommend(stab, string(core.TagStab)))

	recovery := c.pickOne(moves, withTag(core.TagRecovery))
	if recovery == nil {
		return commit(nil)
	}
	selection = append(selection, Recommend(recovery, string(core.TagRecovery)))

	status := c.pickOne(moves, withTag(core.TagStatus))
	if status == nil {
		return commit(nil)
	}
	selection = append(selection, Recommend(status, string(core.TagStatus)))

	utility := c.pickOne(moves, withTag(core.TagUtility))
	if utility == nil {
		return commit(nil)
	}
	selection = append(selection, Recommend(utility, RoleTag(utility)))

	return commit(selection)
}

// BuildSupport fills hazard, removal, taunt and screen slots, then backfills
// from utility or status moves and finally from STAB moves.
func BuildSupport(moves []*core.MoveScore) []core.Recommendation {
	c := claimed{}
	selection := make([]core.Recommendation, 0, RoleSetSize)

	for _, tag := range supportTagOrder {
		if move := c.pickOne(moves, withTag(tag)); move != nil {
			selection = append(selection, Recommend(move, RoleTag(move)))
		}
	}

	if missing := RoleSetSize - len(selection); missing > 0 {
		for _, move := range c.pick(moves, missing, withTag(core.TagUtility, core.TagStatus)) {
			selection = append(selection, Recommend(move, RoleTag(move)))
		}
	}

	if missing := RoleSetSize - len(selection); missing > 0 {
		stab := c.pick(moves, missing, func(move *core.MoveScore) bool {
			return move.IsStab
		})
		for _, move := range stab {
			selection = append(selection, Recommend(move, string(core.TagStab)))
		}
	}

	return commit(selection)
}

// pickStrongStab claims damaging STAB moves at or above the strong power
// threshold. A non-mixed bias restricts the pool to the matching class.
func (c claimed) pickStrongStab(moves []*core.MoveScore, profile core.BattleProfile, tuning core.Tuning, count int) []*core.MoveScore {
	var preferred core.DamageClass
	switch profile.OffensiveBias {
	case core.BiasPhysical:
		preferred = core.DamageClassPhysical
	case core.BiasSpecial:
		preferred = core.DamageClassSpecial
	}

	return c.pick(moves, count, func(move *core.MoveScore) bool {
		if !move.IsDamaging || !move.IsStab || move.Power < tuning.StrongPower {
			return false
		}
		return preferred == "" || move.Class == preferred
	})
}
