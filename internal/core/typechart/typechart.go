// Package typechart holds the static attacking-type effectiveness table.
package typechart

import "strings"

// Relations lists how one attacking type fares against defending types.
type Relations struct {
	StrongAgainst []string
	WeakAgainst   []string
	ImmuneTo      []string
}

// Order is the canonical type order used for iteration.
var Order = []string{
	"normal", "fire", "water", "electric", "grass", "ice",
	"fighting", "poison", "ground", "flying", "psychic", "bug",
	"rock", "ghost", "dragon", "dark", "steel", "fairy",
}

var chart = map[string]Relations{
	"normal": {
		WeakAgainst: []string{"rock", "steel"},
		ImmuneTo:    []string{"ghost"},
	},
	"fire": {
		StrongAgainst: []string{"grass", "ice", "bug", "steel"},
		WeakAgainst:   []string{"fire", "water", "rock", "dragon"},
	},
	"water": {
		StrongAgainst: []string{"fire", "ground", "rock"},
		WeakAgainst:   []string{"water", "grass", "dragon"},
	},
	"electric": {
		StrongAgainst: []string{"water", "flying"},
		WeakAgainst:   []string{"electric", "grass", "dragon"},
		ImmuneTo:      []string{"ground"},
	},
	"grass": {
		StrongAgainst: []string{"water", "ground", "rock"},
		WeakAgainst:   []string{"fire", "grass", "poison", "flying", "bug", "dragon", "steel"},
	},
	"ice": {
		StrongAgainst: []string{"grass", "ground", "flying", "dragon"},
		WeakAgainst:   []string{"fire", "water", "ice", "steel"},
	},
	"fighting": {
		StrongAgainst: []string{"normal", "ice", "rock", "dark", "steel"},
		WeakAgainst:   []string{"poison", "flying", "psychic", "bug", "fairy"},
		ImmuneTo:      []string{"ghost"},
	},
	"poison": {
		StrongAgainst: []string{"grass", "fairy"},
		WeakAgainst:   []string{"poison", "ground", "rock", "ghost"},
		ImmuneTo:      []string{"steel"},
	},
	"ground": {
		StrongAgainst: []string{"fire", "electric", "poison", "rock", "steel"},
		WeakAgainst:   []string{"grass", "bug"},
		ImmuneTo:      []string{"flying"},
	},
	"flying": {
		StrongAgainst: []string{"grass", "fighting", "bug"},
		WeakAgainst:   []string{"electric", "rock", "steel"},
	},
	"psychic": {
		StrongAgainst: []string{"fighting", "poison"},
		WeakAgainst:   []string{"psychic", "steel"},
		ImmuneTo:      []string{"dark"},
	},
	"bug": {
		StrongAgainst: []string{"grass", "psychic", "dark"},
		WeakAgainst:   []string{"fire", "fighting", "poison", "flying", "ghost", "steel", "fairy"},
	},
	"rock": {
		StrongAgainst: []string{"fire", "ice", "flying", "bug"},
		WeakAgainst:   []string{"fighting", "ground", "steel"},
	},
	"ghost": {
		StrongAgainst: []string{"psychic", "ghost"},
		WeakAgainst:   []string{"dark"},
		ImmuneTo:      []string{"normal"},
	},
	"dragon": {
		StrongAgainst: []string{"dragon"},
		WeakAgainst:   []string{"steel"},
		ImmuneTo:      []string{"fairy"},
	},
	"dark": {
		StrongAgainst: []string{"psychic", "ghost"},
		WeakAgainst:   []string{"fighting", "dark", "fairy"},
	},
	"steel": {
		StrongAgainst: []string{"ice", "rock", "fairy"},
		WeakAgainst:   []string{"fire", "water", "electric", "steel"},
	},
	"fairy": {
		StrongAgainst: []string{"fighting", "dragon", "dark"},
		WeakAgainst:   []string{"fire", "poison", "steel"},
	},
}

// Lookup returns the relations for an attacking type.
func Lookup(attackType string) (Relations, bool) {
	rel, ok := chart[normalize(attackType)]
	return rel, ok
}

// IsKnown reports whether the type exists in the chart.
func IsKnown(name string) bool {
	_, ok := chart[normalize(name)]
	return ok
}

// Multiplier returns the damage multiplier of attackType against the
// defending types.
func Multiplier(attackType string, defendingTypes []string) float64 {
	rel, ok := Lookup(attackType)
	if !ok {
		return 1
	}

	multiplier := 1.0
	for _, def := range defendingTypes {
		def = normalize(def)
		switch {
		case contains(rel.StrongAgainst, def):
			multiplier *= 2
		case contains(rel.WeakAgainst, def):
			multiplier *= 0.5
		case contains(rel.ImmuneTo, def):
			return 0
		}
	}
	return multiplier
}

// Weaknesses returns the attacking types that deal more than neutral damage
// to a species with the given types, in canonical order.
func Weaknesses(speciesTypes []string) []string {
	weaknesses := make([]string, 0)
	for _, attackType := range Order {
		if Multiplier(attackType, speciesTypes) > 1 {
			weaknesses = append(weaknesses, attackType)
		}
	}
	return weaknesses
}

// CoverageTargets returns the types attackType is strong against.
func CoverageTargets(attackType string) []string {
	rel, ok := Lookup(attackType)
	if !ok {
		return nil
	}
	return rel.StrongAgainst
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
