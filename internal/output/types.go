package output

import (
	"strings"

	"github.com/movelens/movelens/internal/core/typechart"
)

// TypeReport describes type chart relations for display.
type TypeReport struct {
	Title string    `json:"title" yaml:"title"`
	Types []string  `json:"types" yaml:"types"`
	Rows  []TypeRow `json:"rows" yaml:"rows"`
}

// TypeRow is one attacking or defending type with its multiplier.
type TypeRow struct {
	Type       string  `json:"type" yaml:"type"`
	Relation   string  `json:"relation" yaml:"relation"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}

// WeaknessReport lists the attacking types that hit the given types for
// more than neutral damage.
func WeaknessReport(types []string) *TypeReport {
	report := &TypeReport{
		Title: "Weaknesses of " + displayTypes(types),
		Types: types,
		Rows:  []TypeRow{},
	}
	for _, attackType := range typechart.Weaknesses(types) {
		report.Rows = append(report.Rows, TypeRow{
			Type:       attackType,
			Relation:   "weak to",
			Multiplier: typechart.Multiplier(attackType, types),
		})
	}
	return report
}

// CoverageReport lists how an attacking type fares against each defending
// type it does not hit neutrally. The second result is false for unknown
// types.
func CoverageReport(attackType string) (*TypeReport, bool) {
	attackType = strings.ToLower(strings.TrimSpace(attackType))
	relations, ok := typechart.Lookup(attackType)
	if !ok {
		return nil, false
	}

	report := &TypeReport{
		Title: DisplayName(attackType) + " coverage",
		Types: []string{attackType},
		Rows:  []TypeRow{},
	}
	add := func(types []string, relation string, multiplier float64) {
		for _, t := range types {
			report.Rows = append(report.Rows, TypeRow{Type: t, Relation: relation, Multiplier: multiplier})
		}
	}
	add(relations.StrongAgainst, "super effective", 2)
	add(relations.WeakAgainst, "not very effective", 0.5)
	add(relations.ImmuneTo, "no effect", 0)
	return report, true
}
