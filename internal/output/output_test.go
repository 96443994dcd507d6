package output

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/movelens/movelens/internal/core"
)

func sampleAnalysis() *core.SpeciesAnalysis {
	sets := core.EmptyMoveSets()
	sets.Sweeper = []core.Recommendation{
		{Name: "swords-dance", Type: "normal", RoleTag: "setup", Reason: "Provides immediate setup. Role: setup"},
		{Name: "outrage", Type: "dragon", RoleTag: "stab", Reason: "BP 120 with 100% accuracy. Takes advantage of STAB. Role: stab"},
		{Name: "earthquake", Type: "ground", RoleTag: "stab", Reason: "BP 100 with 100% accuracy. Takes advantage of STAB. Role: stab"},
		{Name: "fire-fang", Type: "fire", RoleTag: "coverage", Reason: "BP 65 with 95% accuracy. Role: coverage"},
	}

	return &core.SpeciesAnalysis{
		Species:    "garchomp",
		Types:      []string{"dragon", "ground"},
		Profile:    core.BattleProfile{OffensiveBias: core.BiasPhysical, Speed: 102, Bulk: 288, IsSweeper: true},
		Weaknesses: []string{"ice", "dragon", "fairy"},
		Candidates: 8,
		Viable:     7,
		MoveSets:   sets,
		Provenance: core.Provenance{
			AnalysisID:  "analysis-1",
			RequestedAt: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			ResolvedAt:  time.Date(2026, 3, 15, 0, 0, 1, 0, time.UTC),
			Source:      "pokeapi",
		},
	}
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("table")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	format, err = ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	format, err = ParseFormat("yml")
	require.NoError(t, err)
	require.Equal(t, FormatYAML, format)

	format, err = ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	_, err = ParseFormat("csv")
	require.Error(t, err)
}

func TestFormatExtension(t *testing.T) {
	require.Equal(t, ".json", FormatJSON.Extension())
	require.Equal(t, ".md", FormatMarkdown.Extension())
	require.Equal(t, ".yaml", FormatYAML.Extension())
	require.Equal(t, ".txt", FormatTable.Extension())
}

func TestDisplayName(t *testing.T) {
	require.Equal(t, "Swords Dance", DisplayName("swords-dance"))
	require.Equal(t, "Garchomp", DisplayName(" garchomp "))
	require.Equal(t, "", DisplayName(""))
}

func TestFormatters(t *testing.T) {
	analysis := sampleAnalysis()

	tableRendered, err := NewFormatter(FormatTable).FormatAnalysis(analysis)
	require.NoError(t, err)
	require.Contains(t, tableRendered, "Garchomp")
	require.Contains(t, tableRendered, "ROLE")
	require.Contains(t, tableRendered, "Swords Dance")
	require.Contains(t, tableRendered, "Types: Dragon/Ground")
	require.Contains(t, tableRendered, "Weak to: Ice, Dragon, Fairy")
	require.Contains(t, tableRendered, emptyRoleNote)

	jsonRendered, err := NewFormatter(FormatJSON).FormatAnalysis(analysis)
	require.NoError(t, err)
	require.Contains(t, jsonRendered, "\"species\": \"garchomp\"")
	require.Contains(t, jsonRendered, "\"roleTag\": \"setup\"")
	require.Contains(t, jsonRendered, "\"tank\": []")

	markdownRendered, err := NewFormatter(FormatMarkdown).FormatAnalysis(analysis)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(markdownRendered, "## Garchomp move sets"))
	require.Contains(t, markdownRendered, "### Sweeper")
	require.Contains(t, markdownRendered, "| Move | Type | Tag | Reason |")
	require.Contains(t, markdownRendered, "- Profile: physical bias, speed 102, bulk 288 (sweeper)")
}

func TestYAMLFormatterRoundTrip(t *testing.T) {
	rendered, err := NewFormatter(FormatYAML).FormatAnalysis(sampleAnalysis())
	require.NoError(t, err)
	require.Contains(t, rendered, "species: garchomp")
	require.Contains(t, rendered, "role_tag: setup")

	var decoded core.SpeciesAnalysis
	require.NoError(t, yaml.Unmarshal([]byte(rendered), &decoded))
	require.Equal(t, "garchomp", decoded.Species)
	require.Len(t, decoded.MoveSets.Sweeper, 4)
	require.Equal(t, "fire-fang", decoded.MoveSets.Sweeper[3].Name)
}

func TestUnavailableAnalysis(t *testing.T) {
	analysis := &core.SpeciesAnalysis{
		Species:     "missingno",
		MoveSets:    core.EmptyMoveSets(),
		Unavailable: true,
		Message:     "no competitive data available",
	}

	tableRendered, err := NewFormatter(FormatTable).FormatAnalysis(analysis)
	require.NoError(t, err)
	require.Contains(t, tableRendered, "Status:")
	require.Contains(t, tableRendered, "no competitive data available")
	require.NotContains(t, tableRendered, "ROLE")

	markdownRendered, err := NewFormatter(FormatMarkdown).FormatAnalysis(analysis)
	require.NoError(t, err)
	require.NotContains(t, markdownRendered, "### Sweeper")
}

func TestFormatAnalysisListJSON(t *testing.T) {
	rendered, err := FormatAnalysisList(FormatJSON, []*core.SpeciesAnalysis{sampleAnalysis(), nil})
	require.NoError(t, err)

	var decoded []core.SpeciesAnalysis
	require.NoError(t, json.Unmarshal([]byte(rendered), &decoded))
	require.Len(t, decoded, 1)
	require.Equal(t, "garchomp", decoded[0].Species)
}

func TestFormatAnalysisListNonJSON(t *testing.T) {
	second := sampleAnalysis()
	second.Species = "ferrothorn"

	rendered, err := FormatAnalysisList(FormatMarkdown, []*core.SpeciesAnalysis{sampleAnalysis(), second})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(rendered, "## "))
	require.Contains(t, rendered, "## Ferrothorn move sets")

	rendered, err = FormatAnalysisList(FormatYAML, []*core.SpeciesAnalysis{sampleAnalysis(), second})
	require.NoError(t, err)
	require.Contains(t, rendered, "\n---\n")
}

func TestMarkdownEscaping(t *testing.T) {
	analysis := sampleAnalysis()
	analysis.MoveSets.Sweeper[0].Reason = "foo|bar"

	rendered, err := NewFormatter(FormatMarkdown).FormatAnalysis(analysis)
	require.NoError(t, err)
	require.Contains(t, rendered, "foo\\|bar")
}

func TestWeaknessReport(t *testing.T) {
	report := WeaknessReport([]string{"water", "ground"})
	require.Len(t, report.Rows, 1)
	require.Equal(t, TypeRow{Type: "grass", Relation: "weak to", Multiplier: 4}, report.Rows[0])

	rendered, err := NewFormatter(FormatTable).FormatTypeReport(report)
	require.NoError(t, err)
	require.Contains(t, rendered, "Weaknesses of Water/Ground")
	require.Contains(t, rendered, "4x")
}

func TestCoverageReport(t *testing.T) {
	report, ok := CoverageReport(" Electric ")
	require.True(t, ok)
	require.Equal(t, []string{"electric"}, report.Types)
	require.Equal(t, TypeRow{Type: "water", Relation: "super effective", Multiplier: 2}, report.Rows[0])
	require.Equal(t, TypeRow{Type: "ground", Relation: "no effect", Multiplier: 0}, report.Rows[len(report.Rows)-1])

	rendered, err := NewFormatter(FormatMarkdown).FormatTypeReport(report)
	require.NoError(t, err)
	require.Contains(t, rendered, "| Ground | no effect | 0x |")
	require.Contains(t, rendered, "| Dragon | not very effective | 0.5x |")

	_, ok = CoverageReport("shadow")
	require.False(t, ok)
}

func TestFormatProfile(t *testing.T) {
	report := NewProfileReport(sampleAnalysis())

	rendered, err := FormatProfile(FormatTable, report)
	require.NoError(t, err)
	require.Contains(t, rendered, "Garchomp")
	require.Contains(t, rendered, "Offensive bias")
	require.Contains(t, rendered, "288")

	rendered, err = FormatProfile(FormatMarkdown, report)
	require.NoError(t, err)
	require.Contains(t, rendered, "- **Sweeper**: yes")
	require.Contains(t, rendered, "- **Tank**: no")

	rendered, err = FormatProfile(FormatJSON, report)
	require.NoError(t, err)
	require.Contains(t, rendered, "\"offensiveBias\": \"physical\"")

	rendered, err = FormatProfile(FormatYAML, report)
	require.NoError(t, err)
	require.Contains(t, rendered, "offensive_bias: physical")
}
