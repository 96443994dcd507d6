package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/movelens/movelens/internal/core"
)

// ProfileReport is the battle profile view of an analysis.
type ProfileReport struct {
	Species    string             `json:"species" yaml:"species"`
	Types      []string           `json:"types" yaml:"types"`
	Profile    core.BattleProfile `json:"profile" yaml:"profile"`
	Weaknesses []string           `json:"weaknesses" yaml:"weaknesses"`
}

// NewProfileReport projects an analysis onto its profile fields.
func NewProfileReport(analysis *core.SpeciesAnalysis) *ProfileReport {
	if analysis == nil {
		return nil
	}
	return &ProfileReport{
		Species:    analysis.Species,
		Types:      analysis.Types,
		Profile:    analysis.Profile,
		Weaknesses: analysis.Weaknesses,
	}
}

// FormatProfile renders a profile report in the requested format.
func FormatProfile(format Format, report *ProfileReport) (string, error) {
	if report == nil {
		return "", nil
	}

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	case FormatYAML:
		return marshalYAML(report)
	case FormatMarkdown:
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("## %s profile\n\n", escapeMarkdownCell(DisplayName(report.Species))))
		for _, row := range profileRows(report) {
			sb.WriteString(fmt.Sprintf("- **%s**: %s\n", row[0], escapeMarkdownCell(row[1])))
		}
		return sb.String(), nil
	default:
		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.SetTitle(DisplayName(report.Species))
		for _, row := range profileRows(report) {
			t.AppendRow(table.Row{row[0], row[1]})
		}
		return t.Render(), nil
	}
}

func profileRows(report *ProfileReport) [][2]string {
	return [][2]string{
		{"Types", displayTypes(report.Types)},
		{"Offensive bias", string(report.Profile.OffensiveBias)},
		{"Speed", fmt.Sprintf("%d", report.Profile.Speed)},
		{"Bulk", fmt.Sprintf("%d", report.Profile.Bulk)},
		{"Sweeper", yesNo(report.Profile.IsSweeper)},
		{"Tank", yesNo(report.Profile.IsTank)},
		{"Weak to", displayList(report.Weaknesses)},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
