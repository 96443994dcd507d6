package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/movelens/movelens/internal/core"
)

const emptyRoleNote = "no complete set"

// TableFormatter renders results as an ASCII table.
type TableFormatter struct{}

// FormatAnalysis renders a species analysis as a table of role sets.
func (f *TableFormatter) FormatAnalysis(analysis *core.SpeciesAnalysis) (string, error) {
	if analysis == nil {
		return "", nil
	}

	rendered := fmt.Sprintf("%s\n", DisplayName(analysis.Species))
	rendered += renderSections(analysisSections(analysis), false)
	if analysis.Unavailable {
		return rendered, nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Role", "Move", "Type", "Tag", "Reason"})

	for i, set := range analysis.MoveSets.Roles() {
		if i > 0 {
			t.AppendSeparator()
		}
		if len(set.Moves) == 0 {
			t.AppendRow(table.Row{set.Role, "", "", "", emptyRoleNote})
			continue
		}
		for j, move := range set.Moves {
			role := ""
			if j == 0 {
				role = set.Role
			}
			t.AppendRow(table.Row{
				role,
				DisplayName(move.Name),
				DisplayName(move.Type),
				move.RoleTag,
				move.Reason,
			})
		}
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, WidthMax: 60},
	})

	return rendered + t.Render(), nil
}

// FormatTypeReport renders a type report as a table.
func (f *TableFormatter) FormatTypeReport(report *TypeReport) (string, error) {
	if report == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetTitle(report.Title)
	t.AppendHeader(table.Row{"Type", "Relation", "Multiplier"})
	for _, row := range report.Rows {
		t.AppendRow(table.Row{DisplayName(row.Type), row.Relation, formatMultiplier(row.Multiplier)})
	}
	if len(report.Rows) == 0 {
		t.AppendRow(table.Row{"", "none", ""})
	}

	return t.Render(), nil
}
