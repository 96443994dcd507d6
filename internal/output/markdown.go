package output

import (
	"fmt"
	"strings"

	"github.com/movelens/movelens/internal/core"
)

// MarkdownFormatter renders results as markdown.
type MarkdownFormatter struct{}

// FormatAnalysis renders a species analysis as Markdown, one table per role.
func (f *MarkdownFormatter) FormatAnalysis(analysis *core.SpeciesAnalysis) (string, error) {
	if analysis == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s move sets\n\n", escapeMarkdownCell(DisplayName(analysis.Species))))
	sb.WriteString(renderSections(analysisSections(analysis), true))
	if analysis.Unavailable {
		return sb.String(), nil
	}

	for _, set := range analysis.MoveSets.Roles() {
		sb.WriteString(fmt.Sprintf("\n### %s\n\n", DisplayName(set.Role)))
		if len(set.Moves) == 0 {
			sb.WriteString("_" + emptyRoleNote + "_\n")
			continue
		}
		sb.WriteString("| Move | Type | Tag | Reason |\n")
		sb.WriteString("|------|------|-----|--------|\n")
		for _, move := range set.Moves {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				escapeMarkdownCell(DisplayName(move.Name)),
				escapeMarkdownCell(DisplayName(move.Type)),
				escapeMarkdownCell(move.RoleTag),
				escapeMarkdownCell(move.Reason),
			))
		}
	}

	return sb.String(), nil
}

// FormatTypeReport renders a type report as a markdown table.
func (f *MarkdownFormatter) FormatTypeReport(report *TypeReport) (string, error) {
	if report == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s\n\n", escapeMarkdownCell(report.Title)))
	if len(report.Rows) == 0 {
		sb.WriteString("_none_\n")
		return sb.String(), nil
	}
	sb.WriteString("| Type | Relation | Multiplier |\n")
	sb.WriteString("|------|----------|------------|\n")
	for _, row := range report.Rows {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
			escapeMarkdownCell(DisplayName(row.Type)),
			escapeMarkdownCell(row.Relation),
			formatMultiplier(row.Multiplier),
		))
	}
	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}
