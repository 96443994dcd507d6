package output

import (
	"fmt"
	"strings"

	"github.com/movelens/movelens/internal/core"
)

type summarySection struct {
	Title string
	Lines []string
}

func analysisSections(analysis *core.SpeciesAnalysis) []summarySection {
	if analysis == nil {
		return nil
	}

	if analysis.Unavailable {
		message := strings.TrimSpace(analysis.Message)
		if message == "" {
			message = "no competitive data available"
		}
		return []summarySection{{Title: "Status", Lines: []string{message}}}
	}

	lines := []string{
		"Types: " + displayTypes(analysis.Types),
		"Profile: " + profileLine(analysis.Profile),
		"Weak to: " + displayList(analysis.Weaknesses),
		fmt.Sprintf("Moves: %d candidates, %d viable", analysis.Candidates, analysis.Viable),
	}
	if analysis.Provenance.FromCache {
		lines = append(lines, "Served from cache")
	}
	return []summarySection{{Title: "Battle Profile", Lines: lines}}
}

func renderSections(sections []summarySection, markdown bool) string {
	if len(sections) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, section := range sections {
		if i > 0 {
			sb.WriteString("\n")
		}
		if markdown {
			sb.WriteString(fmt.Sprintf("### %s\n", section.Title))
			for _, line := range section.Lines {
				sb.WriteString(fmt.Sprintf("- %s\n", line))
			}
		} else {
			sb.WriteString(fmt.Sprintf("%s:\n", section.Title))
			for _, line := range section.Lines {
				sb.WriteString(fmt.Sprintf("  %s\n", line))
			}
		}
	}
	return sb.String()
}
