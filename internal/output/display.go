package output

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/movelens/movelens/internal/core"
)

// DisplayName turns an API slug like "swords-dance" into "Swords Dance".
func DisplayName(slug string) string {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ""
	}
	caser := cases.Title(language.English)
	return caser.String(strings.ReplaceAll(slug, "-", " "))
}

func displayTypes(types []string) string {
	if len(types) == 0 {
		return "unknown"
	}
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, DisplayName(t))
	}
	return strings.Join(names, "/")
}

func displayList(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	names := make([]string, 0, len(values))
	for _, v := range values {
		names = append(names, DisplayName(v))
	}
	return strings.Join(names, ", ")
}

func profileLine(profile core.BattleProfile) string {
	roles := make([]string, 0, 2)
	if profile.IsSweeper {
		roles = append(roles, "sweeper")
	}
	if profile.IsTank {
		roles = append(roles, "tank")
	}
	line := fmt.Sprintf("%s bias, speed %d, bulk %d", profile.OffensiveBias, profile.Speed, profile.Bulk)
	if len(roles) > 0 {
		line += " (" + strings.Join(roles, ", ") + ")"
	}
	return line
}

func formatMultiplier(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64) + "x"
}
