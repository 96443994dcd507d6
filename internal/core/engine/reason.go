package engine

import (
	"fmt"
	"strings"

	"github.com/movelens/movelens/internal/core"
)

// RoleTag picks the tag that names a recommendation.
func RoleTag(move *core.MoveScore) string {
	if move == nil {
		return string(core.TagUtility)
	}
	for _, tag := range roleTagOrder {
		if move.Tags.Has(tag) {
			return string(tag)
		}
	}
	return string(core.TagUtility)
}

// BuildReason renders the rationale for a move in a fixed fragment order.
func BuildReason(move *core.MoveScore, roleTag string) string {
	if move == nil {
		return "Role: " + roleTag
	}

	parts := make([]string, 0, 8)

	if move.IsDamaging {
		accuracy := "variable"
		if move.Accuracy != nil && *move.Accuracy > 0 {
			accuracy = fmt.Sprintf("%d%%", *move.Accuracy)
		}
		parts = append(parts, fmt.Sprintf("BP %d with %s accuracy", move.Power, accuracy))
	}
	if move.Tags.Has(core.TagSetup) {
		parts = append(parts, "Provides immediate setup")
	}
	if move.Tags.Has(core.TagPriority) {
		parts = append(parts, "Priority to finish off weakened foes")
	}
	if move.Tags.Has(core.TagStab) {
		parts = append(parts, "Takes advantage of STAB")
	}
	if len(move.CoverageTargets) > 0 {
		parts = append(parts, "Covers threats such as "+strings.Join(move.CoverageTargets, ", "))
	}
	if move.Tags.Has(core.TagRecovery) {
		parts = append(parts, "Reliable recovery")
	} else if move.Tags.Has(core.TagDrain) {
		parts = append(parts, "Drains HP with every hit")
	}
	if move.Tags.Has(core.TagHazard) {
		parts = append(parts, "Sets entry hazards")
	}
	if move.Tags.Has(core.TagRemoval) {
		parts = append(parts, "Controls enemy hazards")
	}
	if move.Tags.Has(core.TagTaunt) {
		parts = append(parts, "Blocks opposing setup")
	}
	if move.Tags.Has(core.TagStatus) {
		parts = append(parts, "Spreads persistent status")
	}
	if move.Tags.Has(core.TagScreen) {
		parts = append(parts, "Sets up defensive screens")
	}

	if len(parts) == 0 && move.EnglishEffect != "" {
		parts = append(parts, strings.TrimRight(move.EnglishEffect, ". "))
	}

	parts = append(parts, "Role: "+roleTag)
	return strings.Join(parts, ". ")
}

// Recommend projects a scored move into a recommendation.
func Recommend(move *core.MoveScore, roleTag string) core.Recommendation {
	return core.Recommendation{
		Name:    move.Name,
		Type:    move.Type,
		RoleTag: roleTag,
		Reason:  BuildReason(move, roleTag),
	}
}
