package engine

import (
	"strings"

	"github.com/movelens/movelens/internal/core"
)

// SelectCandidates deduplicates moves by name, keeping the first occurrence,
// and truncates to limit entries in input order.
func SelectCandidates(refs []core.MoveRef, limit int) []core.MoveRef {
	if limit <= 0 {
		limit = core.DefaultTuning().MaxCandidates
	}

	seen := make(map[string]struct{}, len(refs))
	selected := make([]core.MoveRef, 0, min(len(refs), limit))
	for _, ref := range refs {
		name := strings.TrimSpace(ref.Name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		selected = append(selected, ref)
		if len(selected) == limit {
			break
		}
	}
	return selected
}
