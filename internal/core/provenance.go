package core

import "time"

// Provenance captures metadata about how an analysis was produced.
type Provenance struct {
	AnalysisID  string    `json:"analysis_id" yaml:"analysis_id"`
	RequestedAt time.Time `json:"requested_at" yaml:"requested_at"`
	ResolvedAt  time.Time `json:"resolved_at" yaml:"resolved_at"`
	Source      string    `json:"source" yaml:"source"`
	FromCache   bool      `json:"from_cache" yaml:"from_cache"`
	ToolVersion string    `json:"tool_version" yaml:"tool_version"`
}
