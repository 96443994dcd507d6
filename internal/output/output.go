package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/movelens/movelens/internal/core"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatYAML     Format = "yaml"
)

// Formatter renders analyses and type reports.
type Formatter interface {
	FormatAnalysis(analysis *core.SpeciesAnalysis) (string, error)
	FormatTypeReport(report *TypeReport) (string, error)
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	case string(FormatYAML), "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// Extension returns the file extension used when writing a format to disk.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatMarkdown:
		return ".md"
	case FormatYAML:
		return ".yaml"
	default:
		return ".txt"
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TableFormatter{}
	}
}

// FormatAnalysisList renders multiple analyses using the requested format.
// JSON output is a single array so it stays machine readable.
func FormatAnalysisList(format Format, analyses []*core.SpeciesAnalysis) (string, error) {
	if format == FormatJSON {
		data, err := json.MarshalIndent(nonNilAnalyses(analyses), "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	formatter := NewFormatter(format)
	rendered := make([]string, 0, len(analyses))
	for _, analysis := range analyses {
		if analysis == nil {
			continue
		}
		value, err := formatter.FormatAnalysis(analysis)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(value) == "" {
			continue
		}
		rendered = append(rendered, value)
	}

	separator := "\n\n"
	if format == FormatYAML {
		separator = "\n---\n"
	}
	return strings.Join(rendered, separator), nil
}

func nonNilAnalyses(analyses []*core.SpeciesAnalysis) []*core.SpeciesAnalysis {
	out := make([]*core.SpeciesAnalysis, 0, len(analyses))
	for _, analysis := range analyses {
		if analysis != nil {
			out = append(out, analysis)
		}
	}
	return out
}
