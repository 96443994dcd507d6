package output

import (
	"gopkg.in/yaml.v3"

	"github.com/movelens/movelens/internal/core"
)

// YAMLFormatter renders results as YAML documents.
type YAMLFormatter struct{}

// FormatAnalysis renders a species analysis as YAML.
func (f *YAMLFormatter) FormatAnalysis(analysis *core.SpeciesAnalysis) (string, error) {
	if analysis == nil {
		return "", nil
	}
	return marshalYAML(analysis)
}

// FormatTypeReport renders a type report as YAML.
func (f *YAMLFormatter) FormatTypeReport(report *TypeReport) (string, error) {
	if report == nil {
		return "", nil
	}
	return marshalYAML(report)
}

func marshalYAML(value any) (string, error) {
	data, err := yaml.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
