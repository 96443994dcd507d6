package output

import (
	"encoding/json"

	"github.com/movelens/movelens/internal/core"
)

// JSONFormatter renders results as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatAnalysis renders a species analysis as JSON.
func (f *JSONFormatter) FormatAnalysis(analysis *core.SpeciesAnalysis) (string, error) {
	if analysis == nil {
		return "", nil
	}
	return f.marshal(analysis)
}

// FormatTypeReport renders a type report as JSON.
func (f *JSONFormatter) FormatTypeReport(report *TypeReport) (string, error) {
	if report == nil {
		return "", nil
	}
	return f.marshal(report)
}

func (f *JSONFormatter) marshal(value any) (string, error) {
	var (
		data []byte
		err  error
	)

	if f.Indent {
		data, err = json.MarshalIndent(value, "", "  ")
	} else {
		data, err = json.Marshal(value)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}
