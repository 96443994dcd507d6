// Package metrics names the counters and histograms movelens emits and
// records them into the global telemetry system. Every recorder is a no-op
// until observability.InitMetrics has run, so the CLI pays nothing.
package metrics

import (
	"time"

	"github.com/movelens/movelens/internal/observability"
)

func count(name string, labels map[string]string) {
	if sys := observability.TelemetrySystem; sys != nil {
		_ = sys.Counter(name, 1, labels)
	}
}

func observe(name string, d time.Duration, labels map[string]string) {
	if sys := observability.TelemetrySystem; sys != nil {
		_ = sys.Histogram(name, d, labels)
	}
}

func gauge(name string, value float64, labels map[string]string) {
	if sys := observability.TelemetrySystem; sys != nil {
		_ = sys.Gauge(name, value, labels)
	}
}

func outcome(ok bool, good, bad string) string {
	if ok {
		return good
	}
	return bad
}
