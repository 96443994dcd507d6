package observability

import (
	"fmt"
	"net"
	"strconv"

	"github.com/fulmenhq/gofulmen/telemetry"
	"github.com/fulmenhq/gofulmen/telemetry/exporters"
)

// defaultMetricsPort is reported when the exporter was asked for an
// ephemeral port and its bound address cannot be parsed.
const defaultMetricsPort = 9090

var (
	// TelemetrySystem receives counters and histograms from internal/metrics.
	TelemetrySystem *telemetry.System

	// PrometheusExporter serves /metrics for TelemetrySystem.
	PrometheusExporter *exporters.PrometheusExporter

	metricsPort int
)

// InitMetrics starts a Prometheus exporter on port (0 picks a free one) and
// installs a telemetry system that emits into it. The metric namespace
// defaults to serviceName.
func InitMetrics(serviceName string, port int, namespace ...string) error {
	if port < 0 {
		port = 0
	}
	metricsPort = port

	ns := serviceName
	if len(namespace) > 0 && namespace[0] != "" {
		ns = namespace[0]
	}

	exporter := exporters.NewPrometheusExporter(ns, fmt.Sprintf(":%d", port))
	if err := exporter.Start(); err != nil {
		return err
	}
	PrometheusExporter = exporter

	switch bound, err := portOf(exporter.GetAddr()); {
	case err == nil:
		metricsPort = bound
	case port == 0:
		metricsPort = defaultMetricsPort
	}

	sys, err := telemetry.NewSystem(&telemetry.Config{Enabled: true, Emitter: exporter})
	if err != nil {
		return err
	}
	TelemetrySystem = sys
	return nil
}

// StopMetrics shuts the exporter down and clears the globals.
func StopMetrics() error {
	exporter := PrometheusExporter
	PrometheusExporter = nil
	TelemetrySystem = nil
	if exporter == nil {
		return nil
	}
	return exporter.Stop()
}

// GetMetricsPort returns the port the exporter is bound to.
func GetMetricsPort() int {
	return metricsPort
}

func portOf(addr string) (int, error) {
	_, raw, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(raw)
}
