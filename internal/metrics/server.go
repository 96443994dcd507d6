package metrics

import (
	"strconv"
	"time"
)

// Server and error metrics
const (
	ErrorsTotal         = "errors_total"
	ErrorsByEndpoint    = "errors_by_endpoint"
	PanicsTotal         = "panics_total"
	HealthCheckTotal    = "health_check_total"
	HealthCheckDuration = "health_check_duration_ms"
	ServerStartTime     = "server_start_time_seconds"
)

// RecordError counts an error response by envelope code and HTTP status.
func RecordError(code string, status int) {
	count(ErrorsTotal, map[string]string{
		"error_code":  code,
		"http_status": strconv.Itoa(status),
	})
}

// RecordErrorByEndpoint counts an error response by route pattern.
func RecordErrorByEndpoint(endpoint string, code string) {
	count(ErrorsByEndpoint, map[string]string{
		"endpoint":   endpoint,
		"error_code": code,
	})
}

// RecordPanic counts a recovered handler panic.
func RecordPanic() {
	count(PanicsTotal, nil)
}

// RecordHealthCheck records one run of a named readiness checker.
func RecordHealthCheck(check string, healthy bool, d time.Duration) {
	count(HealthCheckTotal, map[string]string{
		"check":  check,
		"status": outcome(healthy, "healthy", "unhealthy"),
	})
	observe(HealthCheckDuration, d, map[string]string{"check": check})
}

// SetServerStartTime publishes the serve start time as a Unix timestamp.
func SetServerStartTime(t time.Time) {
	gauge(ServerStartTime, float64(t.Unix()), nil)
}
