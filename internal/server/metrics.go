package server

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/movelens/movelens/internal/errors"
	"github.com/movelens/movelens/internal/observability"
)

const (
	fallbackMetricsPort = 9090
	prometheusTextType  = "text/plain; version=0.0.4"
)

var metricsProxyClient = &http.Client{Timeout: 5 * time.Second}

// hop-by-hop headers are never copied from the exporter response.
var hopHeaders = map[string]struct{}{
	"Connection":          {},
	"Keep-Alive":          {},
	"Proxy-Authenticate":  {},
	"Proxy-Authorization": {},
	"Te":                  {},
	"Trailer":             {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
}

func metricsURL() string {
	port := observability.GetMetricsPort()
	if port == 0 {
		port = fallbackMetricsPort
	}
	return "http://127.0.0.1:" + strconv.Itoa(port) + "/metrics"
}

// MetricsHandler proxies the Prometheus exporter so /metrics can be scraped
// on the API port.
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	if observability.PrometheusExporter == nil {
		apperrors.RespondWithError(w, r, apperrors.NewServiceUnavailableError("metrics exporter not initialized"))
		return
	}

	target := metricsURL()
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapInternal(r.Context(), err, "build metrics request"))
		return
	}
	if accept := r.Header.Get("Accept"); accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := metricsProxyClient.Do(req)
	if err != nil {
		envelope := apperrors.WrapExternalService(r.Context(), err, "prometheus exporter unavailable").
			WithDetails(map[string]interface{}{"metrics_url": target})
		apperrors.RespondWithError(w, r, envelope)
		return
	}
	defer resp.Body.Close() // nolint:errcheck // read-only body

	for key, values := range resp.Header {
		if _, hop := hopHeaders[http.CanonicalHeaderKey(key)]; hop {
			continue
		}
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", prometheusTextType)
	}

	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		if logger := observability.ServerLogger; logger != nil {
			logger.Warn("Metrics proxy copy failed", zap.Error(err))
		}
	}
}
