package errors

import (
	"encoding/json"
	"maps"
	"net/http"

	"github.com/fulmenhq/gofulmen/errors"
	"go.uber.org/zap"

	"github.com/movelens/movelens/internal/metrics"
	"github.com/movelens/movelens/internal/observability"
	"github.com/movelens/movelens/internal/server/middleware"
)

// HTTPErrorDetail is the body of every JSON error response.
type HTTPErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// HTTPErrorResponse wraps HTTPErrorDetail under an "error" key.
type HTTPErrorResponse struct {
	Error HTTPErrorDetail `json:"error"`
}

// HTTPStatusFromEnvelope maps an envelope to its HTTP status.
func HTTPStatusFromEnvelope(envelope *errors.ErrorEnvelope) int {
	if envelope == nil {
		return http.StatusInternalServerError
	}
	return HTTPStatusFromCode(envelope.Code)
}

// ResponseDetails merges envelope context and details. Details win on key
// collisions.
func ResponseDetails(envelope *errors.ErrorEnvelope) map[string]interface{} {
	if envelope == nil || len(envelope.Details)+len(envelope.Context) == 0 {
		return nil
	}
	merged := make(map[string]interface{}, len(envelope.Details)+len(envelope.Context))
	maps.Copy(merged, envelope.Context)
	maps.Copy(merged, envelope.Details)
	return merged
}

// RespondWithError writes err as a JSON error response.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	RespondWithEnvelope(w, r, EnsureEnvelope(err))
}

// RespondWithEnvelope logs the envelope, counts it and writes the response.
func RespondWithEnvelope(w http.ResponseWriter, r *http.Request, envelope *errors.ErrorEnvelope) {
	if w == nil {
		return
	}
	if envelope == nil {
		envelope = EnsureEnvelope(nil)
	}

	endpoint := "/unknown"
	if r != nil {
		envelope = EnsureCorrelationID(envelope, r.Context())
		endpoint = middleware.EndpointLabel(r)
	} else {
		envelope = EnsureCorrelationID(envelope, nil)
	}

	status := HTTPStatusFromEnvelope(envelope)
	logEnvelope(envelope, status)
	metrics.RecordError(envelope.Code, status)
	metrics.RecordErrorByEndpoint(endpoint, envelope.Code)

	body := HTTPErrorResponse{Error: HTTPErrorDetail{
		Code:      envelope.Code,
		Message:   envelope.Message,
		Details:   ResponseDetails(envelope),
		RequestID: envelope.CorrelationID,
	}}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type logLevel int

const (
	levelInfo logLevel = iota
	levelWarn
	levelError
)

// levelFor escalates high severities and server errors to error level.
func levelFor(envelope *errors.ErrorEnvelope, status int) logLevel {
	switch {
	case envelope.Severity == errors.SeverityCritical, envelope.Severity == errors.SeverityHigh:
		return levelError
	case status >= http.StatusInternalServerError:
		return levelError
	case envelope.Severity == errors.SeverityMedium, status == http.StatusTooManyRequests:
		return levelWarn
	default:
		return levelInfo
	}
}

func logEnvelope(envelope *errors.ErrorEnvelope, status int) {
	logger := observability.ServerLogger
	if logger == nil {
		return
	}

	fields := make([]zap.Field, 0, 4+len(envelope.Context))
	fields = append(fields,
		zap.String("error_code", envelope.Code),
		zap.Int("http_status", status),
		zap.String("request_id", envelope.CorrelationID))
	if envelope.Severity != "" {
		fields = append(fields, zap.String("severity", string(envelope.Severity)))
	}
	for key, value := range envelope.Context {
		fields = append(fields, zap.Any(key, value))
	}

	switch levelFor(envelope, status) {
	case levelError:
		logger.Error(envelope.Message, fields...)
	case levelWarn:
		logger.Warn(envelope.Message, fields...)
	default:
		logger.Info(envelope.Message, fields...)
	}
}
