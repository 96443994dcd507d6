package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/fulmenhq/gofulmen/errors"
	"go.uber.org/zap"

	"github.com/movelens/movelens/internal/metrics"
	"github.com/movelens/movelens/internal/observability"
)

// panicBody mirrors the JSON error shape written by internal/errors, which
// this package cannot import.
type panicBody struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

// Recovery turns a handler panic into a 500 error envelope. The stack goes
// to the server log only, never to the client.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			if recovered == http.ErrAbortHandler {
				panic(recovered)
			}

			requestID := GetRequestID(r.Context())
			envelope := errors.NewErrorEnvelope("INTERNAL_ERROR", fmt.Sprintf("panic: %v", recovered)).
				WithCorrelationID(requestID)
			if critical, err := envelope.WithSeverity(errors.SeverityCritical); err == nil {
				envelope = critical
			}

			metrics.RecordPanic()
			if logger := observability.ServerLogger; logger != nil {
				logger.Error(envelope.Message,
					zap.String("request_id", requestID),
					zap.String("path", r.URL.Path),
					zap.String("severity", string(envelope.Severity)),
					zap.String("stack_trace", string(debug.Stack())))
			}

			var body panicBody
			body.Error.Code = envelope.Code
			body.Error.Message = "internal server error"
			body.Error.RequestID = envelope.CorrelationID

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(body)
		}()

		next.ServeHTTP(w, r)
	})
}
