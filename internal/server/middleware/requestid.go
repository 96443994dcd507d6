package middleware

import (
	"context"
	"net/http"
	"strings"
	"unicode"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

type requestIDContextKey string

// RequestIDContextKey stores the request ID on the request context.
const RequestIDContextKey requestIDContextKey = "request_id"

const maxRequestIDLength = 128

// RequestID assigns every request an ID, echoes it in the response header
// and stores it on the context. A well-formed inbound X-Request-ID is reused
// so callers can correlate their own logs with ours.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chimw.GetReqID(r.Context())
		if id == "" {
			id = sanitizeRequestID(r.Header.Get(RequestIDHeader))
		}
		if id == "" {
			id = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), RequestIDContextKey, id)))
	})
}

// GetRequestID returns the request ID from ctx, falling back to chi's own
// request ID middleware when ours did not run.
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(RequestIDContextKey).(string); ok {
		return id
	}
	return chimw.GetReqID(ctx)
}

// sanitizeRequestID rejects inbound IDs that are too long or contain
// non-printable characters, since they end up in logs verbatim.
func sanitizeRequestID(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" || len(id) > maxRequestIDLength {
		return ""
	}
	for _, r := range id {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) || r == ' ' {
			return ""
		}
	}
	return id
}
