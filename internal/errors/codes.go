package errors

import "net/http"

// Envelope codes used across the CLI and HTTP surfaces.
const (
	CodeInvalidInput     = "INVALID_INPUT"
	CodeValidation       = "VALIDATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeRateLimited      = "RATE_LIMITED"
	CodeInternal         = "INTERNAL_ERROR"
	CodeDatabase         = "DATABASE_ERROR"
	CodeExternalService  = "EXTERNAL_SERVICE_ERROR"
	CodeServiceDown      = "SERVICE_UNAVAILABLE"
	CodeTimeout          = "TIMEOUT"
	CodeConfigInvalid    = "CONFIG_INVALID"
)

var statusByCode = map[string]int{
	CodeInvalidInput:     http.StatusBadRequest,
	CodeValidation:       http.StatusBadRequest,
	CodeNotFound:         http.StatusNotFound,
	CodeMethodNotAllowed: http.StatusMethodNotAllowed,
	CodeRateLimited:      http.StatusTooManyRequests,
	CodeExternalService:  http.StatusBadGateway,
	CodeServiceDown:      http.StatusServiceUnavailable,
	CodeTimeout:          http.StatusGatewayTimeout,
}

// HTTPStatusFromCode maps an envelope code to its HTTP status. Unknown codes
// are server errors.
func HTTPStatusFromCode(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
