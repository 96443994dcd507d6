// Package errors builds gofulmen error envelopes for movelens and writes them
// as JSON error bodies.
package errors

import (
	"context"

	"github.com/fulmenhq/gofulmen/errors"

	"github.com/movelens/movelens/internal/server/middleware"
)

func NewInvalidInputError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeInvalidInput, message)
}

func NewNotFoundError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeNotFound, message)
}

func NewMethodNotAllowedError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeMethodNotAllowed, message)
}

func NewRateLimitedError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeRateLimited, message)
}

func NewInternalError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeInternal, message)
}

func NewExternalServiceError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeExternalService, message)
}

func NewServiceUnavailableError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeServiceDown, message)
}

func NewConfigInvalidError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeConfigInvalid, message)
}

// Wrap helpers attach the cause and the request's correlation ID.

func WrapNotFound(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return wrap(ctx, CodeNotFound, err, message)
}

func WrapRateLimited(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return wrap(ctx, CodeRateLimited, err, message)
}

func WrapTimeout(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return wrap(ctx, CodeTimeout, err, message)
}

func WrapExternalService(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return wrap(ctx, CodeExternalService, err, message)
}

func WrapInternal(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return wrap(ctx, CodeInternal, err, message)
}

func WrapDatabaseError(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return wrap(ctx, CodeDatabase, err, message)
}

func WrapConfigInvalid(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return wrap(ctx, CodeConfigInvalid, err, message)
}

func wrap(ctx context.Context, code string, err error, message string) *errors.ErrorEnvelope {
	id := correlationID(ctx)
	envelope := errors.NewErrorEnvelope(code, message).
		WithCorrelationID(id).
		WithTraceID(id)
	return withCause(envelope, err)
}

func withCause(envelope *errors.ErrorEnvelope, err error) *errors.ErrorEnvelope {
	if envelope == nil || err == nil {
		return envelope
	}
	updated, updateErr := envelope.WithContext(map[string]interface{}{
		"wrapped_error": err.Error(),
	})
	if updateErr != nil {
		return envelope
	}
	return updated
}

// correlationID prefers the request ID carried by ctx. Outside a request a
// fresh ID is generated so CLI errors still correlate with their log lines.
func correlationID(ctx context.Context) string {
	if ctx != nil {
		if id := middleware.GetRequestID(ctx); id != "" {
			return id
		}
	}
	return errors.GenerateCorrelationID()
}

// EnsureEnvelope converts any error into an envelope. Plain errors become
// INTERNAL_ERROR with the original text kept in context.
func EnsureEnvelope(err error) *errors.ErrorEnvelope {
	if envelope, ok := err.(*errors.ErrorEnvelope); ok && envelope != nil {
		return envelope
	}

	severity := errors.SeverityHigh
	envelope := errors.NewErrorEnvelope(CodeInternal, "unexpected error")
	if err == nil {
		severity = errors.SeverityCritical
		envelope = errors.NewErrorEnvelope(CodeInternal, "unexpected nil error")
	} else {
		envelope = withCause(envelope, err)
	}
	if updated, sevErr := envelope.WithSeverity(severity); sevErr == nil {
		envelope = updated
	}
	return envelope
}

// EnsureCorrelationID fills a missing correlation ID from ctx.
func EnsureCorrelationID(envelope *errors.ErrorEnvelope, ctx context.Context) *errors.ErrorEnvelope {
	if envelope == nil || envelope.CorrelationID != "" {
		return envelope
	}
	return envelope.WithCorrelationID(correlationID(ctx))
}
