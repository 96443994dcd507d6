package cmd

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"
)

// osExit is swapped in tests.
var osExit = os.Exit

// exitStatus is the catalog entry for a foundry code, or a bare code when the
// catalog has no entry for it.
type exitStatus struct {
	code        int
	name        string
	description string
	category    string
	known       bool
}

func lookupExit(code foundry.ExitCode) exitStatus {
	info, ok := foundry.GetExitCodeInfo(code)
	if !ok {
		return exitStatus{code: int(code)}
	}
	return exitStatus{
		code:        info.Code,
		name:        info.Name,
		description: info.Description,
		category:    info.Category,
		known:       true,
	}
}

// unwrapEnvelope splits a gofulmen envelope from the error it carries.
func unwrapEnvelope(err error) (*errors.ErrorEnvelope, error) {
	var envelope *errors.ErrorEnvelope
	if err == nil || !stderrors.As(err, &envelope) {
		return nil, err
	}
	if original, ok := envelope.Original.(error); ok && original != nil {
		return envelope, original
	}
	return envelope, err
}

// ExitWithCode logs msg with the exit code metadata and terminates. A nil
// logger falls back to stderr, which covers failures before logging is up.
func ExitWithCode(logger *logging.Logger, exitCode foundry.ExitCode, msg string, err error) {
	status := lookupExit(exitCode)
	if logger == nil {
		writeFatal(os.Stderr, status, msg, err)
		osExit(status.code)
		return
	}

	fields := []zap.Field{zap.Int("exit_code", status.code)}
	if status.known {
		fields = append(fields,
			zap.String("exit_name", status.name),
			zap.String("exit_description", status.description),
			zap.String("exit_category", status.category))
	}

	envelope, cause := unwrapEnvelope(err)
	if envelope != nil {
		fields = append(fields,
			zap.String("error_code", envelope.Code),
			zap.String("error_message", envelope.Message),
			zap.String("correlation_id", envelope.CorrelationID),
			zap.String("trace_id", envelope.TraceID))
		if envelope.Context != nil {
			fields = append(fields, zap.Any("error_context", envelope.Context))
		}
	}
	if cause != nil {
		fields = append(fields, zap.Error(cause))
	}

	logger.Error(msg, fields...)
	osExit(status.code)
}

// ExitWithCodeStderr terminates without a logger.
func ExitWithCodeStderr(exitCode foundry.ExitCode, msg string, err error) {
	status := lookupExit(exitCode)
	writeFatal(os.Stderr, status, msg, err)
	osExit(status.code)
}

func writeFatal(w io.Writer, status exitStatus, msg string, err error) {
	envelope, cause := unwrapEnvelope(err)
	switch {
	case envelope != nil:
		_, _ = fmt.Fprintf(w, "FATAL: %s [%s]: %s (correlation: %s, trace: %s)\n",
			msg, envelope.Code, envelope.Message, envelope.CorrelationID, envelope.TraceID)
		if _, wrapped := envelope.Original.(error); wrapped && cause != nil {
			_, _ = fmt.Fprintf(w, "Underlying error: %v\n", cause)
		}
	case err != nil:
		_, _ = fmt.Fprintf(w, "FATAL: %s: %v\n", msg, err)
	default:
		_, _ = fmt.Fprintf(w, "FATAL: %s\n", msg)
	}

	if status.known {
		_, _ = fmt.Fprintf(w, "Exit Code: %d (%s) - %s\n", status.code, status.name, status.description)
		return
	}
	_, _ = fmt.Fprintf(w, "Exit Code: %d\n", status.code)
}
