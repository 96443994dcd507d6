package observability

import (
	"fmt"
	"os"
	"strings"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/logging"
)

var (
	// CLILogger writes human-oriented output for commands.
	CLILogger *logging.Logger

	// ServerLogger writes JSON lines for the HTTP server.
	ServerLogger *logging.Logger
)

// InitCLILogger builds the simple-profile logger used by every command.
// Verbose mode drops the threshold to DEBUG so cache hits and upstream
// fetches become visible.
func InitCLILogger(serviceName string, verbose bool) {
	logger, err := logging.NewCLI(serviceName)
	if err != nil {
		fatalStderr(foundry.ExitConfigInvalid, "Failed to initialize CLI logger", err)
	}
	if verbose {
		logger.SetLevel(logging.DEBUG)
	}
	CLILogger = logger
}

// InitServerLogger builds the structured logger for serve mode. The optional
// namespace is stamped on every line so logs and metrics share a prefix.
func InitServerLogger(serviceName string, logLevel string, namespace ...string) {
	ns := ""
	if len(namespace) > 0 {
		ns = namespace[0]
	}

	logger, err := logging.New(serverLoggerConfig(serviceName, logLevel, ns))
	if err != nil {
		fatalStderr(foundry.ExitConfigInvalid, "Failed to initialize server logger", err)
	}
	ServerLogger = logger
}

func serverLoggerConfig(serviceName, logLevel, namespace string) *logging.LoggerConfig {
	static := map[string]any{}
	if namespace = strings.TrimSpace(namespace); namespace != "" {
		static["namespace"] = namespace
	}

	return &logging.LoggerConfig{
		Profile:      logging.ProfileStructured,
		DefaultLevel: severity(logLevel),
		Service:      serviceName,
		Environment:  "production",
		StaticFields: static,
		Middleware: []logging.MiddlewareConfig{
			{Name: "correlation", Enabled: true, Order: 100, Config: map[string]any{}},
		},
		Sinks: []logging.SinkConfig{
			{
				Type:    "console",
				Format:  "json",
				Console: &logging.ConsoleSinkConfig{Stream: "stderr"},
			},
		},
		EnableCaller:     true,
		EnableStacktrace: true,
	}
}

var severities = map[string]string{
	"trace":   "TRACE",
	"debug":   "DEBUG",
	"info":    "INFO",
	"warn":    "WARN",
	"warning": "WARN",
	"error":   "ERROR",
}

// severity maps a config log level onto a gofulmen severity name.
// Unknown levels fall back to INFO.
func severity(level string) string {
	if s, ok := severities[strings.ToLower(strings.TrimSpace(level))]; ok {
		return s
	}
	return "INFO"
}

// fatalStderr is used before any logger exists.
func fatalStderr(exitCode foundry.ExitCode, msg string, err error) {
	line := "FATAL: " + msg
	if err != nil {
		line = fmt.Sprintf("%s: %v", line, err)
	}
	fmt.Fprintln(os.Stderr, line)

	code := int(exitCode)
	if info, ok := foundry.GetExitCodeInfo(exitCode); ok {
		fmt.Fprintf(os.Stderr, "Exit Code: %d (%s) - %s\n", info.Code, info.Name, info.Description)
		code = info.Code
	}
	os.Exit(code)
}
