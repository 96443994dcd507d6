package cmd

import (
	"context"
	"errors"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/movelens/movelens/internal/config"
	errwrap "github.com/movelens/movelens/internal/errors"
	"github.com/movelens/movelens/internal/observability"
)

// selfCheck is one startup precondition. A failing check names the exit
// code the process should stop with.
type selfCheck struct {
	label    string
	exitCode foundry.ExitCode
	run      func(ctx context.Context) error
}

func selfChecks() []selfCheck {
	return []selfCheck{
		{"Version information available", foundry.ExitConfigInvalid, func(context.Context) error {
			if versionInfo.Version == "" {
				return errwrap.NewConfigInvalidError("version information missing")
			}
			return nil
		}},
		{"Configuration loaded", foundry.ExitConfigInvalid, func(ctx context.Context) error {
			if _, err := config.Load(ctx); err != nil {
				return errwrap.WrapConfigInvalid(ctx, err, "config load failed")
			}
			return nil
		}},
		{"Store reachable", foundry.ExitExternalServiceUnavailable, func(ctx context.Context) error {
			cfg := config.GetConfig()
			if cfg == nil {
				return errwrap.NewConfigInvalidError("config not loaded")
			}
			db, err := openStoreWithConfig(ctx, cfg)
			if err != nil {
				return errwrap.WrapDatabaseError(ctx, err, "store open failed")
			}
			defer db.Close() //nolint:errcheck
			if err := db.CheckHealth(ctx); err != nil {
				return errwrap.WrapDatabaseError(ctx, err, "store ping failed")
			}
			return nil
		}},
	}
}

// firstFailure runs checks in order and stops at the first error.
func firstFailure(ctx context.Context, checks []selfCheck, passed func(label string)) (*selfCheck, error) {
	for i := range checks {
		if err := checks[i].run(ctx); err != nil {
			return &checks[i], err
		}
		passed(checks[i].label)
	}
	return nil, nil
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run self-health check",
	Long:  "Verify the binary can start: version info, configuration and store.",
	Run: func(cmd *cobra.Command, _ []string) {
		logger := observability.CLILogger
		if logger == nil {
			ExitWithCodeStderr(foundry.ExitConfigInvalid, "Logger not initialized", errors.New("cli logger missing"))
			return
		}
		logger.Info("Running health check...")

		check, err := firstFailure(cmd.Context(), selfChecks(), func(label string) {
			logger.Info("✅ " + label)
		})
		if err != nil {
			logger.Error("❌ FAIL: "+check.label, zap.Error(err))
			ExitWithCode(logger, check.exitCode, check.label+" check failed", err)
			return
		}

		logger.Info("")
		logger.Info("✅ All health checks passed", zap.String("version", versionInfo.Version))
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
