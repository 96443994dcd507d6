package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/movelens/movelens/internal/appid"
	"github.com/movelens/movelens/internal/config"
	"github.com/movelens/movelens/internal/core/engine"
	"github.com/movelens/movelens/internal/core/store"
	errwrap "github.com/movelens/movelens/internal/errors"
	"github.com/movelens/movelens/internal/metrics"
	"github.com/movelens/movelens/internal/observability"
	"github.com/movelens/movelens/internal/server"
	"github.com/movelens/movelens/internal/server/handlers"
)

const (
	defaultMetricsPort     = 9090
	defaultShutdownTimeout = 10 * time.Second
)

var (
	serverPort int
	serverHost string
)

// telemetryChecker fails until the Prometheus exporter is running.
type telemetryChecker struct{}

func (telemetryChecker) CheckHealth(context.Context) error {
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return errwrap.NewInternalError("telemetry system not initialized")
	}
	return nil
}

type identityChecker struct {
	identity *appid.Identity
}

func (c identityChecker) CheckHealth(context.Context) error {
	if err := c.identity.Validate(); err != nil {
		return errwrap.NewConfigInvalidError(err.Error())
	}
	return nil
}

// upstreamChecker reports PokeAPI as unhealthy while a 429 backoff is active.
type upstreamChecker struct {
	limiter *engine.RateLimiter
	host    string
}

func (c upstreamChecker) CheckHealth(ctx context.Context) error {
	wait, err := c.limiter.Backoff(ctx, c.host)
	if err != nil {
		return errwrap.WrapDatabaseError(ctx, err, "rate limit state unavailable")
	}
	if wait > 0 {
		return errwrap.NewRateLimitedError(fmt.Sprintf("%s backing off for %s", c.host, wait.Round(time.Second)))
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serve move set recommendations over HTTP.

Routes:
  GET /v1/pokemon/{species}/movesets   move sets per role (?refresh=true skips the result cache)
  GET /v1/pokemon/{species}/profile    battle profile and weaknesses
  GET /v1/types/weaknesses?types=a,b   weaknesses of a type combination
  GET /v1/types/{type}/coverage        offensive coverage of an attacking type

Signals:
  SIGINT/SIGTERM  graceful shutdown (press Ctrl+C twice within 2s to force quit)
  SIGHUP          reload config and clear the result cache`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	identity := GetAppIdentity()
	namespace := identity.TelemetryNamespace()

	cfg, err := config.Load(ctx, serveOverrides(cmd))
	if err != nil {
		ExitWithCodeStderr(foundry.ExitConfigInvalid, "Failed to load configuration", err)
	}

	observability.InitServerLogger(identity.BinaryName, cfg.Logging.Level, namespace)
	logger := observability.ServerLogger

	metricsPort := cfg.Metrics.Port
	if metricsPort == 0 {
		metricsPort = defaultMetricsPort
	}
	if err := observability.InitMetrics(identity.BinaryName, metricsPort, namespace); err != nil {
		logger.Error("Failed to initialize metrics", zap.Error(err))
		return errwrap.WrapInternal(ctx, err, "metrics initialization failed")
	}

	db, err := openStoreWithConfig(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open store", zap.Error(err))
		return errwrap.WrapDatabaseError(ctx, err, "store initialization failed")
	}

	client := buildClient(cfg, db, true)
	service := newService(cfg, newGenerator(cfg, client), logger)
	handlers.SetMoveSetService(service)
	handlers.SetAppIdentity(identity)

	handlers.InitHealthManager(versionInfo.Version)
	if cfg.Health.Enabled {
		hm := handlers.GetHealthManager()
		hm.RegisterChecker("telemetry", telemetryChecker{})
		hm.RegisterChecker("app_identity", identityChecker{identity: identity})
		hm.RegisterChecker("store", db)
		hm.RegisterOptionalChecker("pokeapi", upstreamChecker{limiter: client.Limiter, host: client.Host()})
	}

	srv := server.New(cfg.Server.Host, cfg.Server.Port,
		server.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout),
		server.WithAdminToken(cfg.Server.AdminToken),
		server.WithProfiler(cfg.Debug.Enabled && cfg.Debug.PprofEnabled))

	logger.Info("Initializing server",
		zap.String("service", identity.BinaryName),
		zap.String("version", versionInfo.Version),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Int("metrics_port", observability.GetMetricsPort()),
		zap.String("pokeapi", client.Host()),
		zap.String("store_driver", db.Driver()))

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	registerShutdown(srv, db, shutdownTimeout)
	registerReload(cmd, service)

	if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
		Window:  2 * time.Second,
		Message: "Press Ctrl+C again within 2 seconds to force quit",
	}); err != nil {
		logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server",
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port))
		metrics.SetServerStartTime(time.Now())
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	go func() {
		if err := signals.Listen(ctx); err != nil {
			logger.Error("Signal handler error", zap.Error(err))
			errChan <- err
		}
	}()

	if err := <-errChan; err != nil {
		return errwrap.WrapInternal(ctx, err, "server error")
	}
	return nil
}

// registerShutdown installs shutdown hooks. signals runs them LIFO, so the
// HTTP server drains first, then the store closes, then logs flush.
func registerShutdown(srv *server.Server, db *store.Store, timeout time.Duration) {
	logger := observability.ServerLogger

	signals.OnShutdown(func(ctx context.Context) error {
		if err := logger.Sync(); err != nil {
			// stderr may already be closed
			logger.Warn("Logger sync returned error", zap.Error(err))
		}
		return nil
	})

	signals.OnShutdown(func(ctx context.Context) error {
		if err := observability.StopMetrics(); err != nil {
			logger.Warn("Metrics exporter stop failed", zap.Error(err))
		}
		if err := db.Close(); err != nil {
			return errwrap.WrapDatabaseError(ctx, err, "store close failed")
		}
		return nil
	})

	signals.OnShutdown(func(ctx context.Context) error {
		logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errwrap.WrapInternal(ctx, err, "server shutdown failed")
		}
		logger.Info("HTTP server stopped")
		return nil
	})
}

// registerReload re-reads config on SIGHUP. Cached analyses were scored with
// the old tuning, so the result cache is purged too.
func registerReload(cmd *cobra.Command, service *engine.Service) {
	logger := observability.ServerLogger

	signals.OnReload(func(ctx context.Context) error {
		logger.Info("Received SIGHUP, reloading config")

		reloaded, err := config.Load(ctx, serveOverrides(cmd))
		if err != nil {
			logger.Error("Failed to reload config", zap.Error(err))
			return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
		}

		dropped := service.Len()
		service.Purge()
		logger.Info("Configuration reloaded",
			zap.String("log_level", reloaded.Logging.Level),
			zap.Int("analyses_dropped", dropped))
		return nil
	})
}

// serveOverrides turns explicitly set flags into runtime config overrides.
func serveOverrides(cmd *cobra.Command) map[string]any {
	overrides := map[string]any{}
	if cmd.Flags().Changed("host") {
		overrides["host"] = serverHost
	}
	if cmd.Flags().Changed("port") {
		overrides["port"] = serverPort
	}
	if len(overrides) == 0 {
		return nil
	}
	return map[string]any{"server": overrides}
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "server port")
}
