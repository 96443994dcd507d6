package server

import (
	"github.com/fulmenhq/gofulmen/signals"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/movelens/movelens/internal/observability"
	"github.com/movelens/movelens/internal/server/handlers"
)

const (
	adminSignalPath = "/admin/signal"
	adminRatePerMin = 10
	adminRateBurst  = 5
)

func (s *Server) registerRoutes() {
	r := s.router

	r.Get("/health", handlers.HealthHandler)
	r.Get("/health/live", handlers.LivenessHandler)
	r.Get("/health/ready", handlers.ReadinessHandler)
	r.Get("/health/startup", handlers.StartupHandler)
	r.Get("/version", handlers.VersionHandler)
	r.Get("/metrics", MetricsHandler)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/pokemon/{identifier}", func(r chi.Router) {
			r.Get("/movesets", handlers.MoveSetsHandler)
			r.Get("/profile", handlers.ProfileHandler)
		})
		r.Get("/types/weaknesses", handlers.TypeWeaknessesHandler)
		r.Get("/types/{type}/coverage", handlers.TypeCoverageHandler)
	})

	if s.profiler {
		r.Mount("/debug", chimw.Profiler())
	}
	if s.adminToken != "" {
		s.registerAdminSignal()
	}
}

// registerAdminSignal exposes gofulmen's signal handler so operators can
// trigger a reload or shutdown where sending a POSIX signal is awkward.
func (s *Server) registerAdminSignal() {
	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: s.adminToken,
		RateLimit: adminRatePerMin,
		RateBurst: adminRateBurst,
	})
	s.router.Post(adminSignalPath, handler.ServeHTTP)

	if logger := observability.ServerLogger; logger != nil {
		logger.Warn("Admin signal endpoint enabled, keep this server off the public internet",
			zap.String("path", adminSignalPath),
			zap.Int("rate_limit_per_min", adminRatePerMin),
			zap.Int("rate_burst", adminRateBurst))
	}
}
