package server

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	apperrors "github.com/movelens/movelens/internal/errors"
	"github.com/movelens/movelens/internal/observability"
	servermw "github.com/movelens/movelens/internal/server/middleware"
)

const (
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 120 * time.Second
)

// Server serves the movelens HTTP API.
type Server struct {
	router *chi.Mux
	server *http.Server
	addr   string

	readTimeout  time.Duration
	writeTimeout time.Duration
	idleTimeout  time.Duration

	adminToken string
	profiler   bool
}

// Option customizes a Server built by New.
type Option func(*Server)

// WithTimeouts overrides the HTTP timeouts. Zero values keep the defaults.
func WithTimeouts(read, write, idle time.Duration) Option {
	return func(s *Server) {
		if read > 0 {
			s.readTimeout = read
		}
		if write > 0 {
			s.writeTimeout = write
		}
		if idle > 0 {
			s.idleTimeout = idle
		}
	}
}

// WithAdminToken enables POST /admin/signal behind bearer auth.
func WithAdminToken(token string) Option {
	return func(s *Server) { s.adminToken = token }
}

// WithProfiler mounts net/http/pprof under /debug.
func WithProfiler(enabled bool) Option {
	return func(s *Server) { s.profiler = enabled }
}

// New builds a server with the full middleware chain and all routes.
func New(host string, port int, opts ...Option) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		addr:         net.JoinHostPort(host, strconv.Itoa(port)),
		readTimeout:  defaultReadTimeout,
		writeTimeout: defaultWriteTimeout,
		idleTimeout:  defaultIdleTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Recovery sits inside RequestMetrics so panics are counted as 500s.
	s.router.Use(
		chimw.RealIP,
		servermw.RequestID,
		servermw.RequestMetrics,
		servermw.Recovery,
	)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apperrors.RespondWithError(w, r, apperrors.NewNotFoundError("no route for "+r.URL.Path))
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apperrors.RespondWithError(w, r, apperrors.NewMethodNotAllowedError(r.Method+" is not allowed on "+r.URL.Path))
	})

	s.registerRoutes()
	return s
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  s.idleTimeout,
	}

	if logger := observability.ServerLogger; logger != nil {
		logger.Info("Listening", zap.String("addr", s.addr))
	}
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests. It is a no-op before Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}
