package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/me/shopfloor/internal/config"
	"github.com/me/shopfloor/internal/engine"
	"github.com/me/shopfloor/internal/logging"
	"github.com/me/shopfloor/internal/parser"
	"github.com/me/shopfloor/internal/store"
)

// Server is the shopfloor REST API server.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	config    config.ServerConfig
	startTime time.Time
	parser    *parser.Parser
	engine    *engine.Engine
	store     store.Store
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithEngine sets the scheduling engine. Without it the server uses an
// engine built from config.DefaultEngineConfig.
func WithEngine(e *engine.Engine) Option {
	return func(s *Server) {
		s.engine = e
	}
}

// New creates a new Server with all routes registered.
func New(cfg config.ServerConfig, st store.Store, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logging.ForComponent(logger, "server"),
		config:    cfg,
		startTime: time.Now(),
		parser:    parser.New(logger),
		store:     st,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = engine.New(config.DefaultEngineConfig(), logger)
	}

	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Route("/api/v1", func(r chi.Router) {
		// Discovery
		r.Get("/", s.handleDiscovery)

		// Health
		r.Get("/health", s.handleHealth)

		r.Get("/algorithms", s.handleListAlgorithms)

		// Validation
		r.Route("/validate", func(r chi.Router) {
			r.Post("/jobs", s.handleValidateJobs)
			r.Post("/schedule", s.handleValidateSchedule)
		})

		// Schedules (persisted runs)
		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", s.handleListSchedules)
			r.Post("/", s.handleCreateSchedule)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSchedule)
				r.Delete("/", s.handleDeleteSchedule)
			})
		})
	})
}
