// Package server exposes the parameter manifest and run history over HTTP.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/me/createtaxdb/internal/cmdline"
	"github.com/me/createtaxdb/internal/schema"
	"github.com/me/createtaxdb/internal/store"
	"github.com/me/createtaxdb/pkg/model"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Planner builds the runner invocation for a volume and resolved values.
type Planner interface {
	Plan(volume string, values model.Values) (*cmdline.Invocation, error)
}

// Server is the createtaxdb REST API server.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	startTime time.Time
	params    *model.Schema
	manifest  schema.Document
	store     store.Store // optional; /runs answers 503 without it
	planner   Planner     // optional; /command answers 503 without it
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithStore enables the run history endpoints.
func WithStore(st store.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithPlanner enables the command preview endpoint.
func WithPlanner(p Planner) Option {
	return func(s *Server) { s.planner = p }
}

// New creates a Server for the parameter schema params with all routes registered.
func New(params *model.Schema, manifest schema.Document, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		startTime: time.Now(),
		params:    params,
		manifest:  manifest,
	}
	for _, opt := range opts {
		opt(s)
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

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.handleDiscovery)
		r.Get("/health", s.handleHealth)
		r.Get("/schema", s.handleSchema)
		r.Post("/command", s.handleCommand)

		r.Route("/runs", func(r chi.Router) {
			r.Get("/", s.handleListRuns)
			r.Get("/{id}", s.handleGetRun)
		})
	})
}
