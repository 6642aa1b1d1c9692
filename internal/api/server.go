// Package api exposes rarefaction runs over HTTP: submit a table and
// configuration, fetch stored runs, and render a run report.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"rarefy/app"
	"rarefy/internal"
)

// Server represents the HTTP API for the rarefaction service
type Server struct {
	router  *chi.Mux
	service *app.RarefactionService
	logger  *internal.Logger
}

// NewServer creates a new API server around a rarefaction service
func NewServer(service *app.RarefactionService) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		logger:  internal.DefaultLogger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/runs", s.handleCreateRun)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Get("/runs/{id}/report", s.handleRunReport)
	})
}

// Router returns the underlying router, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins serving on the given address, blocking until shutdown.
func (s *Server) Start(addr string) error {
	s.logger.Info("rarefaction API listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}
