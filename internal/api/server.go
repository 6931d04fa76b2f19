// Package api provides the HTTP API server and handlers for the ReadLeaf application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/readleafapp/readleaf-server/internal/http/response"
	"github.com/readleafapp/readleaf-server/internal/service"
	"github.com/readleafapp/readleaf-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	catalog     *service.CatalogService
	annotations *service.AnnotationService
	settings    *service.SettingsService
	discovery   *service.DiscoveryService
	search      *service.SearchService
	session     *service.SessionService
	validator   *validation.Validator
	router      *chi.Mux
	logger      *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(catalog *service.CatalogService, annotations *service.AnnotationService, settings *service.SettingsService, discovery *service.DiscoveryService, search *service.SearchService, session *service.SessionService, corsOrigins []string, logger *slog.Logger) *Server {
	s := &Server{
		catalog:     catalog,
		annotations: annotations,
		settings:    settings,
		discovery:   discovery,
		search:      search,
		session:     session,
		validator:   validation.New(),
		router:      chi.NewRouter(),
		logger:      logger,
	}

	s.setupMiddleware(corsOrigins)
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(corsOrigins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Discovery proxy endpoints.
		r.Get("/search", s.handleSearch)
		r.Get("/download", s.handleDownloadProxy)

		// Library.
		r.Route("/books", func(r chi.Router) {
			r.Get("/", s.handleListBooks)
			r.Post("/", s.handleImportBook)
			r.Get("/{id}", s.handleGetBook)
			r.Get("/{id}/content", s.handleGetBookContent)
			r.Get("/{id}/notes", s.handleListBookNotes)
			r.Delete("/{id}", s.handleRemoveBook)
			r.Post("/{id}/open", s.handleOpenSession)
		})

		// Notes.
		r.Route("/notes", func(r chi.Router) {
			r.Post("/", s.handleSaveNote)
			r.Get("/search", s.handleSearchNotes)
			r.Delete("/{id}", s.handleDeleteNote)
		})

		// Settings.
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", s.handleGetSettings)
			r.Put("/", s.handleUpdateSettings)
			r.Post("/font-size", s.handleStepFontSize)
		})

		// Reading session.
		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/position", s.handleUpdatePosition)
			r.Post("/selection", s.handleProposeAnnotation)
			r.Post("/close", s.handleCloseSession)
		})

		// Catalog download into the library.
		r.Post("/downloads", s.handleDownloadBook)
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
