// Package api provides the HTTP server and handlers for the pantry
// backend. JSON endpoints go through huma for request validation and
// OpenAPI metadata; binary endpoints (uploads, archives, static files)
// are plain chi handlers.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pantryapp/pantry-server/internal/media/images"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	services *Services
	storage  *images.Storage
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger
}

// NewServer creates the HTTP server with all routes configured.
func NewServer(services *Services, storage *images.Storage, logger *slog.Logger) *Server {
	s := &Server{
		services: services,
		storage:  storage,
		router:   chi.NewRouter(),
		logger:   logger,
	}

	s.setupMiddleware()

	config := huma.DefaultConfig("Pantry API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	s.api = humachi.New(s.router, config)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerRecipeRoutes()
	s.registerTagRoutes()
	s.registerIngredientRoutes()
	s.registerCategoryRoutes()
	s.registerSearchRoutes()
	s.registerImageRoutes()
	s.setupRawRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(stashClientIP)
}

// setupRawRoutes mounts the binary endpoints huma doesn't model well:
// multipart uploads, archive streams, and static image serving.
func (s *Server) setupRawRoutes() {
	s.router.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/api/v1/recipes/{id}/images", s.handleUploadImage)
		r.Get("/api/v1/recipes/{id}/export", s.handleExportRecipe)
		r.Post("/api/v1/recipes/import", s.handleImportArchive)
		r.Post("/api/v1/recipes/export", s.handleExportBatch)
	})

	// Image files are public; share pages reference them.
	s.router.Get("/uploads/*", s.handleServeUpload)
}
