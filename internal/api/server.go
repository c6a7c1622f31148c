package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/terra-clan/course-portal/internal/config"
	"github.com/terra-clan/course-portal/internal/health"
	"github.com/terra-clan/course-portal/internal/storage"
)

// Server represents the HTTP server for pages and the JSON API
type Server struct {
	config config.ServerConfig
	router *chi.Mux
	repo   storage.CourseRepository
	health *health.Registry
}

// NewServer creates a new server
func NewServer(
	cfg config.ServerConfig,
	repo storage.CourseRepository,
	registry *health.Registry,
) *Server {
	if registry == nil {
		registry = health.NewRegistry()
	}
	s := &Server{
		config: cfg,
		repo:   repo,
		health: registry,
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Probes
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	// Pages
	r.Get("/", s.handleHomePage)
	r.Route("/courses/{slug}", func(r chi.Router) {
		r.Use(s.courseCtx(s.pageFailure))

		r.Get("/", s.handleCoursePage)
		r.Get("/lesson", s.handleLessonPage)
		r.Get("/lesson/*", s.handleLessonPage)
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/categories", s.handleListCategories)

		r.Route("/courses", func(r chi.Router) {
			r.Get("/", s.handleListCourses)

			r.Route("/{slug}", func(r chi.Router) {
				r.Use(s.courseCtx(jsonFailure))

				r.Get("/", s.handleGetCourse)
				r.Get("/navigation", s.handleGetNavigation)
			})
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, http.StatusNotFound, "not_found", "route not found")
		})
	})

	r.NotFound(s.handleNotFoundPage)

	s.router = r
}
