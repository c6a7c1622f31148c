package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/terra-clan/course-portal/internal/storage"
)

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// failureFunc renders a lookup failure; err is storage.ErrCourseNotFound for unknown slugs
type failureFunc func(w http.ResponseWriter, r *http.Request, err error)

// courseCtx loads the course named by the {slug} URL parameter into the
// request context, or hands the failure to fail
func (s *Server) courseCtx(fail failureFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slug := chi.URLParam(r, "slug")

			course, err := storage.LookupCourse(r.Context(), s.repo, slug)
			if err != nil {
				if !errors.Is(err, storage.ErrCourseNotFound) {
					slog.Error("failed to load course", "error", err, "slug", slug)
				}
				fail(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithCourse(r.Context(), course)))
		})
	}
}

// jsonFailure writes course lookup failures using the JSON envelope
func jsonFailure(w http.ResponseWriter, _ *http.Request, err error) {
	if errors.Is(err, storage.ErrCourseNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "course not found")
		return
	}
	respondError(w, http.StatusInternalServerError, "internal_error", "failed to load course")
}
