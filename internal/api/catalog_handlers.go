package api

import (
	"log/slog"
	"net/http"

	"github.com/terra-clan/course-portal/internal/catalog"
	"github.com/terra-clan/course-portal/internal/models"
	"github.com/terra-clan/course-portal/internal/navigation"
)

// moduleRef identifies a module without its lessons
type moduleRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// lessonEntry is one row of the flattened sequence with its sidebar state
type lessonEntry struct {
	ID        string                 `json:"id"`
	Title     string                 `json:"title"`
	Kind      models.LessonKind      `json:"kind"`
	VideoID   string                 `json:"videoId,omitempty"`
	EmbedURL  string                 `json:"embedUrl,omitempty"`
	Completed bool                   `json:"completed"`
	State     navigation.LessonState `json:"state"`
}

// navigationResponse is the JSON form of a navigation selection
type navigationResponse struct {
	Course           string               `json:"course"`
	CurrentLesson    *lessonEntry         `json:"currentLesson"`
	CurrentModule    *moduleRef           `json:"currentModule"`
	CurrentIndex     int                  `json:"currentIndex"`
	NextLesson       *lessonEntry         `json:"nextLesson"`
	NextLink         *navigation.NextLink `json:"nextLink"`
	ProgressFraction float64              `json:"progressFraction"`
	Lessons          []lessonEntry        `json:"lessons"`
}

func newNavigationResponse(sel navigation.Selection) navigationResponse {
	resp := navigationResponse{
		Course:           sel.Course.Slug,
		CurrentIndex:     sel.CurrentIndex,
		ProgressFraction: sel.ProgressFraction,
		Lessons:          make([]lessonEntry, 0, sel.Total()),
	}

	for _, l := range sel.Lessons {
		resp.Lessons = append(resp.Lessons, newLessonEntry(sel, l))
	}
	if sel.CurrentLesson != nil {
		e := newLessonEntry(sel, sel.CurrentLesson)
		resp.CurrentLesson = &e
	}
	if sel.CurrentModule != nil {
		resp.CurrentModule = &moduleRef{ID: sel.CurrentModule.ID, Title: sel.CurrentModule.Title}
	}
	if sel.NextLesson != nil {
		e := newLessonEntry(sel, sel.NextLesson)
		resp.NextLesson = &e
	}
	if link, ok := sel.NextLink(); ok {
		resp.NextLink = &link
	}

	return resp
}

func newLessonEntry(sel navigation.Selection, l *models.Lesson) lessonEntry {
	return lessonEntry{
		ID:        l.ID,
		Title:     l.Title,
		Kind:      l.Kind,
		VideoID:   l.VideoID,
		EmbedURL:  l.EmbedURL(),
		Completed: l.Completed,
		State:     sel.LessonState(l),
	}
}

// Catalog handlers

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"categories": models.Categories,
		"default":    models.DefaultCategory,
	})
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	courses, err := s.repo.ListCourses(r.Context())
	if err != nil {
		slog.Error("failed to list courses", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list courses")
		return
	}

	summaries := catalog.Summaries(courses, category, 0)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"courses": summaries,
		"total":   len(summaries),
	})
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, CourseFromContext(r.Context()))
}

func (s *Server) handleGetNavigation(w http.ResponseWriter, r *http.Request) {
	course := CourseFromContext(r.Context())
	sel := navigation.Resolve(course, r.URL.Query().Get("lesson"))
	respondJSON(w, http.StatusOK, newNavigationResponse(sel))
}
