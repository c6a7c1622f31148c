package api

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"

	"github.com/terra-clan/course-portal/internal/catalog"
	"github.com/terra-clan/course-portal/internal/models"
	"github.com/terra-clan/course-portal/internal/navigation"
	"github.com/terra-clan/course-portal/internal/storage"
)

// HomeCourseLimit is the number of course cards on the home page
const HomeCourseLimit = 6

//go:embed web/templates/*.gohtml
var templateFS embed.FS

var (
	markdown = goldmark.New()

	templateFuncs = template.FuncMap{
		"markdown":  renderMarkdown,
		"percent":   formatPercent,
		"viewURL":   viewURL,
		"lessonURL": lessonURL,
	}

	pages = parsePages("home", "course", "lesson", "notfound")
)

// parsePages builds one template set per page on top of the shared base layout
func parsePages(names ...string) map[string]*template.Template {
	set := make(map[string]*template.Template, len(names))
	for _, name := range names {
		set[name] = template.Must(template.New(name).Funcs(templateFuncs).ParseFS(templateFS,
			"web/templates/_base.gohtml",
			"web/templates/"+name+".gohtml",
		))
	}
	return set
}

// renderMarkdown converts one content paragraph to HTML. Raw HTML in the
// source is omitted by goldmark's default renderer.
func renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		slog.Warn("failed to render markdown", "error", err)
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(math.Round(p*100)/100, 'f', -1, 64)
}

// viewURL links to the current page with a different view state
func viewURL(v ViewState) template.URL {
	return template.URL("?" + v.Encode())
}

// lessonURL links to a lesson page, carrying the view state along
func lessonURL(slug, lessonID string, v ViewState) template.URL {
	u := "/courses/" + url.PathEscape(slug) + "/lesson/" + url.PathEscape(lessonID)
	if q := v.Encode(); q != "" {
		u += "?" + q
	}
	return template.URL(u)
}

// Page data

type pageData struct {
	SiteName string
}

type homePage struct {
	pageData
	Categories []models.Category
	Category   string
	Courses    []*models.CourseSummary
}

type coursePage struct {
	pageData
	Course *models.Course
	View   ViewState
	Tabs   []Tab
	Intro  string
	Body   []string
}

type lessonPage struct {
	pageData
	Course *models.Course
	Sel    navigation.Selection
	View   ViewState
	Next   *navigation.NextLink
}

type errorPage struct {
	pageData
	Status  int
	Heading string
	Message string
}

func (s *Server) page() pageData {
	return pageData{SiteName: s.config.SiteName}
}

// render executes a page into a buffer first so template errors become a clean 500
func (s *Server) render(w http.ResponseWriter, status int, name string, data interface{}) {
	tmpl, ok := pages[name]
	if !ok {
		slog.Error("unknown page template", "template", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		slog.Error("failed to render page", "error", err, "template", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("failed to write page", "error", err, "template", name)
	}
}

func (s *Server) renderError(w http.ResponseWriter, status int, heading, message string) {
	s.render(w, status, "notfound", errorPage{
		pageData: s.page(),
		Status:   status,
		Heading:  heading,
		Message:  message,
	})
}

// pageFailure renders course lookup failures as HTML
func (s *Server) pageFailure(w http.ResponseWriter, _ *http.Request, err error) {
	if errors.Is(err, storage.ErrCourseNotFound) {
		s.renderError(w, http.StatusNotFound, "Course not found", "The course you're looking for doesn't exist.")
		return
	}
	s.renderError(w, http.StatusInternalServerError, "Something went wrong", "The course could not be loaded. Please try again later.")
}

// Page handlers

func (s *Server) handleHomePage(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		category = models.DefaultCategory
	}

	courses, err := s.repo.ListCourses(r.Context())
	if err != nil {
		slog.Error("failed to list courses", "error", err)
		s.renderError(w, http.StatusInternalServerError, "Something went wrong", "Courses could not be loaded. Please try again later.")
		return
	}

	s.render(w, http.StatusOK, "home", homePage{
		pageData:   s.page(),
		Categories: models.Categories,
		Category:   category,
		Courses:    catalog.Summaries(courses, category, HomeCourseLimit),
	})
}

func (s *Server) handleCoursePage(w http.ResponseWriter, r *http.Request) {
	course := CourseFromContext(r.Context())

	data := coursePage{
		pageData: s.page(),
		Course:   course,
		View:     ParseViewState(r.URL.Query(), ""),
		Tabs:     Tabs,
	}
	// first paragraph introduces the course, the rest describe it
	if len(course.Content) > 0 {
		data.Intro = course.Content[0]
		data.Body = course.Content[1:]
	}

	s.render(w, http.StatusOK, "course", data)
}

// lessonParam returns the requested lesson id from the route wildcard.
// chi matches on the raw path when the URL carries escapes such as %2C,
// so the segment is unescaped here.
func lessonParam(r *http.Request) string {
	segment := navigation.FirstSegment(chi.URLParam(r, "*"))
	if id, err := url.PathUnescape(segment); err == nil {
		return id
	}
	return segment
}

func (s *Server) handleLessonPage(w http.ResponseWriter, r *http.Request) {
	course := CourseFromContext(r.Context())
	lessonID := lessonParam(r)

	sel := navigation.Resolve(course, lessonID)

	var currentModuleID string
	if sel.CurrentModule != nil {
		currentModuleID = sel.CurrentModule.ID
	}

	data := lessonPage{
		pageData: s.page(),
		Course:   course,
		Sel:      sel,
		View:     ParseViewState(r.URL.Query(), currentModuleID),
	}
	if link, ok := sel.NextLink(); ok {
		data.Next = &link
	}

	slog.Debug("lesson resolved",
		"slug", course.Slug,
		"requested", lessonID,
		"lesson", lessonTitle(sel.CurrentLesson),
		"index", sel.CurrentIndex,
	)

	s.render(w, http.StatusOK, "lesson", data)
}

func (s *Server) handleNotFoundPage(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, http.StatusNotFound, "Page Not Found", "The page you're looking for doesn't exist or has been moved.")
}

func lessonTitle(l *models.Lesson) string {
	if l == nil {
		return ""
	}
	return fmt.Sprintf("%s (%s)", l.Title, l.ID)
}
