package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/terra-clan/course-portal/internal/models"
)

// CourseFileName is the file that marks a directory as a course
const CourseFileName = "course.yaml"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Loader manages loading and caching of courses from a content directory
type Loader struct {
	mu      sync.RWMutex
	courses map[string]*models.Course
	dir     string
}

// Report summarizes a directory load
type Report struct {
	Loaded   []string
	Failed   map[string]error
	Warnings []string
}

// NewLoader creates a new course loader
func NewLoader() *Loader {
	return &Loader{
		courses: make(map[string]*models.Course),
	}
}

// LoadFromDir loads every <slug>/course.yaml under dir and replaces the
// loaded set in one step. Courses that fail to parse or validate are skipped.
func (l *Loader) LoadFromDir(dir string) (*Report, error) {
	slog.Info("loading courses from directory", "dir", dir)

	courses, report, err := ParseDir(dir)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.courses = courses
	l.dir = dir
	l.mu.Unlock()

	for slug, ferr := range report.Failed {
		slog.Warn("failed to load course", "slug", slug, "error", ferr)
	}
	for _, w := range report.Warnings {
		slog.Warn("course content warning", "warning", w)
	}
	slog.Info("courses loaded", "count", len(report.Loaded), "failed", len(report.Failed))

	return report, nil
}

// Reload re-reads the directory given to the last LoadFromDir
func (l *Loader) Reload() (*Report, error) {
	l.mu.RLock()
	dir := l.dir
	l.mu.RUnlock()

	if dir == "" {
		return nil, fmt.Errorf("no content directory loaded")
	}
	return l.LoadFromDir(dir)
}

// Dir returns the directory last loaded
func (l *Loader) Dir() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.dir
}

// ParseDir parses all course directories under dir without touching any loader state
func ParseDir(dir string) (map[string]*models.Course, *Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read directory: %w", err)
	}

	courses := make(map[string]*models.Course)
	report := &Report{Failed: make(map[string]error)}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		path := filepath.Join(dir, entry.Name(), CourseFileName)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue // not a course directory
		}

		course, warnings, err := ParseFile(entry.Name(), path)
		if err != nil {
			report.Failed[entry.Name()] = err
			continue
		}

		courses[course.Slug] = course
		report.Loaded = append(report.Loaded, course.Slug)
		report.Warnings = append(report.Warnings, warnings...)
	}

	sort.Strings(report.Loaded)
	return courses, report, nil
}

// ParseFile parses and validates a single course file. The slug comes from the directory name.
func ParseFile(slug, path string) (*models.Course, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(slug, data)
}

// Parse decodes course YAML and validates it
func Parse(slug string, data []byte) (*models.Course, []string, error) {
	var cf courseFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validate.Struct(&cf); err != nil {
		return nil, nil, fmt.Errorf("invalid course: %w", err)
	}

	course := cf.toModel(slug)
	return course, duplicateWarnings(course), nil
}

// duplicateWarnings reports ids that appear more than once within a course.
// Navigation still resolves them (first occurrence wins) so they are not fatal.
func duplicateWarnings(c *models.Course) []string {
	var warnings []string
	modules := make(map[string]bool)
	lessons := make(map[string]string)

	for _, m := range c.Modules {
		if modules[m.ID] {
			warnings = append(warnings, fmt.Sprintf("%s: duplicate module id %q", c.Slug, m.ID))
		}
		modules[m.ID] = true

		for _, lesson := range m.Lessons {
			if owner, ok := lessons[lesson.ID]; ok {
				warnings = append(warnings, fmt.Sprintf("%s: lesson id %q in module %q already used in module %q",
					c.Slug, lesson.ID, m.ID, owner))
				continue
			}
			lessons[lesson.ID] = m.ID
		}
	}
	return warnings
}

// Get retrieves a course by slug
func (l *Loader) Get(slug string) *models.Course {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.courses[slug]
}

// List returns all loaded courses ordered by catalog order, then slug
func (l *Loader) List() []*models.Course {
	l.mu.RLock()
	result := make([]*models.Course, 0, len(l.courses))
	for _, c := range l.courses {
		result = append(result, c)
	}
	l.mu.RUnlock()

	SortCourses(result)
	return result
}

// Len returns the number of loaded courses
func (l *Loader) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.courses)
}

// Add programmatically adds a course
func (l *Loader) Add(course *models.Course) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.courses[course.Slug] = course
}

// --- repository interface ---

// GetCourse returns the course for slug, or nil when it does not exist
func (l *Loader) GetCourse(_ context.Context, slug string) (*models.Course, error) {
	return l.Get(slug), nil
}

// ListCourses returns all loaded courses
func (l *Loader) ListCourses(_ context.Context) ([]*models.Course, error) {
	return l.List(), nil
}

// Ping reports whether any course is loaded
func (l *Loader) Ping(_ context.Context) error {
	if l.Len() == 0 {
		return fmt.Errorf("no courses loaded")
	}
	return nil
}

// Close is a no-op
func (l *Loader) Close() error {
	return nil
}

// SortCourses orders courses by catalog order, then slug
func SortCourses(courses []*models.Course) {
	sort.SliceStable(courses, func(i, j int) bool {
		if courses[i].Order != courses[j].Order {
			return courses[i].Order < courses[j].Order
		}
		return courses[i].Slug < courses[j].Slug
	})
}

// Summaries builds catalog cards for the courses matching category, keeping order.
// limit <= 0 means no limit.
func Summaries(courses []*models.Course, category string, limit int) []*models.CourseSummary {
	result := make([]*models.CourseSummary, 0, len(courses))
	for _, c := range courses {
		s := models.Summarize(c)
		if !s.MatchesCategory(category) {
			continue
		}
		result = append(result, s)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result
}

// --- YAML file structs ---

// courseFile represents the YAML structure of a course.yaml file
type courseFile struct {
	Title       string          `yaml:"title" validate:"required"`
	Summary     string          `yaml:"summary"`
	Description string          `yaml:"description"`
	Duration    string          `yaml:"duration"`
	Free        bool            `yaml:"free"`
	Type        string          `yaml:"type" validate:"omitempty,oneof=skill training course"`
	Category    string          `yaml:"category"`
	Order       int             `yaml:"order"`
	Topics      []string        `yaml:"topics"`
	VideoID     string          `yaml:"video_id"`
	Objectives  []objectiveFile `yaml:"objectives" validate:"dive"`
	Content     []string        `yaml:"content"`
	Modules     []moduleFile    `yaml:"modules" validate:"dive"`
}

type objectiveFile struct {
	Title       string `yaml:"title" validate:"required"`
	Description string `yaml:"description"`
}

// moduleFile represents one module entry
type moduleFile struct {
	ID      string       `yaml:"id" validate:"required,excludesall=/?#;0x2C"`
	Title   string       `yaml:"title" validate:"required"`
	Lessons []lessonFile `yaml:"lessons" validate:"dive"`
}

// lessonFile represents one lesson entry
type lessonFile struct {
	ID        string `yaml:"id" validate:"required,excludesall=/?#;0x2C"`
	Title     string `yaml:"title" validate:"required"`
	Kind      string `yaml:"kind" validate:"required,oneof=video lab"`
	VideoID   string `yaml:"video_id" validate:"required_if=Kind video"`
	Completed bool   `yaml:"completed"`
}

func (cf *courseFile) toModel(slug string) *models.Course {
	courseType := models.CourseType(cf.Type)
	if courseType == "" {
		courseType = models.CourseTypeCourse
	}

	course := &models.Course{
		Slug:        slug,
		Title:       cf.Title,
		Summary:     strings.TrimSpace(cf.Summary),
		Description: strings.TrimSpace(cf.Description),
		Duration:    cf.Duration,
		IsFree:      cf.Free,
		Type:        courseType,
		Category:    cf.Category,
		Order:       cf.Order,
		Topics:      cf.Topics,
		VideoID:     cf.VideoID,
		Content:     cf.Content,
		Modules:     make([]*models.Module, 0, len(cf.Modules)),
	}

	for _, o := range cf.Objectives {
		course.Objectives = append(course.Objectives, models.Objective{Title: o.Title, Description: o.Description})
	}

	for _, mf := range cf.Modules {
		module := &models.Module{
			ID:      mf.ID,
			Title:   mf.Title,
			Lessons: make([]*models.Lesson, 0, len(mf.Lessons)),
		}
		for _, lf := range mf.Lessons {
			module.Lessons = append(module.Lessons, &models.Lesson{
				ID:        lf.ID,
				Title:     lf.Title,
				Kind:      models.LessonKind(lf.Kind),
				VideoID:   lf.VideoID,
				Completed: lf.Completed,
			})
		}
		course.Modules = append(course.Modules, module)
	}

	return course
}
