// Package navigation resolves where a learner is inside a course and what
// comes next. Everything here is a pure function of the course tree.
package navigation

import (
	"strings"

	"github.com/terra-clan/course-portal/internal/models"
)

// NotFound is the index reported when there is no current lesson
const NotFound = -1

// LessonState is the sidebar marker for a lesson
type LessonState string

const (
	StateCurrent   LessonState = "current"
	StateCompleted LessonState = "completed"
	StatePending   LessonState = "pending"
)

// Selection is the resolved navigation state for one request
type Selection struct {
	Course           *models.Course
	CurrentLesson    *models.Lesson
	CurrentModule    *models.Module
	CurrentIndex     int
	NextLesson       *models.Lesson
	ProgressFraction float64
	Lessons          []*models.Lesson // flattened sequence
}

// NextLink identifies the lesson page the "Next" control points at
type NextLink struct {
	Slug     string `json:"slug"`
	LessonID string `json:"lessonId"`
}

// Flatten returns every lesson in module order, then lesson order.
// The result is freshly allocated on each call.
func Flatten(course *models.Course) []*models.Lesson {
	if course == nil {
		return nil
	}
	lessons := make([]*models.Lesson, 0, course.LessonCount())
	for _, m := range course.Modules {
		lessons = append(lessons, m.Lessons...)
	}
	return lessons
}

// Resolve computes the current lesson, its module, position, next lesson and
// progress. An empty requestedLessonID, or one that matches nothing, selects
// the first lesson of the sequence. A course without lessons yields an empty
// selection with CurrentIndex == NotFound and zero progress.
func Resolve(course *models.Course, requestedLessonID string) Selection {
	sel := Selection{
		Course:       course,
		CurrentIndex: NotFound,
		Lessons:      Flatten(course),
	}

	if requestedLessonID != "" {
		sel.CurrentLesson, sel.CurrentModule = find(course, requestedLessonID)
	}

	if sel.CurrentLesson == nil && len(sel.Lessons) > 0 {
		// first module that actually has a lesson, not blindly Modules[0]
		sel.CurrentLesson = sel.Lessons[0]
		_, sel.CurrentModule = find(course, sel.CurrentLesson.ID)
	}

	if sel.CurrentLesson != nil {
		sel.CurrentIndex = indexOf(sel.Lessons, sel.CurrentLesson.ID)
	}

	if sel.CurrentIndex != NotFound && sel.CurrentIndex+1 < len(sel.Lessons) {
		sel.NextLesson = sel.Lessons[sel.CurrentIndex+1]
	}

	if total := len(sel.Lessons); total > 0 {
		sel.ProgressFraction = float64(sel.CurrentIndex+1) / float64(total)
	}

	return sel
}

// find returns the first lesson with the given id and its owning module
func find(course *models.Course, lessonID string) (*models.Lesson, *models.Module) {
	if course == nil {
		return nil, nil
	}
	for _, m := range course.Modules {
		for _, l := range m.Lessons {
			if l.ID == lessonID {
				return l, m
			}
		}
	}
	return nil, nil
}

func indexOf(lessons []*models.Lesson, id string) int {
	for i, l := range lessons {
		if l.ID == id {
			return i
		}
	}
	return NotFound
}

// HasLesson reports whether a current lesson was resolved
func (s Selection) HasLesson() bool {
	return s.CurrentLesson != nil
}

// Total returns the length of the flattened sequence
func (s Selection) Total() int {
	return len(s.Lessons)
}

// Position returns the 1-based position of the current lesson, 0 when absent
func (s Selection) Position() int {
	return s.CurrentIndex + 1
}

// ProgressPercent returns ProgressFraction scaled to [0, 100]
func (s Selection) ProgressPercent() float64 {
	return s.ProgressFraction * 100
}

// NextLink returns the slug and lesson id of the next lesson, if any
func (s Selection) NextLink() (NextLink, bool) {
	if s.NextLesson == nil || s.Course == nil {
		return NextLink{}, false
	}
	return NextLink{Slug: s.Course.Slug, LessonID: s.NextLesson.ID}, true
}

// IsCurrent reports whether l is the current lesson (compared by id)
func (s Selection) IsCurrent(l *models.Lesson) bool {
	return s.CurrentLesson != nil && l != nil && l.ID == s.CurrentLesson.ID
}

// IsCurrentModule reports whether m owns the current lesson
func (s Selection) IsCurrentModule(m *models.Module) bool {
	return s.CurrentModule != nil && m != nil && m.ID == s.CurrentModule.ID
}

// LessonState returns the sidebar marker for l. The completion flag is only read.
func (s Selection) LessonState(l *models.Lesson) LessonState {
	switch {
	case s.IsCurrent(l):
		return StateCurrent
	case l != nil && l.Completed:
		return StateCompleted
	default:
		return StatePending
	}
}

// FirstSegment returns the first non-empty segment of a trailing route path
// such as "lab-1/extra/parts". Further segments are ignored.
func FirstSegment(path string) string {
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			return seg
		}
	}
	return ""
}
