package storage

import (
	"context"
	"errors"

	"github.com/terra-clan/course-portal/internal/models"
)

// ErrCourseNotFound is returned by LookupCourse when no course has the slug
var ErrCourseNotFound = errors.New("course not found")

// CourseRepository is the content source for courses.
// GetCourse returns (nil, nil) when the slug does not exist.
type CourseRepository interface {
	GetCourse(ctx context.Context, slug string) (*models.Course, error)
	ListCourses(ctx context.Context) ([]*models.Course, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}

// LookupCourse fetches a course and maps a missing one to ErrCourseNotFound
func LookupCourse(ctx context.Context, repo CourseRepository, slug string) (*models.Course, error) {
	course, err := repo.GetCourse(ctx, slug)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	return course, nil
}
