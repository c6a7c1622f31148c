package api

import (
	"context"

	"github.com/terra-clan/course-portal/internal/models"
)

type contextKey string

const courseContextKey contextKey = "course"

// CourseFromContext extracts the resolved course from context
func CourseFromContext(ctx context.Context) *models.Course {
	course, ok := ctx.Value(courseContextKey).(*models.Course)
	if !ok {
		return nil
	}
	return course
}

// ContextWithCourse adds a course to context
func ContextWithCourse(ctx context.Context, course *models.Course) context.Context {
	return context.WithValue(ctx, courseContextKey, course)
}
