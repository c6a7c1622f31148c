package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/course-portal/internal/api"
	"github.com/terra-clan/course-portal/internal/catalog"
	"github.com/terra-clan/course-portal/internal/config"
	"github.com/terra-clan/course-portal/internal/health"
	"github.com/terra-clan/course-portal/internal/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	loader := catalog.NewLoader()
	loader.Add(&models.Course{
		Slug:  "demo",
		Title: "Demo",
		Type:  models.CourseTypeSkill,
		Modules: []*models.Module{
			{ID: "m1", Title: "One", Lessons: []*models.Lesson{
				{ID: "a", Title: "A", Kind: models.LessonVideo, VideoID: "v1"},
				{ID: "b", Title: "B", Kind: models.LessonLab},
			}},
		},
	})
	loader.Add(&models.Course{Slug: "ilt", Title: "Instructor Led", Type: models.CourseTypeTraining, Order: 1})

	registry := health.NewRegistry()
	registry.Register("catalog", health.NewFuncProvider("catalog", loader.Ping))

	ts := httptest.NewServer(api.NewServer(config.ServerConfig{}, loader, registry).Router())
	t.Cleanup(ts.Close)

	return NewClient(ts.URL, WithTimeout(5*time.Second))
}

func TestClientCourses(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))
	require.NoError(t, c.Ready(ctx))

	all, err := c.ListCourses(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	training, err := c.ListCourses(ctx, "instructor")
	require.NoError(t, err)
	require.Len(t, training, 1)
	assert.Equal(t, "ilt", training[0].Slug)

	categories, err := c.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Categories, categories)

	course, err := c.GetCourse(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, 2, course.LessonCount())

	_, err = c.GetCourse(ctx, "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestClientNavigate(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	nav, err := c.Navigate(ctx, "demo", "")
	require.NoError(t, err)
	assert.Equal(t, "a", nav.CurrentLesson.ID)
	assert.Equal(t, "https://www.youtube.com/embed/v1?rel=0", nav.CurrentLesson.EmbedURL)
	require.NotNil(t, nav.NextLink)
	assert.Equal(t, NextLink{Slug: "demo", LessonID: "b"}, *nav.NextLink)
	assert.InDelta(t, 0.5, nav.ProgressFraction, 1e-9)

	nav, err = c.Navigate(ctx, "demo", "b")
	require.NoError(t, err)
	assert.Equal(t, 1, nav.CurrentIndex)
	assert.Nil(t, nav.NextLink)
	assert.Equal(t, "current", nav.Lessons[1].State)

	nav, err = c.Navigate(ctx, "ilt", "")
	require.NoError(t, err)
	assert.Nil(t, nav.CurrentLesson)
	assert.Equal(t, -1, nav.CurrentIndex)

	_, err = c.Navigate(ctx, "missing", "a")
	assert.True(t, IsNotFound(err))
}

func TestClientPlainHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer ts.Close()

	err := NewClient(ts.URL).Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
	assert.False(t, IsNotFound(err))
}
