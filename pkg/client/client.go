package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/terra-clan/course-portal/internal/models"
)

// Client is a Go SDK for the course-portal JSON API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new course-portal client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is an error envelope returned by the server
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %s - %s", e.Code, e.Message)
}

// IsNotFound reports whether err is a not_found API error
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == "not_found"
}

// LessonRef is a lesson as returned by the navigation endpoint
type LessonRef struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Kind      models.LessonKind `json:"kind"`
	VideoID   string            `json:"videoId,omitempty"`
	EmbedURL  string            `json:"embedUrl,omitempty"`
	Completed bool              `json:"completed"`
	State     string            `json:"state"`
}

// ModuleRef identifies a module
type ModuleRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// NextLink points at the next lesson page
type NextLink struct {
	Slug     string `json:"slug"`
	LessonID string `json:"lessonId"`
}

// Navigation is the resolved lesson player state for a course
type Navigation struct {
	Course           string      `json:"course"`
	CurrentLesson    *LessonRef  `json:"currentLesson"`
	CurrentModule    *ModuleRef  `json:"currentModule"`
	CurrentIndex     int         `json:"currentIndex"`
	NextLesson       *LessonRef  `json:"nextLesson"`
	NextLink         *NextLink   `json:"nextLink"`
	ProgressFraction float64     `json:"progressFraction"`
	Lessons          []LessonRef `json:"lessons"`
}

type envelope[T any] struct {
	Success bool      `json:"success"`
	Data    T         `json:"data"`
	Error   *APIError `json:"error"`
}

// ListCourses retrieves catalog cards, optionally filtered by category
func (c *Client) ListCourses(ctx context.Context, category string) ([]*models.CourseSummary, error) {
	path := "/api/v1/courses"
	if category != "" {
		path += "?" + url.Values{"category": {category}}.Encode()
	}

	data, err := get[struct {
		Courses []*models.CourseSummary `json:"courses"`
		Total   int                     `json:"total"`
	}](ctx, c, path)
	if err != nil {
		return nil, err
	}
	return data.Courses, nil
}

// ListCategories retrieves the catalog filter categories
func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	data, err := get[struct {
		Categories []models.Category `json:"categories"`
	}](ctx, c, "/api/v1/categories")
	if err != nil {
		return nil, err
	}
	return data.Categories, nil
}

// GetCourse retrieves a full course by slug
func (c *Client) GetCourse(ctx context.Context, slug string) (*models.Course, error) {
	return get[*models.Course](ctx, c, "/api/v1/courses/"+url.PathEscape(slug))
}

// Navigate resolves the lesson player state. An empty lessonID selects the first lesson.
func (c *Client) Navigate(ctx context.Context, slug, lessonID string) (*Navigation, error) {
	path := "/api/v1/courses/" + url.PathEscape(slug) + "/navigation"
	if lessonID != "" {
		path += "?" + url.Values{"lesson": {lessonID}}.Encode()
	}
	return get[*Navigation](ctx, c, path)
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, "/health", nil)
	return err
}

// Ready checks if the service and its dependencies are ready
func (c *Client) Ready(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, "/ready", nil)
	return err
}

// get performs a GET and unwraps the response envelope
func get[T any](ctx context.Context, c *Client, path string) (T, error) {
	var zero T

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return zero, err
	}

	var result envelope[T]
	if err := json.Unmarshal(resp, &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		if result.Error != nil {
			return zero, result.Error
		}
		return zero, fmt.Errorf("API error: unsuccessful response")
	}

	return result.Data, nil
}

// doRequest performs an HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var result envelope[json.RawMessage]
		if err := json.Unmarshal(respBody, &result); err == nil && result.Error != nil {
			result.Error.Status = resp.StatusCode
			return nil, result.Error
		}
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
