package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terra-clan/course-portal/internal/models"
)

// PostgresRepository implements CourseRepository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 10
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 1
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

const courseColumns = `slug, title, summary, description, duration, is_free, type, category, position, topics, video_id, objectives, content`

// GetCourse retrieves a course with its modules and lessons in position order
func (r *PostgresRepository) GetCourse(ctx context.Context, slug string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE slug = $1`

	course, err := scanCourse(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if course.Modules, err = r.getModules(ctx, slug); err != nil {
		return nil, fmt.Errorf("failed to get modules: %w", err)
	}

	return course, nil
}

// ListCourses returns all courses ordered by position, then slug
func (r *PostgresRepository) ListCourses(ctx context.Context) ([]*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses ORDER BY position, slug`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	var courses []*models.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, course)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate courses: %w", err)
	}

	for _, course := range courses {
		if course.Modules, err = r.getModules(ctx, course.Slug); err != nil {
			return nil, fmt.Errorf("failed to get modules for %s: %w", course.Slug, err)
		}
	}

	return courses, nil
}

// getModules loads the module/lesson tree of a course. Modules without
// lessons come back from the LEFT JOIN with NULL lesson columns.
func (r *PostgresRepository) getModules(ctx context.Context, slug string) ([]*models.Module, error) {
	query := `
		SELECT m.id, m.module_key, m.title, l.lesson_key, l.title, l.kind, l.video_id, l.completed
		FROM course_modules m
		LEFT JOIN course_lessons l ON l.module_id = m.id
		WHERE m.course_slug = $1
		ORDER BY m.position, l.position
	`

	rows, err := r.pool.Query(ctx, query, slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	modules := make([]*models.Module, 0)
	var current *models.Module
	var currentID uuid.UUID

	for rows.Next() {
		var moduleID uuid.UUID
		var moduleKey, moduleTitle string
		var lessonKey, lessonTitle, kind, videoID sql.NullString
		var completed sql.NullBool

		if err := rows.Scan(&moduleID, &moduleKey, &moduleTitle,
			&lessonKey, &lessonTitle, &kind, &videoID, &completed); err != nil {
			return nil, err
		}

		if current == nil || moduleID != currentID {
			current = &models.Module{ID: moduleKey, Title: moduleTitle, Lessons: make([]*models.Lesson, 0)}
			currentID = moduleID
			modules = append(modules, current)
		}

		if !lessonKey.Valid {
			continue
		}
		current.Lessons = append(current.Lessons, &models.Lesson{
			ID:        lessonKey.String,
			Title:     lessonTitle.String,
			Kind:      models.LessonKind(kind.String),
			VideoID:   videoID.String,
			Completed: completed.Bool,
		})
	}

	return modules, rows.Err()
}

// SaveCourses upserts courses and replaces their module/lesson trees in one transaction
func (r *PostgresRepository) SaveCourses(ctx context.Context, courses []*models.Course) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, course := range courses {
		if err := saveCourse(ctx, tx, course); err != nil {
			return fmt.Errorf("failed to save course %s: %w", course.Slug, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit courses: %w", err)
	}
	return nil
}

// DeleteCourse removes a course; modules and lessons cascade
func (r *PostgresRepository) DeleteCourse(ctx context.Context, slug string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func saveCourse(ctx context.Context, tx pgx.Tx, course *models.Course) error {
	topicsJSON, err := json.Marshal(nonNil(course.Topics))
	if err != nil {
		return fmt.Errorf("failed to marshal topics: %w", err)
	}
	objectivesJSON, err := json.Marshal(nonNil(course.Objectives))
	if err != nil {
		return fmt.Errorf("failed to marshal objectives: %w", err)
	}
	contentJSON, err := json.Marshal(nonNil(course.Content))
	if err != nil {
		return fmt.Errorf("failed to marshal content: %w", err)
	}

	upsert := `
		INSERT INTO courses (` + courseColumns + `, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		ON CONFLICT (slug) DO UPDATE SET
			title = EXCLUDED.title, summary = EXCLUDED.summary, description = EXCLUDED.description,
			duration = EXCLUDED.duration, is_free = EXCLUDED.is_free, type = EXCLUDED.type,
			category = EXCLUDED.category, position = EXCLUDED.position, topics = EXCLUDED.topics,
			video_id = EXCLUDED.video_id, objectives = EXCLUDED.objectives, content = EXCLUDED.content,
			updated_at = NOW()
	`
	if _, err := tx.Exec(ctx, upsert,
		course.Slug,
		course.Title,
		course.Summary,
		course.Description,
		course.Duration,
		course.IsFree,
		string(course.Type),
		course.Category,
		course.Order,
		topicsJSON,
		course.VideoID,
		objectivesJSON,
		contentJSON,
	); err != nil {
		return fmt.Errorf("failed to upsert course: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM course_modules WHERE course_slug = $1`, course.Slug); err != nil {
		return fmt.Errorf("failed to clear modules: %w", err)
	}

	for mi, module := range course.Modules {
		moduleID := uuid.New()
		if _, err := tx.Exec(ctx,
			`INSERT INTO course_modules (id, course_slug, module_key, title, position) VALUES ($1, $2, $3, $4, $5)`,
			moduleID, course.Slug, module.ID, module.Title, mi,
		); err != nil {
			return fmt.Errorf("failed to insert module %s: %w", module.ID, err)
		}

		for li, lesson := range module.Lessons {
			if _, err := tx.Exec(ctx,
				`INSERT INTO course_lessons (id, module_id, lesson_key, title, kind, video_id, completed, position)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				uuid.New(), moduleID, lesson.ID, lesson.Title, string(lesson.Kind), lesson.VideoID, lesson.Completed, li,
			); err != nil {
				return fmt.Errorf("failed to insert lesson %s: %w", lesson.ID, err)
			}
		}
	}

	return nil
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	var c models.Course
	var courseType string
	var topicsJSON, objectivesJSON, contentJSON []byte

	if err := row.Scan(
		&c.Slug,
		&c.Title,
		&c.Summary,
		&c.Description,
		&c.Duration,
		&c.IsFree,
		&courseType,
		&c.Category,
		&c.Order,
		&topicsJSON,
		&c.VideoID,
		&objectivesJSON,
		&contentJSON,
	); err != nil {
		return nil, err
	}

	c.Type = models.CourseType(courseType)

	if err := json.Unmarshal(topicsJSON, &c.Topics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal topics: %w", err)
	}
	if err := json.Unmarshal(objectivesJSON, &c.Objectives); err != nil {
		return nil, fmt.Errorf("failed to unmarshal objectives: %w", err)
	}
	if err := json.Unmarshal(contentJSON, &c.Content); err != nil {
		return nil, fmt.Errorf("failed to unmarshal content: %w", err)
	}

	return &c, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
