package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/terra-clan/course-portal/internal/models"
)

// DefaultCachePrefix namespaces course keys in Redis
const DefaultCachePrefix = "course-portal:course:"

// CachedRepository is a read-through Redis cache in front of another repository.
// Whole courses are cached by slug; misses and Redis failures fall through to next.
type CachedRepository struct {
	next   CourseRepository
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewCachedRepository wraps next with a Redis cache
func NewCachedRepository(next CourseRepository, client *redis.Client, ttl time.Duration) *CachedRepository {
	return &CachedRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		prefix: DefaultCachePrefix,
	}
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, address, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func (c *CachedRepository) key(slug string) string {
	return c.prefix + slug
}

// GetCourse returns the cached course or loads and caches it
func (c *CachedRepository) GetCourse(ctx context.Context, slug string) (*models.Course, error) {
	data, err := c.client.Get(ctx, c.key(slug)).Bytes()
	switch {
	case err == nil:
		var course models.Course
		if err := json.Unmarshal(data, &course); err == nil {
			slog.Debug("course cache hit", "slug", slug)
			return &course, nil
		}
		slog.Warn("dropping undecodable cache entry", "slug", slug)
		c.client.Del(ctx, c.key(slug))
	case errors.Is(err, redis.Nil):
		slog.Debug("course cache miss", "slug", slug)
	default:
		slog.Warn("course cache unavailable", "slug", slug, "error", err)
	}

	course, err := c.next.GetCourse(ctx, slug)
	if err != nil || course == nil {
		return course, err
	}

	if data, err := json.Marshal(course); err != nil {
		slog.Warn("failed to encode course for cache", "slug", slug, "error", err)
	} else if err := c.client.Set(ctx, c.key(slug), data, c.ttl).Err(); err != nil {
		slog.Warn("failed to cache course", "slug", slug, "error", err)
	}

	return course, nil
}

// ListCourses is not cached
func (c *CachedRepository) ListCourses(ctx context.Context) ([]*models.Course, error) {
	return c.next.ListCourses(ctx)
}

// Invalidate drops one cached course
func (c *CachedRepository) Invalidate(ctx context.Context, slug string) error {
	return c.client.Del(ctx, c.key(slug)).Err()
}

// Flush drops every cached course under the prefix
func (c *CachedRepository) Flush(ctx context.Context) error {
	return FlushCache(ctx, c.client, c.prefix)
}

// FlushCache deletes every key under prefix. Writers that bypass a
// CachedRepository, such as the seed command, use it to drop stale courses.
func FlushCache(ctx context.Context, client *redis.Client, prefix string) error {
	pattern := prefix + "*"
	var cursor uint64
	var keysDeleted int

	for {
		keys, nextCursor, err := client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			if err := client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("failed to delete some keys", "error", err)
			}
			keysDeleted += len(keys)
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	slog.Info("course cache flushed", "prefix", prefix, "keys_deleted", keysDeleted)
	return nil
}

// Ping checks both Redis and the underlying repository
func (c *CachedRepository) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return c.next.Ping(ctx)
}

// Close closes the Redis client and the underlying repository
func (c *CachedRepository) Close() error {
	return errors.Join(c.client.Close(), c.next.Close())
}
