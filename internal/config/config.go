package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Course sources
const (
	SourceYAML     = "yaml"
	SourcePostgres = "postgres"
)

// Config holds all configuration for course-portal
type Config struct {
	Server   ServerConfig
	Content  ContentConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Reload   ReloadConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host     string
	Port     int
	SiteName string
}

// ContentConfig holds course content configuration
type ContentConfig struct {
	Dir    string
	Source string // yaml | postgres
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	DSN      string
	MaxConns int
}

// RedisConfig holds Redis cache configuration. An empty Address disables the cache.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	CacheTTL time.Duration
}

// ReloadConfig holds content reload worker configuration
type ReloadConfig struct {
	Interval time.Duration
	Watch    bool
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// Load loads configuration from environment variables, reading a .env file first if present.
// It does not validate; callers apply flag overrides first and then call Validate.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:     getEnv("SERVER_HOST", "0.0.0.0"),
			Port:     getEnvAsInt("SERVER_PORT", 8080),
			SiteName: getEnv("SITE_NAME", "VBUV University"),
		},
		Content: ContentConfig{
			Dir:    getEnv("CONTENT_DIR", "./content"),
			Source: strings.ToLower(getEnv("COURSE_SOURCE", SourceYAML)),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DATABASE_DSN", ""),
			MaxConns: getEnvAsInt("DATABASE_MAX_CONNS", 10),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDRESS", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			CacheTTL: getEnvAsDuration("REDIS_CACHE_TTL", 10*time.Minute),
		},
		Reload: ReloadConfig{
			Interval: getEnvAsDuration("RELOAD_INTERVAL", 5*time.Minute),
			Watch:    getEnvAsBool("RELOAD_WATCH", true),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Content.Source {
	case SourceYAML:
		if c.Content.Dir == "" {
			return fmt.Errorf("content dir is required for yaml source")
		}
	case SourcePostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database DSN is required for postgres source")
		}
	default:
		return fmt.Errorf("unknown course source: %q", c.Content.Source)
	}

	if c.Redis.Address != "" && c.Redis.CacheTTL <= 0 {
		return fmt.Errorf("redis cache ttl must be positive")
	}

	return nil
}

// SlogLevel maps the configured level name to a slog.Level
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
