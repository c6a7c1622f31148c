package health

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresProvider checks PostgreSQL reachability over database/sql
type PostgresProvider struct {
	BaseProvider
	db *sql.DB
}

// NewPostgresProvider opens a lightweight connection pool for health probes
func NewPostgresProvider(dsn string) (*PostgresProvider, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &PostgresProvider{
		BaseProvider: BaseProvider{serviceType: "postgres"},
		db:           db,
	}, nil
}

// HealthCheck verifies PostgreSQL connectivity and that the schema is migrated
func (p *PostgresProvider) HealthCheck(ctx context.Context) error {
	var exists bool
	err := p.db.QueryRowContext(ctx, `SELECT to_regclass('public.courses') IS NOT NULL`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to query postgres: %w", err)
	}
	if !exists {
		return fmt.Errorf("courses table missing, run migrations")
	}
	return nil
}

// Close closes the probe connection
func (p *PostgresProvider) Close() error {
	return p.db.Close()
}
