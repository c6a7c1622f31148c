package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/terra-clan/course-portal/internal/api"
	"github.com/terra-clan/course-portal/internal/catalog"
	"github.com/terra-clan/course-portal/internal/config"
	"github.com/terra-clan/course-portal/internal/health"
	"github.com/terra-clan/course-portal/internal/reload"
	"github.com/terra-clan/course-portal/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

// backend is the assembled content stack for serve
type backend struct {
	repo     storage.CourseRepository
	loader   *catalog.Loader           // set for the yaml source
	cache    *storage.CachedRepository // set when redis is configured
	registry *health.Registry
	closers  []func() error
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			slog.Error("close error", "error", err)
		}
	}
}

// buildBackend wires the content source, optional cache and readiness providers
func buildBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	b := &backend{registry: health.NewRegistry()}

	switch cfg.Content.Source {
	case config.SourcePostgres:
		slog.Info("running database migrations")
		if err := storage.MigrateFromDSN(ctx, cfg.Database.DSN); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		repo, err := storage.NewPostgresRepository(ctx, storage.PostgresConfig{
			DSN:          cfg.Database.DSN,
			MaxOpenConns: int32(cfg.Database.MaxConns),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create database repository: %w", err)
		}
		slog.Info("database connected successfully")
		b.repo = repo

		probe, err := health.NewPostgresProvider(cfg.Database.DSN)
		if err != nil {
			repo.Close()
			return nil, err
		}
		b.registry.Register("postgres", probe)
		b.closers = append(b.closers, probe.Close)

	default:
		loader := catalog.NewLoader()
		report, err := loader.LoadFromDir(cfg.Content.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to load content: %w", err)
		}
		for slug, err := range report.Failed {
			slog.Warn("skipped invalid course", "slug", slug, "error", err)
		}
		b.loader = loader
		b.repo = loader
	}

	b.registry.Register("catalog", health.NewFuncProvider("catalog", b.repo.Ping))

	if cfg.Redis.Address != "" {
		client, err := storage.NewRedisClient(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			b.repo.Close()
			b.Close()
			return nil, err
		}
		b.cache = storage.NewCachedRepository(b.repo, client, cfg.Redis.CacheTTL)
		b.repo = b.cache
		b.registry.Register("redis", health.NewRedisProvider(client))
		slog.Info("course cache enabled", "address", cfg.Redis.Address, "ttl", cfg.Redis.CacheTTL)
	}

	b.closers = append(b.closers, b.repo.Close)
	return b, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	slog.Info("starting course-portal",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"source", cfg.Content.Source,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	initCtx, initCancel := context.WithTimeout(ctx, 30*time.Second)
	b, err := buildBackend(initCtx, cfg)
	initCancel()
	if err != nil {
		return err
	}
	defer b.Close()

	server := api.NewServer(cfg.Server, b.repo, b.registry)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if b.loader != nil && (cfg.Reload.Watch || cfg.Reload.Interval > 0) {
		opts := []reload.Option{
			reload.WithInterval(cfg.Reload.Interval),
			reload.WithWatch(cfg.Reload.Watch),
		}
		if b.cache != nil {
			opts = append(opts, reload.WithHook(b.cache.Flush))
		}
		reloader := reload.NewReloader(b.loader, opts...)
		g.Go(func() error {
			return reloader.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("course-portal stopped")
	return nil
}
