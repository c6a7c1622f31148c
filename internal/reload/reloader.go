package reload

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/terra-clan/course-portal/internal/catalog"
)

// DefaultDebounce collapses bursts of file events into a single reload
const DefaultDebounce = 250 * time.Millisecond

// Source is a catalog that can re-read its content directory
type Source interface {
	Reload() (*catalog.Report, error)
	Dir() string
}

// Hook runs after every successful reload
type Hook func(ctx context.Context) error

// Option configures a Reloader
type Option func(*Reloader)

// WithInterval sets the periodic reload interval. Zero disables it.
func WithInterval(d time.Duration) Option {
	return func(r *Reloader) {
		r.interval = d
	}
}

// WithWatch enables or disables filesystem notifications
func WithWatch(watch bool) Option {
	return func(r *Reloader) {
		r.watch = watch
	}
}

// WithDebounce sets the debounce window for filesystem events
func WithDebounce(d time.Duration) Option {
	return func(r *Reloader) {
		r.debounce = d
	}
}

// WithHook adds a hook run after each successful reload
func WithHook(hook Hook) Option {
	return func(r *Reloader) {
		r.hooks = append(r.hooks, hook)
	}
}

// Reloader keeps the in-memory catalog in sync with the content directory
type Reloader struct {
	source   Source
	interval time.Duration
	watch    bool
	debounce time.Duration
	hooks    []Hook
}

// NewReloader creates a new reload worker
func NewReloader(source Source, opts ...Option) *Reloader {
	r := &Reloader{
		source:   source,
		interval: 5 * time.Minute,
		watch:    true,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run blocks until ctx is cancelled. It returns nil on cancellation.
func (r *Reloader) Run(ctx context.Context) error {
	var fsw *fsnotify.Watcher
	var events <-chan fsnotify.Event
	var watchErrs <-chan error

	if r.watch {
		var err error
		fsw, err = r.newWatcher()
		if err != nil {
			slog.Warn("content watch unavailable, using interval reload only", "error", err)
		} else {
			defer fsw.Close()
			events = fsw.Events
			watchErrs = fsw.Errors
		}
	}

	var tick <-chan time.Time
	if r.interval > 0 {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	// armed by file events
	debounce := time.NewTimer(time.Hour)
	debounce.Stop()
	defer debounce.Stop()

	slog.Info("reload worker started",
		"dir", r.source.Dir(),
		"interval", r.interval,
		"watch", events != nil,
	)

	for {
		select {
		case <-ctx.Done():
			slog.Info("reload worker stopped")
			return nil
		case <-tick:
			r.reload(ctx, "interval")
		case <-debounce.C:
			r.reload(ctx, "watch")
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			slog.Debug("content changed", "path", ev.Name, "op", ev.Op.String())
			if ev.Has(fsnotify.Create) {
				watchIfDir(fsw, ev.Name)
			}
			debounce.Reset(r.debounce)
		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			slog.Warn("content watch error", "error", err)
		}
	}
}

func (r *Reloader) reload(ctx context.Context, trigger string) {
	report, err := r.source.Reload()
	if err != nil {
		slog.Error("failed to reload catalog", "error", err, "trigger", trigger)
		return
	}

	slog.Info("catalog reloaded",
		"trigger", trigger,
		"loaded", len(report.Loaded),
		"failed", len(report.Failed),
	)

	for _, hook := range r.hooks {
		if err := hook(ctx); err != nil {
			slog.Warn("reload hook failed", "error", err)
		}
	}
}

var errNoDir = errors.New("content directory not set")

func (r *Reloader) newWatcher() (*fsnotify.Watcher, error) {
	dir := r.source.Dir()
	if dir == "" {
		return nil, errNoDir
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	// fsnotify is not recursive: watch the root and every course directory
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return fsw, nil
}

// watchIfDir starts watching a directory created after startup
func watchIfDir(fsw *fsnotify.Watcher, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := fsw.Add(path); err != nil {
		slog.Warn("failed to watch new directory", "path", path, "error", err)
	}
}
