package reload

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/terra-clan/course-portal/internal/catalog"
)

type countingSource struct {
	dir     string
	reloads atomic.Int32
	err     error
}

func (s *countingSource) Reload() (*catalog.Report, error) {
	s.reloads.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &catalog.Report{}, nil
}

func (s *countingSource) Dir() string { return s.dir }

// runReloader starts r and returns a stop func that waits for Run to return
func runReloader(t *testing.T, r *Reloader) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	return func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("reloader did not stop")
		}
	}
}

func TestIntervalReloadRunsHooks(t *testing.T) {
	defer goleak.VerifyNone(t)

	source := &countingSource{}
	hooked := make(chan struct{}, 10)
	r := NewReloader(source,
		WithWatch(false),
		WithInterval(10*time.Millisecond),
		WithHook(func(context.Context) error {
			select {
			case hooked <- struct{}{}:
			default:
			}
			return errors.New("hook errors are logged, not fatal")
		}),
	)

	stop := runReloader(t, r)
	for i := 0; i < 2; i++ {
		select {
		case <-hooked:
		case <-time.After(5 * time.Second):
			t.Fatal("hook not called")
		}
	}
	stop()

	assert.GreaterOrEqual(t, source.reloads.Load(), int32(2))
}

func TestFailedReloadSkipsHooks(t *testing.T) {
	defer goleak.VerifyNone(t)

	source := &countingSource{err: errors.New("disk gone")}
	var hooks atomic.Int32
	r := NewReloader(source,
		WithWatch(false),
		WithInterval(5*time.Millisecond),
		WithHook(func(context.Context) error {
			hooks.Add(1)
			return nil
		}),
	)

	stop := runReloader(t, r)
	require.Eventually(t, func() bool { return source.reloads.Load() >= 2 }, 5*time.Second, 5*time.Millisecond)
	stop()

	assert.Zero(t, hooks.Load())
}

func TestWatchReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeCourse(t, dir, "first", "title: First\n")

	loader := catalog.NewLoader()
	_, err := loader.LoadFromDir(dir)
	require.NoError(t, err)
	require.Equal(t, 1, loader.Len())

	reloaded := make(chan struct{}, 10)
	r := NewReloader(loader,
		WithInterval(0),
		WithDebounce(20*time.Millisecond),
		WithHook(func(context.Context) error {
			select {
			case reloaded <- struct{}{}:
			default:
			}
			return nil
		}),
	)
	stop := runReloader(t, r)
	defer stop()

	// give the watcher time to register before writing
	time.Sleep(50 * time.Millisecond)
	writeCourse(t, dir, "first", "title: First edited\n")

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after edit")
	}
	require.Eventually(t, func() bool {
		c := loader.Get("first")
		return c != nil && c.Title == "First edited"
	}, 5*time.Second, 10*time.Millisecond)

	// a course added after startup is picked up too
	writeCourse(t, dir, "second", "title: Second\n")
	require.Eventually(t, func() bool { return loader.Get("second") != nil }, 5*time.Second, 10*time.Millisecond)
}

func TestWatchWithoutDirFallsBack(t *testing.T) {
	defer goleak.VerifyNone(t)

	source := &countingSource{}
	r := NewReloader(source, WithInterval(5*time.Millisecond))

	stop := runReloader(t, r)
	require.Eventually(t, func() bool { return source.reloads.Load() >= 1 }, 5*time.Second, 5*time.Millisecond)
	stop()
}

func writeCourse(t *testing.T, dir, slug, body string) {
	t.Helper()
	courseDir := filepath.Join(dir, slug)
	require.NoError(t, os.MkdirAll(courseDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(courseDir, catalog.CourseFileName), []byte(body), 0o644))
}
