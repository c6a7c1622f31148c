package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/terra-clan/course-portal/internal/catalog"
	"github.com/terra-clan/course-portal/internal/config"
	"github.com/terra-clan/course-portal/internal/models"
	"github.com/terra-clan/course-portal/internal/navigation"
	"github.com/terra-clan/course-portal/internal/storage"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the YAML content directory",
	Long: `Parses and validates every course.yaml in the content directory and prints
a report. Exits non-zero when any course fails validation.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

var navigateCmd = &cobra.Command{
	Use:   "navigate <slug> [lesson-id]",
	Short: "Resolve the lesson player state for a course",
	Long: `Prints the current lesson, module, position, next lesson and progress the
lesson player would show for the given course and optional lesson id.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runNavigate,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import the YAML content directory into PostgreSQL",
	Long: `Loads every valid course from the content directory and upserts it into
PostgreSQL in a single transaction, replacing each course's modules and lessons.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func runValidate(cmd *cobra.Command, args []string) error {
	courses, report, err := catalog.ParseDir(cfg.Content.Dir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printReport(out, courses, report)

	if len(report.Failed) > 0 {
		return fmt.Errorf("%d course(s) failed validation", len(report.Failed))
	}
	return nil
}

func printReport(out io.Writer, courses map[string]*models.Course, report *catalog.Report) {
	loaded := append([]string(nil), report.Loaded...)
	sort.Strings(loaded)
	for _, slug := range loaded {
		c := courses[slug]
		fmt.Fprintf(out, "ok    %-32s %d modules, %d lessons\n", slug, len(c.Modules), c.LessonCount())
	}

	failed := make([]string, 0, len(report.Failed))
	for slug := range report.Failed {
		failed = append(failed, slug)
	}
	sort.Strings(failed)
	for _, slug := range failed {
		fmt.Fprintf(out, "FAIL  %-32s %v\n", slug, report.Failed[slug])
	}

	for _, w := range report.Warnings {
		fmt.Fprintf(out, "warn  %s\n", w)
	}
}

func runNavigate(cmd *cobra.Command, args []string) error {
	loader := catalog.NewLoader()
	if _, err := loader.LoadFromDir(cfg.Content.Dir); err != nil {
		return err
	}

	course, err := storage.LookupCourse(cmd.Context(), loader, args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	var requested string
	if len(args) > 1 {
		requested = navigation.FirstSegment(args[1])
	}

	printSelection(cmd.OutOrStdout(), navigation.Resolve(course, requested))
	return nil
}

func printSelection(out io.Writer, sel navigation.Selection) {
	fmt.Fprintf(out, "course:   %s (%s)\n", sel.Course.Title, sel.Course.Slug)
	if !sel.HasLesson() {
		fmt.Fprintln(out, "lesson:   none")
		fmt.Fprintf(out, "progress: %.0f%%\n", sel.ProgressPercent())
		return
	}

	fmt.Fprintf(out, "module:   %s (%s)\n", sel.CurrentModule.Title, sel.CurrentModule.ID)
	fmt.Fprintf(out, "lesson:   %s (%s, %s)\n", sel.CurrentLesson.Title, sel.CurrentLesson.ID, sel.CurrentLesson.Kind)
	fmt.Fprintf(out, "position: %d of %d\n", sel.Position(), sel.Total())
	fmt.Fprintf(out, "progress: %.0f%%\n", sel.ProgressPercent())
	if link, ok := sel.NextLink(); ok {
		fmt.Fprintf(out, "next:     /courses/%s/lesson/%s\n", link.Slug, link.LessonID)
	} else {
		fmt.Fprintln(out, "next:     none")
	}

	for i, l := range sel.Lessons {
		fmt.Fprintf(out, "  %2d. [%-9s] %s\n", i+1, sel.LessonState(l), l.Title)
	}
}

func requireDSN() error {
	if cfg.Database.DSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if err := requireDSN(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	if err := storage.MigrateFromDSN(ctx, cfg.Database.DSN); err != nil {
		return err
	}
	slog.Info("migrations complete")
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	if err := requireDSN(); err != nil {
		return err
	}

	courses, report, err := catalog.ParseDir(cfg.Content.Dir)
	if err != nil {
		return err
	}
	for slug, err := range report.Failed {
		slog.Warn("skipping invalid course", "slug", slug, "error", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	if err := storage.MigrateFromDSN(ctx, cfg.Database.DSN); err != nil {
		return err
	}

	repo, err := storage.NewPostgresRepository(ctx, storage.PostgresConfig{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: int32(cfg.Database.MaxConns),
	})
	if err != nil {
		return err
	}
	defer repo.Close()

	list := make([]*models.Course, 0, len(courses))
	for _, c := range courses {
		list = append(list, c)
	}
	catalog.SortCourses(list)

	if err := repo.SaveCourses(ctx, list); err != nil {
		return err
	}

	if err := flushCourseCache(ctx, cfg.Redis); err != nil {
		return fmt.Errorf("courses seeded but cache flush failed: %w", err)
	}

	slog.Info("courses seeded", "count", len(list), "skipped", len(report.Failed))
	return nil
}

// flushCourseCache drops cached courses so servers reading through Redis
// pick up freshly seeded data. It is a no-op when no Redis address is set.
func flushCourseCache(ctx context.Context, rc config.RedisConfig) error {
	if rc.Address == "" {
		return nil
	}

	client, err := storage.NewRedisClient(ctx, rc.Address, rc.Password, rc.DB)
	if err != nil {
		return err
	}
	defer client.Close()

	return storage.FlushCache(ctx, client, storage.DefaultCachePrefix)
}
