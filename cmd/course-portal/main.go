package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/terra-clan/course-portal/internal/config"
)

var (
	// Global flags
	contentDir string
	logLevel   string

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "course-portal",
	Short: "Course catalog and lesson player",
	Long: `course-portal serves a course catalog, course detail pages and a lesson
player backed by a YAML content directory or PostgreSQL.

Configuration is read from environment variables and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		if contentDir != "" {
			cfg.Content.Dir = contentDir
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}

		setupLogging(cfg.Log)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&contentDir, "content-dir", "", "Course content directory (overrides CONTENT_DIR)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(navigateCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

// setupLogging installs the JSON slog handler as the default logger
func setupLogging(lc config.LogConfig) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: lc.SlogLevel(),
	}))
	slog.SetDefault(logger)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
