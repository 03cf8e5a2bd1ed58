// Package cmd provides the hybridsearch CLI commands.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/amancerp/hybridsearch/internal/logging"
)

// Logging flags and the active logger's cleanup, set by startLogging and
// torn down by stopLogging.
var (
	logLevel   string
	logFile    string
	logCleanup func()
)

// NewRootCmd creates the root command for the hybridsearch CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hybridsearch",
		Short: "Hybrid lexical + vector search over a document corpus",
		Long: `hybridsearch fuses BM25-family lexical scoring with dense
vector search via Reciprocal Rank Fusion, delivering a fast INITIAL
result set followed by a quality-refined REFINED set.`,
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "additional log destination file")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newInfoCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLogging configures the process-wide slog logger from the
// --log-level/--log-file flags before any subcommand runs.
func startLogging(_ *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	cfg.Level = logLevel
	cfg.FilePath = logFile

	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	logCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

// stopLogging closes any log file opened by startLogging.
func stopLogging(_ *cobra.Command, _ []string) error {
	if logCleanup != nil {
		logCleanup()
		logCleanup = nil
	}
	return nil
}
