// Package cli wires the bicache commands: cache status, maintenance
// operations, ad-hoc get/put, and the admin HTTP server.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/samm329-ui/businessIntelligence-sub004/internal/config"
	"github.com/samm329-ui/businessIntelligence-sub004/internal/logging"
)

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for command-wide structured logging

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewRootCmd creates the root Cobra command for the bicache CLI.
// It wires up configuration, logging, and the cache subcommands.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.Result

	cmd := &cobra.Command{
		Use:   "bicache",
		Short: "Compressed query cache for analytics reports",
		Long: "bicache manages the compressed, TTL-based cache of aggregated " +
			"market and financial analyses that backs the dashboard. Reports " +
			"are keyed by free-text query and stored as gzip blobs with a " +
			"persisted metadata index.",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			result, err := setupLogging(cmd)
			if err != nil {
				return err
			}
			logResult = result
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return logResult.Close()
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("cache-dir", "", "cache storage directory (overrides config and env)")
	cmd.PersistentFlags().Int("ttl-days", 0, "entry TTL in days (0 = use config default)")

	cmd.AddCommand(
		newStatusCmd(),
		newCleanupCmd(),
		newClearCmd(),
		newDeleteCmd(),
		newWarmupCmd(),
		newGetCmd(),
		newPutCmd(),
		newServeCmd(),
	)

	return cmd
}

const rootCmdExample = `  # Show cache statistics
  bicache status

  # Remove expired entries and orphaned blobs
  bicache cleanup

  # Probe which queries would miss, for pre-fetch orchestration
  bicache warmup "Technology" "renewable energy sector"

  # Run the admin HTTP API
  bicache serve --listen :8370`

// setupLogging configures the package logger from config file, environment,
// and CLI flags, in increasing precedence.
func setupLogging(cmd *cobra.Command) (*logging.Result, error) {
	cfg := config.New()
	loggingCfg := cfg.Logging

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = logging.FormatConsole
		loggingCfg.File = ""
	} else if loggingCfg.Format == logging.FormatConsole && !isTerminal(os.Stderr) {
		// Piped output gets machine-readable logs.
		loggingCfg.Format = logging.FormatJSON
	}

	result, err := logging.NewLogger(loggingCfg.ToLoggingConfig())
	if err != nil {
		return nil, err
	}
	logger = logging.ComponentLogger(result.Logger, "cli")

	ctx := cmd.Context()
	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.ContextWithTraceID(ctx, traceID)
	ctx = logger.With().Str("trace_id", traceID).Logger().WithContext(ctx)
	cmd.SetContext(ctx)

	logger.Debug().Str("command", cmd.Name()).Msg("command started")
	return result, nil
}
