// Package cli implements the createtaxdb command-line interface.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/me/createtaxdb/internal/config"
	"github.com/me/createtaxdb/internal/logging"
)

var (
	flagConfig    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string
	flagDB        string

	cfg    config.Config
	logger *slog.Logger
)

// NewRootCmd creates the root cobra command for the createtaxdb CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "createtaxdb",
		Short: "Run nf-core/createtaxdb on the execution platform",
		Long: `createtaxdb provisions shared storage, stages the nf-core/createtaxdb
pipeline, launches Nextflow and ships the Nextflow log when the run ends.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("log-level") {
				loaded.Log.Level = flagLogLevel
			}
			if flags.Changed("log-format") {
				loaded.Log.Format = flagLogFormat
			}
			if flags.Changed("db") {
				loaded.DBPath = flagDB
			}
			cfg = loaded
			logger = logging.NewLoggerWithWriter(logging.ParseLevel(cfg.Log.Level, flagDebug), cfg.Log.Format, cmd.ErrOrStderr())
			return nil
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML config file (CREATETAXDB_* env vars override it)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "Run history database (default ~/.createtaxdb/runs.db)")

	root.AddCommand(
		newProvisionCmd(),
		newRunCmd(),
		newWorkflowCmd(),
		newPrintCommandCmd(),
		newSchemaCmd(),
		newServeCmd(),
		newRunsCmd(),
	)
	return root
}
