package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dreamware/penguins/internal/config"
	"github.com/dreamware/penguins/internal/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

// newRootCmd builds the command tree. Each call returns fresh flag state.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Palmer penguins characteristics explorer",
		Long: `dashboard serves an interactive explorer for the Palmer penguins data.

Two controls, a species selection and a body-mass ceiling, filter the
dataset. The filtered records drive a record count, the mean bill length
and depth, a data preview and a bill length vs. depth scatter plot.

Every browser session gets its own filter state; derived values are
recomputed only when that session's controls change.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			if verbose {
				cfg.Logging.Level = "debug"
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Development)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP server",
		Long: `Loads the dataset once, then serves the controls and per-session
display values as JSON until interrupted.

Dataset sources (--dataset or DASHBOARD_DATASET):
  embedded:                 built-in sample
  path/to/penguins.csv      CSV file
  sqlite://path/to/db       SQLite table (see dataset.table)
  postgres://user@host/db   Postgres table
  s3://bucket/penguins.csv  CSV object in S3`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the value boxes and data preview for one filter setting",
		Long: `Renders the dashboard's value boxes and the first rows of the data
preview in the terminal.

Without --server the dataset is loaded locally. With --server a session is
opened on a running dashboard, read, and closed again.

Example:
  dashboard summary --species Adelie,Gentoo --max-mass 4500`,
		Args: cobra.NoArgs,
		RunE: runSummary,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	serveCmd.Flags().String("addr", "", "listen address (overrides config)")
	serveCmd.Flags().String("dataset", "", "dataset source (overrides config)")

	summaryCmd.Flags().StringSlice("species", nil, "species to include (default: all)")
	summaryCmd.Flags().Float64("max-mass", 0, "include penguins lighter than this many grams (default: slider default)")
	summaryCmd.Flags().String("server", "", "read from a running dashboard at this URL")
	summaryCmd.Flags().String("dataset", "", "dataset source (overrides config)")
	summaryCmd.Flags().Int("rows", 10, "number of preview rows to print (0 for all)")

	rootCmd.AddCommand(serveCmd, summaryCmd)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
