// Package cmd defines and implements the CLI commands for the
// jobboard executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/artenis/openjobboard/internal/config"
	"github.com/artenis/openjobboard/internal/logging"
	"github.com/artenis/openjobboard/internal/metrics"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobboard",
		Short: "European company discovery and careers-page pipeline",
		Long: `jobboard discovers European companies from public sources, finds
their careers pages, extracts job postings and serves the merged
dataset over a read-only HTTP API.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (defaults and OJB_* env vars are used when omitted)")

	cmd.AddCommand(newPipelineCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// setup loads configuration, builds the logger and registers metrics.
// Every subcommand starts here.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	metrics.Init()
	return cfg, logger, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
