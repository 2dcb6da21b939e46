package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/artenis/openjobboard/internal/career"
	"github.com/artenis/openjobboard/internal/config"
	"github.com/artenis/openjobboard/internal/fetch"
	"github.com/artenis/openjobboard/internal/pipeline"
	"github.com/artenis/openjobboard/internal/source"
	"github.com/artenis/openjobboard/internal/store"
)

func newPipelineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pipeline",
		Short: "Runs one full discovery and enrichment pass",
		Long: `Scrapes every enabled source for company candidates, resolves
careers pages, extracts job postings, merges duplicates and writes
the dataset plus a health report to the data directory.`,
		RunE: runPipelineCommand,
	}
}

func runPipelineCommand(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := fetch.NewSession(cfg.Fetch.UserAgent)
	defer session.Close()

	collectors := buildCollectors(cfg, session, logger)
	if len(collectors) == 0 {
		return fmt.Errorf("no sources enabled")
	}

	careerClient := fetch.NewClient(session, fetch.Options{
		MinDelay: cfg.Career.MinDelay(),
		Timeout:  cfg.Career.Timeout(),
	}, logger)
	resolver := career.NewResolver(careerClient, logger)
	enricher := career.NewEnricher(resolver, cfg.Career.MaxConcurrency, logger)

	runner := pipeline.NewRunner(
		collectors,
		enricher,
		store.New(cfg.Pipeline.DataDir, logger),
		logger,
	)

	health, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	logger.Info("pipeline run finished",
		zap.String("run_id", health.RunID),
		zap.Int("raw_candidates", health.Candidates.TotalRaw),
		zap.Int("enriched", health.EnrichedWithCareers),
		zap.Int("final", health.FinalMerged))
	return nil
}

// buildCollectors assembles enabled collectors in their fixed run
// order. Each gets its own client so per-source rate limits stay
// independent while the HTTP session is shared.
func buildCollectors(cfg config.Config, session *fetch.Session, logger *zap.Logger) []source.Collector {
	var collectors []source.Collector

	if cfg.Sources.Wikipedia.Enabled {
		client := fetch.NewClient(session, fetch.Options{
			MinDelay: cfg.Sources.Wikipedia.MinDelay(),
			Timeout:  cfg.Fetch.Timeout(),
		}, logger)
		collectors = append(collectors, source.NewWikipedia(client, source.WikipediaOptions{
			SourceName: "wikipedia",
			ListURL:    cfg.Sources.Wikipedia.ListURL,
			EuropeOnly: cfg.Sources.Wikipedia.EuropeOnly,
		}, logger))
	}

	if cfg.Sources.WikipediaGlobal.Enabled {
		client := fetch.NewClient(session, fetch.Options{
			MinDelay: cfg.Sources.WikipediaGlobal.MinDelay(),
			Timeout:  cfg.Fetch.Timeout(),
		}, logger)
		collectors = append(collectors, source.NewWikipedia(client, source.WikipediaOptions{
			SourceName: "wikipedia_global",
			ListURL:    cfg.Sources.WikipediaGlobal.ListURL,
			EuropeOnly: cfg.Sources.WikipediaGlobal.EuropeOnly,
		}, logger))
	}

	if cfg.Sources.EUStartups.Enabled {
		client := fetch.NewClient(session, fetch.Options{
			MinDelay: cfg.Sources.EUStartups.MinDelay(),
			Timeout:  cfg.Fetch.Timeout(),
		}, logger)
		collectors = append(collectors, source.NewEUStartups(client, source.EUStartupsOptions{
			DirectoryURL:     cfg.Sources.EUStartups.DirectoryURL,
			MaxCategoryPages: cfg.Sources.EUStartups.MaxCategoryPages,
			MaxCompanies:     cfg.Sources.EUStartups.MaxCompanies,
		}, logger))
	}

	return collectors
}
