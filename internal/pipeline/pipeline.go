// Package pipeline sequences the scrape run: collectors, global
// dedupe, career enrichment, merge, persistence and the health report.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/artenis/openjobboard/internal/company"
	"github.com/artenis/openjobboard/internal/merge"
	"github.com/artenis/openjobboard/internal/metrics"
	"github.com/artenis/openjobboard/internal/source"
)

// Health quantifies attrition at each pipeline stage of one run.
type Health struct {
	RunID               string         `json:"run_id"`
	GeneratedAtUTC      string         `json:"generated_at_utc"`
	Candidates          CandidateStats `json:"candidates"`
	EnrichedWithCareers int            `json:"enriched_with_careers"`
	FinalMerged         int            `json:"final_merged"`
	FinalBySource       map[string]int `json:"final_by_source"`
}

// CandidateStats breaks down raw candidate volume before enrichment.
type CandidateStats struct {
	BySource     map[string]int `json:"by_source"`
	TotalRaw     int            `json:"total_raw"`
	TotalDeduped int            `json:"total_deduped"`
}

// Enricher attaches careers pages to candidates and drops the rest.
type Enricher interface {
	Enrich(ctx context.Context, candidates []company.Candidate) []company.Candidate
}

// Store persists the run's output documents.
type Store interface {
	SaveCompanies(companies []company.Company) error
	SaveHealth(report any) error
}

// Runner executes one full pipeline run.
type Runner struct {
	collectors []source.Collector
	enricher   Enricher
	store      Store
	logger     *zap.Logger
}

// NewRunner wires the run. Collector order is significant: merge
// ties go to the first-seen record, so the slice order must stay
// fixed across runs.
func NewRunner(collectors []source.Collector, enricher Enricher, store Store, logger *zap.Logger) *Runner {
	return &Runner{
		collectors: collectors,
		enricher:   enricher,
		store:      store,
		logger:     logger,
	}
}

// Run executes collectors sequentially, dedupes, enriches, merges and
// persists. Fetch-level misses never fail a run; collector and
// persistence errors abort it.
func (r *Runner) Run(ctx context.Context) (Health, error) {
	var all []company.Candidate
	bySource := make(map[string]int, len(r.collectors))

	for _, collector := range r.collectors {
		candidates, err := collector.Scrape(ctx)
		if err != nil {
			return Health{}, fmt.Errorf("collector %s: %w", collector.Name(), err)
		}
		r.logger.Info("collector finished",
			zap.String("source", collector.Name()), zap.Int("candidates", len(candidates)))
		bySource[collector.Name()] = len(candidates)
		all = append(all, candidates...)
	}

	deduped := dedupeCandidates(all)
	r.logger.Info("candidates deduplicated",
		zap.Int("raw", len(all)), zap.Int("deduped", len(deduped)))

	enriched := r.enricher.Enrich(ctx, deduped)
	r.logger.Info("career enrichment finished",
		zap.Int("in", len(deduped)), zap.Int("enriched", len(enriched)))

	merged := merge.Merge(enriched)

	metrics.SetStageCount("raw", len(all))
	metrics.SetStageCount("deduped", len(deduped))
	metrics.SetStageCount("enriched", len(enriched))
	metrics.SetStageCount("merged", len(merged))

	if err := r.store.SaveCompanies(merged); err != nil {
		return Health{}, fmt.Errorf("save companies: %w", err)
	}

	health := Health{
		RunID:          uuid.NewString(),
		GeneratedAtUTC: time.Now().UTC().Format(time.RFC3339),
		Candidates: CandidateStats{
			BySource:     bySource,
			TotalRaw:     len(all),
			TotalDeduped: len(deduped),
		},
		EnrichedWithCareers: len(enriched),
		FinalMerged:         len(merged),
		FinalBySource:       sourceCounts(merged),
	}
	if err := r.store.SaveHealth(health); err != nil {
		return Health{}, fmt.Errorf("save health report: %w", err)
	}
	return health, nil
}

// dedupeCandidates keeps the first occurrence of each (name, website)
// pair across all sources, before the heavier keyed merge runs.
func dedupeCandidates(candidates []company.Candidate) []company.Candidate {
	deduped := make([]company.Candidate, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		key := strings.ToLower(strings.TrimSpace(candidate.Name)) +
			"|" + strings.ToLower(strings.TrimSpace(candidate.Website))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, candidate)
	}
	return deduped
}

func sourceCounts(companies []company.Company) map[string]int {
	counts := make(map[string]int, len(companies))
	for _, c := range companies {
		name := strings.TrimSpace(c.Source)
		if name == "" {
			name = "unknown"
		}
		counts[name]++
	}
	// Deterministic key order once encoded is not guaranteed by Go
	// maps; sorting here documents intent for the JSON consumer.
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	ordered := make(map[string]int, len(counts))
	for _, key := range keys {
		ordered[key] = counts[key]
	}
	return ordered
}
