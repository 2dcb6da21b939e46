package career

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/artenis/openjobboard/internal/company"
)

const defaultMaxConcurrency = 8

// Enricher attaches careers pages and job postings to candidates with
// bounded parallelism.
type Enricher struct {
	resolver       *Resolver
	maxConcurrency int64
	logger         *zap.Logger
}

// NewEnricher builds an Enricher; maxConcurrency <= 0 selects the
// default of 8 in-flight resolutions.
func NewEnricher(resolver *Resolver, maxConcurrency int, logger *zap.Logger) *Enricher {
	if maxConcurrency <= 0 {
		maxConcurrency = defaultMaxConcurrency
	}
	return &Enricher{
		resolver:       resolver,
		maxConcurrency: int64(maxConcurrency),
		logger:         logger,
	}
}

// Enrich resolves careers pages for all candidates and returns the
// enriched subset. Candidates whose website is unusable or whose
// careers page cannot be found are dropped; that is a deliberate
// filter, not an error. Results complete in any order and are gathered
// before returning.
func (e *Enricher) Enrich(ctx context.Context, candidates []company.Candidate) []company.Candidate {
	sem := semaphore.NewWeighted(e.maxConcurrency)
	results := make([]*company.Candidate, len(candidates))

	var wg sync.WaitGroup
	for i := range candidates {
		wg.Add(1)
		go func(i int, candidate company.Candidate) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)
			results[i] = e.enrichOne(ctx, candidate)
		}(i, candidates[i])
	}
	wg.Wait()

	enriched := make([]company.Candidate, 0, len(candidates))
	for _, item := range results {
		if item != nil {
			enriched = append(enriched, *item)
		}
	}
	return enriched
}

func (e *Enricher) enrichOne(ctx context.Context, candidate company.Candidate) *company.Candidate {
	website := company.NormalizeURL(candidate.Website)
	if website == "" {
		return nil
	}

	careerURL, found := e.resolver.FindCareerPage(ctx, website)
	if !found {
		e.logger.Debug("no careers page found",
			zap.String("company", candidate.Name), zap.String("website", website))
		return nil
	}

	candidate.CareerPageURL = careerURL
	candidate.Jobs = e.resolver.ExtractJobs(ctx, careerURL, website)
	e.logger.Debug("careers page resolved",
		zap.String("company", candidate.Name),
		zap.String("career_page", careerURL),
		zap.Int("jobs", len(candidate.Jobs)))
	return &candidate
}
