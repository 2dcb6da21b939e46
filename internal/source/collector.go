// Package source hosts the pluggable company collectors. Each
// collector turns one public web source into raw company candidates;
// the polite fetch client and record helpers are provided by
// composition rather than inheritance.
package source

import (
	"context"
	"strings"

	"github.com/artenis/openjobboard/internal/company"
)

// Collector produces raw company candidates from one public source.
// Careers pages and jobs stay empty; the enrichment step fills them.
type Collector interface {
	Name() string
	Scrape(ctx context.Context) ([]company.Candidate, error)
}

// NewCandidate builds the standard record shape shared by every
// collector.
func NewCandidate(name, website, country, sourceName, sourceURL string) company.Candidate {
	return company.Candidate{
		Name:            company.CollapseWhitespace(name),
		Website:         company.NormalizeURL(website),
		CareerPageURL:   "",
		CountryOfOrigin: strings.TrimSpace(country),
		Source:          sourceName,
		SourceURL:       sourceURL,
		Jobs:            []company.JobPosting{},
	}
}

// dedupeCandidates keeps the first occurrence per website and per name
// key within a single source's output.
func dedupeCandidates(candidates []company.Candidate) []company.Candidate {
	deduped := make([]company.Candidate, 0, len(candidates))
	seenWebsites := make(map[string]struct{}, len(candidates))
	seenNames := make(map[string]struct{}, len(candidates))

	for _, candidate := range candidates {
		nameKey := company.NameKey(candidate.Name)
		if candidate.Website != "" {
			if _, dup := seenWebsites[candidate.Website]; dup {
				continue
			}
		}
		if _, dup := seenNames[nameKey]; dup {
			continue
		}
		if candidate.Website != "" {
			seenWebsites[candidate.Website] = struct{}{}
		}
		seenNames[nameKey] = struct{}{}
		deduped = append(deduped, candidate)
	}
	return deduped
}
