// Package merge folds per-source candidate lists into the canonical,
// deduplicated company list.
package merge

import (
	"sort"
	"strings"

	"github.com/artenis/openjobboard/internal/company"
)

// Merge dedupes and merges candidate lists into the final schema.
// Identity is resolved by website domain first, then by normalized
// name; conflicts go to the record with the higher completeness score.
// Input order decides first-seen ties, so callers must keep collector
// ordering fixed. Merging an output with itself reproduces it.
func Merge(lists ...[]company.Candidate) []company.Company {
	merged := make([]company.Company, 0)
	byDomain := make(map[string]int)
	byName := make(map[string]int)

	for _, list := range lists {
		for _, raw := range list {
			record, ok := toFinalRecord(raw)
			if !ok {
				continue
			}
			domainKey := company.DomainKey(record.Website)
			nameKey := company.NameKey(record.Name)

			idx := -1
			if domainKey != "" {
				if i, found := byDomain[domainKey]; found {
					idx = i
				}
			}
			if idx < 0 {
				if i, found := byName[nameKey]; found {
					idx = i
				}
			}

			if idx < 0 {
				merged = append(merged, record)
				byName[nameKey] = len(merged) - 1
				if domainKey != "" {
					byDomain[domainKey] = len(merged) - 1
				}
				continue
			}

			// The winner takes the loser's slot; jobs are never merged
			// across records.
			if preferChallenger(merged[idx], record) {
				merged[idx] = record
				byName[nameKey] = idx
				if domainKey != "" {
					byDomain[domainKey] = idx
				}
			}
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return strings.ToLower(merged[i].Name) < strings.ToLower(merged[j].Name)
	})
	return merged
}

// toFinalRecord normalizes a raw candidate into the final schema.
// Records lacking a name, website or careers page after normalization
// are discarded: absence of a careers page disqualifies a company from
// the final dataset.
func toFinalRecord(raw company.Candidate) (company.Company, bool) {
	name := strings.TrimSpace(raw.Name)
	website := company.NormalizeURL(raw.Website)
	careerURL := company.NormalizeURL(raw.CareerPageURL)
	if name == "" || website == "" || careerURL == "" {
		return company.Company{}, false
	}

	country := strings.TrimSpace(raw.CountryOfOrigin)
	if country == "" {
		country = "Unknown"
	}
	source := strings.TrimSpace(raw.Source)
	if source == "" {
		source = "unknown"
	}

	return company.Company{
		Name:            name,
		Website:         website,
		CareerPageURL:   careerURL,
		CountryOfOrigin: country,
		Source:          source,
		Jobs:            company.NormalizeJobs(raw.Jobs),
	}, true
}

// preferChallenger decides whether the new record displaces the
// existing one. Higher completeness score wins outright; on a tie, a
// known country beats "Unknown", then the shorter careers URL wins
// (shorter is more often the clean canonical path), and finally the
// first-seen record is kept.
func preferChallenger(existing, challenger company.Company) bool {
	existingScore, challengerScore := existing.Score(), challenger.Score()
	if challengerScore != existingScore {
		return challengerScore > existingScore
	}

	existingUnknown := strings.EqualFold(existing.CountryOfOrigin, "unknown")
	challengerUnknown := strings.EqualFold(challenger.CountryOfOrigin, "unknown")
	if existingUnknown != challengerUnknown {
		return existingUnknown
	}

	return len(challenger.CareerPageURL) < len(existing.CareerPageURL)
}
