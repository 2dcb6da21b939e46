package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/artenis/openjobboard/internal/company"
	"github.com/artenis/openjobboard/internal/source"
)

type fakeCollector struct {
	name       string
	candidates []company.Candidate
	err        error
}

func (f *fakeCollector) Name() string { return f.name }

func (f *fakeCollector) Scrape(context.Context) ([]company.Candidate, error) {
	return f.candidates, f.err
}

// passthroughEnricher stamps a deterministic careers page onto every
// candidate instead of fetching anything.
type passthroughEnricher struct{}

func (passthroughEnricher) Enrich(_ context.Context, candidates []company.Candidate) []company.Candidate {
	enriched := make([]company.Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		candidate.CareerPageURL = candidate.Website + "/careers"
		enriched = append(enriched, candidate)
	}
	return enriched
}

type memoryStore struct {
	companies []company.Company
	health    any

	companiesErr error
}

func (m *memoryStore) SaveCompanies(companies []company.Company) error {
	if m.companiesErr != nil {
		return m.companiesErr
	}
	m.companies = companies
	return nil
}

func (m *memoryStore) SaveHealth(report any) error {
	m.health = report
	return nil
}

func TestRunMergesAcrossSources(t *testing.T) {
	wikipedia := &fakeCollector{name: "wikipedia", candidates: []company.Candidate{
		{Name: "Acme", Website: "https://acme.example", CountryOfOrigin: "Germany", Source: "wikipedia"},
		{Name: "Borealis", Website: "https://borealis.io", CountryOfOrigin: "Finland", Source: "wikipedia"},
	}}
	startups := &fakeCollector{name: "eu_startups", candidates: []company.Candidate{
		// Same name and website as the wikipedia entry; dropped by the
		// global candidate dedupe before enrichment.
		{Name: "Acme", Website: "https://acme.example", Source: "eu_startups"},
		{Name: "Cirrus", Website: "https://cirrus.example", Source: "eu_startups"},
	}}

	st := &memoryStore{}
	runner := NewRunner(
		[]source.Collector{wikipedia, startups},
		passthroughEnricher{},
		st,
		zap.NewNop(),
	)

	health, err := runner.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 4, health.Candidates.TotalRaw)
	require.Equal(t, 3, health.Candidates.TotalDeduped)
	require.Equal(t, map[string]int{"wikipedia": 2, "eu_startups": 2}, health.Candidates.BySource)
	require.Equal(t, 3, health.EnrichedWithCareers)
	require.Equal(t, 3, health.FinalMerged)
	require.Equal(t, map[string]int{"eu_startups": 1, "wikipedia": 2}, health.FinalBySource)
	require.NotEmpty(t, health.RunID)
	require.NotEmpty(t, health.GeneratedAtUTC)

	require.Len(t, st.companies, 3)
	require.Equal(t, health, st.health)
}

func TestRunCollectorErrorAborts(t *testing.T) {
	broken := &fakeCollector{name: "wikipedia", err: errors.New("list page gone")}
	st := &memoryStore{}
	runner := NewRunner([]source.Collector{broken}, passthroughEnricher{}, st, zap.NewNop())

	_, err := runner.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "wikipedia")
	require.Nil(t, st.companies)
	require.Nil(t, st.health)
}

func TestRunSaveErrorAborts(t *testing.T) {
	collector := &fakeCollector{name: "wikipedia", candidates: []company.Candidate{
		{Name: "Acme", Website: "https://acme.example", Source: "wikipedia"},
	}}
	st := &memoryStore{companiesErr: errors.New("disk full")}
	runner := NewRunner([]source.Collector{collector}, passthroughEnricher{}, st, zap.NewNop())

	_, err := runner.Run(context.Background())
	require.Error(t, err)
	require.Nil(t, st.health, "health must not be written when the dataset write failed")
}

func TestDedupeCandidatesKeepsFirstSeen(t *testing.T) {
	deduped := dedupeCandidates([]company.Candidate{
		{Name: "Acme", Website: "https://acme.example", Source: "wikipedia"},
		{Name: "ACME", Website: "HTTPS://ACME.EXAMPLE", Source: "eu_startups"},
		{Name: "Acme", Website: "https://acme.io", Source: "eu_startups"},
	})
	require.Len(t, deduped, 2)
	require.Equal(t, "wikipedia", deduped[0].Source)
	require.Equal(t, "https://acme.io", deduped[1].Website)
}
