package merge

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/artenis/openjobboard/internal/company"
)

func TestMergeByDomainHigherScoreWins(t *testing.T) {
	rich := company.Candidate{
		Name:            "Acme GmbH",
		Website:         "https://www.acme.example",
		CareerPageURL:   "https://acme.example/careers",
		CountryOfOrigin: "Germany",
		Source:          "wikipedia",
		Jobs:            []company.JobPosting{{Title: "Engineer", URL: "https://acme.example/jobs/1"}},
	}
	sparse := company.Candidate{
		Name:          "Acme",
		Website:       "https://acme.example",
		CareerPageURL: "https://acme.example/careers/open-roles",
		Source:        "eu_startups",
	}

	for name, lists := range map[string][][]company.Candidate{
		"rich first":   {{rich}, {sparse}},
		"sparse first": {{sparse}, {rich}},
	} {
		t.Run(name, func(t *testing.T) {
			merged := Merge(lists...)
			require.Len(t, merged, 1)
			require.Equal(t, "Acme GmbH", merged[0].Name)
			require.Equal(t, "Germany", merged[0].CountryOfOrigin)
			require.Equal(t, "wikipedia", merged[0].Source)
		})
	}
}

func TestMergeByNameWhenDomainsDiffer(t *testing.T) {
	a := company.Candidate{
		Name:          "Borealis  Labs",
		Website:       "https://borealis.example",
		CareerPageURL: "https://borealis.example/careers",
		Source:        "wikipedia",
	}
	b := company.Candidate{
		Name:            "borealis labs",
		Website:         "https://borealis.io",
		CareerPageURL:   "https://borealis.io/jobs",
		CountryOfOrigin: "Finland",
		Source:          "eu_startups",
	}

	merged := Merge([]company.Candidate{a}, []company.Candidate{b})
	require.Len(t, merged, 1)
	require.Equal(t, "Finland", merged[0].CountryOfOrigin)
}

func TestMergeTieKeepsKnownCountry(t *testing.T) {
	existing := company.Candidate{
		Name:            "Acme",
		Website:         "https://acme.example",
		CareerPageURL:   "https://acme.example/careers",
		CountryOfOrigin: "France",
		Source:          "wikipedia",
	}
	challenger := company.Candidate{
		Name:          "Acme",
		Website:       "https://acme.example",
		CareerPageURL: "https://acme.example/careers",
		Source:        "eu_startups",
		Jobs:          []company.JobPosting{{Title: "Engineer", URL: "https://acme.example/jobs/1"}},
	}
	require.Equal(t, 9, company.Company{
		Name: "Acme", Website: "https://acme.example",
		CareerPageURL: "https://acme.example/careers",
		CountryOfOrigin: "France", Source: "wikipedia",
	}.Score(), "scores must tie for this scenario to exercise the tie-break")

	merged := Merge([]company.Candidate{existing, challenger})
	require.Len(t, merged, 1)
	require.Equal(t, "France", merged[0].CountryOfOrigin)
	require.Equal(t, "wikipedia", merged[0].Source)
}

func TestMergeTiePrefersShorterCareerURL(t *testing.T) {
	first := company.Candidate{
		Name:            "Acme",
		Website:         "https://acme.example",
		CareerPageURL:   "https://acme.example/careers/listing/all-open-roles",
		CountryOfOrigin: "France",
		Source:          "wikipedia",
	}
	second := company.Candidate{
		Name:            "Acme",
		Website:         "https://acme.example",
		CareerPageURL:   "https://acme.example/careers",
		CountryOfOrigin: "France",
		Source:          "wikipedia",
	}

	merged := Merge([]company.Candidate{first, second})
	require.Len(t, merged, 1)
	require.Equal(t, "https://acme.example/careers", merged[0].CareerPageURL)
}

func TestMergeDiscardsRecordsWithoutCareerPage(t *testing.T) {
	merged := Merge([]company.Candidate{
		{Name: "No Career", Website: "https://nocareer.example"},
		{Name: "No Website", CareerPageURL: "https://somewhere.example/careers"},
		{Website: "https://nameless.example", CareerPageURL: "https://nameless.example/careers"},
	})
	require.Empty(t, merged)
}

func TestMergeFillsDefaults(t *testing.T) {
	merged := Merge([]company.Candidate{{
		Name:          "Acme",
		Website:       "acme.example",
		CareerPageURL: "acme.example/careers/",
	}})
	require.Len(t, merged, 1)
	require.Equal(t, "https://acme.example", merged[0].Website)
	require.Equal(t, "https://acme.example/careers", merged[0].CareerPageURL)
	require.Equal(t, "Unknown", merged[0].CountryOfOrigin)
	require.Equal(t, "unknown", merged[0].Source)
	require.NotNil(t, merged[0].Jobs)
}

func TestMergeSortsByName(t *testing.T) {
	merged := Merge([]company.Candidate{
		{Name: "zeta", Website: "https://zeta.example", CareerPageURL: "https://zeta.example/jobs"},
		{Name: "Alpha", Website: "https://alpha.example", CareerPageURL: "https://alpha.example/jobs"},
		{Name: "midgard", Website: "https://midgard.example", CareerPageURL: "https://midgard.example/jobs"},
	})
	require.Len(t, merged, 3)
	require.Equal(t, "Alpha", merged[0].Name)
	require.Equal(t, "midgard", merged[1].Name)
	require.Equal(t, "zeta", merged[2].Name)
}

func TestMergeIdempotent(t *testing.T) {
	first := Merge([]company.Candidate{
		{
			Name:            "Acme",
			Website:         "https://acme.example",
			CareerPageURL:   "https://acme.example/careers",
			CountryOfOrigin: "Germany",
			Source:          "wikipedia",
			Jobs:            []company.JobPosting{{Title: "Engineer", URL: "https://acme.example/jobs/1"}},
		},
		{
			Name:          "Borealis",
			Website:       "https://borealis.io",
			CareerPageURL: "https://borealis.io/jobs",
			Source:        "eu_startups",
		},
	})

	asCandidates := make([]company.Candidate, 0, len(first))
	for _, c := range first {
		asCandidates = append(asCandidates, company.Candidate{
			Name:            c.Name,
			Website:         c.Website,
			CareerPageURL:   c.CareerPageURL,
			CountryOfOrigin: c.CountryOfOrigin,
			Source:          c.Source,
			Jobs:            c.Jobs,
		})
	}
	require.Equal(t, first, Merge(asCandidates))
}
