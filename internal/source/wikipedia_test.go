package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/artenis/openjobboard/internal/fetch"
)

// newSourceServer serves a path->HTML map with a 404 robots.txt.
func newSourceServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, page)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newSourceClient(t *testing.T) *fetch.Client {
	t.Helper()
	session := fetch.NewSession("test-agent")
	t.Cleanup(session.Close)
	return fetch.NewClient(session, fetch.Options{}, zap.NewNop())
}

const listPage = `<html><body>
<table class="wikitable">
<tr><th>Rank</th><th>Company</th><th>Headquarters</th><th>Website</th></tr>
<tr><td>1</td><td><a href="/wiki/Acme_SE">Acme SE</a>[1]</td><td>Munich, Germany</td>
	<td><a href="https://acme.example/">acme.example</a></td></tr>
<tr><td>2</td><td><a href="/wiki/Borealis_Oy">Borealis Oy</a></td><td>Helsinki, Finland</td><td></td></tr>
<tr><td>3</td><td><a href="/wiki/Gotham_Corp">Gotham Corp</a></td><td>Gotham City, United States</td>
	<td><a href="https://gotham.example">gotham.example</a></td></tr>
</table>
</body></html>`

const borealisArticle = `<html><body>
<table class="infobox">
<tr><th>Industry</th><td>Chemicals</td></tr>
<tr><th>Website</th><td><a href="https://www.borealis.example/">borealis.example</a></td></tr>
</table>
</body></html>`

func TestWikipediaScrape(t *testing.T) {
	srv := newSourceServer(t, map[string]string{
		"/wiki/List": listPage,
	})

	collector := NewWikipedia(newSourceClient(t), WikipediaOptions{
		SourceName: "wikipedia",
		ListURL:    srv.URL + "/wiki/List",
	}, zap.NewNop())
	require.Equal(t, "wikipedia", collector.Name())

	candidates, err := collector.Scrape(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	require.Equal(t, "Acme SE", candidates[0].Name)
	require.Equal(t, "https://acme.example", candidates[0].Website)
	require.Equal(t, "Munich, Germany", candidates[0].CountryOfOrigin)
	require.Equal(t, "wikipedia", candidates[0].Source)
	require.Equal(t, srv.URL+"/wiki/List", candidates[0].SourceURL)
}

func TestWikipediaBackfillsMissingWebsite(t *testing.T) {
	srv := newSourceServer(t, map[string]string{
		"/wiki/List":        listPage,
		"/wiki/Borealis_Oy": borealisArticle,
	})

	collector := NewWikipedia(newSourceClient(t), WikipediaOptions{
		SourceName: "wikipedia",
		ListURL:    srv.URL + "/wiki/List",
	}, zap.NewNop())

	candidates, err := collector.Scrape(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	require.Equal(t, "https://www.borealis.example", candidates[1].Website)
}

func TestWikipediaEuropeOnly(t *testing.T) {
	srv := newSourceServer(t, map[string]string{
		"/wiki/List": listPage,
	})

	collector := NewWikipedia(newSourceClient(t), WikipediaOptions{
		SourceName: "wikipedia_global",
		ListURL:    srv.URL + "/wiki/List",
		EuropeOnly: true,
	}, zap.NewNop())

	candidates, err := collector.Scrape(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 2, "the US company must be filtered out")
	for _, candidate := range candidates {
		require.NotEqual(t, "Gotham Corp", candidate.Name)
		require.Equal(t, "wikipedia_global", candidate.Source)
	}
}

func TestWikipediaUnreachableListIsEmpty(t *testing.T) {
	srv := newSourceServer(t, map[string]string{})

	collector := NewWikipedia(newSourceClient(t), WikipediaOptions{
		SourceName: "wikipedia",
		ListURL:    srv.URL + "/wiki/List",
	}, zap.NewNop())

	candidates, err := collector.Scrape(context.Background())
	require.NoError(t, err)
	require.Empty(t, candidates)
}

func TestWikipediaIgnoresTablesWithoutNameColumn(t *testing.T) {
	srv := newSourceServer(t, map[string]string{
		"/wiki/List": `<html><body>
			<table class="wikitable">
			<tr><th>Year</th><th>Revenue</th></tr>
			<tr><td>2024</td><td>1B</td></tr>
			</table>
			</body></html>`,
	})

	collector := NewWikipedia(newSourceClient(t), WikipediaOptions{
		SourceName: "wikipedia",
		ListURL:    srv.URL + "/wiki/List",
	}, zap.NewNop())

	candidates, err := collector.Scrape(context.Background())
	require.NoError(t, err)
	require.Empty(t, candidates)
}
