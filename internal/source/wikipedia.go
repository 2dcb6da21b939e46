package source

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/artenis/openjobboard/internal/company"
	"github.com/artenis/openjobboard/internal/fetch"
)

// Strips footnote markers like [1] or [note 2] from table cells.
var footnoteMarker = regexp.MustCompile(`\[[^\]]+\]`)

// WikipediaOptions configures a Wikipedia list-page collector.
type WikipediaOptions struct {
	// SourceName labels emitted candidates (wikipedia,
	// wikipedia_global, ...).
	SourceName string
	// ListURL is the list page whose wikitables are scanned.
	ListURL string
	// EuropeOnly keeps only candidates headquartered in Europe;
	// used by the global largest-companies list.
	EuropeOnly bool
}

// Wikipedia collects company candidates from a Wikipedia list page.
// List pages are table-driven; likely columns for name, website and
// country are located by header keywords, and missing websites are
// backfilled from each company's own Wikipedia article.
type Wikipedia struct {
	client *fetch.Client
	opts   WikipediaOptions
	logger *zap.Logger
}

// NewWikipedia builds the collector.
func NewWikipedia(client *fetch.Client, opts WikipediaOptions, logger *zap.Logger) *Wikipedia {
	return &Wikipedia{client: client, opts: opts, logger: logger}
}

// Name implements Collector.
func (w *Wikipedia) Name() string { return w.opts.SourceName }

// Scrape implements Collector. An unreachable list page yields an
// empty result, not an error.
func (w *Wikipedia) Scrape(ctx context.Context) ([]company.Candidate, error) {
	html, ok := w.client.Fetch(ctx, w.opts.ListURL)
	if !ok {
		return nil, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil
	}
	base, err := url.Parse(w.opts.ListURL)
	if err != nil {
		return nil, nil
	}

	rows := w.rowsFromTables(doc, base)
	w.fillMissingWebsites(ctx, rows)

	candidates := make([]company.Candidate, 0, len(rows))
	for _, row := range rows {
		if w.opts.EuropeOnly && !isEuropeCountry(row.candidate.CountryOfOrigin) {
			continue
		}
		candidates = append(candidates, row.candidate)
	}
	return dedupeCandidates(candidates), nil
}

// tableRow pairs a candidate with the company's own article URL, kept
// around only to backfill a missing website.
type tableRow struct {
	candidate company.Candidate
	wikiURL   string
}

func (w *Wikipedia) rowsFromTables(doc *goquery.Document, base *url.URL) []*tableRow {
	var rows []*tableRow

	doc.Find("table.wikitable").Each(func(_ int, table *goquery.Selection) {
		headerCells := table.Find("tr").First().Find("th")
		if headerCells.Length() == 0 {
			return
		}
		headers := make([]string, 0, headerCells.Length())
		headerCells.Each(func(_ int, th *goquery.Selection) {
			headers = append(headers, cleanCellText(th.Text()))
		})

		nameIdx := headerIndex(headers, "company", "name", "corporation")
		websiteIdx := headerIndex(headers, "website", "web", "url")
		countryIdx := headerIndex(headers, "country", "headquarters", "hq", "location")
		if nameIdx < 0 {
			return
		}

		table.Find("tr").Slice(1, goquery.ToEnd).Each(func(_ int, tr *goquery.Selection) {
			cells := tr.Find("th, td")
			if cells.Length() == 0 {
				return
			}
			// Rows made of header cells only are section separators.
			if tr.Find("td").Length() == 0 {
				return
			}

			name := cellText(cells, nameIdx)
			if name == "" {
				return
			}
			country := cellText(cells, countryIdx)
			if country == "" {
				country = "Unknown"
			}

			rows = append(rows, &tableRow{
				candidate: NewCandidate(name, extractWebsite(cells, websiteIdx), country, w.Name(), w.opts.ListURL),
				wikiURL:   companyWikiURL(cells, nameIdx, base),
			})
		})
	})

	return rows
}

// fillMissingWebsites visits each company's own Wikipedia article and
// pulls the official website from the infobox.
func (w *Wikipedia) fillMissingWebsites(ctx context.Context, rows []*tableRow) {
	for _, row := range rows {
		if row.candidate.Website != "" || row.wikiURL == "" {
			continue
		}
		html, ok := w.client.Fetch(ctx, row.wikiURL)
		if !ok {
			continue
		}
		if website := officialWebsite(html); website != "" {
			row.candidate.Website = website
		}
	}
}

// officialWebsite finds the official site on a company article: the
// infobox "Website" row first, then the sidebar official-website link.
func officialWebsite(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	website := ""
	doc.Find("table.infobox tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		header := row.Find("th").First()
		if header.Length() == 0 {
			return true
		}
		if !strings.Contains(strings.ToLower(company.CollapseWhitespace(header.Text())), "website") {
			return true
		}
		row.Find("td a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
			href := strings.TrimSpace(link.AttrOr("href", ""))
			if strings.HasPrefix(href, "http") && !strings.Contains(href, "wikipedia.org") {
				website = company.NormalizeURL(href)
				return false
			}
			return true
		})
		return website == ""
	})
	if website != "" {
		return website
	}

	doc.Find("li#t-officialwebsite a[href], li#t-homepage a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href := strings.TrimSpace(link.AttrOr("href", ""))
		if strings.HasPrefix(href, "http") && !strings.Contains(href, "wikipedia.org") {
			website = company.NormalizeURL(href)
			return false
		}
		return true
	})
	return website
}

// extractWebsite prefers links in the dedicated website column, then
// falls back to any external non-Wikipedia link in the row.
func extractWebsite(cells *goquery.Selection, websiteIdx int) string {
	website := ""
	if websiteIdx >= 0 && websiteIdx < cells.Length() {
		cells.Eq(websiteIdx).Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
			href := strings.TrimSpace(link.AttrOr("href", ""))
			if strings.HasPrefix(href, "http") {
				website = company.NormalizeURL(href)
				return false
			}
			return true
		})
	}
	if website != "" {
		return website
	}

	cells.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href := strings.TrimSpace(link.AttrOr("href", ""))
		if strings.HasPrefix(href, "http") && !strings.Contains(href, "wikipedia.org") {
			website = company.NormalizeURL(href)
			return false
		}
		return true
	})
	return website
}

// companyWikiURL pulls the company's own article link from the name
// cell, resolved against the list page's origin; links with a colon in
// the article path are namespace pages, not articles.
func companyWikiURL(cells *goquery.Selection, nameIdx int, base *url.URL) string {
	if nameIdx < 0 || nameIdx >= cells.Length() {
		return ""
	}
	wikiURL := ""
	cells.Eq(nameIdx).Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href := strings.TrimSpace(link.AttrOr("href", ""))
		if !strings.HasPrefix(href, "/wiki/") || strings.Contains(href, ":") {
			return true
		}
		wikiURL = company.AbsoluteURL(base, href)
		return wikiURL == ""
	})
	return wikiURL
}

func headerIndex(headers []string, tokens ...string) int {
	for i, header := range headers {
		lowered := strings.ToLower(header)
		for _, token := range tokens {
			if strings.Contains(lowered, token) {
				return i
			}
		}
	}
	return -1
}

func cellText(cells *goquery.Selection, idx int) string {
	if idx < 0 || idx >= cells.Length() {
		return ""
	}
	return cleanCellText(cells.Eq(idx).Text())
}

func cleanCellText(text string) string {
	return company.CollapseWhitespace(footnoteMarker.ReplaceAllString(text, ""))
}
