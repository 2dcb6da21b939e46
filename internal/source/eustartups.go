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

var websitePattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+)`)

// EUStartupsOptions configures the EU-Startups directory collector.
type EUStartupsOptions struct {
	DirectoryURL     string
	MaxCategoryPages int
	MaxCompanies     int
}

// EUStartups collects startup candidates from the EU-Startups company
// directory: category pages link to per-company listing pages, which
// carry name, website and country fields.
type EUStartups struct {
	client *fetch.Client
	opts   EUStartupsOptions
	logger *zap.Logger
}

// NewEUStartups builds the collector.
func NewEUStartups(client *fetch.Client, opts EUStartupsOptions, logger *zap.Logger) *EUStartups {
	return &EUStartups{client: client, opts: opts, logger: logger}
}

// Name implements Collector.
func (e *EUStartups) Name() string { return "eu_startups" }

// Scrape implements Collector.
func (e *EUStartups) Scrape(ctx context.Context) ([]company.Candidate, error) {
	directoryHTML, ok := e.client.Fetch(ctx, e.opts.DirectoryURL)
	if !ok {
		return nil, nil
	}
	base, err := url.Parse(e.opts.DirectoryURL)
	if err != nil {
		return nil, nil
	}

	categoryURLs := e.extractCategoryURLs(directoryHTML, base)
	if len(categoryURLs) > e.opts.MaxCategoryPages {
		categoryURLs = categoryURLs[:e.opts.MaxCategoryPages]
	}

	var listingURLs []string
	seenListings := make(map[string]struct{})
	for _, categoryURL := range categoryURLs {
		categoryHTML, ok := e.client.Fetch(ctx, categoryURL)
		if !ok {
			continue
		}
		for _, listingURL := range e.extractListingURLs(categoryHTML, base) {
			if _, dup := seenListings[listingURL]; dup {
				continue
			}
			seenListings[listingURL] = struct{}{}
			listingURLs = append(listingURLs, listingURL)
			if len(listingURLs) >= e.opts.MaxCompanies {
				break
			}
		}
		if len(listingURLs) >= e.opts.MaxCompanies {
			break
		}
	}

	candidates := make([]company.Candidate, 0, len(listingURLs))
	for _, listingURL := range listingURLs {
		listingHTML, ok := e.client.Fetch(ctx, listingURL)
		if !ok {
			continue
		}
		if candidate, ok := e.parseListing(listingHTML, listingURL); ok {
			candidates = append(candidates, candidate)
		}
	}
	return dedupeCandidates(candidates), nil
}

func (e *EUStartups) extractCategoryURLs(html string, base *url.URL) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	var urls []string
	seen := make(map[string]struct{})
	doc.Find(`a[href*="/directory/wpbdp_category/"]`).Each(func(_ int, link *goquery.Selection) {
		absolute := company.AbsoluteURL(base, link.AttrOr("href", ""))
		if absolute == "" {
			return
		}
		if _, dup := seen[absolute]; dup {
			return
		}
		seen[absolute] = struct{}{}
		urls = append(urls, absolute)
	})
	return urls
}

func (e *EUStartups) extractListingURLs(html string, base *url.URL) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	var urls []string
	seen := make(map[string]struct{})
	doc.Find(`.listing-title a[href*="/directory/"]`).Each(func(_ int, link *goquery.Selection) {
		absolute := company.AbsoluteURL(base, link.AttrOr("href", ""))
		if absolute == "" {
			return
		}
		// Category and view links live under the same prefix.
		if strings.Contains(absolute, "/wpbdp_category/") || strings.Contains(absolute, "wpbdp_view=") {
			return
		}
		if _, dup := seen[absolute]; dup {
			return
		}
		seen[absolute] = struct{}{}
		urls = append(urls, absolute)
	})
	return urls
}

func (e *EUStartups) parseListing(html, sourceURL string) (company.Candidate, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return company.Candidate{}, false
	}

	name := company.CollapseWhitespace(doc.Find("h1").First().Text())
	if looksLikeURL(name) {
		if fallback := fieldValue(doc, "business_name"); fallback != "" {
			name = fallback
		}
	}
	if name == "" || looksLikeURL(name) {
		return company.Candidate{}, false
	}

	website := e.extractListingWebsite(doc)
	if website == "" {
		return company.Candidate{}, false
	}

	country := fieldValue(doc, "category")
	if country == "" {
		country = "Unknown"
	}

	return NewCandidate(name, website, country, e.Name(), sourceURL), true
}

// extractListingWebsite reduces the free-form website field to the
// site's origin; listing pages often append slogans or stray text.
func (e *EUStartups) extractListingWebsite(doc *goquery.Document) string {
	raw := fieldValue(doc, "website")
	if raw == "" {
		return ""
	}
	match := websitePattern.FindString(raw)
	if match == "" {
		return ""
	}
	match = strings.TrimRight(match, ".,;)")

	normalized := company.NormalizeURL(match)
	if normalized == "" {
		return ""
	}
	parsed, err := url.Parse(normalized)
	if err != nil {
		return ""
	}
	return company.NormalizeURL(parsed.Scheme + "://" + parsed.Host)
}

// fieldValue reads a wpbdp-rendered field; the value node class varies
// between theme versions.
func fieldValue(doc *goquery.Document, field string) string {
	sel := doc.Find(".wpbdp-field-" + field + " .value").First()
	if sel.Length() == 0 {
		sel = doc.Find(".wpbdp-field-" + field + " .wpbdp-field-value").First()
	}
	return company.CollapseWhitespace(sel.Text())
}

func looksLikeURL(value string) bool {
	lowered := strings.ToLower(strings.TrimSpace(value))
	return strings.HasPrefix(lowered, "http://") ||
		strings.HasPrefix(lowered, "https://") ||
		strings.HasPrefix(lowered, "www.")
}
