// Package career resolves company careers pages and extracts job
// postings from them.
package career

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/artenis/openjobboard/internal/company"
	"github.com/artenis/openjobboard/internal/fetch"
)

var careerKeywords = []string{
	"career",
	"careers",
	"jobs",
	"job",
	"join-us",
	"joinus",
	"work-with-us",
	"vacancies",
	"hiring",
	"opportunities",
	"workday",
	"talent",
}

// Probed in this order when the homepage links give nothing away.
var commonCareerPaths = []string{
	"/careers",
	"/career",
	"/jobs",
	"/join-us",
	"/vacancies",
	"/work-with-us",
	"/en/careers",
	"/en/jobs",
}

var validationPhrases = []string{
	"open positions",
	"job openings",
	"vacancies",
	"apply now",
}

// Only this much of a page's visible text is scanned during validation.
const validationSnippetLen = 5000

// Resolver finds one plausible careers page for a company website.
type Resolver struct {
	client *fetch.Client
	logger *zap.Logger
}

// NewResolver builds a Resolver on top of a polite fetch client.
func NewResolver(client *fetch.Client, logger *zap.Logger) *Resolver {
	return &Resolver{client: client, logger: logger}
}

// FindCareerPage locates a careers page for the website: first via
// career-looking homepage links restricted to the site's own domain,
// then by probing common paths. Returns false when nothing validates.
func (r *Resolver) FindCareerPage(ctx context.Context, website string) (string, bool) {
	home := company.NormalizeURL(website)
	if home == "" {
		return "", false
	}
	parsedHome, err := url.Parse(home)
	if err != nil {
		return "", false
	}
	homeDomain := strings.ToLower(parsedHome.Host)

	html, ok := r.client.Fetch(ctx, home)
	if !ok {
		// If the homepage itself is unreachable, probing fallback
		// paths is slow and low-yield. Give up immediately.
		return "", false
	}

	for _, candidate := range extractCareerLinks(html, parsedHome) {
		if !isRelatedDomain(homeDomain, candidate) {
			continue
		}
		if r.isValidCareerPage(ctx, candidate) {
			return candidate, true
		}
	}

	for _, path := range commonCareerPaths {
		candidate := company.NormalizeURL(parsedHome.Scheme + "://" + parsedHome.Host + path)
		if candidate == "" {
			continue
		}
		if r.isValidCareerPage(ctx, candidate) {
			return candidate, true
		}
	}

	return "", false
}

// extractCareerLinks harvests anchors whose text, title, aria-label or
// href mention a career keyword. Document order is preserved and the
// first occurrence of each normalized URL wins.
func extractCareerLinks(html string, base *url.URL) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var found []string
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" {
			return
		}
		blob := strings.ToLower(strings.Join([]string{
			company.CollapseWhitespace(sel.Text()),
			strings.TrimSpace(sel.AttrOr("title", "")),
			strings.TrimSpace(sel.AttrOr("aria-label", "")),
			href,
		}, " "))
		if !containsCareerKeyword(blob) {
			return
		}
		absolute := company.AbsoluteURL(base, href)
		if absolute == "" {
			return
		}
		if _, dup := seen[absolute]; dup {
			return
		}
		seen[absolute] = struct{}{}
		found = append(found, absolute)
	})

	return found
}

// isValidCareerPage fetches the candidate and accepts it when the
// title, the URL itself, or the leading slice of visible text looks
// career-related.
func (r *Resolver) isValidCareerPage(ctx context.Context, pageURL string) bool {
	html, ok := r.client.Fetch(ctx, pageURL)
	if !ok {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}

	title := strings.ToLower(strings.TrimSpace(doc.Find("title").First().Text()))
	if containsCareerKeyword(title) {
		return true
	}
	if containsCareerKeyword(strings.ToLower(pageURL)) {
		return true
	}

	text := strings.ToLower(company.CollapseWhitespace(doc.Text()))
	if len(text) > validationSnippetLen {
		text = text[:validationSnippetLen]
	}
	for _, phrase := range validationPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

func containsCareerKeyword(text string) bool {
	for _, keyword := range careerKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// isRelatedDomain reports whether the candidate's host is the home
// domain itself or one of its subdomains.
func isRelatedDomain(homeDomain, candidateURL string) bool {
	parsed, err := url.Parse(candidateURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Host)
	if host == "" {
		return false
	}
	return host == homeDomain || strings.HasSuffix(host, "."+homeDomain)
}
