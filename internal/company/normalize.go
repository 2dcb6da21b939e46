package company

import (
	"net/url"
	"regexp"
	"strings"
)

// URLs longer than this are treated as junk (tracking parameters,
// malformed hrefs) rather than usable company addresses.
const maxURLLength = 220

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeURL standardizes a company or careers URL. A scheme-less
// input gets "https://" prepended; the fragment and any trailing slash
// are stripped. Returns "" unless the result parses as an absolute URL
// with a dotted host and total length within bounds. Applying it twice
// yields the same result as applying it once.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	if len(raw) > maxURLLength {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || !strings.Contains(parsed.Host, ".") {
		return ""
	}
	parsed.Fragment = ""
	return strings.TrimSuffix(parsed.String(), "/")
}

// AbsoluteURL resolves href against base and normalizes the result.
func AbsoluteURL(base *url.URL, href string) string {
	if base == nil {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return NormalizeURL(base.ResolveReference(ref).String())
}

// DomainKey extracts the strongest identity key from a URL: the
// lowercased host with a leading "www." stripped.
func DomainKey(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Host)
	return strings.TrimPrefix(host, "www.")
}

// NameKey is the weaker identity key: lowercased, whitespace-collapsed
// company name.
func NameKey(name string) string {
	return CollapseWhitespace(strings.ToLower(name))
}

// CollapseWhitespace trims the string and squeezes internal whitespace
// runs to single spaces.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// NormalizeJobs drops postings missing a title or a usable URL and
// dedupes the rest by lowercased title|url, first occurrence winning.
func NormalizeJobs(jobs []JobPosting) []JobPosting {
	if len(jobs) == 0 {
		return []JobPosting{}
	}
	normalized := make([]JobPosting, 0, len(jobs))
	seen := make(map[string]struct{}, len(jobs))
	for _, job := range jobs {
		title := strings.TrimSpace(job.Title)
		jobURL := NormalizeURL(job.URL)
		if title == "" || jobURL == "" {
			continue
		}
		key := strings.ToLower(title) + "|" + strings.ToLower(jobURL)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		normalized = append(normalized, JobPosting{Title: title, URL: jobURL})
	}
	return normalized
}
