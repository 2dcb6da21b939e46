package career

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/artenis/openjobboard/internal/company"
)

// maxJobsPerCompany caps extraction per careers page.
const maxJobsPerCompany = 25

// atsDomains are applicant tracking systems trusted as job-link
// destinations even off the company's own domain.
var atsDomains = []string{
	"greenhouse.io",
	"lever.co",
	"workable.com",
	"smartrecruiters.com",
	"myworkdayjobs.com",
	"ashbyhq.com",
	"teamtailor.com",
	"recruitee.com",
	"bamboohr.com",
}

var jobLinkBlockedTokens = []string{
	"privacy",
	"cookie",
	"terms",
	"linkedin.com/company",
	"facebook.com",
}

var jobLinkTokens = []string{
	"job",
	"jobs",
	"position",
	"opening",
	"vacanc",
	"careers",
	"apply",
	"workday",
	"greenhouse",
	"lever",
}

// ExtractJobs pulls up to maxJobsPerCompany postings from the careers
// page: schema.org JobPosting JSON-LD first, then job-looking anchors
// restricted to the company's domain or a known ATS.
func (r *Resolver) ExtractJobs(ctx context.Context, careerURL, website string) []company.JobPosting {
	html, ok := r.client.Fetch(ctx, careerURL)
	if !ok {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	jobs := make([]company.JobPosting, 0, maxJobsPerCompany)
	seen := make(map[string]struct{})

	for _, job := range jobsFromJSONLD(doc) {
		key := strings.ToLower(job.URL)
		if key == "" {
			key = strings.ToLower(job.Title)
		}
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		jobs = append(jobs, job)
		if len(jobs) >= maxJobsPerCompany {
			return jobs
		}
	}

	base, err := url.Parse(careerURL)
	if err != nil {
		return jobs
	}
	companyDomain := company.DomainKey(company.NormalizeURL(website))

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" {
			return true
		}
		absolute := company.AbsoluteURL(base, href)
		title := company.CollapseWhitespace(sel.Text())
		if absolute == "" || title == "" {
			return true
		}
		if !looksLikeJobLink(title, absolute) {
			return true
		}
		if !jobDomainAllowed(companyDomain, absolute) {
			return true
		}
		key := strings.ToLower(absolute)
		if _, dup := seen[key]; dup {
			return true
		}
		seen[key] = struct{}{}
		jobs = append(jobs, company.JobPosting{Title: title, URL: absolute})
		return len(jobs) < maxJobsPerCompany
	})

	return jobs
}

// jobsFromJSONLD walks every ld+json block for JobPosting objects.
// Malformed blocks are simply not matches.
func jobsFromJSONLD(doc *goquery.Document) []company.JobPosting {
	var jobs []company.JobPosting
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return
		}
		var payload any
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return
		}
		jobs = append(jobs, walkJobPostings(payload)...)
	})
	return jobs
}

// walkJobPostings recursively visits a decoded JSON tree, collecting
// every object tagged as a JobPosting with a usable title and URL.
// Total by construction: unexpected shapes just yield nothing.
func walkJobPostings(node any) []company.JobPosting {
	var results []company.JobPosting
	switch value := node.(type) {
	case []any:
		for _, item := range value {
			results = append(results, walkJobPostings(item)...)
		}
	case map[string]any:
		if isJobPostingType(value["@type"]) {
			title := strings.TrimSpace(stringValue(value["title"]))
			rawURL := strings.TrimSpace(stringValue(value["url"]))
			if title != "" && rawURL != "" {
				if normalized := company.NormalizeURL(rawURL); normalized != "" {
					results = append(results, company.JobPosting{Title: title, URL: normalized})
				}
			}
		}
		for _, nested := range value {
			results = append(results, walkJobPostings(nested)...)
		}
	}
	return results
}

func isJobPostingType(value any) bool {
	switch typed := value.(type) {
	case string:
		return typed == "JobPosting"
	case []any:
		for _, item := range typed {
			if s, ok := item.(string); ok && s == "JobPosting" {
				return true
			}
		}
	}
	return false
}

func stringValue(value any) string {
	s, _ := value.(string)
	return s
}

// looksLikeJobLink filters anchors by token heuristics over the
// combined title and URL.
func looksLikeJobLink(title, linkURL string) bool {
	blob := strings.ToLower(title + " " + linkURL)
	for _, token := range jobLinkBlockedTokens {
		if strings.Contains(blob, token) {
			return false
		}
	}
	for _, token := range jobLinkTokens {
		if strings.Contains(blob, token) {
			return true
		}
	}
	return false
}

// jobDomainAllowed accepts links on the company's own domain (or a
// subdomain of it) and links hosted by a known ATS.
func jobDomainAllowed(companyDomain, linkURL string) bool {
	parsed, err := url.Parse(linkURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Host)
	if host == "" {
		return false
	}
	if companyDomain != "" && (host == companyDomain || strings.HasSuffix(host, "."+companyDomain)) {
		return true
	}
	for _, ats := range atsDomains {
		if strings.Contains(host, ats) {
			return true
		}
	}
	return false
}
