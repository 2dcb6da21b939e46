// Package company defines the record types and identity helpers shared
// across the scrape pipeline.
package company

// JobPosting is a single job advertisement discovered on a careers
// page. Title and URL are non-empty after normalization.
type JobPosting struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Candidate is an unvalidated, possibly partial record produced by a
// single source. It stays mutable until the merge step consumes it.
type Candidate struct {
	Name            string       `json:"name"`
	Website         string       `json:"website"`
	CareerPageURL   string       `json:"career_page_url"`
	CountryOfOrigin string       `json:"country_of_origin"`
	Source          string       `json:"source"`
	SourceURL       string       `json:"source_url,omitempty"`
	Jobs            []JobPosting `json:"jobs"`
}

// Company is the canonical, deduplicated record persisted to
// companies.json. Website and CareerPageURL are always non-empty, and
// no two entries share a domain key or a name key.
type Company struct {
	Name            string       `json:"name"`
	Website         string       `json:"website"`
	CareerPageURL   string       `json:"career_page_url"`
	CountryOfOrigin string       `json:"country_of_origin"`
	Source          string       `json:"source"`
	Jobs            []JobPosting `json:"jobs"`
}
