// Package api serves the read-only query surface over the pipeline's
// persisted output. Handlers read from disk on every request, so a
// pipeline run that replaces the documents is picked up immediately.
package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/artenis/openjobboard/internal/company"
	"github.com/artenis/openjobboard/internal/metrics"
)

// CompaniesLoader reads the persisted pipeline documents.
type CompaniesLoader interface {
	LoadCompanies() ([]company.Company, error)
	LoadHealth() (map[string]any, error)
}

// Server holds the handler dependencies.
type Server struct {
	loader CompaniesLoader
	logger *zap.Logger
}

// NewServer builds the query server.
func NewServer(loader CompaniesLoader, logger *zap.Logger) *Server {
	return &Server{loader: loader, logger: logger}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/companies", s.handleCompanies)
	r.Get("/jobs", s.handleJobs)
	r.Get("/sources/health", s.handleSourcesHealth)
	r.Get("/debug/stats", s.handleDebugStats)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}

// JobResult is one flattened job posting joined with its company.
type JobResult struct {
	CompanyName     string `json:"company_name"`
	CompanyWebsite  string `json:"company_website"`
	CountryOfOrigin string `json:"country_of_origin"`
	Source          string `json:"source"`
	CareerPageURL   string `json:"career_page_url"`
	Title           string `json:"title"`
	URL             string `json:"url"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"service": "openjobboard",
		"endpoints": []string{
			"/companies", "/jobs", "/sources/health", "/debug/stats", "/metrics",
		},
	})
}

// handleCompanies lists companies with optional filters and sorting.
//
// Filters are case-insensitive substrings: country, source, company
// (over the name), jobs_query (over any job title or URL), plus
// has_jobs=true. Sorting: sort_by in {company, country, source,
// jobs_count}, sort_order in {asc, desc}.
func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.loader.LoadCompanies()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "loading companies failed")
		s.logger.Error("load companies", zap.Error(err))
		return
	}

	q := r.URL.Query()
	filtered := make([]company.Company, 0, len(companies))
	for _, c := range companies {
		if !matchSubstring(q.Get("country"), c.CountryOfOrigin) {
			continue
		}
		if !matchSubstring(q.Get("source"), c.Source) {
			continue
		}
		if !matchSubstring(q.Get("company"), c.Name) {
			continue
		}
		if !matchJobsQuery(q.Get("jobs_query"), c.Jobs) {
			continue
		}
		if strings.EqualFold(q.Get("has_jobs"), "true") && len(c.Jobs) == 0 {
			continue
		}
		filtered = append(filtered, c)
	}

	if !s.sortCompanies(w, filtered, q.Get("sort_by"), q.Get("sort_order")) {
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"total":     len(filtered),
		"companies": filtered,
	})
}

// handleJobs flattens every job posting into one row per job. The
// company-level filters apply the same way as on /companies; jobs_query
// and title filter individual rows.
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	companies, err := s.loader.LoadCompanies()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "loading companies failed")
		s.logger.Error("load companies", zap.Error(err))
		return
	}

	q := r.URL.Query()
	var jobs []JobResult
	for _, c := range companies {
		if !matchSubstring(q.Get("country"), c.CountryOfOrigin) {
			continue
		}
		if !matchSubstring(q.Get("source"), c.Source) {
			continue
		}
		if !matchSubstring(q.Get("company"), c.Name) {
			continue
		}
		for _, job := range c.Jobs {
			if !matchJob(q.Get("jobs_query"), job) {
				continue
			}
			if !matchSubstring(q.Get("title"), job.Title) {
				continue
			}
			jobs = append(jobs, JobResult{
				CompanyName:     c.Name,
				CompanyWebsite:  c.Website,
				CountryOfOrigin: c.CountryOfOrigin,
				Source:          c.Source,
				CareerPageURL:   c.CareerPageURL,
				Title:           job.Title,
				URL:             job.URL,
			})
		}
	}
	if jobs == nil {
		jobs = []JobResult{}
	}

	if !s.sortJobs(w, jobs, q.Get("sort_by"), q.Get("sort_order")) {
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"total": len(jobs),
		"jobs":  jobs,
	})
}

func (s *Server) handleSourcesHealth(w http.ResponseWriter, r *http.Request) {
	report, err := s.loader.LoadHealth()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "loading health report failed")
		s.logger.Error("load health report", zap.Error(err))
		return
	}
	if report == nil {
		s.writeError(w, http.StatusNotFound, "no pipeline run recorded yet")
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// handleDebugStats summarizes the dataset: totals plus per-country and
// per-source breakdowns.
func (s *Server) handleDebugStats(w http.ResponseWriter, r *http.Request) {
	companies, err := s.loader.LoadCompanies()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "loading companies failed")
		s.logger.Error("load companies", zap.Error(err))
		return
	}

	totalJobs := 0
	withJobs := 0
	byCountry := make(map[string]int)
	bySource := make(map[string]int)
	for _, c := range companies {
		totalJobs += len(c.Jobs)
		if len(c.Jobs) > 0 {
			withJobs++
		}
		byCountry[c.CountryOfOrigin]++
		bySource[c.Source]++
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"total_companies":     len(companies),
		"companies_with_jobs": withJobs,
		"total_jobs":          totalJobs,
		"by_country":          byCountry,
		"by_source":           bySource,
	})
}

// sortCompanies orders in place; an unknown sort key writes a 400 and
// reports false.
func (s *Server) sortCompanies(w http.ResponseWriter, companies []company.Company, sortBy, sortOrder string) bool {
	desc, ok := parseSortOrder(sortOrder)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "sort_order must be asc or desc")
		return false
	}

	var less func(i, j int) bool
	switch sortBy {
	case "", "company":
		less = func(i, j int) bool {
			return strings.ToLower(companies[i].Name) < strings.ToLower(companies[j].Name)
		}
	case "country":
		less = func(i, j int) bool {
			return strings.ToLower(companies[i].CountryOfOrigin) < strings.ToLower(companies[j].CountryOfOrigin)
		}
	case "source":
		less = func(i, j int) bool {
			return strings.ToLower(companies[i].Source) < strings.ToLower(companies[j].Source)
		}
	case "jobs_count":
		less = func(i, j int) bool {
			return len(companies[i].Jobs) < len(companies[j].Jobs)
		}
	default:
		s.writeError(w, http.StatusBadRequest, "sort_by must be one of company, country, source, jobs_count")
		return false
	}

	sort.SliceStable(companies, less)
	if desc {
		reverse(companies)
	}
	return true
}

func (s *Server) sortJobs(w http.ResponseWriter, jobs []JobResult, sortBy, sortOrder string) bool {
	desc, ok := parseSortOrder(sortOrder)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "sort_order must be asc or desc")
		return false
	}

	var less func(i, j int) bool
	switch sortBy {
	case "", "company":
		less = func(i, j int) bool {
			return strings.ToLower(jobs[i].CompanyName) < strings.ToLower(jobs[j].CompanyName)
		}
	case "country":
		less = func(i, j int) bool {
			return strings.ToLower(jobs[i].CountryOfOrigin) < strings.ToLower(jobs[j].CountryOfOrigin)
		}
	case "source":
		less = func(i, j int) bool {
			return strings.ToLower(jobs[i].Source) < strings.ToLower(jobs[j].Source)
		}
	case "title":
		less = func(i, j int) bool {
			return strings.ToLower(jobs[i].Title) < strings.ToLower(jobs[j].Title)
		}
	default:
		s.writeError(w, http.StatusBadRequest, "sort_by must be one of company, country, source, title")
		return false
	}

	sort.SliceStable(jobs, less)
	if desc {
		reverse(jobs)
	}
	return true
}

func parseSortOrder(order string) (desc, ok bool) {
	switch strings.ToLower(order) {
	case "", "asc":
		return false, true
	case "desc":
		return true, true
	default:
		return false, false
	}
}

func reverse[T any](items []T) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}

func matchSubstring(query, value string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(strings.TrimSpace(query)))
}

func matchJob(query string, job company.JobPosting) bool {
	return query == "" || matchSubstring(query, job.Title) || matchSubstring(query, job.URL)
}

func matchJobsQuery(query string, jobs []company.JobPosting) bool {
	if query == "" {
		return true
	}
	for _, job := range jobs {
		if matchJob(query, job) {
			return true
		}
	}
	return false
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
