// Package store persists pipeline output as JSON documents on disk.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/artenis/openjobboard/internal/company"
)

const (
	companiesFile = "companies.json"
	healthFile    = "source_health.json"
)

// Store reads and writes the two pipeline documents under one data
// directory. Writes are full-file replaces: a temp file is written and
// renamed into place, so readers never observe a partial document.
type Store struct {
	dir    string
	logger *zap.Logger
}

// New builds a Store rooted at dir.
func New(dir string, logger *zap.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// CompaniesPath returns the canonical company list location.
func (s *Store) CompaniesPath() string { return filepath.Join(s.dir, companiesFile) }

// HealthPath returns the run health report location.
func (s *Store) HealthPath() string { return filepath.Join(s.dir, healthFile) }

// SaveCompanies persists the canonical list.
func (s *Store) SaveCompanies(companies []company.Company) error {
	if companies == nil {
		companies = []company.Company{}
	}
	return s.writeJSON(s.CompaniesPath(), companies)
}

// SaveHealth persists the run health report, replacing the previous
// run's report.
func (s *Store) SaveHealth(report any) error {
	return s.writeJSON(s.HealthPath(), report)
}

// LoadCompanies reads the canonical list; a missing file is an empty
// list. Entries without a careers page are filtered out defensively
// and the result is sorted by name, mirroring what the pipeline wrote.
func (s *Store) LoadCompanies() ([]company.Company, error) {
	data, err := os.ReadFile(s.CompaniesPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []company.Company{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", companiesFile, err)
	}

	var companies []company.Company
	if err := json.Unmarshal(data, &companies); err != nil {
		return nil, fmt.Errorf("decode %s: %w", companiesFile, err)
	}

	filtered := make([]company.Company, 0, len(companies))
	for _, c := range companies {
		if c.CareerPageURL == "" {
			continue
		}
		filtered = append(filtered, c)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return strings.ToLower(filtered[i].Name) < strings.ToLower(filtered[j].Name)
	})
	return filtered, nil
}

// LoadHealth reads the last health report; a missing file yields nil.
func (s *Store) LoadHealth() (map[string]any, error) {
	data, err := os.ReadFile(s.HealthPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", healthFile, err)
	}
	var report map[string]any
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode %s: %w", healthFile, err)
	}
	return report, nil
}

func (s *Store) writeJSON(path string, v any) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("create data dir %s: %w", s.dir, err)
	}

	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	payload = append(payload, '\n')

	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}

	s.logger.Debug("document written", zap.String("path", path), zap.Int("bytes", len(payload)))
	return nil
}
