package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	m "gooze.dev/pkg/testforge/internal/model"
)

// ReportStore persists synthesis run reports.
type ReportStore interface {
	SaveReport(dir m.Path, report m.SynthesisReport) (m.Path, error)
	LoadReport(path m.Path) (m.SynthesisReport, error)
	ListReports(dir m.Path) ([]m.Path, error)
}

type yamlReportStore struct{}

// NewReportStore creates a YAML-backed ReportStore.
func NewReportStore() ReportStore {
	return &yamlReportStore{}
}

// SaveReport writes the report as YAML named by session id and returns the
// written path.
func (s *yamlReportStore) SaveReport(dir m.Path, report m.SynthesisReport) (m.Path, error) {
	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		return "", fmt.Errorf("create reports directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	path := m.Path(filepath.Join(string(dir), "synthesis-"+report.SessionID+".yaml"))

	if err := os.WriteFile(string(path), data, 0o600); err != nil {
		return "", fmt.Errorf("write report %s: %w", path, err)
	}

	return path, nil
}

// LoadReport reads a previously saved report.
func (s *yamlReportStore) LoadReport(path m.Path) (m.SynthesisReport, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		return m.SynthesisReport{}, fmt.Errorf("read report %s: %w", path, err)
	}

	var report m.SynthesisReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return m.SynthesisReport{}, fmt.Errorf("parse report %s: %w", path, err)
	}

	return report, nil
}

// ListReports returns report files in dir ordered oldest to newest.
func (s *yamlReportStore) ListReports(dir m.Path) ([]m.Path, error) {
	entries, err := os.ReadDir(string(dir))
	if err != nil {
		return nil, fmt.Errorf("read reports directory %s: %w", dir, err)
	}

	type candidate struct {
		path    m.Path
		modTime time.Time
	}

	candidates := make([]candidate, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasPrefix(name, "synthesis-") || !strings.HasSuffix(name, ".yaml") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		candidates = append(candidates, candidate{
			path:    m.Path(filepath.Join(string(dir), name)),
			modTime: info.ModTime(),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].modTime.Equal(candidates[j].modTime) {
			return candidates[i].path < candidates[j].path
		}

		return candidates[i].modTime.Before(candidates[j].modTime)
	})

	paths := make([]m.Path, 0, len(candidates))
	for _, c := range candidates {
		paths = append(paths, c.path)
	}

	return paths, nil
}

// LoadImportRules reads custom import rules from a YAML file. The result is
// meant to be appended to the built-in rules before engine construction.
func LoadImportRules(path m.Path) ([]m.ImportRule, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		return nil, fmt.Errorf("read import rules %s: %w", path, err)
	}

	var rules []m.ImportRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse import rules %s: %w", path, err)
	}

	for _, rule := range rules {
		if !m.KnownCategory(rule.Category) {
			return nil, fmt.Errorf("import rule with unknown category %q in %s", rule.Category, path)
		}
	}

	return rules, nil
}
