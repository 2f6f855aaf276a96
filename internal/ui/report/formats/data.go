package formats

import (
	"classlint/internal/core/ports"
	"classlint/internal/engine/checks"
	"sort"
	"strings"
	"time"
)

// ReportData is everything a renderer may show about one analysis.
type ReportData struct {
	Project      string
	Version      string
	GeneratedAt  time.Time
	Classes      int
	Checks       []string
	Findings     []checks.Finding
	LoadFailures []ports.LoadFailure
	Duration     time.Duration
	// Rules describes every check that ran; renderers that list rules fall
	// back to the check names when it is empty.
	Rules []checks.Entry
}

// FromRunResult copies the parts of a run result that reports show.
func FromRunResult(project, version string, res ports.RunResult, rules []checks.Entry) ReportData {
	return ReportData{
		Project:      project,
		Version:      version,
		GeneratedAt:  time.Now().UTC(),
		Classes:      res.Classes,
		Checks:       append([]string(nil), res.Checks...),
		Findings:     res.Findings,
		LoadFailures: res.LoadFailures,
		Duration:     res.Duration,
		Rules:        rules,
	}
}

type checkCount struct {
	name     string
	category checks.Category
	count    int
}

// countByCheck returns per-check totals, largest first, ties by name.
func countByCheck(findings []checks.Finding) []checkCount {
	index := make(map[string]int)
	var out []checkCount
	for _, f := range findings {
		i, ok := index[f.CheckName]
		if !ok {
			i = len(out)
			index[f.CheckName] = i
			out = append(out, checkCount{name: f.CheckName, category: f.Category})
		}
		out[i].count++
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}

// ruleEntries returns data.Rules, or one entry per ran check, or one per
// check seen in the findings, in that order of preference.
func ruleEntries(data ReportData) []checks.Entry {
	if len(data.Rules) > 0 {
		return data.Rules
	}
	seen := make(map[string]bool)
	var out []checks.Entry
	for _, f := range data.Findings {
		if !seen[f.CheckName] {
			seen[f.CheckName] = true
			out = append(out, checks.Entry{Name: f.CheckName, Category: f.Category})
		}
	}
	for _, name := range data.Checks {
		if !seen[name] {
			seen[name] = true
			out = append(out, checks.Entry{Name: name})
		}
	}
	return out
}

func nonEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
