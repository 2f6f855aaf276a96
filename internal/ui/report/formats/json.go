package formats

import (
	"classlint/internal/core/ports"
	"classlint/internal/engine/checks"
	"encoding/json"
	"io"
	"time"
)

type jsonReport struct {
	Project      string              `json:"project,omitempty"`
	Version      string              `json:"version,omitempty"`
	GeneratedAt  time.Time           `json:"generatedAt"`
	Classes      int                 `json:"classes"`
	Checks       []string            `json:"checks"`
	DurationMS   int64               `json:"durationMs"`
	Counts       map[string]int      `json:"counts"`
	Findings     []checks.Finding    `json:"findings"`
	LoadFailures []ports.LoadFailure `json:"loadFailures,omitempty"`
}

type JSONGenerator struct{}

func NewJSONGenerator() *JSONGenerator {
	return &JSONGenerator{}
}

func (j *JSONGenerator) Generate(w io.Writer, data ReportData) error {
	report := jsonReport{
		Project:      data.Project,
		Version:      data.Version,
		GeneratedAt:  data.GeneratedAt.UTC(),
		Classes:      data.Classes,
		Checks:       data.Checks,
		DurationMS:   data.Duration.Milliseconds(),
		Counts:       make(map[string]int),
		Findings:     data.Findings,
		LoadFailures: data.LoadFailures,
	}
	if report.Checks == nil {
		report.Checks = []string{}
	}
	if report.Findings == nil {
		report.Findings = []checks.Finding{}
	}
	for _, c := range countByCheck(data.Findings) {
		report.Counts[c.name] = c.count
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
