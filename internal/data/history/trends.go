package history

import (
	"fmt"
	"sort"
	"time"
)

type TrendPoint struct {
	RunID        string    `json:"run_id"`
	Timestamp    time.Time `json:"timestamp"`
	ClassCount   int       `json:"class_count"`
	FindingCount int       `json:"finding_count"`
	// DeltaFindings is the change against the previous run; zero for the
	// first point.
	DeltaFindings int `json:"delta_findings"`
	// FindingsPerClass is zero when the run analyzed no classes.
	FindingsPerClass float64 `json:"findings_per_class"`
}

type TrendReport struct {
	ProjectKey string       `json:"project_key"`
	RunCount   int          `json:"run_count"`
	Points     []TrendPoint `json:"points"`
}

// BuildTrendReport orders runs oldest first and computes run-to-run deltas.
func BuildTrendReport(projectKey string, runs []Run) (TrendReport, error) {
	if len(runs) == 0 {
		return TrendReport{}, fmt.Errorf("no runs recorded for project %q", projectKey)
	}
	ordered := append([]Run(nil), runs...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	report := TrendReport{ProjectKey: projectKey, RunCount: len(ordered)}
	for i, run := range ordered {
		p := TrendPoint{
			RunID:        run.ID,
			Timestamp:    run.Timestamp,
			ClassCount:   run.ClassCount,
			FindingCount: run.FindingCount,
		}
		if run.ClassCount > 0 {
			p.FindingsPerClass = float64(run.FindingCount) / float64(run.ClassCount)
		}
		if i > 0 {
			p.DeltaFindings = run.FindingCount - ordered[i-1].FindingCount
		}
		report.Points = append(report.Points, p)
	}
	return report, nil
}
