package history

import (
	"classlint/internal/engine/checks"
	"time"
)

// Run is one saved analysis. Findings are stored alongside but loaded
// separately through Store.Findings.
type Run struct {
	ID           string        `json:"run_id"`
	ProjectKey   string        `json:"project_key"`
	Timestamp    time.Time     `json:"timestamp"`
	ClassCount   int           `json:"class_count"`
	FindingCount int           `json:"finding_count"`
	LoadFailures int           `json:"load_failures"`
	Duration     time.Duration `json:"duration"`
	// Checks is the comma-separated list of checks that ran.
	Checks string `json:"checks"`

	Findings []checks.Finding `json:"-"`
}

type CheckCount struct {
	CheckName string          `json:"check_name"`
	Category  checks.Category `json:"category"`
	Count     int             `json:"count"`
}
