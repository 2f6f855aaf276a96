package history

import (
	"classlint/internal/engine/runner"
	"strings"
	"time"
)

// Adapter bridges Store to the core HistoryStore port.
type Adapter struct {
	store *Store
}

func NewAdapter(store *Store) *Adapter {
	return &Adapter{store: store}
}

// Record saves an engine result as a new run.
func (a *Adapter) Record(projectKey string, result runner.Result, loadFailures int) (Run, error) {
	return a.store.SaveRun(Run{
		ProjectKey:   projectKey,
		Timestamp:    time.Now().UTC(),
		ClassCount:   result.Classes,
		LoadFailures: loadFailures,
		Duration:     result.Duration,
		Checks:       strings.Join(result.Checks, ","),
		Findings:     result.Findings,
	})
}

func (a *Adapter) ListRuns(projectKey string, limit int) ([]Run, error) {
	return a.store.ListRuns(projectKey, limit)
}

func (a *Adapter) LoadRun(runID string) (Run, error) {
	return a.store.LoadRun(runID)
}

func (a *Adapter) Prune(projectKey string, keep int) (int64, error) {
	return a.store.Prune(projectKey, keep)
}

func (a *Adapter) CountsByCheck(runID string) ([]CheckCount, error) {
	return a.store.CountsByCheck(runID)
}
