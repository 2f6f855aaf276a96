package ports

import (
	"classlint/internal/data/history"
	"classlint/internal/engine/checks"
	"classlint/internal/engine/model"
	"classlint/internal/engine/runner"
	"context"
	"time"
)

// ClassLoader abstracts turning discovered inputs into parsed classes.
type ClassLoader interface {
	Load(ctx context.Context, inputs []Input) (LoadResult, error)
}

type InputKind string

const (
	InputClass InputKind = "class"
	InputJar   InputKind = "jar"
)

// Input is one analyzable file found by discovery.
type Input struct {
	Path string
	Kind InputKind
}

// LoadFailure records an input the loader rejected. Failures never stop the
// remaining inputs from being analyzed.
type LoadFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// HistoryStore abstracts run persistence for the history workflows.
type HistoryStore interface {
	Record(projectKey string, result runner.Result, loadFailures int) (history.Run, error)
	ListRuns(projectKey string, limit int) ([]history.Run, error)
	LoadRun(runID string) (history.Run, error)
	CountsByCheck(runID string) ([]history.CheckCount, error)
	Prune(projectKey string, keep int) (int64, error)
}

// RunRequest describes one analysis. Empty fields fall back to the
// configuration.
type RunRequest struct {
	Paths     []string
	Classpath []string
	Include   []string
	Exclude   []string
	Workers   int
	Save      bool
}

// RunResult is the outcome of one analysis as seen by driving adapters.
type RunResult struct {
	RunID        string
	Findings     []checks.Finding
	Classes      int
	Checks       []string
	LoadFailures []LoadFailure
	Duration     time.Duration
	Resolver     ResolverStats
}

// ResolverStats summarizes class lookups made during a run.
type ResolverStats struct {
	Hits   int64
	Loads  int64
	Absent int64
}

// LoadResult carries the classes parsed from a set of inputs, in discovery
// order, plus the inputs that could not be read.
type LoadResult struct {
	Classes  []*model.Class
	Failures []LoadFailure
}

// HistoryRequest selects saved runs.
type HistoryRequest struct {
	Limit int
	// RunID, when set, selects a single run and its per-check counts.
	RunID string
}

type HistoryResult struct {
	Runs   []history.Run
	Counts []history.CheckCount
	Trend  *history.TrendReport
}

// WatchUpdate is emitted after every re-analysis in watch mode.
type WatchUpdate struct {
	Result  RunResult
	Changed []string
	Err     error
}

// WatchService exposes watch lifecycle and updates for driving adapters.
type WatchService interface {
	Start(ctx context.Context, req RunRequest) error
	Subscribe(handler func(WatchUpdate))
	Stop() error
}

// AnalysisService is the driving port over the analysis use cases.
type AnalysisService interface {
	Run(ctx context.Context, req RunRequest) (RunResult, error)
	Checks() []checks.Entry
	History(ctx context.Context, req HistoryRequest) (HistoryResult, error)
	WatchService() WatchService
}
