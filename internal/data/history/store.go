package history

import (
	"classlint/internal/engine/checks"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	driverName         = "sqlite"
	maxAttempts        = 5
	defaultBusyTimeout = 2 * time.Second

	// Fixed-width so ts_utc sorts chronologically as text.
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// ErrRunNotFound is returned when a run id has no saved row.
var ErrRunNotFound = errors.New("run not found")

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	return OpenWithBusyTimeout(path, defaultBusyTimeout)
}

func OpenWithBusyTimeout(path string, busyTimeout time.Duration) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}
	if busyTimeout <= 0 {
		busyTimeout = defaultBusyTimeout
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts when watch mode saves runs
	// while the history command reads.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)",
		cleanPath, busyTimeout.Milliseconds())
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRun stores the run and its findings in one transaction. A missing id
// is filled with a new UUID and returned in the saved copy.
func (s *Store) SaveRun(run Run) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run.ProjectKey = strings.TrimSpace(run.ProjectKey)
	if run.ProjectKey == "" {
		run.ProjectKey = "default"
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}
	run.Timestamp = run.Timestamp.UTC()
	run.FindingCount = len(run.Findings)

	err := s.withRetry("save run", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
INSERT INTO runs (run_id, project_key, ts_utc, class_count, finding_count, load_failures, duration_ms, checks)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.ProjectKey,
			run.Timestamp.Format(timestampLayout),
			run.ClassCount,
			run.FindingCount,
			run.LoadFailures,
			run.Duration.Milliseconds(),
			run.Checks,
		); err != nil {
			_ = tx.Rollback()
			return err
		}

		stmt, err := tx.Prepare(`
INSERT INTO findings (run_id, seq, check_name, category, location, message)
VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		defer stmt.Close()
		for i, f := range run.Findings {
			if _, err := stmt.Exec(run.ID, i, f.CheckName, string(f.Category), f.Location, f.Message); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// ListRuns returns the newest runs of a project first. A limit <= 0 returns
// every run.
func (s *Store) ListRuns(projectKey string, limit int) ([]Run, error) {
	query := `
SELECT run_id, project_key, ts_utc, class_count, finding_count, load_failures, duration_ms, checks
FROM runs
WHERE project_key = ?
ORDER BY ts_utc DESC, run_id ASC
`
	args := []any{projectKey}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var rows *sql.Rows
	err := s.withRetry("list runs", func() error {
		var qErr error
		rows, qErr = s.db.Query(query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

// LoadRun returns one run with its findings in saved order.
func (s *Store) LoadRun(runID string) (Run, error) {
	var run Run
	err := s.withRetry("load run", func() error {
		row := s.db.QueryRow(`
SELECT run_id, project_key, ts_utc, class_count, finding_count, load_failures, duration_ms, checks
FROM runs WHERE run_id = ?`, runID)
		var scanErr error
		run, scanErr = scanRun(row)
		return scanErr
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return Run{}, err
	}

	findings, err := s.Findings(runID)
	if err != nil {
		return Run{}, err
	}
	run.Findings = findings
	return run, nil
}

func (s *Store) Findings(runID string) ([]checks.Finding, error) {
	var rows *sql.Rows
	err := s.withRetry("load findings", func() error {
		var qErr error
		rows, qErr = s.db.Query(`
SELECT check_name, category, location, message
FROM findings WHERE run_id = ? ORDER BY seq ASC`, runID)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	findings := make([]checks.Finding, 0)
	for rows.Next() {
		var (
			f        checks.Finding
			category string
		)
		if err := rows.Scan(&f.CheckName, &category, &f.Location, &f.Message); err != nil {
			return nil, fmt.Errorf("scan finding row: %w", err)
		}
		f.Category = checks.Category(category)
		findings = append(findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate finding rows: %w", err)
	}
	return findings, nil
}

// CountsByCheck aggregates the findings of one run, largest count first.
func (s *Store) CountsByCheck(runID string) ([]CheckCount, error) {
	var rows *sql.Rows
	err := s.withRetry("count findings", func() error {
		var qErr error
		rows, qErr = s.db.Query(`
SELECT check_name, category, COUNT(*) AS n
FROM findings WHERE run_id = ?
GROUP BY check_name, category
ORDER BY n DESC, check_name ASC`, runID)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]CheckCount, 0)
	for rows.Next() {
		var (
			c        CheckCount
			category string
		)
		if err := rows.Scan(&c.CheckName, &category, &c.Count); err != nil {
			return nil, fmt.Errorf("scan count row: %w", err)
		}
		c.Category = checks.Category(category)
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate count rows: %w", err)
	}
	return counts, nil
}

// Prune keeps the newest keep runs of a project and deletes the rest along
// with their findings.
func (s *Store) Prune(projectKey string, keep int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	err := s.withRetry("prune runs", func() error {
		res, err := s.db.Exec(`
DELETE FROM runs
WHERE project_key = ?
  AND run_id NOT IN (
    SELECT run_id FROM runs WHERE project_key = ? ORDER BY ts_utc DESC, run_id ASC LIMIT ?
  )`, projectKey, projectKey, keep)
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	return deleted, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run        Run
		tsRaw      string
		durationMS int64
	)
	if err := row.Scan(
		&run.ID,
		&run.ProjectKey,
		&tsRaw,
		&run.ClassCount,
		&run.FindingCount,
		&run.LoadFailures,
		&durationMS,
		&run.Checks,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run row: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, tsRaw)
	if err != nil {
		return Run{}, fmt.Errorf("parse run timestamp %q: %w", tsRaw, err)
	}
	run.Timestamp = ts.UTC()
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return run, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func IsCorruptError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "malformed") || strings.Contains(msg, "not a database") || errors.Is(err, os.ErrInvalid)
}
