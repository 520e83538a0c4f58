package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// DBFile is the history database kept inside each working directory.
const DBFile = "autoscope.db"

// Scan statuses
const (
	ScanRunning     = "running"
	ScanCompleted   = "completed"
	ScanInterrupted = "interrupted"
)

// History records every scan and module run against one working directory.
// --resume and the history command read it back.
type History struct {
	db *sql.DB
}

// ScanRecord is one row of the scans table.
type ScanRecord struct {
	ID        string
	Target    string
	Version   string
	Profile   string
	Status    string
	StartTime time.Time
	EndTime   time.Time
	Duration  string
	Report    string
}

// ModuleRun is one row of the module_runs table.
type ModuleRun struct {
	ScanID     string
	Module     string
	Status     string
	Artifact   string
	ErrorKind  string
	Error      string
	Warnings   []string
	DurationMs int64
	RecordedAt time.Time
}

// OpenHistory opens (creating if needed) the history database in workDir.
// workDir may be ":memory:" in tests.
func OpenHistory(workDir string) (*History, error) {
	dbPath := workDir
	if workDir != ":memory:" {
		if err := os.MkdirAll(workDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
		dbPath = filepath.Join(workDir, DBFile)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and writes serialized
	db.SetMaxOpenConns(1)

	if workDir != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	h := &History{db: db}
	if err := h.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return h, nil
}

func (h *History) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scans (
		id TEXT PRIMARY KEY,
		target TEXT NOT NULL,
		version TEXT,
		profile TEXT,
		status TEXT DEFAULT 'running',
		start_time DATETIME NOT NULL,
		end_time DATETIME,
		duration TEXT,
		report TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_scans_start_time ON scans(start_time);

	CREATE TABLE IF NOT EXISTS module_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id TEXT NOT NULL,
		module TEXT NOT NULL,
		status TEXT NOT NULL,
		artifact TEXT,
		error_kind TEXT,
		error_message TEXT,
		warnings TEXT,
		duration_ms INTEGER DEFAULT 0,
		recorded_at DATETIME NOT NULL,
		FOREIGN KEY (scan_id) REFERENCES scans(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_module_runs_scan ON module_runs(scan_id);
	CREATE INDEX IF NOT EXISTS idx_module_runs_module ON module_runs(module, status);
	`
	_, err := h.db.Exec(schema)
	return err
}

func (h *History) Close() error {
	return h.db.Close()
}

// CreateScan inserts a new running scan.
func (h *History) CreateScan(ctx context.Context, scanID, target, version, profile string) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO scans (id, target, version, profile, status, start_time)
		VALUES (?, ?, ?, ?, ?, ?)
	`, scanID, target, version, profile, ScanRunning, time.Now().UTC())
	return err
}

// FinishScan marks a scan as ended with the given status and report path.
func (h *History) FinishScan(ctx context.Context, scanID, status, report string, duration time.Duration) error {
	_, err := h.db.ExecContext(ctx, `
		UPDATE scans SET status = ?, end_time = ?, duration = ?, report = ?
		WHERE id = ?
	`, status, time.Now().UTC(), duration.Round(time.Millisecond).String(), report, scanID)
	return err
}

// RecordModule stores the outcome of one module.
func (h *History) RecordModule(ctx context.Context, run ModuleRun) error {
	recorded := run.RecordedAt
	if recorded.IsZero() {
		recorded = time.Now().UTC()
	}
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO module_runs (scan_id, module, status, artifact, error_kind, error_message, warnings, duration_ms, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ScanID, run.Module, run.Status, run.Artifact, run.ErrorKind, run.Error,
		strings.Join(run.Warnings, "\n"), run.DurationMs, recorded)
	return err
}

// LastSuccessful returns the artifact path of the most recent run of module
// that left one behind, or "" when there is none.
func (h *History) LastSuccessful(ctx context.Context, module string, statuses ...string) (string, error) {
	if len(statuses) == 0 {
		return "", errors.New("no statuses given")
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
	args := []interface{}{module}
	for _, s := range statuses {
		args = append(args, s)
	}

	row := h.db.QueryRowContext(ctx, `
		SELECT artifact FROM module_runs
		WHERE module = ? AND status IN (`+placeholders+`) AND artifact != ''
		ORDER BY id DESC
		LIMIT 1
	`, args...)

	var artifact string
	if err := row.Scan(&artifact); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return artifact, nil
}

// ListScans returns the most recent scans first.
func (h *History) ListScans(ctx context.Context, limit int) ([]ScanRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, target, version, profile, status, start_time, end_time, duration, report
		FROM scans
		ORDER BY start_time DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ScanRecord
	for rows.Next() {
		var r ScanRecord
		var version, profile, duration, report sql.NullString
		var endTime sql.NullTime
		if err := rows.Scan(&r.ID, &r.Target, &version, &profile, &r.Status, &r.StartTime, &endTime, &duration, &report); err != nil {
			return nil, err
		}
		r.Version = version.String
		r.Profile = profile.String
		r.Duration = duration.String
		r.Report = report.String
		if endTime.Valid {
			r.EndTime = endTime.Time
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ModuleRuns returns the module outcomes of one scan in execution order.
func (h *History) ModuleRuns(ctx context.Context, scanID string) ([]ModuleRun, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT scan_id, module, status, artifact, error_kind, error_message, warnings, duration_ms, recorded_at
		FROM module_runs
		WHERE scan_id = ?
		ORDER BY id
	`, scanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ModuleRun
	for rows.Next() {
		var r ModuleRun
		var artifact, kind, msg, warnings sql.NullString
		if err := rows.Scan(&r.ScanID, &r.Module, &r.Status, &artifact, &kind, &msg, &warnings, &r.DurationMs, &r.RecordedAt); err != nil {
			return nil, err
		}
		r.Artifact = artifact.String
		r.ErrorKind = kind.String
		r.Error = msg.String
		if warnings.String != "" {
			r.Warnings = strings.Split(warnings.String, "\n")
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// MarkScanInterrupted flags a scan that was cut short by a signal.
func (h *History) MarkScanInterrupted(ctx context.Context, scanID string) error {
	_, err := h.db.ExecContext(ctx, `UPDATE scans SET status = ? WHERE id = ?`, ScanInterrupted, scanID)
	return err
}
