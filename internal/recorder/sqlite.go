package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"TimeSeriesML/internal/logger"
	"TimeSeriesML/internal/scaler"
)

// SQLiteRecorder persists runs and scalers to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *logger.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *logger.Logger) (*SQLiteRecorder, error) {
	if log == nil {
		log = logger.Nop()
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the status command read while a refresh writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("sqlite recorder opened", logger.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			symbol      TEXT NOT NULL,
			started_at  INTEGER NOT NULL,
			duration_ms INTEGER,
			status      TEXT NOT NULL,
			error       TEXT,
			row_count   INTEGER,
			n_steps     INTEGER,
			lookup_step INTEGER,
			train_size  INTEGER,
			test_size   INTEGER,
			features    TEXT,
			export_path TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol_ts ON runs(symbol, started_at)`,

		`CREATE TABLE IF NOT EXISTS column_scalers (
			run_id      TEXT NOT NULL,
			column_name TEXT NOT NULL,
			min         REAL NOT NULL,
			max         REAL NOT NULL,
			PRIMARY KEY (run_id, column_name)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(run *Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if run.ID == "" {
		run.ID = NewRunID()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO runs
		(id, symbol, started_at, duration_ms, status, error, row_count,
		 n_steps, lookup_step, train_size, test_size, features, export_path)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.Symbol, run.StartedAt.Unix(), run.Duration.Milliseconds(),
		run.Status, run.Error, run.Rows,
		run.NSteps, run.LookupStep, run.TrainSize, run.TestSize,
		strings.Join(run.Features, ","), run.ExportPath,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

func (r *SQLiteRecorder) SaveScalers(runID string, set scaler.Set) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, col := range set.Columns() {
		m := set[col]
		if _, err := tx.Exec(`INSERT OR REPLACE INTO column_scalers
			(run_id, column_name, min, max) VALUES (?,?,?,?)`,
			runID, col, m.Min, m.Max,
		); err != nil {
			return fmt.Errorf("insert scaler %s: %w", col, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) LoadScalers(runID string) (scaler.Set, error) {
	rows, err := r.db.Query(`SELECT column_name, min, max FROM column_scalers WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("query scalers: %w", err)
	}
	defer rows.Close()

	set := scaler.Set{}
	for rows.Next() {
		var col string
		var m scaler.MinMax
		if err := rows.Scan(&col, &m.Min, &m.Max); err != nil {
			return nil, fmt.Errorf("scan scaler: %w", err)
		}
		set[col] = m
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("scalers for run %s: %w", runID, ErrNotFound)
	}
	return set, nil
}

func (r *SQLiteRecorder) LatestRun(symbol string) (*Run, error) {
	row := r.db.QueryRow(`SELECT id, symbol, started_at, duration_ms, status, error, row_count,
		n_steps, lookup_step, train_size, test_size, features, export_path
		FROM runs WHERE symbol = ? ORDER BY started_at DESC, rowid DESC LIMIT 1`, symbol)

	var (
		run       Run
		startedAt int64
		durMs     int64
		features  string
	)
	err := row.Scan(&run.ID, &run.Symbol, &startedAt, &durMs, &run.Status, &run.Error, &run.Rows,
		&run.NSteps, &run.LookupStep, &run.TrainSize, &run.TestSize, &features, &run.ExportPath)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("latest run for %s: %w", symbol, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("latest run for %s: %w", symbol, err)
	}
	run.StartedAt = time.Unix(startedAt, 0)
	run.Duration = time.Duration(durMs) * time.Millisecond
	if features != "" {
		run.Features = strings.Split(features, ",")
	}
	return &run, nil
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
