package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the audit trail to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL UNIQUE,
			started_at  INTEGER NOT NULL,
			duration_ms INTEGER,
			requested   INTEGER,
			analyzed    INTEGER,
			skipped     INTEGER,
			trigger_by  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON analysis_runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS alert_deliveries (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			run_id     TEXT,
			kind       TEXT NOT NULL,
			actionable INTEGER,
			success    INTEGER NOT NULL,
			error      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_ts ON alert_deliveries(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(evt *RunEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT OR REPLACE INTO analysis_runs
		(run_id, started_at, duration_ms, requested, analyzed, skipped, trigger_by)
		VALUES (?,?,?,?,?,?,?)`,
		evt.RunID, evt.StartedAt.Unix(), evt.Duration.Milliseconds(),
		evt.Requested, evt.Analyzed, evt.Skipped, evt.Trigger,
	)
	return err
}

func (r *SQLiteRecorder) RecordDelivery(d *Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sentAt := d.SentAt
	if sentAt.IsZero() {
		sentAt = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO alert_deliveries
		(timestamp, run_id, kind, actionable, success, error)
		VALUES (?,?,?,?,?,?)`,
		sentAt.Unix(), d.RunID, d.Kind, d.Actionable, d.Success, d.Error,
	)
	return err
}

// RecentDeliveries returns the latest deliveries, newest first.
func (r *SQLiteRecorder) RecentDeliveries(limit int) ([]Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT timestamp, run_id, kind, actionable, success, error
		FROM alert_deliveries ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}
	defer rows.Close()

	var out []Delivery
	for rows.Next() {
		var (
			d  Delivery
			ts int64
		)
		if err := rows.Scan(&ts, &d.RunID, &d.Kind, &d.Actionable, &d.Success, &d.Error); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		d.SentAt = time.Unix(ts, 0)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
