package recorder

import (
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists render history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	slog.Info("sqlite recorder opened", "path", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS renders (
			id          TEXT PRIMARY KEY,
			timestamp   INTEGER NOT NULL,
			ticker      TEXT,
			kind        TEXT,
			mode        TEXT,
			handle      TEXT,
			traces      INTEGER,
			row_count   INTEGER,
			last_close  REAL,
			last_volume REAL,
			warnings    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_renders_ts ON renders(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRender stores evt, filling in ID and Time when they are unset.
func (r *SQLiteRecorder) RecordRender(evt *RenderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.Time.IsZero() {
		evt.Time = time.Now()
	}

	_, err := r.db.Exec(`INSERT INTO renders
		(id, timestamp, ticker, kind, mode, handle, traces, row_count, last_close, last_volume, warnings)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		evt.ID, evt.Time.UnixNano(), evt.Ticker, evt.Kind, evt.Mode, evt.Handle,
		evt.Traces, evt.Rows, nullable(evt.LastClose), nullable(evt.LastVolume), evt.Warnings,
	)
	return err
}

// Recent returns up to limit renders, newest first.
func (r *SQLiteRecorder) Recent(limit int) ([]RenderEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, timestamp, ticker, kind, mode, handle, traces, row_count,
		last_close, last_volume, warnings
		FROM renders ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query renders: %w", err)
	}
	defer rows.Close()

	var out []RenderEvent
	for rows.Next() {
		var (
			evt       RenderEvent
			ts        int64
			lastClose sql.NullFloat64
			lastVol   sql.NullFloat64
		)
		if err := rows.Scan(&evt.ID, &ts, &evt.Ticker, &evt.Kind, &evt.Mode, &evt.Handle,
			&evt.Traces, &evt.Rows, &lastClose, &lastVol, &evt.Warnings); err != nil {
			return nil, fmt.Errorf("scan render: %w", err)
		}
		evt.Time = time.Unix(0, ts)
		evt.LastClose = float(lastClose)
		evt.LastVolume = float(lastVol)
		out = append(out, evt)
	}
	return out, rows.Err()
}

// float maps SQL NULL back to NaN.
func float(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// nullable maps NaN to SQL NULL.
func nullable(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v)}
}

func (r *SQLiteRecorder) Close() error {
	slog.Info("closing sqlite recorder")
	return r.db.Close()
}
