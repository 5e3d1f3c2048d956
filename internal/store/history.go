package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/zimhealth/registry-cli/internal/reconcile"
)

// Run is one recorded reconciliation run.
type Run struct {
	ID        string          `json:"id"`
	Command   string          `json:"command"`
	Stats     reconcile.Stats `json:"stats"`
	Added     int             `json:"added"`
	Updated   int             `json:"updated"`
	Total     int             `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

// History records reconciliation runs in SQLite.
type History struct {
	db *sql.DB
}

// OpenHistory opens (or creates) the run-history database at dsn and
// configures WAL mode.
func OpenHistory(dsn string) (*History, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "history: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "history: exec %s", pragma)
		}
	}
	return &History{db: db}, nil
}

const historyMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	command    TEXT NOT NULL,
	stats      TEXT NOT NULL,
	added      INTEGER NOT NULL DEFAULT 0,
	updated    INTEGER NOT NULL DEFAULT 0,
	total      INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

func (h *History) Migrate(ctx context.Context) error {
	_, err := h.db.ExecContext(ctx, historyMigration)
	return eris.Wrap(err, "history: migrate")
}

func (h *History) Close() error {
	return h.db.Close()
}

// RecordRun stores one run with its full stats payload.
func (h *History) RecordRun(ctx context.Context, command string, stats reconcile.Stats) (*Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return nil, eris.Wrap(err, "history: marshal stats")
	}

	_, err = h.db.ExecContext(ctx,
		`INSERT INTO runs (id, command, stats, added, updated, total, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, command, string(statsJSON), stats.Added, stats.Updated, stats.Total, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "history: insert run")
	}

	return &Run{
		ID:        id,
		Command:   command,
		Stats:     stats,
		Added:     stats.Added,
		Updated:   stats.Updated,
		Total:     stats.Total,
		CreatedAt: now,
	}, nil
}

// ListRuns returns the most recent runs, newest first.
func (h *History) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := h.db.QueryContext(ctx,
		`SELECT id, command, stats, added, updated, total, created_at FROM runs ORDER BY created_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "history: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var statsJSON string
		if err := rows.Scan(&r.ID, &r.Command, &statsJSON, &r.Added, &r.Updated, &r.Total, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "history: scan run")
		}
		if err := json.Unmarshal([]byte(statsJSON), &r.Stats); err != nil {
			return nil, eris.Wrapf(err, "history: parse stats for run %s", r.ID)
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "history: iterate runs")
}
