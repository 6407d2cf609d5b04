package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/digitalfte/taskvault/internal/core/domain"
)

// Journal is the postgres-backed activity log. The table is strictly
// append-only: no update or delete statements exist in this package.
type Journal struct {
	db *sql.DB
}

func NewJournal(db *sql.DB) *Journal {
	return &Journal{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (j *Journal) EnsureSchema(ctx context.Context) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082801)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS activity_log (
    id          UUID PRIMARY KEY,
    ts          TIMESTAMPTZ NOT NULL,
    action      TEXT NOT NULL,
    identity    TEXT NOT NULL,
    status      TEXT NOT NULL DEFAULT '',
    priority    TEXT NOT NULL DEFAULT '',
    reason      TEXT NOT NULL DEFAULT '',
    moved_from  TEXT NOT NULL DEFAULT '',
    moved_to    TEXT NOT NULL DEFAULT '',
    outcome     TEXT NOT NULL DEFAULT '',
    duration_ms BIGINT NOT NULL DEFAULT 0,
    detail      TEXT NOT NULL DEFAULT ''
)`); err != nil {
		return fmt.Errorf("create activity_log: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
CREATE INDEX IF NOT EXISTS activity_log_ts_idx ON activity_log (ts DESC)`); err != nil {
		return fmt.Errorf("create activity_log index: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (j *Journal) Append(ctx context.Context, e domain.ActivityEntry) error {
	_, err := j.db.ExecContext(ctx, `
INSERT INTO activity_log (id, ts, action, identity, status, priority, reason, moved_from, moved_to, outcome, duration_ms, detail)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`, e.ID, e.Timestamp, string(e.Action), e.Identity, string(e.Status), string(e.Priority),
		string(e.Reason), e.MovedFrom, e.MovedTo, string(e.Outcome), e.Duration.Milliseconds(), e.Detail)
	if err != nil {
		return fmt.Errorf("append activity entry: %w", err)
	}
	return nil
}

func (j *Journal) Recent(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx, `
SELECT id, ts, action, identity, status, priority, reason, moved_from, moved_to, outcome, duration_ms, detail
FROM activity_log
ORDER BY ts DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity entries: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ActivityEntry, 0)
	for rows.Next() {
		var (
			e          domain.ActivityEntry
			action     string
			status     string
			priority   string
			reason     string
			outcome    string
			durationMS int64
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &action, &e.Identity, &status, &priority,
			&reason, &e.MovedFrom, &e.MovedTo, &outcome, &durationMS, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan activity entry: %w", err)
		}
		e.Action = domain.Action(action)
		e.Status = domain.Status(status)
		e.Priority = domain.Priority(priority)
		e.Reason = domain.Reason(reason)
		e.Outcome = domain.Outcome(outcome)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity entries: %w", err)
	}
	return out, nil
}
