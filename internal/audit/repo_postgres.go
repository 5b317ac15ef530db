package audit

import (
	"context"
	"database/sql"
	"fmt"
)

const eventsSchema = `
CREATE TABLE IF NOT EXISTS audit_events (
    id          TEXT PRIMARY KEY,
    event_type  TEXT NOT NULL,
    call_sid    TEXT NOT NULL,
    turn_id     TEXT NOT NULL DEFAULT '',
    stage       TEXT NOT NULL DEFAULT '',
    message     TEXT NOT NULL,
    detail      TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_events_call_sid ON audit_events (call_sid);
CREATE INDEX IF NOT EXISTS idx_audit_events_created_at ON audit_events (created_at);
`

// PostgresRepository persists trail events in Postgres.

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, eventsSchema); err != nil {
		return fmt.Errorf("audit: ensure schema: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Append(ctx context.Context, e Event) error {
	const q = `
        INSERT INTO audit_events (id, event_type, call_sid, turn_id, stage, message, detail, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, q,
		e.ID, string(e.Type), e.CallSid, e.TurnID, e.Stage, e.Message, e.Detail, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("audit: append event: %w", err)
	}
	return nil
}
