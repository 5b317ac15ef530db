package media

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresRepository stores artifacts in an INSERT-only table. Audio blobs
// are small (a few hundred KB of mp3 per turn), so bytea is a reasonable
// durable home without introducing an object store.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	if db == nil {
		return nil, errors.New("media: db is required")
	}
	return &PostgresRepository{db: db}, nil
}

const artifactsSchema = `
CREATE TABLE IF NOT EXISTS audio_artifacts (
	call_sid     TEXT        NOT NULL,
	turn_id      UUID        NOT NULL,
	content_type TEXT        NOT NULL DEFAULT 'audio/mpeg',
	data         BYTEA       NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (call_sid, turn_id)
);
`

// EnsureSchema creates the audio_artifacts table when it does not exist yet.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, artifactsSchema); err != nil {
		return fmt.Errorf("media: ensure schema: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Put(ctx context.Context, a Artifact) error {
	if a.CallSid == "" || a.TurnID == "" {
		return errors.New("media: invalid artifact")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audio_artifacts (call_sid, turn_id, content_type, data, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (call_sid, turn_id) DO NOTHING`,
		a.CallSid, a.TurnID, a.ContentType, a.Data, a.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("media: put artifact: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, callSid, turnID string) (Artifact, error) {
	a := Artifact{CallSid: callSid, TurnID: turnID}
	err := r.db.QueryRowContext(ctx, `
		SELECT content_type, data, created_at
		FROM audio_artifacts
		WHERE call_sid = $1 AND turn_id = $2`,
		callSid, turnID,
	).Scan(&a.ContentType, &a.Data, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Artifact{}, ErrNotFound
	}
	if err != nil {
		return Artifact{}, fmt.Errorf("media: get artifact: %w", err)
	}
	return a, nil
}
