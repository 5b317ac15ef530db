package conversation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"voiceqa-platform/pkg/utils"
)

// PostgresStore persists turns in an INSERT-only table.
//
// ON CONFLICT DO NOTHING on the (call_sid, turn_id) primary key makes
// Append idempotent under webhook redelivery without read-before-write.
// Append also registers the call row; both writes commit in one
// transaction so a turn can never reference a missing call.

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, errors.New("conversation: db is required")
	}
	return &PostgresStore{db: db}, nil
}

const turnsSchema = `
CREATE TABLE IF NOT EXISTS calls (
	call_sid    TEXT        PRIMARY KEY,
	from_number TEXT        NOT NULL DEFAULT '',
	to_number   TEXT        NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS turns (
	call_sid            TEXT        NOT NULL,
	turn_id             UUID        NOT NULL,
	from_number         TEXT        NOT NULL DEFAULT '',
	to_number           TEXT        NOT NULL DEFAULT '',
	question_transcript TEXT        NOT NULL DEFAULT '',
	answer_text         TEXT        NOT NULL DEFAULT '',
	audio_url           TEXT        NULL,
	status              TEXT        NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (call_sid, turn_id)
);
CREATE INDEX IF NOT EXISTS idx_turns_created_at ON turns (created_at);
`

// EnsureSchema creates the calls and turns tables when they do not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, turnsSchema); err != nil {
		return fmt.Errorf("conversation: ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, t Turn) error {
	if t.CallSid == "" || t.TurnID == "" {
		return ErrInvalidTurn
	}
	var audio sql.NullString
	if t.AudioURL != "" {
		audio = sql.NullString{String: t.AudioURL, Valid: true}
	}
	err := utils.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO calls (call_sid, from_number, to_number, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (call_sid) DO NOTHING`,
			t.CallSid, t.From, t.To, t.CreatedAt.UTC(),
		); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO turns
				(call_sid, turn_id, from_number, to_number, question_transcript, answer_text, audio_url, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (call_sid, turn_id) DO NOTHING`,
			t.CallSid, t.TurnID, t.From, t.To, t.QuestionTranscript, t.AnswerText, audio, string(t.Status), t.CreatedAt.UTC(),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("conversation: append turn: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByCall(ctx context.Context, callSid string) ([]Turn, error) {
	if callSid == "" {
		return nil, errors.New("conversation: call_sid required")
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT call_sid, turn_id, from_number, to_number, question_transcript, answer_text, audio_url, status, created_at
		FROM turns
		WHERE call_sid = $1
		ORDER BY created_at ASC, turn_id ASC`, callSid)
	if err != nil {
		return nil, fmt.Errorf("conversation: list turns: %w", err)
	}
	defer rows.Close()
	return scanTurns(rows)
}

// ListBetween returns turns across all calls in [from, to), oldest first.
func (s *PostgresStore) ListBetween(ctx context.Context, from, to time.Time) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT call_sid, turn_id, from_number, to_number, question_transcript, answer_text, audio_url, status, created_at
		FROM turns
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at ASC, turn_id ASC`, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("conversation: list turns: %w", err)
	}
	defer rows.Close()
	return scanTurns(rows)
}

func scanTurns(rows *sql.Rows) ([]Turn, error) {
	var out []Turn
	for rows.Next() {
		var t Turn
		var status string
		var audio sql.NullString
		if err := rows.Scan(&t.CallSid, &t.TurnID, &t.From, &t.To, &t.QuestionTranscript, &t.AnswerText, &audio, &status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("conversation: scan turn: %w", err)
		}
		t.Status = TurnStatus(status)
		if audio.Valid {
			t.AudioURL = audio.String
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("conversation: scan turns: %w", err)
	}
	return out, nil
}
