package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"voiceqa-platform/internal/conversation"

	"github.com/google/uuid"
)

// Repository is the persistence contract for trail events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.

type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records the pipeline observability trail.
//
// IMPORTANT:
// - The trail is best-effort. A trail write failure is logged and dropped;
//   it must never surface into the call path.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.CallSid == "" {
		return ErrInvalidEvent
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// RecordStageFailure implements conversation.Trail. The store stage maps to
// its own event type because it is the only failure fully hidden from the
// caller.
func (s *Service) RecordStageFailure(ctx context.Context, callSid, turnID string, stage conversation.Stage, detail string) {
	typ := EventTypeStageFailure
	msg := "pipeline stage degraded to fallback"
	if stage == conversation.StageStore {
		typ = EventTypeStoreFailure
		msg = "turn could not be persisted"
	}

	err := s.Append(ctx, Event{
		Type:    typ,
		CallSid: callSid,
		TurnID:  turnID,
		Stage:   string(stage),
		Message: msg,
		Detail:  detail,
	})
	if err != nil {
		slog.Warn("audit append failed", "call_sid", callSid, "stage", string(stage), "err", err)
	}
}
