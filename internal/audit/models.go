package audit

import "time"

// Event is an immutable, append-only operational trail record.
//
// Invariants:
// - Events are never updated or deleted.
// - The trail is internal-only; callers never hear about it and the call
//   path never blocks on it.
//
// Storage recommendation (Postgres):
// - Table audit_events with an INSERT-only policy.
// - Optional: partition by time for retention.

type Event struct {
	ID string `json:"id" db:"id"`

	// Type indicates the business category of the record.
	Type EventType `json:"type" db:"type"`

	// CallSid and TurnID locate the turn the event belongs to.
	CallSid string `json:"call_sid" db:"call_sid"`
	TurnID  string `json:"turn_id,omitempty" db:"turn_id"`

	// Stage names the pipeline stage for stage-failure events.
	Stage string `json:"stage,omitempty" db:"stage"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Detail carries the underlying collaborator error text.
	Detail string `json:"detail,omitempty" db:"detail"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	// EventTypeStageFailure records a transcribe/answer/synthesize/publish
	// stage that degraded to its fallback.
	EventTypeStageFailure EventType = "pipeline_stage_failure"

	// EventTypeStoreFailure records a turn that could not be persisted.
	// The trail is the only place a store failure is visible; the
	// caller-facing instructions are unaffected.
	EventTypeStoreFailure EventType = "turn_store_failure"
)
