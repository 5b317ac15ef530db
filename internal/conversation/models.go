package conversation

import "time"

// Turn is one question/answer exchange within a call.
//
// Invariants:
// - Turns are append-only. No pipeline stage rewrites an already-persisted
//   Turn; a later failure is recorded as a new audit event, never as a
//   mutation of committed fields.
// - TurnID is generated by the orchestrator (uuid), never by a collaborator.
// - CreatedAt is UTC.
//
// Storage recommendation (Postgres):
// - Table turns, PRIMARY KEY (call_sid, turn_id), INSERT-only.
// - ON CONFLICT DO NOTHING keeps appends idempotent under webhook redelivery.

type Turn struct {
	CallSid string `json:"call_id" db:"call_sid"`
	TurnID  string `json:"turn_id" db:"turn_id"`

	From string `json:"from" db:"from_number"`
	To   string `json:"to" db:"to_number"`

	// QuestionTranscript is empty when no speech was detected or when
	// transcription failed.
	QuestionTranscript string `json:"question_transcript" db:"question_transcript"`

	AnswerText string `json:"answer_text" db:"answer_text"`

	// AudioURL is the published answer audio, empty when synthesis or
	// publishing did not produce an artifact.
	AudioURL string `json:"audio_url,omitempty" db:"audio_url"`

	Status TurnStatus `json:"status" db:"status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type TurnStatus string

const (
	TurnStatusOK            TurnStatus = "ok"
	TurnStatusNoSpeech      TurnStatus = "no_speech"
	TurnStatusSTTFailed     TurnStatus = "stt_failed"
	TurnStatusLLMFailed     TurnStatus = "llm_failed"
	TurnStatusTTSFailed     TurnStatus = "tts_failed"
	TurnStatusPublishFailed TurnStatus = "publish_failed"
	TurnStatusStoreFailed   TurnStatus = "store_failed"
)

// Call identifies one phone session. It is created implicitly by the first
// webhook event that references an unseen CallSid; this system never deletes
// calls and keeps no termination record beyond the last turn's outcome.
type Call struct {
	CallSid   string    `json:"call_sid" db:"call_sid"`
	From      string    `json:"from" db:"from_number"`
	To        string    `json:"to" db:"to_number"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
