package conversation

import (
	"errors"
	"fmt"
)

// ErrNoSpeech marks a recording in which the recognizer found no words.
// It is a benign outcome, not a transport failure: the pipeline continues
// with an empty transcript and status no_speech.
var ErrNoSpeech = errors.New("conversation: no speech detected")

// Stage names one step of the turn pipeline.
type Stage string

const (
	StageTranscribe Stage = "transcribe"
	StageAnswer     Stage = "answer"
	StageSynthesize Stage = "synthesize"
	StagePublish    Stage = "publish"
	StageStore      Stage = "store"
)

// StageError wraps a collaborator failure with the pipeline stage it
// occurred in. The orchestrator never propagates these to the telephony
// platform; they exist so logs and the audit trail can carry the underlying
// detail.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("conversation: %s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
