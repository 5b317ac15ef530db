package conversation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"voiceqa-platform/pkg/logger"

	"github.com/google/uuid"
)

// Collaborator contracts, defined on the consumer side so the orchestrator
// can be exercised with fakes. Adapters live under internal/speech,
// internal/answer and internal/media.

// Recognizer converts a recorded utterance, addressed by URL, into text.
// An empty transcript means no speech was detected and is not an error.
type Recognizer interface {
	Transcribe(ctx context.Context, audioURL string) (string, error)
}

// Generator produces a bounded, policy-constrained answer for a question.
type Generator interface {
	Answer(ctx context.Context, question string) (string, error)
}

// Synthesizer converts text into an encoded audio payload.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Publisher persists synthesized audio and returns a durable, publicly
// fetchable URL.
type Publisher interface {
	Publish(ctx context.Context, callSid, turnID string, audio []byte, contentType string) (string, error)
}

// Trail receives best-effort observability events for stage failures.
// Implementations must never block the call path on their own failures.
type Trail interface {
	RecordStageFailure(ctx context.Context, callSid, turnID string, stage Stage, detail string)
}

// StageTimeouts bounds each blocking collaborator call. The sum must stay
// well under the telephony platform's webhook response deadline.
type StageTimeouts struct {
	Transcribe time.Duration
	Answer     time.Duration
	Synthesize time.Duration
	Publish    time.Duration
	Store      time.Duration
}

func (t StageTimeouts) withDefaults() StageTimeouts {
	out := t
	if out.Transcribe <= 0 {
		out.Transcribe = 10 * time.Second
	}
	if out.Answer <= 0 {
		out.Answer = 8 * time.Second
	}
	if out.Synthesize <= 0 {
		out.Synthesize = 10 * time.Second
	}
	if out.Publish <= 0 {
		out.Publish = 5 * time.Second
	}
	if out.Store <= 0 {
		out.Store = 5 * time.Second
	}
	return out
}

// Orchestrator drives exactly one turn to completion per "recording ready"
// webhook event and call initialization per "new call" event.
//
// Rules:
// - A stage failure short-circuits later value-producing stages but never
//   the store stage: every turn is recorded with whatever fields exist.
// - No stage is retried within a turn; each failure degrades to the next
//   best audible experience (spoken text instead of audio, apology instead
//   of silence). The caller always receives a continuation.
// - A store failure never alters the instructions already computed.
type Orchestrator struct {
	stt       Recognizer
	generator Generator
	tts       Synthesizer
	publisher Publisher
	store     Store
	trail     Trail
	builder   ResponseBuilder
	timeouts  StageTimeouts

	// RecordingSuffix is appended to recording URLs for platforms that
	// serve bare references. Empty by default; the audio format is the
	// platform's contract, not ours.
	recordingSuffix string

	clock func() time.Time
	newID func() string
}

type OrchestratorConfig struct {
	STT       Recognizer
	Generator Generator
	TTS       Synthesizer
	Publisher Publisher
	Store     Store
	Trail     Trail
	Builder   ResponseBuilder
	Timeouts  StageTimeouts

	RecordingSuffix string
}

func NewOrchestrator(cfg OrchestratorConfig) (*Orchestrator, error) {
	if cfg.STT == nil {
		return nil, errors.New("conversation: recognizer is required")
	}
	if cfg.Generator == nil {
		return nil, errors.New("conversation: generator is required")
	}
	if cfg.TTS == nil {
		return nil, errors.New("conversation: synthesizer is required")
	}
	if cfg.Publisher == nil {
		return nil, errors.New("conversation: publisher is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("conversation: store is required")
	}
	return &Orchestrator{
		stt:             cfg.STT,
		generator:       cfg.Generator,
		tts:             cfg.TTS,
		publisher:       cfg.Publisher,
		store:           cfg.Store,
		trail:           cfg.Trail,
		builder:         cfg.Builder,
		timeouts:        cfg.Timeouts.withDefaults(),
		recordingSuffix: cfg.RecordingSuffix,
		clock:           time.Now,
		newID:           uuid.NewString,
	}, nil
}

// StartCall produces the greeting-and-record instruction set for a new call.
// No external I/O happens here; the webhook identifiers are the only call
// state, so there is nothing to initialize.
func (o *Orchestrator) StartCall(callSid, from, to string) []Instruction {
	return o.builder.StartCall()
}

// TurnRequest carries one "recording ready" webhook event.
type TurnRequest struct {
	CallSid      string
	RecordingURL string
	From         string
	To           string
}

// ProcessTurn runs the transcribe → answer → synthesize → publish → store
// pipeline for one recorded utterance and returns the next instruction set.
// It never fails from the platform's perspective.
func (o *Orchestrator) ProcessTurn(ctx context.Context, req TurnRequest) []Instruction {
	log := logger.From(ctx).With("call_sid", req.CallSid)

	turnID := o.newID()
	status := TurnStatusOK

	// 1. Transcribe.
	transcript, err := o.transcribe(ctx, req.RecordingURL)
	switch {
	case err != nil:
		status = TurnStatusSTTFailed
		transcript = ""
		o.reportFailure(ctx, log, req.CallSid, turnID, &StageError{Stage: StageTranscribe, Err: err})
	case transcript == "":
		status = TurnStatusNoSpeech
	}

	// 2. Answer. Skipped when there is no question to answer.
	var answerText string
	switch status {
	case TurnStatusNoSpeech, TurnStatusSTTFailed:
		answerText = ApologyNoSpeech
	default:
		answerText, err = o.answer(ctx, transcript)
		if err != nil {
			status = TurnStatusLLMFailed
			answerText = ApologyGeneric
			o.reportFailure(ctx, log, req.CallSid, turnID, &StageError{Stage: StageAnswer, Err: err})
		}
	}

	// 3. Synthesize whatever text the earlier stages produced, apologies
	// included: the caller must always hear something.
	var audioURL string
	audio, err := o.synthesize(ctx, answerText)
	if err != nil {
		status = TurnStatusTTSFailed
		o.reportFailure(ctx, log, req.CallSid, turnID, &StageError{Stage: StageSynthesize, Err: err})
	} else {
		// 4. Publish.
		audioURL, err = o.publish(ctx, req.CallSid, turnID, audio)
		if err != nil {
			status = TurnStatusPublishFailed
			audioURL = ""
			o.reportFailure(ctx, log, req.CallSid, turnID, &StageError{Stage: StagePublish, Err: err})
		}
	}

	// 5. Record the turn, regardless of the upstream outcome. A store
	// failure is surfaced to the trail only; the caller is not penalized
	// for a logging failure and no inline retry is attempted.
	turn := Turn{
		CallSid:            req.CallSid,
		TurnID:             turnID,
		From:               req.From,
		To:                 req.To,
		QuestionTranscript: transcript,
		AnswerText:         answerText,
		AudioURL:           audioURL,
		Status:             status,
		CreatedAt:          o.clock().UTC(),
	}
	if err := o.appendTurn(ctx, turn); err != nil {
		o.reportFailure(ctx, log, req.CallSid, turnID, &StageError{Stage: StageStore, Err: err})
	}

	// 6. Build the response from the computed outcome.
	return o.builder.TurnResponse(status, answerText, audioURL)
}

// ReplayLastTurn rebuilds the instruction set from the most recent stored
// turn of a call. Used when the platform redelivers a recording event: the
// pipeline must not run twice for the same utterance. Returns false when no
// stored turn exists (the caller should process the turn normally).
func (o *Orchestrator) ReplayLastTurn(ctx context.Context, callSid string) ([]Instruction, bool) {
	ctx, cancel := context.WithTimeout(ctx, o.timeouts.Store)
	defer cancel()
	turns, err := o.store.ListByCall(ctx, callSid)
	if err != nil || len(turns) == 0 {
		return nil, false
	}
	last := turns[len(turns)-1]
	return o.builder.TurnResponse(last.Status, last.AnswerText, last.AudioURL), true
}

func (o *Orchestrator) transcribe(ctx context.Context, recordingURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeouts.Transcribe)
	defer cancel()
	text, err := o.stt.Transcribe(ctx, recordingURL+o.recordingSuffix)
	if err != nil {
		if errors.Is(err, ErrNoSpeech) {
			return "", nil
		}
		return "", err
	}
	return text, nil
}

func (o *Orchestrator) answer(ctx context.Context, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeouts.Answer)
	defer cancel()
	return o.generator.Answer(ctx, question)
}

func (o *Orchestrator) synthesize(ctx context.Context, text string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeouts.Synthesize)
	defer cancel()
	return o.tts.Synthesize(ctx, text)
}

func (o *Orchestrator) publish(ctx context.Context, callSid, turnID string, audio []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeouts.Publish)
	defer cancel()
	return o.publisher.Publish(ctx, callSid, turnID, audio, "audio/mpeg")
}

func (o *Orchestrator) appendTurn(ctx context.Context, t Turn) error {
	ctx, cancel := context.WithTimeout(ctx, o.timeouts.Store)
	defer cancel()
	return o.store.Append(ctx, t)
}

// reportFailure logs a stage failure and appends it to the audit trail.
// Both are best-effort.
func (o *Orchestrator) reportFailure(ctx context.Context, log *slog.Logger, callSid, turnID string, serr *StageError) {
	log.Warn("pipeline stage failed", "stage", string(serr.Stage), "turn_id", turnID, "err", serr.Err)
	if o.trail != nil {
		o.trail.RecordStageFailure(ctx, callSid, turnID, serr.Stage, serr.Err.Error())
	}
}
