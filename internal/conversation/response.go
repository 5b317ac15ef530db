package conversation

import "strings"

// Caller-facing prompt texts. These are part of the telephone UX contract:
// the caller must always hear either an answer or a clearly worded apology,
// never silence.
const (
	GreetingPrompt = "Hello. You're connected to the legal information assistant. Please ask your question after the beep. Then pause."
	FollowUpPrompt = "You may ask one more short question after the beep."
	NoRecordingPrompt = "I didn't receive a recording. Goodbye."
	GoodbyePrompt     = "Thank you for calling. Goodbye."

	// ApologyNoSpeech is spoken when nothing intelligible was recorded or
	// transcription failed outright.
	ApologyNoSpeech = "Sorry, I could not understand the audio. Please try again or consult a licensed attorney."

	// ApologyGeneric is spoken when answer generation failed.
	ApologyGeneric = "Sorry, I was unable to answer that right now. Please try again in a moment or consult a licensed attorney."
)

const (
	recordMaxDurationSeconds    = 30
	recordSilenceTimeoutSeconds = 3
)

// ResponseBuilder turns a turn outcome into the next call-control
// instruction set. It is a pure value: no I/O and no failure modes of its
// own. Invalid input (empty answer text) degrades to the apology fallback
// rather than surfacing an error.
type ResponseBuilder struct {
	// TurnActionURL is the webhook the platform posts the next recording to.
	TurnActionURL string
}

func NewResponseBuilder(turnActionURL string) ResponseBuilder {
	return ResponseBuilder{TurnActionURL: turnActionURL}
}

func (b ResponseBuilder) record() Instruction {
	return Record(RecordParams{
		MaxDurationSeconds:    recordMaxDurationSeconds,
		BeepEnabled:           true,
		TrimSilence:           true,
		SilenceTimeoutSeconds: recordSilenceTimeoutSeconds,
		ActionURL:             b.TurnActionURL,
	})
}

// StartCall greets the caller and records the first question. The trailing
// Say only plays when the platform never produces a recording.
func (b ResponseBuilder) StartCall() []Instruction {
	return []Instruction{
		Say(GreetingPrompt),
		b.record(),
		Say(NoRecordingPrompt),
	}
}

// TurnResponse plays the published answer audio when available, otherwise
// speaks the answer text, then prompts for and records the next question.
func (b ResponseBuilder) TurnResponse(status TurnStatus, answerText, audioURL string) []Instruction {
	if strings.TrimSpace(answerText) == "" {
		answerText = ApologyGeneric
	}

	out := make([]Instruction, 0, 4)
	if audioURL != "" {
		out = append(out, Play(audioURL))
	} else {
		out = append(out, Say(answerText))
	}
	out = append(out, Say(FollowUpPrompt), b.record(), Say(GoodbyePrompt))
	return out
}
