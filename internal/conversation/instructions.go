package conversation

// Instruction is one provider-agnostic call-control directive. The ordered
// instruction list tells the telephony platform what to do next; rendering
// into a concrete markup dialect (TwiML) happens at the telephony boundary.

type InstructionKind string

const (
	InstructionSay    InstructionKind = "say"
	InstructionPlay   InstructionKind = "play"
	InstructionRecord InstructionKind = "record"
	InstructionHangup InstructionKind = "hangup"
)

type Instruction struct {
	Kind InstructionKind

	// Text is set for Say instructions.
	Text string

	// URL is set for Play instructions.
	URL string

	// Record is set for Record instructions.
	Record *RecordParams
}

// RecordParams controls how the platform records the caller's next utterance.
type RecordParams struct {
	MaxDurationSeconds    int
	BeepEnabled           bool
	TrimSilence           bool
	SilenceTimeoutSeconds int

	// ActionURL is the webhook the platform calls once the recording is ready.
	ActionURL string
}

func Say(text string) Instruction { return Instruction{Kind: InstructionSay, Text: text} }
func Play(url string) Instruction { return Instruction{Kind: InstructionPlay, URL: url} }
func Hangup() Instruction         { return Instruction{Kind: InstructionHangup} }

func Record(p RecordParams) Instruction {
	return Instruction{Kind: InstructionRecord, Record: &p}
}
