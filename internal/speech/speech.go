// Package speech defines the provider-agnostic speech contracts.
//
// Rules:
// - No provider API calls outside the adapter subpackages.
// - Recognizers report "no speech" as an empty transcript, never as an
//   error; errors are reserved for transport and engine failures.
package speech

import "context"

// Recognizer converts a recorded utterance, addressed by a reachable URL,
// into text.
type Recognizer interface {
	Transcribe(ctx context.Context, audioURL string) (string, error)
}

// Synthesizer converts text into an encoded audio payload (audio/mpeg).
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
