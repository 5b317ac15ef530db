// Package answer defines the question-answering contract and the policy
// prompt shared by all generator implementations.
package answer

import "context"

// SystemPrompt constrains every generated answer: general legal information
// only, concise, with an attorney-consultation disclaimer. Changing this
// text changes what callers are told; treat it as part of the product.
const SystemPrompt = `You are a helpful legal information assistant for Philippine and international general legal topics.
You are NOT a lawyer and do not provide legal advice—only general information.
Answer concisely, cite general legal principles, and suggest speaking to a licensed attorney for specific cases.`

// Generator produces a bounded, policy-constrained natural-language answer
// for a non-empty question.
type Generator interface {
	Answer(ctx context.Context, question string) (string, error)
}
