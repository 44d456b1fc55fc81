// Package llm provides pluggable language-model clients for answer
// generation.
package llm

import "context"

// Generator produces a completion for a system instruction and user
// prompt. Implementations do not retry; retry policy belongs to the
// caller.
type Generator interface {
	// Generate returns the model's answer text. Failures wrap
	// knowledge.ErrGenerationFailed; timeouts come from ctx.
	Generate(ctx context.Context, system, prompt string) (string, error)

	// ModelID identifies the underlying model.
	ModelID() string

	// Close releases any resources held by the client.
	Close() error
}
