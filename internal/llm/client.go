// Package llm wraps the Gemini API behind a small client interface so
// the scoring oracle can be tested against fakes and the provider can
// be swapped without touching callers.
package llm

import "context"

// Client defines the LLM call contract the scoring oracle consumes.
type Client interface {
	// Complete sends a single-turn prompt and returns the text reply.
	Complete(ctx context.Context, prompt string) (string, error)
	// CompleteWithSystem sends a system instruction plus a user prompt.
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
