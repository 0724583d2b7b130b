package provider

import "context"

// ITextGenerator is the injected generative-text capability. Callers treat
// any error as "backend unavailable" and fall back to deterministic text.
type ITextGenerator interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}
