// Package llm holds thin clients for the chat models that can stand in for
// the statistical NER backend.
package llm

import (
	"context"
)

type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// systemPrompt asks every provider for bare JSON so replies parse without
// the markdown fences some models add.
const systemPrompt = "You extract place names from text. Reply with a single JSON object and nothing else."
