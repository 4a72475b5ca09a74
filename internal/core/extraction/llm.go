package extraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/geoparse/internal/core/common"
	"github.com/agenthands/geoparse/internal/core/model"
	"github.com/agenthands/geoparse/internal/llm"
)

const DefaultLLMPrompt = `Identify every geographic place name (cities, states or regions, countries) mentioned in the text below.
Copy each name exactly as it is written in the text, including any misspelling.
Respond with JSON only, in the form {"places": [{"name": "...", "type": "City|State|Country"}]}.
If there are none, respond with {"places": []}.

Text:
{text}`

// PromptPlaceholder marks where the query goes in an LLM prompt. A prompt
// without it gets the query appended.
const PromptPlaceholder = "{text}"

// LLMRecognizer asks a language model for place names. It stands in for
// the prose recognizer when extraction.ner is "llm".
type LLMRecognizer struct {
	LLM    llm.LLMClient
	Prompt string
}

func NewLLMRecognizer(client llm.LLMClient, prompt string) *LLMRecognizer {
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultLLMPrompt
	}
	return &LLMRecognizer{
		LLM:    client,
		Prompt: prompt,
	}
}

func (r *LLMRecognizer) Method() model.SourceMethod { return model.SourceLLM }

func (r *LLMRecognizer) Extract(ctx context.Context, text string) ([]model.Candidate, error) {
	prompt := BuildPrompt(r.Prompt, text)

	response, err := r.LLM.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate places: %w", err)
	}

	result, err := common.ParseJSON[model.ExtractedPlaces](response)
	if err != nil {
		return nil, fmt.Errorf("failed to extract places: %w", err)
	}

	var out []model.Candidate
	// repeated names map to successive occurrences
	next := make(map[string]int)
	for _, p := range result.Places {
		words := strings.Fields(p.Name)
		if len(words) == 0 {
			continue
		}
		start, end, ok := locateWords(text, words, next[p.Name])
		if !ok {
			continue
		}
		next[p.Name] = end

		c := model.NewCandidate(text, start, end, model.SourceLLM)
		if t, err := model.ParseEntityType(p.Type); err == nil {
			c.TypeHint = t
		}
		out = append(out, c)
	}
	return out, nil
}

func BuildPrompt(template, text string) string {
	if !strings.Contains(template, PromptPlaceholder) {
		return template + "\n\nText:\n" + text
	}
	return strings.ReplaceAll(template, PromptPlaceholder, text)
}
