package extraction

import (
	"context"

	"github.com/agenthands/geoparse/internal/core/model"
)

type MockLLMClient struct {
	Response string
	Err      error
	Prompts  []string
}

func (m *MockLLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// stubExtractor returns fixed spans of the text it is given.
type stubExtractor struct {
	method model.SourceMethod
	spans  [][2]int
	err    error
}

func (s *stubExtractor) Method() model.SourceMethod { return s.method }

func (s *stubExtractor) Extract(ctx context.Context, text string) ([]model.Candidate, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]model.Candidate, 0, len(s.spans))
	for _, sp := range s.spans {
		out = append(out, model.NewCandidate(text, sp[0], sp[1], s.method))
	}
	return out, nil
}
