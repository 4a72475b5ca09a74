package extraction

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/agenthands/geoparse/internal/core/model"
	"github.com/jdkato/prose/v2"
)

// DefaultNERLabels are the prose entity labels kept as place candidates.
var DefaultNERLabels = []string{"GPE", "LOC", "FAC", "ORG"}

var (
	modelOnce   sync.Once
	sharedModel *prose.Model
	modelErr    error
)

// proseModel loads prose's bundled tagger and classifier once. NewDocument
// would otherwise decode them again on every call.
func proseModel() (*prose.Model, error) {
	modelOnce.Do(func() {
		doc, err := prose.NewDocument("", prose.WithSegmentation(false))
		if err != nil {
			modelErr = fmt.Errorf("failed to load prose model: %w", err)
			return
		}
		sharedModel = doc.Model
	})
	return sharedModel, modelErr
}

// Prose tags the query once and reads two heuristics off the same
// document: statistical entities with a place-like label (NER) and runs of
// proper-noun tokens (Chunker). Tokens joined by a bare hyphen stay in the
// same run.
type Prose struct {
	labels  map[string]bool
	ner     bool
	chunker bool
}

// NewProse enables the entity recognizer when ner is set and the
// proper-noun chunker when chunker is set.
func NewProse(ner bool, labels []string, chunker bool) *Prose {
	if len(labels) == 0 {
		labels = DefaultNERLabels
	}
	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		set[strings.ToUpper(l)] = true
	}
	return &Prose{labels: set, ner: ner, chunker: chunker}
}

func (p *Prose) Method() model.SourceMethod {
	if p.ner {
		return model.SourceNER
	}
	return model.SourceChunker
}

func (p *Prose) Extract(ctx context.Context, text string) ([]model.Candidate, error) {
	if !p.ner && !p.chunker {
		return nil, nil
	}
	m, err := proseModel()
	if err != nil {
		return nil, err
	}
	doc, err := prose.NewDocument(text,
		prose.UsingModel(m),
		prose.WithSegmentation(false),
		prose.WithExtraction(p.ner),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	var out []model.Candidate
	if p.ner {
		out = append(out, p.entities(doc, text)...)
	}
	if p.chunker {
		out = append(out, chunks(doc, text)...)
	}
	return out, ctx.Err()
}

func (p *Prose) entities(doc *prose.Document, text string) []model.Candidate {
	var out []model.Candidate
	cursor := 0
	for _, ent := range doc.Entities() {
		if !p.labels[ent.Label] {
			continue
		}
		start, end, ok := locateWords(text, strings.Fields(ent.Text), cursor)
		if !ok {
			continue
		}
		cursor = end
		out = append(out, model.NewCandidate(text, start, end, model.SourceNER))
	}
	return out
}

func isProperNoun(tag string) bool { return tag == "NNP" || tag == "NNPS" }

func chunks(doc *prose.Document, text string) []model.Candidate {
	var out []model.Candidate
	runStart, runEnd := -1, -1
	flush := func() {
		if runStart >= 0 {
			out = append(out, model.NewCandidate(text, runStart, runEnd, model.SourceChunker))
		}
		runStart, runEnd = -1, -1
	}

	cursor := 0
	tokens := doc.Tokens()
	for i, tok := range tokens {
		start, end, ok := locateWords(text, []string{tok.Text}, cursor)
		if !ok {
			flush()
			continue
		}
		cursor = end

		hyphen := tok.Text == "-" && runStart >= 0 && start == runEnd &&
			i+1 < len(tokens) && isProperNoun(tokens[i+1].Tag)
		switch {
		case hyphen:
			runEnd = end
		case isProperNoun(tok.Tag):
			if runStart >= 0 && !onlySpace(text[runEnd:start]) {
				flush()
			}
			if runStart < 0 {
				runStart = start
			}
			runEnd = end
		default:
			flush()
		}
	}
	flush()
	return out
}

// posTags tags text with the shared model and returns the tag of every token
// keyed by the byte span it covers.
func posTags(text string) (map[[2]int]string, error) {
	m, err := proseModel()
	if err != nil {
		return nil, err
	}
	doc, err := prose.NewDocument(text,
		prose.UsingModel(m),
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to tag document: %w", err)
	}

	tags := make(map[[2]int]string)
	cursor := 0
	for _, tok := range doc.Tokens() {
		start, end, ok := locateWords(text, []string{tok.Text}, cursor)
		if !ok {
			continue
		}
		cursor = end
		tags[[2]int{start, end}] = tok.Tag
	}
	return tags, nil
}
