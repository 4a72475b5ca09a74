package model

// SourceMethod identifies the heuristic that proposed a candidate.
type SourceMethod string

const (
	SourceNER         SourceMethod = "NER"
	SourceChunker     SourceMethod = "Chunker"
	SourceCapitalized SourceMethod = "CapitalizedPattern"
	SourceCustomGeo   SourceMethod = "CustomGeo"
	SourceGazetteer   SourceMethod = "Gazetteer"
	SourceLLM         SourceMethod = "LLM"
)

// Candidate is a span of the query that may name a place.
// Start and End are byte offsets into the query; Text is query[Start:End].
type Candidate struct {
	Text       string         `json:"text"`
	Normalized string         `json:"normalized,omitempty"`
	Start      int            `json:"start"`
	End        int            `json:"end"`
	Sources    []SourceMethod `json:"sources"`

	// TypeHint and Boost come from indicator words next to the span
	// ("Gujarat state", "city of Paris").
	TypeHint EntityType `json:"type_hint,omitempty"`
	Boost    int        `json:"boost,omitempty"`

	// Nested holds shorter candidates whose spans lie inside this one.
	Nested []Candidate `json:"-"`
}

func NewCandidate(text string, start, end int, source SourceMethod) Candidate {
	return Candidate{
		Text:    text[start:end],
		Start:   start,
		End:     end,
		Sources: []SourceMethod{source},
	}
}

func (c Candidate) Len() int { return c.End - c.Start }

func (c Candidate) Contains(o Candidate) bool {
	return c.Start <= o.Start && o.End <= c.End && c.Len() > o.Len()
}

func (c Candidate) Overlaps(o Candidate) bool {
	return c.Start < o.End && o.Start < c.End
}

func (c Candidate) HasSource(m SourceMethod) bool {
	for _, s := range c.Sources {
		if s == m {
			return true
		}
	}
	return false
}
