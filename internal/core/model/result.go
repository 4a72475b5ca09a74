package model

type ScoredMatch struct {
	Candidate     Candidate  `json:"candidate"`
	CanonicalName string     `json:"canonical_name"`
	EntityType    EntityType `json:"entity_type"`
	Confidence    float64    `json:"confidence"`
}

// Token is the surface text the match was found under.
func (m ScoredMatch) Token() string { return m.Candidate.Text }

// QueryResult is built fresh for every query. Truncated reports that the
// candidate list was capped and Dropped candidates were never scored.
type QueryResult struct {
	Query     string        `json:"query"`
	Matches   []ScoredMatch `json:"matches"`
	Truncated bool          `json:"truncated,omitempty"`
	Dropped   int           `json:"dropped,omitempty"`
}

func (r QueryResult) Empty() bool { return len(r.Matches) == 0 }
