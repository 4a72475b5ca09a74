// Package resolver maps candidates onto gazetteer entries by exact lookup
// and, failing that, by the combined fuzzy score.
package resolver

import (
	"fmt"
	"math"
	"strings"

	"github.com/agenthands/geoparse/internal/core/common"
	"github.com/agenthands/geoparse/internal/core/dedupe"
	"github.com/agenthands/geoparse/internal/core/gazetteer"
	"github.com/agenthands/geoparse/internal/core/model"
	"github.com/agenthands/geoparse/internal/core/similarity"
)

const DefaultThreshold = 80.0

type Options struct {
	// Threshold is the minimum confidence, in [0,100], for a match.
	Threshold float64
	// Priority lists the entity types to search and breaks ties between them.
	Priority []model.EntityType
	Weights  similarity.Weights
	// Contextual prefers, on ties, the type accepted most often earlier in
	// the same query.
	Contextual bool
}

func DefaultOptions() Options {
	return Options{
		Threshold: DefaultThreshold,
		Priority:  append([]model.EntityType(nil), model.DefaultPriority...),
		Weights:   similarity.DefaultWeights,
	}
}

type Resolver struct {
	ix        *gazetteer.Index
	threshold float64
	weights   similarity.Weights
	priority  []model.EntityType
	pools     map[model.EntityType]gazetteer.Pool
	rank      map[model.EntityType]int
	context   bool
}

func New(ix *gazetteer.Index, opts Options) (*Resolver, error) {
	if ix == nil {
		return nil, &model.ConfigurationError{Field: "gazetteer", Reason: "no index"}
	}
	if err := ValidateThreshold(opts.Threshold); err != nil {
		return nil, err
	}
	if opts.Weights == (similarity.Weights{}) {
		opts.Weights = similarity.DefaultWeights
	}
	if err := opts.Weights.Validate(); err != nil {
		return nil, &model.ConfigurationError{Field: "resolver.weights", Reason: err.Error()}
	}
	priority := opts.Priority
	if len(priority) == 0 {
		priority = model.DefaultPriority
	}

	r := &Resolver{
		ix:        ix,
		threshold: opts.Threshold,
		weights:   opts.Weights.Normalized(),
		priority:  make([]model.EntityType, 0, len(priority)),
		pools:     make(map[model.EntityType]gazetteer.Pool, len(priority)),
		rank:      make(map[model.EntityType]int, len(priority)),
		context:   opts.Contextual,
	}
	for _, t := range priority {
		if _, dup := r.rank[t]; dup {
			return nil, &model.ConfigurationError{Field: "resolver.type_priority", Reason: fmt.Sprintf("type %s listed twice", t)}
		}
		pool := ix.Pool(t)
		if pool.Len() == 0 {
			return nil, &model.ConfigurationError{Field: "resolver.type_priority", Reason: fmt.Sprintf("no gazetteer entries of type %s", t)}
		}
		r.rank[t] = len(r.priority)
		r.priority = append(r.priority, t)
		r.pools[t] = pool
	}
	return r, nil
}

// ValidateThreshold rejects thresholds outside [0,100].
func ValidateThreshold(t float64) error {
	if math.IsNaN(t) || t < 0 || t > 100 {
		return &model.ConfigurationError{Field: "resolver.fuzzy_threshold", Reason: fmt.Sprintf("%v is outside [0, 100]", t)}
	}
	return nil
}

// WithThreshold returns a copy of r using threshold t. r is not modified.
func (r *Resolver) WithThreshold(t float64) (*Resolver, error) {
	if err := ValidateThreshold(t); err != nil {
		return nil, err
	}
	cp := *r
	cp.threshold = t
	return &cp, nil
}

func (r *Resolver) Threshold() float64 { return r.threshold }

func (r *Resolver) Priority() []model.EntityType {
	return append([]model.EntityType(nil), r.priority...)
}

// Context carries what earlier candidates of the same query resolved to.
// A nil Context is valid and disables the contextual tie-break.
type Context struct {
	accepted map[model.EntityType]int
}

func NewContext() *Context {
	return &Context{accepted: make(map[model.EntityType]int)}
}

// Observe records an accepted match.
func (c *Context) Observe(t model.EntityType) {
	if c != nil {
		c.accepted[t]++
	}
}

func (c *Context) count(t model.EntityType) int {
	if c == nil {
		return 0
	}
	return c.accepted[t]
}

type choice struct {
	name  string
	typ   model.EntityType
	seq   int
	score float64
}

// Resolve scores c against the gazetteer and returns the best match. ok is
// false when nothing reaches the threshold.
func (r *Resolver) Resolve(c model.Candidate, qc *Context) (model.ScoredMatch, bool) {
	best, ok := r.best(c, qc)
	if !ok || best.score < r.threshold {
		return model.ScoredMatch{}, false
	}
	return model.ScoredMatch{
		Candidate:     c,
		CanonicalName: best.name,
		EntityType:    best.typ,
		Confidence:    best.score,
	}, true
}

func (r *Resolver) best(c model.Candidate, qc *Context) (choice, bool) {
	variants := dedupe.Variants(c)
	if len(variants) == 0 {
		return choice{}, false
	}

	if exact, ok := r.exact(c, variants, qc); ok {
		return exact, true
	}

	prepared := make([]similarity.Prepared, len(variants))
	for i, v := range variants {
		prepared[i] = similarity.Prepare(v)
	}

	var (
		winner choice
		found  bool
	)
	for _, t := range r.searchOrder(c.TypeHint) {
		floor := r.threshold
		if found && winner.score > floor {
			floor = winner.score
		}
		cand, ok := r.scanPool(r.pools[t], prepared, floor)
		if !ok {
			continue
		}
		if !found || cand.score > winner.score || (cand.score == winner.score && r.prefer(cand, winner, c.TypeHint, qc)) {
			winner, found = cand, true
		}
	}
	return winner, found
}

// exact looks the candidate up by name and alias within the searched types.
// Match keys drop accents, so "São Paulo" and "Sao Paulo" share one; an
// entry spelled exactly like the surface beats the other tie-breaks.
func (r *Resolver) exact(c model.Candidate, variants []string, qc *Context) (choice, bool) {
	var hits []gazetteer.Hit
	for _, v := range variants {
		hits = append(hits, r.ix.Exact(v)...)
	}
	hits = append(hits, r.ix.Alias(c.Text)...)

	surface := c.Normalized
	if surface == "" {
		surface = common.CollapseSpace(c.Text)
	}

	var (
		winner        choice
		winnerLiteral bool
		found         bool
	)
	for _, h := range hits {
		if _, ok := r.rank[h.Entry.Type]; !ok {
			continue
		}
		cand := choice{name: h.Entry.CanonicalName, typ: h.Entry.Type, seq: h.Seq, score: 100}
		literal := strings.EqualFold(cand.name, surface)
		switch {
		case !found, literal && !winnerLiteral:
		case literal == winnerLiteral && r.prefer(cand, winner, c.TypeHint, qc):
		default:
			continue
		}
		winner, winnerLiteral, found = cand, literal, true
	}
	return winner, found
}

// scanPool returns the best entry of pool scoring at least floor. The
// earliest entry wins equal scores.
func (r *Resolver) scanPool(pool gazetteer.Pool, variants []similarity.Prepared, floor float64) (choice, bool) {
	var (
		winner choice
		found  bool
	)
	for i := 0; i < pool.Len(); i++ {
		entry := pool.Prepared(i)
		for v := range variants {
			score, ok := similarity.Score(&variants[v], &entry, r.weights, floor)
			if !ok {
				continue
			}
			if !found || score > winner.score {
				winner = choice{name: pool.Name(i), typ: pool.Type(), seq: pool.Seq(i), score: score}
				found = true
			}
			if score > floor {
				floor = score
			}
		}
	}
	return winner, found
}

// searchOrder puts the hinted type first so its best score raises the
// pruning floor for the others.
func (r *Resolver) searchOrder(hint model.EntityType) []model.EntityType {
	if _, ok := r.rank[hint]; !ok || r.rank[hint] == 0 {
		return r.priority
	}
	order := make([]model.EntityType, 0, len(r.priority))
	order = append(order, hint)
	for _, t := range r.priority {
		if t != hint {
			order = append(order, t)
		}
	}
	return order
}

// prefer breaks a tie between two equally scored choices.
func (r *Resolver) prefer(a, b choice, hint model.EntityType, qc *Context) bool {
	if a.typ != b.typ {
		if hint != "" && (a.typ == hint) != (b.typ == hint) {
			return a.typ == hint
		}
		if r.context {
			if ca, cb := qc.count(a.typ), qc.count(b.typ); ca != cb {
				return ca > cb
			}
		}
		return r.rank[a.typ] < r.rank[b.typ]
	}
	return a.seq < b.seq
}
