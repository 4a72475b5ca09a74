// Package core wires the extraction, dedupe and resolver stages into the
// query pipeline.
package core

import (
	"context"
	"log/slog"
	"sort"

	"github.com/agenthands/geoparse/internal/core/dedupe"
	"github.com/agenthands/geoparse/internal/core/extraction"
	"github.com/agenthands/geoparse/internal/core/gazetteer"
	"github.com/agenthands/geoparse/internal/core/model"
	"github.com/agenthands/geoparse/internal/core/resolver"
)

const DefaultMaxCandidates = 32

type Pipeline struct {
	Index    *gazetteer.Index
	Runner   *extraction.Runner
	Resolver *resolver.Resolver
	Logger   *slog.Logger

	// MaxCandidates caps the merged candidates scored per query; 0 means
	// no cap.
	MaxCandidates int
	Order         Order
	// CollapseEntities merges matches that resolve to the same entity.
	CollapseEntities bool
}

func NewPipeline(ix *gazetteer.Index, runner *extraction.Runner, res *resolver.Resolver, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		Index:         ix,
		Runner:        runner,
		Resolver:      res,
		Logger:        logger,
		MaxCandidates: DefaultMaxCandidates,
		Order:         OrderAppearance,
	}
}

// WithThreshold returns a copy of p that accepts matches at threshold t.
func (p *Pipeline) WithThreshold(t float64) (*Pipeline, error) {
	res, err := p.Resolver.WithThreshold(t)
	if err != nil {
		return nil, err
	}
	cp := *p
	cp.Resolver = res
	return &cp, nil
}

// ProcessQuery extracts place mentions from text and resolves them against
// the gazetteer. The result depends only on text, the index and the
// configuration; the only error is cancellation of ctx.
func (p *Pipeline) ProcessQuery(ctx context.Context, text string) (model.QueryResult, error) {
	result := model.QueryResult{Query: text, Matches: []model.ScoredMatch{}}

	raw, err := p.Runner.Run(ctx, text)
	if err != nil {
		return result, err
	}

	cands := dedupe.Merge(text, raw)
	cands, dropped := dedupe.Truncate(cands, p.MaxCandidates)
	if dropped > 0 {
		result.Truncated = true
		result.Dropped = dropped
		p.Logger.Warn("too many candidates, truncating", "kept", dedupe.CountSpans(cands), "dropped", dropped, "limit", p.MaxCandidates)
	}

	qc := resolver.NewContext()
	var matches []model.ScoredMatch
	for _, c := range cands {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		for _, m := range p.resolveSpan(c, qc) {
			qc.Observe(m.EntityType)
			matches = append(matches, m)
		}
	}

	result.Matches = Assemble(matches, p.Order, p.CollapseEntities)
	p.Logger.Debug("query processed",
		"raw_candidates", len(raw),
		"candidates", len(cands),
		"matches", len(result.Matches),
	)
	return result, nil
}

// resolveSpan scores a candidate together with the shorter spans nested in
// it. The longer span wins unless nested spans resolve with strictly higher
// confidence, in which case the best non-overlapping ones replace it.
func (p *Pipeline) resolveSpan(c model.Candidate, qc *resolver.Context) []model.ScoredMatch {
	container, ok := p.Resolver.Resolve(c, qc)

	var children []model.ScoredMatch
	for _, n := range c.Nested {
		m, accepted := p.Resolver.Resolve(n, qc)
		if !accepted {
			continue
		}
		if ok && m.Confidence <= container.Confidence {
			continue
		}
		children = append(children, m)
	}
	if len(children) == 0 {
		if ok {
			container.Candidate.Nested = nil
			return []model.ScoredMatch{container}
		}
		return nil
	}

	sort.SliceStable(children, func(i, j int) bool {
		a, b := children[i], children[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Candidate.Len() != b.Candidate.Len() {
			return a.Candidate.Len() > b.Candidate.Len()
		}
		return a.Candidate.Start < b.Candidate.Start
	})

	var picked []model.ScoredMatch
	for _, m := range children {
		clash := false
		for _, q := range picked {
			if m.Candidate.Overlaps(q.Candidate) {
				clash = true
				break
			}
		}
		if !clash {
			picked = append(picked, m)
		}
	}
	sort.SliceStable(picked, func(i, j int) bool { return picked[i].Candidate.Start < picked[j].Candidate.Start })
	return picked
}
