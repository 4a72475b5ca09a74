package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agenthands/geoparse/internal/core/model"
)

type Order string

const (
	OrderAppearance Order = "appearance"
	OrderConfidence Order = "confidence"
)

func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case "", OrderAppearance:
		return OrderAppearance, nil
	case OrderConfidence:
		return OrderConfidence, nil
	}
	return "", &model.ConfigurationError{Field: "resolver.order", Reason: fmt.Sprintf("unknown order %q", s)}
}

type entityKey struct {
	name string
	typ  model.EntityType
}

// Assemble orders matches, one per accepted candidate. With collapse set,
// matches resolving to the same entity are merged first: a merged match
// keeps its highest-confidence occurrence but sorts at the position of its
// first one.
func Assemble(matches []model.ScoredMatch, order Order, collapse bool) []model.ScoredMatch {
	type group struct {
		first int
		best  model.ScoredMatch
	}

	groups := make([]group, 0, len(matches))
	byKey := make(map[entityKey]int, len(matches))
	for _, m := range matches {
		k := entityKey{m.CanonicalName, m.EntityType}
		if i, ok := byKey[k]; ok && collapse {
			g := &groups[i]
			g.first = min(g.first, m.Candidate.Start)
			if m.Confidence > g.best.Confidence {
				g.best = m
			}
			continue
		}
		byKey[k] = len(groups)
		groups = append(groups, group{first: m.Candidate.Start, best: m})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if order == OrderConfidence && groups[i].best.Confidence != groups[j].best.Confidence {
			return groups[i].best.Confidence > groups[j].best.Confidence
		}
		return groups[i].first < groups[j].first
	})

	out := make([]model.ScoredMatch, len(groups))
	for i, g := range groups {
		out[i] = g.best
	}
	return out
}
