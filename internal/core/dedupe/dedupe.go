// Package dedupe normalizes raw candidates and merges the overlapping
// proposals of the different heuristics into one ordered list.
package dedupe

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agenthands/geoparse/internal/core/common"
	"github.com/agenthands/geoparse/internal/core/model"
)

// sourceRank orders heuristics when two candidates cover the same span.
var sourceRank = map[model.SourceMethod]int{
	model.SourceNER:         0,
	model.SourceLLM:         1,
	model.SourceChunker:     2,
	model.SourceCapitalized: 3,
	model.SourceGazetteer:   4,
	model.SourceCustomGeo:   5,
}

// Normalize trims punctuation and whitespace around c, adjusting its
// offsets, and fills in Normalized. ok is false when c does not describe a
// valid span of text or nothing is left after trimming.
func Normalize(text string, c model.Candidate) (model.Candidate, bool) {
	if c.Start < 0 || c.End > len(text) || c.Start >= c.End || text[c.Start:c.End] != c.Text {
		return c, false
	}

	start, end := c.Start, c.End
	for start < end {
		r, size := utf8.DecodeRuneInString(text[start:end])
		if isWordRune(r) {
			break
		}
		start += size
	}
	for end > start {
		r, size := utf8.DecodeLastRuneInString(text[start:end])
		if isWordRune(r) {
			break
		}
		end -= size
	}
	if start >= end {
		return c, false
	}

	c.Start, c.End = start, end
	c.Text = text[start:end]
	c.Normalized = common.CollapseSpace(c.Text)
	return c, true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// Variants returns the match keys to try for c, most literal first:
// the key itself, its hyphen-free form, and both without a possessive "'s".
func Variants(c model.Candidate) []string {
	key := common.MatchKey(c.Text)
	out := make([]string, 0, 4)
	add := func(k string) {
		if k == "" {
			return
		}
		for _, existing := range out {
			if existing == k {
				return
			}
		}
		out = append(out, k)
	}

	add(key)
	add(common.StripHyphens(key))
	if base, ok := strings.CutSuffix(key, "'s"); ok {
		add(base)
		add(common.StripHyphens(base))
	}
	return out
}

// Merge normalizes raw candidates and reduces them to one list ordered by
// first appearance:
//   - CustomGeo signals lend their type hint and boost to overlapping
//     candidates and are then dropped;
//   - candidates with the same normalized text (ignoring case) collapse into
//     the first occurrence, collecting every source method;
//   - a candidate lying strictly inside a longer one is moved to the
//     longer one's Nested list.
//
// The result does not depend on the order of raw.
func Merge(text string, raw []model.Candidate) []model.Candidate {
	var cands, signals []model.Candidate
	for _, c := range raw {
		n, ok := Normalize(text, c)
		if !ok {
			continue
		}
		if n.HasSource(model.SourceCustomGeo) {
			signals = append(signals, n)
			continue
		}
		cands = append(cands, n)
	}

	sort.SliceStable(signals, func(i, j int) bool {
		if signals[i].Start != signals[j].Start {
			return signals[i].Start < signals[j].Start
		}
		return signals[i].End < signals[j].End
	})
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Len() != b.Len() {
			return a.Len() > b.Len()
		}
		return rank(a) < rank(b)
	})

	unique := make([]model.Candidate, 0, len(cands))
	byText := make(map[string]int, len(cands))
	for _, c := range cands {
		key := strings.ToLower(c.Normalized)
		if i, ok := byText[key]; ok {
			unique[i].Sources = unionSources(unique[i].Sources, c.Sources)
			if unique[i].TypeHint == "" {
				unique[i].TypeHint = c.TypeHint
			}
			unique[i].Boost = max(unique[i].Boost, c.Boost)
			continue
		}
		byText[key] = len(unique)
		c.Sources = unionSources(nil, c.Sources)
		unique = append(unique, c)
	}

	for i := range unique {
		for _, s := range signals {
			if !unique[i].Overlaps(s) {
				continue
			}
			if unique[i].TypeHint == "" {
				unique[i].TypeHint = s.TypeHint
			}
			unique[i].Boost = max(unique[i].Boost, s.Boost)
			unique[i].Sources = unionSources(unique[i].Sources, s.Sources)
		}
	}

	var top []model.Candidate
	for _, c := range unique {
		placed := false
		for i := range top {
			if top[i].Contains(c) {
				top[i].Nested = append(top[i].Nested, c)
				placed = true
				break
			}
		}
		if !placed {
			top = append(top, c)
		}
	}
	return top
}

func rank(c model.Candidate) int {
	best := len(sourceRank)
	for _, s := range c.Sources {
		if r, ok := sourceRank[s]; ok && r < best {
			best = r
		}
	}
	return best
}

// unionSources appends the methods of add missing from dst and keeps the
// result in rank order.
func unionSources(dst, add []model.SourceMethod) []model.SourceMethod {
	out := append([]model.SourceMethod(nil), dst...)
	for _, s := range add {
		found := false
		for _, existing := range out {
			if existing == s {
				found = true
				break
			}
		}
		if !found {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return sourceRank[out[i]] < sourceRank[out[j]] })
	return out
}

// Truncate keeps at most limit candidate spans, nested spans included, and
// reports how many were dropped. Top-level candidates are kept first,
// boosted ones before the rest and then by appearance. Whatever budget is
// left goes to their nested spans in the same order. A limit of zero or
// less keeps everything.
func Truncate(cands []model.Candidate, limit int) ([]model.Candidate, int) {
	total := CountSpans(cands)
	if limit <= 0 || total <= limit {
		return cands, 0
	}

	kept := byPriority(cands, limit)
	budget := limit - len(kept)
	for i := range kept {
		n := min(budget, len(kept[i].Nested))
		kept[i].Nested = byPriority(kept[i].Nested, n)
		budget -= n
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return kept, total - CountSpans(kept)
}

// CountSpans counts cands together with their nested spans.
func CountSpans(cands []model.Candidate) int {
	n := len(cands)
	for _, c := range cands {
		n += len(c.Nested)
	}
	return n
}

// byPriority returns a copy of the first n of cands, boosted ones first,
// restored to appearance order.
func byPriority(cands []model.Candidate, n int) []model.Candidate {
	out := append([]model.Candidate(nil), cands...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Boost > out[j].Boost })
	out = out[:min(n, len(out))]
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}
