package extraction

import (
	"context"
	"strings"
	"unicode"

	"github.com/agenthands/geoparse/internal/core/common"
	"github.com/agenthands/geoparse/internal/core/gazetteer"
	"github.com/agenthands/geoparse/internal/core/model"
)

// GazetteerScan looks word n-grams up directly in the gazetteer, longest
// first. In caseless text ("paris", "PARIS") any span may match, except
// single words that are stop words or that the tagger does not read as a
// noun ("nice" in "the weather was nice"). In normal text it only looks at
// multi-word spans that start with a capital and contain another capitalized
// word, which catches names like "Provence-Alpes-Côte d'Azur" or
// "London, City of" that the capitalized pattern splits apart.
type GazetteerScan struct {
	index *gazetteer.Index
	stop  stopSet
	tag   func(text string) (map[[2]int]string, error)
}

func NewGazetteerScan(ix *gazetteer.Index, extraStopWords []string) *GazetteerScan {
	return &GazetteerScan{index: ix, stop: newStopSet(extraStopWords), tag: posTags}
}

func (s *GazetteerScan) Method() model.SourceMethod { return model.SourceGazetteer }

func (s *GazetteerScan) Extract(ctx context.Context, text string) ([]model.Candidate, error) {
	words := findWords(text)
	caseless := isCaseless(text)
	maxN := s.index.MaxWords()

	var (
		out    []model.Candidate
		tags   map[[2]int]string
		tagged bool
	)
	for i := 0; i < len(words); {
		n := s.longestAt(text, words, i, maxN, caseless)
		if n == 1 {
			if !tagged {
				tags = s.tags(text)
				tagged = true
			}
			if !s.singleWordPlace(words[i], tags) {
				n = 0
			}
		}
		if n == 0 {
			i++
			continue
		}
		out = append(out, model.NewCandidate(text, words[i].start, words[i+n-1].end, model.SourceGazetteer))
		i += n
	}
	return out, ctx.Err()
}

func (s *GazetteerScan) longestAt(text string, words []word, i, maxN int, caseless bool) int {
	for n := min(maxN, len(words)-i); n >= 1; n-- {
		if !caseless {
			if n < 2 {
				return 0
			}
			if !isCapitalized(words[i].text) || !anyUpper(words[i+1:i+n]) {
				continue
			}
		}
		key := common.MatchKey(text[words[i].start:words[i+n-1].end])
		if s.index.HasName(key) || s.index.HasName(common.StripHyphens(key)) {
			return n
		}
	}
	return 0
}

func (s *GazetteerScan) tags(text string) map[[2]int]string {
	if s.tag == nil {
		return nil
	}
	tags, err := s.tag(text)
	if err != nil {
		return nil
	}
	return tags
}

// singleWordPlace filters one-word caseless hits. Compound words
// ("new-zealand") are kept whatever their tag.
func (s *GazetteerScan) singleWordPlace(w word, tags map[[2]int]string) bool {
	if s.stop.has(w.text) {
		return false
	}
	if strings.ContainsAny(w.text, "-'’") {
		return true
	}
	tag, ok := tags[[2]int{w.start, w.end}]
	if !ok {
		return true
	}
	return strings.HasPrefix(tag, "NN") || tag == "FW"
}

func anyUpper(ws []word) bool {
	for _, w := range ws {
		if hasUpper(w.text) {
			return true
		}
	}
	return false
}

// isCaseless reports text whose letters are all one case.
func isCaseless(text string) bool {
	var upper, lower bool
	for _, r := range text {
		if unicode.IsUpper(r) {
			upper = true
		} else if unicode.IsLower(r) {
			lower = true
		}
		if upper && lower {
			return false
		}
	}
	return true
}
