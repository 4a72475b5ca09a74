package extraction

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agenthands/geoparse/internal/core/model"
	"github.com/kljensen/snowball"
)

var plainWord = regexp.MustCompile(`[\p{L}\p{M}\p{N}][\p{L}\p{M}\p{N}'’\-.]*`)

var indicatorWords = map[model.EntityType][]string{
	model.City:    {"city", "cities", "town", "towns", "village", "metropolis"},
	model.State:   {"state", "states", "province", "provinces", "region", "regions", "territory"},
	model.Country: {"country", "countries"},
}

// GeoIndicators looks for words such as "state" or "city" next to a
// capitalized name ("Gujarat state", "city of Paris"). It never proposes a
// place on its own: its candidates only carry a type hint and a boost that
// the merger copies onto overlapping candidates from other heuristics.
type GeoIndicators struct {
	stems map[string]model.EntityType
	stop  stopSet
}

func NewGeoIndicators(extraStopWords []string) *GeoIndicators {
	g := &GeoIndicators{
		stems: make(map[string]model.EntityType),
		stop:  newStopSet(extraStopWords),
	}
	for t, words := range indicatorWords {
		for _, w := range words {
			g.stems[stem(w)] = t
		}
	}
	return g
}

func stem(w string) string {
	s, err := snowball.Stem(w, "english", true)
	if err != nil {
		return strings.ToLower(w)
	}
	return s
}

func (g *GeoIndicators) Method() model.SourceMethod { return model.SourceCustomGeo }

func (g *GeoIndicators) Extract(ctx context.Context, text string) ([]model.Candidate, error) {
	words := findWords(text)

	var out []model.Candidate
	signal := func(from, to int, t model.EntityType) {
		c := model.NewCandidate(text, words[from].start, words[to].end, model.SourceCustomGeo)
		c.TypeHint = t
		c.Boost = 1
		out = append(out, c)
	}

	for i, w := range words {
		if !isLowerWord(w.text) {
			continue
		}
		t, ok := g.stems[stem(strings.TrimRight(w.text, "."))]
		if !ok {
			continue
		}

		// "Gujarat state"
		j := i
		for j > 0 && g.name(words[j-1].text) && onlySpace(text[words[j-1].end:words[j].start]) {
			j--
		}
		if j < i {
			signal(j, i-1, t)
		}

		// "city of Paris", "state of the Rio Grande"
		k := i + 1
		for k < len(words) && (words[k].text == "of" || words[k].text == "the") && onlySpace(text[words[k-1].end:words[k].start]) {
			k++
		}
		first := k
		for k < len(words) && g.name(words[k].text) && onlySpace(text[words[k-1].end:words[k].start]) {
			k++
		}
		if k > first {
			signal(first, k-1, t)
		}
	}
	return out, ctx.Err()
}

func (g *GeoIndicators) name(w string) bool {
	return isCapitalized(w) && !g.stop.has(w)
}

func findWords(text string) []word {
	var ws []word
	for _, loc := range plainWord.FindAllStringIndex(text, -1) {
		ws = append(ws, word{text: text[loc[0]:loc[1]], start: loc[0], end: loc[1]})
	}
	return ws
}

func isCapitalized(w string) bool {
	r, _ := utf8.DecodeRuneInString(w)
	return unicode.IsUpper(r)
}

func isLowerWord(w string) bool {
	for _, r := range w {
		if unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func hasUpper(w string) bool {
	for _, r := range w {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
