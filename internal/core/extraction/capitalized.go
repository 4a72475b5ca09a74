package extraction

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/agenthands/geoparse/internal/core/model"
)

var (
	capToken = `(?:(?:\p{Lu}\.){2,}|\p{Lu}[\p{L}\p{M}'’\-]*\.?)`
	capConn  = `(?:and|or|of|the|upon|on|sur|de|da|do|dos|das|del|della|di|du|la|le|al|el|en|van|von|y)`

	// runs of capitalized words, optionally joined by lowercase particles
	// ("Rio de Janeiro", "Trinidad and Tobago")
	capRun   = regexp.MustCompile(capToken + `(?:[ \t]+(?:` + capConn + `[ \t]+)?` + capToken + `)*`)
	wordSpan = regexp.MustCompile(`\S+`)
	acronym  = regexp.MustCompile(`^(?:\p{Lu}\.){2,}$`)
)

// CapitalizedPattern proposes maximal runs of capitalized words. Each run
// yields the full run, the run with stop words trimmed from its ends, and
// its parts split at "and"/"or"; the merger sorts out which one wins.
type CapitalizedPattern struct {
	stop stopSet
}

func NewCapitalizedPattern(extraStopWords []string) *CapitalizedPattern {
	return &CapitalizedPattern{stop: newStopSet(extraStopWords)}
}

func (p *CapitalizedPattern) Method() model.SourceMethod { return model.SourceCapitalized }

type word struct {
	text       string
	start, end int
}

func (p *CapitalizedPattern) Extract(ctx context.Context, text string) ([]model.Candidate, error) {
	var out []model.Candidate
	seen := make(map[[2]int]bool)
	emit := func(ws []word) {
		ws = p.trim(ws)
		if len(ws) == 0 {
			return
		}
		if len(ws) == 1 && utf8.RuneCountInString(strings.TrimRight(ws[0].text, ".")) < 2 {
			return
		}
		span := [2]int{ws[0].start, ws[len(ws)-1].end}
		if seen[span] {
			return
		}
		seen[span] = true
		out = append(out, model.NewCandidate(text, span[0], span[1], model.SourceCapitalized))
	}

	for _, m := range capRun.FindAllStringIndex(text, -1) {
		if !wordStartAt(text, m[0]) {
			continue
		}
		for _, piece := range sentencePieces(splitWords(text, m[0], m[1])) {
			if p.allStop(piece) {
				continue
			}
			emit(piece)
			emit(p.trimStop(piece))
			for _, part := range splitConjunctions(piece) {
				emit(p.trimStop(part))
			}
		}
	}
	return out, ctx.Err()
}

func splitWords(text string, start, end int) []word {
	var ws []word
	for _, loc := range wordSpan.FindAllStringIndex(text[start:end], -1) {
		ws = append(ws, word{text: text[start+loc[0] : start+loc[1]], start: start + loc[0], end: start + loc[1]})
	}
	return ws
}

// sentencePieces cuts a run after any word ending in a period that is not
// an abbreviation ("Paris. London" is two places).
func sentencePieces(ws []word) [][]word {
	var pieces [][]word
	begin := 0
	for i, w := range ws {
		if i == len(ws)-1 || !strings.HasSuffix(w.text, ".") {
			continue
		}
		if _, abbr := abbreviations[strings.ToLower(w.text)]; abbr || acronym.MatchString(w.text) {
			continue
		}
		pieces = append(pieces, ws[begin:i+1])
		begin = i + 1
	}
	return append(pieces, ws[begin:])
}

func splitConjunctions(ws []word) [][]word {
	var parts [][]word
	begin := 0
	for i, w := range ws {
		if w.text == "and" || w.text == "or" {
			parts = append(parts, ws[begin:i])
			begin = i + 1
		}
	}
	if begin == 0 {
		return nil
	}
	return append(parts, ws[begin:])
}

func isConnector(w string) bool {
	_, ok := connectors[w]
	return ok
}

// trim drops lowercase particles from both ends.
func (p *CapitalizedPattern) trim(ws []word) []word {
	for len(ws) > 0 && isConnector(ws[0].text) {
		ws = ws[1:]
	}
	for len(ws) > 0 && isConnector(ws[len(ws)-1].text) {
		ws = ws[:len(ws)-1]
	}
	return ws
}

// trimStop drops stop words and particles from both ends.
func (p *CapitalizedPattern) trimStop(ws []word) []word {
	for len(ws) > 0 && (p.stop.has(ws[0].text) || isConnector(ws[0].text)) {
		ws = ws[1:]
	}
	for len(ws) > 0 && (p.stop.has(ws[len(ws)-1].text) || isConnector(ws[len(ws)-1].text)) {
		ws = ws[:len(ws)-1]
	}
	return ws
}

func (p *CapitalizedPattern) allStop(ws []word) bool {
	for _, w := range ws {
		if !p.stop.has(w.text) && !isConnector(w.text) {
			return false
		}
	}
	return true
}
