// Package similarity implements the four string metrics the resolver
// combines: ratio, partial ratio, token-sort ratio and token-set ratio.
// All scores are in [0,100] and computed over match keys (see common.MatchKey).
package similarity

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agenthands/geoparse/internal/core/common"
	"github.com/agnivade/levenshtein"
)

// Prepared caches the derived forms of a key so pool entries are tokenized once.
type Prepared struct {
	Key    string
	Sorted string
	Set    []string

	keyLen    int
	sortedLen int
}

func Prepare(key string) Prepared {
	tokens := common.Tokens(key)
	sort.Strings(tokens)
	sorted := strings.Join(tokens, " ")

	set := make([]string, 0, len(tokens))
	for i, tok := range tokens {
		if i == 0 || tok != tokens[i-1] {
			set = append(set, tok)
		}
	}

	return Prepared{
		Key:       key,
		Sorted:    sorted,
		Set:       set,
		keyLen:    utf8.RuneCountInString(key),
		sortedLen: utf8.RuneCountInString(sorted),
	}
}

type Weights struct {
	Ratio     float64 `toml:"ratio" json:"ratio"`
	Partial   float64 `toml:"partial" json:"partial"`
	TokenSort float64 `toml:"token_sort" json:"token_sort"`
	TokenSet  float64 `toml:"token_set" json:"token_set"`
}

// DefaultWeights keeps substring-only hits ("mumbai indians" vs "mumbai")
// well under 80 while a single typo in a six-letter name stays above it.
var DefaultWeights = Weights{Ratio: 0.4, Partial: 0.2, TokenSort: 0.2, TokenSet: 0.2}

func (w Weights) Validate() error {
	if w.Ratio < 0 || w.Partial < 0 || w.TokenSort < 0 || w.TokenSet < 0 {
		return fmt.Errorf("weights must be non-negative")
	}
	if w.sum() <= 0 {
		return fmt.Errorf("weights must not all be zero")
	}
	return nil
}

func (w Weights) sum() float64 { return w.Ratio + w.Partial + w.TokenSort + w.TokenSet }

// Normalized scales the weights to sum to one.
func (w Weights) Normalized() Weights {
	s := w.sum()
	if s <= 0 {
		return DefaultWeights
	}
	return Weights{Ratio: w.Ratio / s, Partial: w.Partial / s, TokenSort: w.TokenSort / s, TokenSet: w.TokenSet / s}
}

type Scores struct {
	Ratio     float64 `json:"ratio"`
	Partial   float64 `json:"partial"`
	TokenSort float64 `json:"token_sort"`
	TokenSet  float64 `json:"token_set"`
}

// Combine is the weighted average of the four metrics. w must be normalized.
func Combine(s Scores, w Weights) float64 {
	return w.Ratio*s.Ratio + w.Partial*s.Partial + w.TokenSort*s.TokenSort + w.TokenSet*s.TokenSet
}

func Ratio(a, b string) float64 {
	return ratio(a, b, utf8.RuneCountInString(a), utf8.RuneCountInString(b))
}

func ratio(a, b string, la, lb int) float64 {
	longest := max(la, lb)
	if longest == 0 {
		return 100
	}
	if a == b {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(d)/float64(longest))
}

// lengthBound is the best ratio two strings of these lengths could reach,
// since the edit distance is at least the length difference.
func lengthBound(la, lb int) float64 {
	longest := max(la, lb)
	if longest == 0 {
		return 100
	}
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	return 100 * (1 - float64(diff)/float64(longest))
}

// PartialRatio is the best ratio of the shorter string against every
// window of the same length in the longer one.
func PartialRatio(a, b string) float64 {
	short, long := a, b
	if utf8.RuneCountInString(short) > utf8.RuneCountInString(long) {
		short, long = long, short
	}
	ls := utf8.RuneCountInString(short)
	ll := utf8.RuneCountInString(long)
	if ls == 0 {
		if ll == 0 {
			return 100
		}
		return 0
	}
	if ls == ll {
		return ratio(short, long, ls, ll)
	}
	if strings.Contains(long, short) {
		return 100
	}

	// byte offset of every rune boundary in long
	offsets := make([]int, 0, ll+1)
	for i := range long {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(long))

	best := 0.0
	for i := 0; i+ls <= ll; i++ {
		r := ratio(short, long[offsets[i]:offsets[i+ls]], ls, ls)
		if r > best {
			best = r
		}
	}
	return best
}

func TokenSortRatio(a, b string) float64 {
	pa, pb := Prepare(a), Prepare(b)
	return ratio(pa.Sorted, pb.Sorted, pa.sortedLen, pb.sortedLen)
}

func TokenSetRatio(a, b string) float64 {
	pa, pb := Prepare(a), Prepare(b)
	return tokenSet(&pa, &pb)
}

func tokenSet(a, b *Prepared) float64 {
	var inter, onlyA, onlyB []string
	i, j := 0, 0
	for i < len(a.Set) && j < len(b.Set) {
		switch {
		case a.Set[i] == b.Set[j]:
			inter = append(inter, a.Set[i])
			i++
			j++
		case a.Set[i] < b.Set[j]:
			onlyA = append(onlyA, a.Set[i])
			i++
		default:
			onlyB = append(onlyB, b.Set[j])
			j++
		}
	}
	onlyA = append(onlyA, a.Set[i:]...)
	onlyB = append(onlyB, b.Set[j:]...)

	if len(inter) == 0 {
		return Ratio(strings.Join(onlyA, " "), strings.Join(onlyB, " "))
	}
	if len(onlyA) == 0 || len(onlyB) == 0 {
		return 100
	}

	t0 := strings.Join(inter, " ")
	t1 := t0 + " " + strings.Join(onlyA, " ")
	t2 := t0 + " " + strings.Join(onlyB, " ")
	return max(Ratio(t0, t1), Ratio(t0, t2), Ratio(t1, t2))
}

// Score combines all four metrics for two prepared keys. It gives up early
// and returns false once the result provably cannot reach floor.
func Score(a, b *Prepared, w Weights, floor float64) (float64, bool) {
	if a.Key == b.Key {
		return 100, true
	}

	bound := w.Ratio*lengthBound(a.keyLen, b.keyLen) + w.Partial*100 +
		w.TokenSort*lengthBound(a.sortedLen, b.sortedLen) + w.TokenSet*100
	if bound < floor {
		return 0, false
	}

	var s Scores
	s.Ratio = ratio(a.Key, b.Key, a.keyLen, b.keyLen)
	s.TokenSort = ratio(a.Sorted, b.Sorted, a.sortedLen, b.sortedLen)
	if w.Ratio*s.Ratio+w.Partial*100+w.TokenSort*s.TokenSort+w.TokenSet*100 < floor {
		return 0, false
	}

	s.TokenSet = tokenSet(a, b)
	if w.Ratio*s.Ratio+w.Partial*100+w.TokenSort*s.TokenSort+w.TokenSet*s.TokenSet < floor {
		return 0, false
	}

	s.Partial = PartialRatio(a.Key, b.Key)
	score := Combine(s, w)
	return score, score >= floor
}
