package common

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/unicode/norm"
)

// Fold maps s to NFKC and transliterates it to ASCII ("São Paulo" -> "Sao Paulo").
func Fold(s string) string {
	return unidecode.Unidecode(norm.NFKC.String(s))
}

// MatchKey is the comparison form shared by the gazetteer and the resolver:
// folded, lowercased, periods dropped, other punctuation except hyphens and
// apostrophes treated as whitespace, whitespace collapsed.
func MatchKey(s string) string {
	s = strings.ToLower(Fold(s))

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		switch {
		case r == '.':
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '\'':
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		default:
			pendingSpace = true
		}
	}
	return strings.Trim(b.String(), "-' ")
}

// StripHyphens turns a hyphenated key into its spaced form ("new-zealand" -> "new zealand").
func StripHyphens(key string) string {
	if !strings.Contains(key, "-") {
		return key
	}
	return strings.Join(strings.Fields(strings.ReplaceAll(key, "-", " ")), " ")
}

// Tokens splits a key into its alphanumeric words.
func Tokens(key string) []string {
	return strings.FieldsFunc(key, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// CollapseSpace replaces every run of whitespace with a single space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
