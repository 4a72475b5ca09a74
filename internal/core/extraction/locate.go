package extraction

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// locateWords finds words in text at or after from, allowing any run of
// whitespace (or none) between consecutive words. Tokenizers rejoin words
// with single spaces, so their output is not always a literal substring.
func locateWords(text string, words []string, from int) (start, end int, ok bool) {
	if len(words) == 0 {
		return 0, 0, false
	}
	for from <= len(text) {
		i := strings.Index(text[from:], words[0])
		if i < 0 {
			return 0, 0, false
		}
		start = from + i
		end = start + len(words[0])
		matched := true
		for _, w := range words[1:] {
			for end < len(text) {
				r, size := utf8.DecodeRuneInString(text[end:])
				if !unicode.IsSpace(r) {
					break
				}
				end += size
			}
			if !strings.HasPrefix(text[end:], w) {
				matched = false
				break
			}
			end += len(w)
		}
		if matched {
			return start, end, true
		}
		from = start + 1
	}
	return 0, 0, false
}

func onlySpace(s string) bool {
	return strings.TrimSpace(s) == ""
}

// wordStartAt reports whether a word can begin at byte offset i, i.e. the
// preceding rune is not part of a word.
func wordStartAt(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
