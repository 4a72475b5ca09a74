package extraction

import "strings"

// DefaultStopWords are capitalized words that start sentences or name
// quantities in weather questions rather than places.
var DefaultStopWords = []string{
	"January", "February", "March", "April", "May", "June", "July",
	"August", "September", "October", "November", "December",
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
	"Which", "What", "Where", "When", "Who", "Why", "How",
	"Show", "Tell", "Give", "Compare", "Find", "List", "Plot", "Please",
	"The", "This", "That", "These", "Those", "And", "Or", "But",
	"A", "An", "As", "At", "By", "For", "From", "In", "Into", "Of", "On", "To",
	"With", "Without", "Between", "About", "Is", "Are", "Was", "Were",
	"I", "Me", "My", "We", "Our", "You", "Your", "He", "She", "It", "They",
	"Graph", "Chart", "Map", "Temperature", "Rainfall", "Average", "Weather",
	"Climate", "Population", "Today", "Tomorrow", "Yesterday",
}

// connectors may sit between capitalized words inside a place name.
var connectors = map[string]struct{}{
	"and": {}, "or": {}, "of": {}, "the": {}, "upon": {}, "on": {}, "sur": {},
	"de": {}, "da": {}, "do": {}, "dos": {}, "das": {}, "del": {}, "della": {},
	"di": {}, "du": {}, "la": {}, "le": {}, "al": {}, "el": {}, "en": {},
	"van": {}, "von": {}, "y": {},
}

// abbreviations end in a period without ending the sentence.
var abbreviations = map[string]struct{}{
	"st.": {}, "ste.": {}, "sta.": {}, "mt.": {}, "ft.": {}, "pt.": {}, "pto.": {},
}

type stopSet map[string]struct{}

func newStopSet(extra []string) stopSet {
	s := make(stopSet, len(DefaultStopWords)+len(extra))
	for _, w := range DefaultStopWords {
		s[strings.ToLower(w)] = struct{}{}
	}
	for _, w := range extra {
		s[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return s
}

func (s stopSet) has(word string) bool {
	_, ok := s[strings.ToLower(strings.TrimRight(word, "."))]
	return ok
}
