// Package render turns query results into the line formats shown to users.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agenthands/geoparse/internal/core/model"
)

// NoMatches is printed for a result without matches.
const NoMatches = "No geographical entities found in the query."

type Format string

const (
	FormatStandard   Format = "standard"
	FormatConfidence Format = "confidence"
	FormatDetailed   Format = "detailed"
	FormatJSON       Format = "json"
	FormatStyled     Format = "styled"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatStandard, nil
	case FormatStandard, FormatConfidence, FormatDetailed, FormatJSON, FormatStyled:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Render dispatches on f.
func Render(r model.QueryResult, f Format) (string, error) {
	switch f {
	case FormatStandard, "":
		return Standard(r), nil
	case FormatConfidence:
		return WithConfidence(r), nil
	case FormatDetailed:
		return Detailed(r), nil
	case FormatJSON:
		return JSON(r)
	case FormatStyled:
		return Styled(r), nil
	}
	return "", fmt.Errorf("unknown output format %q", f)
}

func line(m model.ScoredMatch) string {
	return fmt.Sprintf("Token: %s, Canonical name: %s, Table: %s", m.Token(), m.CanonicalName, m.EntityType)
}

// Standard writes one line per match:
//
//	Token: <surface>, Canonical name: <canonical>, Table: <entity type>
func Standard(r model.QueryResult) string {
	if r.Empty() {
		return NoMatches
	}
	lines := make([]string, len(r.Matches))
	for i, m := range r.Matches {
		lines[i] = line(m)
	}
	return strings.Join(lines, "\n")
}

// WithConfidence is Standard with ", Confidence: 83.3" appended.
func WithConfidence(r model.QueryResult) string {
	if r.Empty() {
		return NoMatches
	}
	lines := make([]string, len(r.Matches))
	for i, m := range r.Matches {
		lines[i] = fmt.Sprintf("%s, Confidence: %.1f", line(m), m.Confidence)
	}
	return strings.Join(lines, "\n")
}

func Detailed(r model.QueryResult) string {
	if r.Empty() {
		return NoMatches
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d geographical entities:\n", len(r.Matches))
	for i, m := range r.Matches {
		fmt.Fprintf(&b, "\n%d. Token: %s\n", i+1, m.Token())
		fmt.Fprintf(&b, "   Canonical name: %s\n", m.CanonicalName)
		fmt.Fprintf(&b, "   Table: %s\n", m.EntityType)
		fmt.Fprintf(&b, "   Confidence: %.1f%%\n", m.Confidence)
	}
	if r.Truncated {
		fmt.Fprintf(&b, "\n(%d candidates were not scored)\n", r.Dropped)
	}
	return strings.TrimRight(b.String(), "\n")
}

func JSON(r model.QueryResult) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(data), nil
}
