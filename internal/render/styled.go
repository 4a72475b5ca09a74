package render

import (
	"fmt"

	"github.com/agenthands/geoparse/internal/core/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	ColorAccent = lipgloss.AdaptiveColor{Light: "#0B6E99", Dark: "#5FB3D9"}
	ColorPass   = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#81C784"}
	ColorWarn   = lipgloss.AdaptiveColor{Light: "#B26A00", Dark: "#FFB74D"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9E9E9E"}

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	exactStyle  = cellStyle.Foreground(ColorPass)
	fuzzyStyle  = cellStyle.Foreground(ColorWarn)
	borderStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	noteStyle   = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
)

// Styled renders a table for terminals. Exact matches are green, fuzzy
// ones amber.
func Styled(r model.QueryResult) string {
	if r.Empty() {
		return noteStyle.Render(NoMatches)
	}

	rows := make([][]string, len(r.Matches))
	for i, m := range r.Matches {
		rows[i] = []string{m.Token(), m.CanonicalName, string(m.EntityType), fmt.Sprintf("%.1f", m.Confidence)}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("Token", "Canonical name", "Table", "Confidence").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 3 && row < len(r.Matches) {
				if r.Matches[row].Confidence >= 100 {
					return exactStyle
				}
				return fuzzyStyle
			}
			return cellStyle
		})

	out := t.Render()
	if r.Truncated {
		out += "\n" + noteStyle.Render(fmt.Sprintf("%d candidates were not scored", r.Dropped))
	}
	return out
}
