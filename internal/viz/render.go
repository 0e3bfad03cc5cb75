package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/pathreplay/internal/grid"
)

var cellGlyphs = map[grid.Status]string{
	grid.Empty:    "· ",
	grid.Start:    "S ",
	grid.End:      "E ",
	grid.Visited:  "██",
	grid.Frontier: "▒▒",
	grid.Path:     "██",
	grid.Obstacle: "▓▓",
	grid.Blocked:  "▓▓",
}

// RenderGrid draws g with two columns per cell, row 0 on top.
func RenderGrid(g *grid.Grid, th Theme) string {
	if g == nil {
		return ""
	}

	styles := make(map[grid.Status]lipgloss.Style, len(cellGlyphs))
	for _, s := range grid.Statuses() {
		st := lipgloss.NewStyle().Foreground(th.Color(s))
		if s == grid.Start || s == grid.End {
			st = st.Bold(true)
		}
		styles[s] = st
	}

	var b strings.Builder
	for r := 0; r < g.Size(); r++ {
		for _, c := range g.Row(r) {
			b.WriteString(styles[c.Status].Render(cellGlyphs[c.Status]))
		}
		if r < g.Size()-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Legend lists every status in its theme color.
func Legend(th Theme) string {
	parts := make([]string, 0, len(cellGlyphs))
	for _, s := range grid.Statuses() {
		sw := lipgloss.NewStyle().Foreground(th.Color(s)).Render(cellGlyphs[s])
		parts = append(parts, sw+Subtle.Render(s.String()))
	}
	return strings.Join(parts, " ")
}
