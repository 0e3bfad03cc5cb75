package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/pathreplay/internal/grid"
)

// Palette maps each cell status to an SVG fill.
type Palette map[grid.Status]string

var DefaultPalette = Palette{
	grid.Empty:    "#1a1a24",
	grid.Start:    "#00ff00",
	grid.End:      "#ff0000",
	grid.Visited:  "#5f00af",
	grid.Frontier: "#00ffff",
	grid.Path:     "#ffff00",
	grid.Obstacle: "#aaaaaa",
	grid.Blocked:  "#ff8800",
}

// GridToSVG draws every cell as a square of side cell pixels.
func GridToSVG(g *grid.Grid, cell float64, pal Palette) string {
	if g == nil {
		return ""
	}
	if pal == nil {
		pal = DefaultPalette
	}

	side := float64(g.Size()) * cell

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, side, side, side, side))

	inset := cell * 0.05
	g.Each(func(c grid.Cell) {
		x := float64(c.Col())*cell + inset
		y := float64(c.Row())*cell + inset
		sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"><title>%s %s</title></rect>
`, x, y, cell-2*inset, cell-2*inset, pal[c.Status], c.Coord(), c.Status))
	})

	sb.WriteString("</svg>")
	return sb.String()
}

// SeriesToSVG plots values as a polyline, for example the visited count
// per tick.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	n := float64(len(values) - 1)
	for i, v := range values {
		x := float64(i) / n * float64(width)
		y := float64(height) - (v-lo)/rng*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

func WriteFile(path, svg string) error {
	return os.WriteFile(path, []byte(svg), 0644)
}
