package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/pathreplay/internal/grid"
)

// Theme defines color scheme for the TUI
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Muted     lipgloss.Color
	Error     lipgloss.Color

	Empty    lipgloss.Color
	Start    lipgloss.Color
	End      lipgloss.Color
	Visited  lipgloss.Color
	Frontier lipgloss.Color
	Path     lipgloss.Color
	Obstacle lipgloss.Color
	Blocked  lipgloss.Color
}

// Available themes
var (
	ThemeCyberpunk = Theme{
		Name:      "cyberpunk",
		Primary:   lipgloss.Color("#ff00ff"),
		Secondary: lipgloss.Color("#00ffff"),
		Muted:     lipgloss.Color("#666666"),
		Error:     lipgloss.Color("#ff0000"),
		Empty:     lipgloss.Color("#333344"),
		Start:     lipgloss.Color("#00ff00"),
		End:       lipgloss.Color("#ff0000"),
		Visited:   lipgloss.Color("#5f00af"),
		Frontier:  lipgloss.Color("#00ffff"),
		Path:      lipgloss.Color("#ffff00"),
		Obstacle:  lipgloss.Color("#aaaaaa"),
		Blocked:   lipgloss.Color("#ff8800"),
	}

	ThemeRetroGreen = Theme{
		Name:      "retro",
		Primary:   lipgloss.Color("#00ff00"), // Green phosphor
		Secondary: lipgloss.Color("#00cc00"),
		Muted:     lipgloss.Color("#005500"),
		Error:     lipgloss.Color("#ff0000"),
		Empty:     lipgloss.Color("#003300"),
		Start:     lipgloss.Color("#88ff88"),
		End:       lipgloss.Color("#ffff00"),
		Visited:   lipgloss.Color("#007700"),
		Frontier:  lipgloss.Color("#00cc00"),
		Path:      lipgloss.Color("#ccffcc"),
		Obstacle:  lipgloss.Color("#88aa88"),
		Blocked:   lipgloss.Color("#aaff00"),
	}

	ThemeMinimal = Theme{
		Name:      "minimal",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#cccccc"),
		Muted:     lipgloss.Color("#888888"),
		Error:     lipgloss.Color("#ff0000"),
		Empty:     lipgloss.Color("#333333"),
		Start:     lipgloss.Color("#ffffff"),
		End:       lipgloss.Color("#ffffff"),
		Visited:   lipgloss.Color("#666666"),
		Frontier:  lipgloss.Color("#aaaaaa"),
		Path:      lipgloss.Color("#0088ff"),
		Obstacle:  lipgloss.Color("#cccccc"),
		Blocked:   lipgloss.Color("#ffaa00"),
	}

	ThemeOcean = Theme{
		Name:      "ocean",
		Primary:   lipgloss.Color("#0077be"), // Ocean blue
		Secondary: lipgloss.Color("#00a8cc"),
		Muted:     lipgloss.Color("#4488aa"),
		Error:     lipgloss.Color("#ff4444"),
		Empty:     lipgloss.Color("#002244"),
		Start:     lipgloss.Color("#00ff88"),
		End:       lipgloss.Color("#ff4444"),
		Visited:   lipgloss.Color("#005588"),
		Frontier:  lipgloss.Color("#00a8cc"),
		Path:      lipgloss.Color("#ffd700"),
		Obstacle:  lipgloss.Color("#e0f0ff"),
		Blocked:   lipgloss.Color("#ffcc00"),
	}

	// Default theme
	CurrentTheme = ThemeCyberpunk

	// All available themes
	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeMinimal,
		ThemeOcean,
	}
)

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCyberpunk
}

// NextTheme returns the theme after t in Themes, wrapping around.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// Color returns the cell color of a status.
func (t Theme) Color(s grid.Status) lipgloss.Color {
	switch s {
	case grid.Start:
		return t.Start
	case grid.End:
		return t.End
	case grid.Visited:
		return t.Visited
	case grid.Frontier:
		return t.Frontier
	case grid.Path:
		return t.Path
	case grid.Obstacle:
		return t.Obstacle
	case grid.Blocked:
		return t.Blocked
	}
	return t.Empty
}
