package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the heatmap ramp and the accents around it.
type Theme struct {
	Name   string
	Cold   lipgloss.Color
	Hot    lipgloss.Color
	Accent lipgloss.Color
	Muted  lipgloss.Color
}

// Available themes
var (
	ThemeThermal = Theme{
		Name:   "thermal",
		Cold:   lipgloss.Color("#10104a"),
		Hot:    lipgloss.Color("#ffcc00"),
		Accent: lipgloss.Color("#ff6b6b"),
		Muted:  lipgloss.Color("#666688"),
	}

	ThemeOcean = Theme{
		Name:   "ocean",
		Cold:   lipgloss.Color("#001a33"),
		Hot:    lipgloss.Color("#00ffcc"),
		Accent: lipgloss.Color("#0077be"),
		Muted:  lipgloss.Color("#4488aa"),
	}

	ThemeMinimal = Theme{
		Name:   "minimal",
		Cold:   lipgloss.Color("#000000"),
		Hot:    lipgloss.Color("#ffffff"),
		Accent: lipgloss.Color("#0088ff"),
		Muted:  lipgloss.Color("#888888"),
	}

	// Default theme
	CurrentTheme = ThemeThermal

	// All available themes
	Themes = []Theme{
		ThemeThermal,
		ThemeOcean,
		ThemeMinimal,
	}
)

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeThermal
}

// SetTheme changes the current theme
func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme returns the theme after t, wrapping around.
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

// Shade returns the hex colour at level in [0, 1] along the theme ramp.
func (t Theme) Shade(level float64) string {
	return string(lerpColor(t.Cold, t.Hot, level))
}
