package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a named color palette for the TUI. Every color adapts to
// light and dark terminal backgrounds.
type Theme struct {
	Name string

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Accent    lipgloss.AdaptiveColor

	Success lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor

	Border     lipgloss.AdaptiveColor
	Foreground lipgloss.AdaptiveColor
	Muted      lipgloss.AdaptiveColor

	Technique lipgloss.AdaptiveColor
	Progress  lipgloss.AdaptiveColor
}

func adaptive(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	DefaultTheme = Theme{
		Name:       "default",
		Primary:    adaptive("#1E40AF", "#3B82F6"),
		Secondary:  adaptive("#6B7280", "#9CA3AF"),
		Accent:     adaptive("#7C3AED", "#A855F7"),
		Success:    adaptive("#059669", "#10B981"),
		Warning:    adaptive("#D97706", "#F59E0B"),
		Error:      adaptive("#DC2626", "#EF4444"),
		Border:     adaptive("#D1D5DB", "#374151"),
		Foreground: adaptive("#111827", "#F9FAFB"),
		Muted:      adaptive("#6B7280", "#9CA3AF"),
		Technique:  adaptive("#7C3AED", "#A855F7"),
		Progress:   adaptive("#059669", "#10B981"),
	}

	HighContrastTheme = Theme{
		Name:       "high-contrast",
		Primary:    adaptive("#000000", "#FFFFFF"),
		Secondary:  adaptive("#666666", "#BBBBBB"),
		Accent:     adaptive("#000080", "#8080FF"),
		Success:    adaptive("#006600", "#00FF00"),
		Warning:    adaptive("#CC6600", "#FFAA00"),
		Error:      adaptive("#CC0000", "#FF4444"),
		Border:     adaptive("#000000", "#FFFFFF"),
		Foreground: adaptive("#000000", "#FFFFFF"),
		Muted:      adaptive("#666666", "#BBBBBB"),
		Technique:  adaptive("#800080", "#FF80FF"),
		Progress:   adaptive("#006600", "#00FF00"),
	}

	MinimalTheme = Theme{
		Name:       "minimal",
		Primary:    adaptive("#2D3748", "#E2E8F0"),
		Secondary:  adaptive("#718096", "#A0AEC0"),
		Accent:     adaptive("#4A5568", "#CBD5E0"),
		Success:    adaptive("#2F855A", "#68D391"),
		Warning:    adaptive("#C05621", "#F6AD55"),
		Error:      adaptive("#C53030", "#FC8181"),
		Border:     adaptive("#E2E8F0", "#2D3748"),
		Foreground: adaptive("#2D3748", "#F7FAFC"),
		Muted:      adaptive("#A0AEC0", "#718096"),
		Technique:  adaptive("#553C9A", "#B794F6"),
		Progress:   adaptive("#2F855A", "#68D391"),
	}
)

var currentTheme = DefaultTheme

func GetTheme() Theme {
	return currentTheme
}

func SetTheme(theme *Theme) {
	currentTheme = *theme
}

// SetThemeByName switches the active theme, reporting whether the name
// was recognized.
func SetThemeByName(name string) bool {
	for _, theme := range []Theme{DefaultTheme, HighContrastTheme, MinimalTheme} {
		if theme.Name == name {
			SetTheme(&theme)
			return true
		}
	}
	return false
}

// IsColorDisabled honors the NO_COLOR convention.
func IsColorDisabled() bool {
	return os.Getenv("NO_COLOR") != ""
}

// Styles holds the lipgloss styles derived from a theme.
type Styles struct {
	Theme Theme

	Title     lipgloss.Style
	Header    lipgloss.Style
	Subheader lipgloss.Style
	Muted     lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	Focused lipgloss.Style
	Box     lipgloss.Style

	Progress  lipgloss.Style
	Technique lipgloss.Style
}

// GetStyles builds the style set for the current theme.
func GetStyles() *Styles {
	theme := GetTheme()
	bold := func(c lipgloss.AdaptiveColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}

	return &Styles{
		Theme: theme,

		Title:     bold(theme.Primary).Padding(0, 1),
		Header:    bold(theme.Primary),
		Subheader: bold(theme.Secondary),
		Muted:     lipgloss.NewStyle().Foreground(theme.Muted),

		Success: bold(theme.Success),
		Warning: bold(theme.Warning),
		Error:   bold(theme.Error),

		Focused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary).
			Padding(0, 1),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(1, 2),

		Progress:  bold(theme.Progress),
		Technique: bold(theme.Technique),
	}
}
