package render

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"proofmark/internal/correction"
)

// Palette
var (
	LightForeground = lipgloss.Color("#101F38")
	LightMuted      = lipgloss.Color("#6a737d")
	LightBorder     = lipgloss.Color("#dce0e5")

	DarkForeground = lipgloss.Color("#f2f2f2")
	DarkMuted      = lipgloss.Color("#8b949e")
	DarkBorder     = lipgloss.Color("#2a3850")

	Addition    = lipgloss.Color("#8BC34A")
	Deletion    = lipgloss.Color("#e53935")
	Replacement = lipgloss.Color("#FFC107")
	Punctuation = lipgloss.Color("#2196F3")
	Spelling    = lipgloss.Color("#e57373")
	Grammar     = lipgloss.Color("#4db6ac")
	WordChoice  = lipgloss.Color("#ff8a65")
	Capitals    = lipgloss.Color("#ffd54f")
)

// Theme holds the colors used to render a document.
type Theme struct {
	Name       string
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{Name: "light", Foreground: LightForeground, Muted: LightMuted, Border: LightBorder}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{Name: "dark", Foreground: DarkForeground, Muted: DarkMuted, Border: DarkBorder, IsDark: true}
}

// ThemeFor maps a configured theme name to a Theme. Unknown names and "auto"
// fall back to DetectTheme.
func ThemeFor(name string) Theme {
	switch strings.ToLower(name) {
	case "light":
		return LightTheme()
	case "dark":
		return DarkTheme()
	}
	return DetectTheme()
}

// DetectTheme picks a theme from COLORFGBG, defaulting to light.
func DetectTheme() Theme {
	// Format is "foreground;background"; indexes 0-6 and 8 are dark.
	if parts := strings.Split(os.Getenv("COLORFGBG"), ";"); len(parts) == 2 {
		if bg, err := strconv.Atoi(parts[1]); err == nil && (bg >= 0 && bg <= 6 || bg == 8) {
			return DarkTheme()
		}
	}
	return LightTheme()
}

// TypeColor returns the accent color for a correction type.
func TypeColor(t correction.Type) lipgloss.Color {
	switch t {
	case correction.TypeAddition:
		return Addition
	case correction.TypeDeletion:
		return Deletion
	case correction.TypeReplacement:
		return Replacement
	case correction.TypePunctuation:
		return Punctuation
	case correction.TypeSpelling:
		return Spelling
	case correction.TypeGrammar:
		return Grammar
	case correction.TypeWordChoice:
		return WordChoice
	case correction.TypeCapitalization:
		return Capitals
	}
	return ""
}

// Styles holds the lipgloss styles derived from a Theme.
type Styles struct {
	Theme Theme

	Muted    lipgloss.Style
	Focused  lipgloss.Style
	Original lipgloss.Style
	Fixed    lipgloss.Style
	Badge    lipgloss.Style
	Pane     lipgloss.Style
}

// NewStyles builds the styles for theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme:    theme,
		Muted:    lipgloss.NewStyle().Foreground(theme.Muted),
		Focused:  lipgloss.NewStyle().Bold(true).Reverse(true),
		Original: lipgloss.NewStyle().Foreground(Deletion).Strikethrough(true),
		Fixed:    lipgloss.NewStyle().Foreground(Addition).Bold(true),
		Badge:    lipgloss.NewStyle().Bold(true),
		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
	}
}

// Highlight returns the inline style for a correction of type t.
func (s Styles) Highlight(t correction.Type) lipgloss.Style {
	st := lipgloss.NewStyle().Underline(true).TabWidth(lipgloss.NoTabConversion)
	if c := TypeColor(t); c != "" {
		return st.Foreground(c)
	}
	return st.Foreground(s.Theme.Muted)
}

// TypeBadge returns the label style for a correction of type t.
func (s Styles) TypeBadge(t correction.Type) lipgloss.Style {
	if c := TypeColor(t); c != "" {
		return s.Badge.Foreground(c)
	}
	return s.Badge.Foreground(s.Theme.Muted)
}
