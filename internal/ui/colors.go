package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
	ColorAccent    lipgloss.Color = "5" // Magenta
)

// DisableColors switches all rendering to plain text.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// ConfigureColor applies a color mode: "never" strips color, "always"
// forces ANSI colors, and "auto" (or "") keeps color only on a terminal.
func ConfigureColor(mode string) {
	switch mode {
	case "never":
		DisableColors()
	case "always":
		lipgloss.SetColorProfile(termenv.ANSI256)
	default:
		if !IsTerminal(os.Stdout) {
			DisableColors()
		}
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
