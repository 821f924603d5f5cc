package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderInfo contains information to display in the header.
type HeaderInfo struct {
	Version  string // Version string (e.g., "v0.4.0")
	Env      string // "prod" or "dev"
	ScriptID int
	Group    string
}

// HeaderWidth is the default width of the header divider
const HeaderWidth = 50

// RenderHeader renders the run banner: tool name, version, and target.
func RenderHeader(info HeaderInfo) string {
	titleStyle := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true)
	versionStyle := lipgloss.NewStyle().Foreground(ColorInfo)
	targetStyle := lipgloss.NewStyle().Foreground(ColorSecondary)
	dividerStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	var output strings.Builder

	output.WriteString(titleStyle.Render("rollout"))
	output.WriteString(" ")
	output.WriteString(versionStyle.Render(info.Version))
	output.WriteString("\n")

	if info.Group != "" {
		env := info.Env
		if env == "" {
			env = "prod"
		}
		output.WriteString(targetStyle.Render(fmt.Sprintf("script %d → %s (%s)", info.ScriptID, info.Group, env)))
		output.WriteString("\n")
	}

	output.WriteString(dividerStyle.Render(strings.Repeat("━", HeaderWidth)))
	output.WriteString("\n")

	return output.String()
}

// PrintHeader writes the styled header to w.
func PrintHeader(w io.Writer, info HeaderInfo) {
	fmt.Fprint(w, RenderHeader(info))
}
