package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/rollout/internal/deploy"
)

// StatusSymbol returns the symbol and color used for an action status.
func StatusSymbol(s deploy.Status) (string, lipgloss.Color) {
	switch s {
	case deploy.StatusSucceeded:
		return SymbolSuccess, ColorSuccess
	case deploy.StatusFailed:
		return SymbolFail, ColorError
	case deploy.StatusCanceled:
		return SymbolSkipped, ColorWarning
	case deploy.StatusInProgress:
		return SymbolProgress, ColorInfo
	default:
		return SymbolPending, ColorMuted
	}
}

// RenderStatus renders "<symbol> <status>" in the status color.
func RenderStatus(s deploy.Status) string {
	symbol, color := StatusSymbol(s)
	label := string(s)
	if label == "" {
		label = "unknown"
	}
	return lipgloss.NewStyle().Foreground(color).Render(symbol + " " + label)
}
