package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/rollout/internal/deploy"
	"github.com/rileyhilliard/rollout/internal/util"
)

// SummaryRenderer formats the closing summary of a deployment.
type SummaryRenderer struct {
	errorStyle   lipgloss.Style
	successStyle lipgloss.Style
	warnStyle    lipgloss.Style
	mutedStyle   lipgloss.Style
}

// NewSummaryRenderer creates a new summary renderer with default styles.
func NewSummaryRenderer() *SummaryRenderer {
	return &SummaryRenderer{
		errorStyle:   lipgloss.NewStyle().Foreground(ColorError),
		successStyle: lipgloss.NewStyle().Foreground(ColorSuccess),
		warnStyle:    lipgloss.NewStyle().Foreground(ColorWarning),
		mutedStyle:   lipgloss.NewStyle().Foreground(ColorMuted),
	}
}

// RenderSummary renders the closing lines for a terminal report.
func RenderSummary(report deploy.Report, took time.Duration) string {
	return NewSummaryRenderer().Render(report, took)
}

// Render generates the summary string. Failed servers are listed one per
// line so they can be copied out of the terminal.
func (r *SummaryRenderer) Render(report deploy.Report, took time.Duration) string {
	status := report.Status()
	servers := report.Servers()
	timing := r.mutedStyle.Render(formatDuration(took))

	var sb strings.Builder
	switch {
	case status == deploy.StatusSucceeded:
		sb.WriteString(r.successStyle.Render(fmt.Sprintf("%s Succeeded on %d of %s",
			SymbolComplete, count(servers, deploy.StatusSucceeded), util.Count(len(servers), "server", "servers"))))
	case status == deploy.StatusCanceled:
		sb.WriteString(r.warnStyle.Render(SymbolSkipped + " Canceled"))
	default:
		label := string(status)
		if label == "" {
			label = "unknown"
		}
		sb.WriteString(r.errorStyle.Render(fmt.Sprintf("%s Finished with status %s", SymbolFail, label)))
	}
	sb.WriteString(" ")
	sb.WriteString(timing)
	sb.WriteString("\n")

	for _, rec := range servers {
		if !rec.Status.IsFailure() {
			continue
		}
		sb.WriteString("  ")
		sb.WriteString(r.errorStyle.Render(SymbolFail))
		sb.WriteString(" ")
		sb.WriteString(rec.Hostname)
		sb.WriteString(r.mutedStyle.Render(fmt.Sprintf(" (action %d)", rec.ActionID)))
		sb.WriteString("\n")
	}

	return sb.String()
}

func count(records []deploy.Record, status deploy.Status) int {
	n := 0
	for _, rec := range records {
		if rec.Status == status {
			n++
		}
	}
	return n
}
