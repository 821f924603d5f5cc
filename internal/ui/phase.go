package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// DividerWidth is the default width for divider lines.
const DividerWidth = 64

// PhaseDisplay renders stage status lines (resolve, dispatch, watch).
type PhaseDisplay struct {
	w io.Writer
}

// NewPhaseDisplay creates a new phase display writing to w.
func NewPhaseDisplay(w io.Writer) *PhaseDisplay {
	return &PhaseDisplay{w: w}
}

// RenderSuccess renders a completed stage.
// Shows: ● Resolved 2 servers (0.3s)
func (pd *PhaseDisplay) RenderSuccess(name string, duration time.Duration) {
	symbolStyle := lipgloss.NewStyle().Foreground(ColorSuccess)
	timingStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	fmt.Fprintf(pd.w, "%s %s %s\n",
		symbolStyle.Render(SymbolComplete),
		name,
		timingStyle.Render(formatDuration(duration)),
	)
}

// RenderFailed renders a failed stage.
// Shows: ✗ Deployment failed (2m3s)
func (pd *PhaseDisplay) RenderFailed(name string, duration time.Duration) {
	symbolStyle := lipgloss.NewStyle().Foreground(ColorError)
	timingStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	fmt.Fprintf(pd.w, "%s %s %s\n",
		symbolStyle.Render(SymbolFail),
		name,
		timingStyle.Render(formatDuration(duration)),
	)
}

// RenderSkipped renders a stage that didn't run.
// Shows: ⊘ Dispatch (declined)
func (pd *PhaseDisplay) RenderSkipped(name string, reason string) {
	symbolStyle := lipgloss.NewStyle().Foreground(ColorWarning)
	reasonStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	if reason == "" {
		fmt.Fprintf(pd.w, "%s %s\n", symbolStyle.Render(SymbolSkipped), name)
		return
	}
	fmt.Fprintf(pd.w, "%s %s %s\n",
		symbolStyle.Render(SymbolSkipped),
		name,
		reasonStyle.Render("("+reason+")"),
	)
}

// RenderWaiting renders an in-progress line with the time it was printed.
// Shows: ◐ Watching action 100 (every 15s)
func (pd *PhaseDisplay) RenderWaiting(name string, detail string) {
	symbolStyle := lipgloss.NewStyle().Foreground(ColorSecondary)
	detailStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	fmt.Fprintf(pd.w, "%s %s %s\n", symbolStyle.Render(SymbolProgress), name, detailStyle.Render(detail))
}

// Stamp renders a muted timestamp line above a report.
func (pd *PhaseDisplay) Stamp(t time.Time) {
	style := lipgloss.NewStyle().Foreground(ColorMuted)
	fmt.Fprintf(pd.w, "\n%s\n", style.Render(t.Format("15:04:05")))
}

// Divider renders a horizontal line.
func (pd *PhaseDisplay) Divider() {
	style := lipgloss.NewStyle().Foreground(ColorMuted)
	fmt.Fprintf(pd.w, "\n%s\n\n", style.Render(strings.Repeat("━", DividerWidth)))
}

// formatDuration renders durations the way phase lines show them:
// sub-minute values with one decimal, longer ones rounded to seconds.
func formatDuration(d time.Duration) string {
	if d >= time.Minute {
		return "(" + d.Round(time.Second).String() + ")"
	}
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("(%.2fs)", secs)
	}
	return fmt.Sprintf("(%.1fs)", secs)
}
