package ui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/rollout/internal/deploy"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a new Bubbles table with default styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{
			Title: c.Title,
			Width: c.Width,
		}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.
		Foreground(ColorPrimary)
	// Nothing is focused, so the selected row must look like any other.
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	t := NewTable(columns, tableRows)
	return t.View()
}

// RenderServerTable lists the servers a script is about to run on,
// sorted by hostname.
func RenderServerTable(servers deploy.ServerSet) string {
	if len(servers) == 0 {
		return "No servers in this group"
	}

	ids := make([]int, 0, len(servers))
	hostWidth := len("HOSTNAME")
	for id, s := range servers {
		ids = append(ids, id)
		if w := lipgloss.Width(s.Hostname); w > hostWidth {
			hostWidth = w
		}
	}
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := strings.ToLower(servers[ids[i]].Hostname), strings.ToLower(servers[ids[j]].Hostname)
		if a == b {
			return ids[i] < ids[j]
		}
		return a < b
	})

	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, []string{servers[id].Hostname, strconv.Itoa(id)})
	}

	return RenderSimpleTable([]TableColumn{
		{Title: "HOSTNAME", Width: hostWidth + 2},
		{Title: "ID", Width: 10},
	}, rows)
}

// RenderReport renders an activity report as a flat table: one row per
// server, then the summary row under a divider.
func RenderReport(report deploy.Report) string {
	if len(report) == 0 {
		return "No activity yet"
	}

	hostWidth := len("HOST")
	for _, rec := range report {
		if w := lipgloss.Width(rec.Hostname); w > hostWidth {
			hostWidth = w
		}
	}
	hostWidth += 3
	statusWidth := len("  in-progress") + 3

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary)
	mutedStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	summaryStyle := lipgloss.NewStyle().Bold(true)

	var b strings.Builder
	b.WriteString(headerStyle.Render("  " + padRight("HOST", hostWidth) + padRight("STATUS", statusWidth) + "ACTION"))
	b.WriteString("\n")

	for _, rec := range report {
		host := rec.Hostname
		if rec.Summary {
			b.WriteString(mutedStyle.Render("  " + strings.Repeat("─", hostWidth+statusWidth+len("ACTION"))))
			b.WriteString("\n")
			host = summaryStyle.Render(host)
		}
		action := mutedStyle.Render(fmt.Sprintf("#%d", rec.ActionID))
		b.WriteString("  " + padRight(host, hostWidth) + padRight(RenderStatus(rec.Status), statusWidth) + action)
		b.WriteString("\n")
	}

	return b.String()
}

// padRight pads a string to the specified width.
func padRight(s string, width int) string {
	// Account for ANSI codes when calculating visible length
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visibleLen)
}
