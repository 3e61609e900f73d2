package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) renderStatus() string {
	d := m.dev
	line := fmt.Sprintf(" %s  %s %s (%s)  %dx%d@%d  sdk=%d  app=%s  views=%d ",
		m.path, d.Brand, d.Model, d.ABI, d.Width, d.Height, d.DPI, d.SDKLevel, m.app, m.pool)
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("4")).
		Render(line)
}

func (m Model) renderList(maxRows int) string {
	innerWidth := max(m.width-4, 20)

	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(innerWidth).
		BorderForeground(lipgloss.Color("240"))

	start := 0
	if len(m.displayRows) > maxRows {
		start = max(m.cursor-maxRows/2, 0)
		if start+maxRows > len(m.displayRows) {
			start = len(m.displayRows) - maxRows
		}
	}
	end := min(start+maxRows, len(m.displayRows))

	var rows []string
	for i := start; i < end; i++ {
		dr := m.displayRows[i]
		isCursor := i == m.cursor
		switch dr.kind {
		case rowGroup:
			rows = append(rows, m.renderGroupRow(dr, isCursor, innerWidth))
		case rowEvent:
			rows = append(rows, m.renderEventRow(dr, isCursor, innerWidth))
		}
	}

	content := strings.Join(rows, "\n")
	box := border.Render(content)

	title := fmt.Sprintf(" %d event(s), %d activit%s ", len(m.events), len(m.groups), plural(len(m.groups)))
	lines := strings.Split(box, "\n")
	if len(lines) > 0 {
		borderFg := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
		titleStyle := lipgloss.NewStyle().Bold(true)
		dashes := max(innerWidth-len([]rune(title)), 0)
		lines[0] = borderFg.Render("╭") +
			titleStyle.Render(title) +
			borderFg.Render(strings.Repeat("─", dashes)+"╮")
		box = strings.Join(lines, "\n")
	}
	return box
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

func (m Model) renderGroupRow(dr displayRow, isCursor bool, innerWidth int) string {
	g := m.groups[dr.groupIdx]

	marker := "  "
	if isCursor {
		marker = "▶ "
	}
	chevron := "▾ "
	if m.collapsed[dr.groupIdx] {
		chevron = "▸ "
	}

	name := g.activity
	if name == "" {
		name = "(unnamed activity)"
	}
	label := fmt.Sprintf("%s%s%-*s %d event(s)", marker, chevron, max(innerWidth-30, 10), name, len(g.events))
	if isCursor {
		return lipgloss.NewStyle().Bold(true).Render(label)
	}
	return label
}

func (m Model) renderEventRow(dr displayRow, isCursor bool, innerWidth int) string {
	e := m.events[dr.eventIdx]

	marker := "    "
	if isCursor {
		marker = "  ▶ "
	}
	line := marker + truncate(e.String(), max(innerWidth-8, 10))
	if isCursor {
		return lipgloss.NewStyle().Bold(true).Render(line)
	}
	return line
}
