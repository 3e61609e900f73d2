package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/connglli/dxpk/event"
	"github.com/connglli/dxpk/viewtree"
)

func (m Model) inspectVisibleRows() int {
	return max(m.height-2, 3)
}

func (m Model) inspectLines() []string {
	row, ok := m.cursorRow()
	if !ok || row.kind != rowEvent {
		return nil
	}
	e := m.events[row.eventIdx]

	lines := []string{
		"Kind:     " + e.Kind().String(),
		"Event:    " + e.String(),
	}

	act := e.Activity()
	if act != nil {
		lines = append(lines, "Activity: "+act.Name, "App:      "+act.App)
	}

	x, y, hasPoint := eventPoint(e)
	if !hasPoint || act == nil || act.Decor == nil {
		return lines
	}

	v := act.Decor.FindViewByXY(x, y, true, true)
	lines = append(lines, "", fmt.Sprintf("View at (%d, %d):", x, y))
	if v == nil {
		lines = append(lines, "  (no view found)")
		return lines
	}
	lines = append(lines, viewLines(v)...)
	return lines
}

// eventPoint extracts the (x, y) a tap or swipe fired at, for resolving
// against the recorded tree. Key events carry no position.
func eventPoint(e event.Event) (x, y int, ok bool) {
	switch ev := e.(type) {
	case *event.TapEvent:
		return ev.X, ev.Y, true
	case *event.SwipeEvent:
		return ev.X, ev.Y, true
	}
	return 0, 0, false
}

func viewLines(v *viewtree.View) []string {
	lines := []string{
		"  Class:      " + v.Class,
		fmt.Sprintf("  Kind:       %s", v.Kind),
	}
	if id := v.ResID(); id != "" {
		lines = append(lines, "  ResID:      "+id)
	}
	if v.Text != "" {
		lines = append(lines, "  Text:       "+v.Text)
	}
	if v.Desc != "" {
		lines = append(lines, "  Desc:       "+v.Desc)
	}
	lines = append(lines,
		fmt.Sprintf("  Rect:       (%d, %d)-(%d, %d)", v.Left, v.Top, v.Right, v.Bottom),
		fmt.Sprintf("  Visibility: %s (effective: %s)", v.Visibility, v.EffectiveVisibility()),
		fmt.Sprintf("  Flags:      %s", flagSummary(v)),
	)
	return lines
}

func flagSummary(v *viewtree.View) string {
	var flags []string
	add := func(name string, set bool) {
		if set {
			flags = append(flags, name)
		}
	}
	add("enabled", v.Enabled)
	add("focusable", v.Focusable)
	add("focused", v.Focused)
	add("selected", v.Selected)
	add("clickable", v.Clickable)
	add("long-clickable", v.LongClickable)
	add("context-clickable", v.ContextClickable)
	add("h-scrollable", v.HScrollable)
	add("v-scrollable", v.VScrollable)
	if len(flags) == 0 {
		return "(none)"
	}
	return strings.Join(flags, ", ")
}

func (m Model) renderInspector() string {
	innerWidth := max(m.width-4, 20)
	visibleRows := m.inspectVisibleRows()

	lines := m.inspectLines()
	if lines == nil {
		return ""
	}

	maxScroll := max(len(lines)-visibleRows, 0)
	scroll := min(m.inspectScroll, maxScroll)
	end := min(scroll+visibleRows, len(lines))
	content := strings.Join(lines[scroll:end], "\n")

	borderColor := lipgloss.Color("240")
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(innerWidth).
		BorderForeground(borderColor).
		Render(content)

	boxLines := strings.Split(box, "\n")
	if len(boxLines) > 0 {
		borderFg := lipgloss.NewStyle().Foreground(borderColor)
		titleStyle := lipgloss.NewStyle().Bold(true)
		title := " Inspector "
		dashes := max(innerWidth-len([]rune(title)), 0)
		boxLines[0] = borderFg.Render("╭") +
			titleStyle.Render(title) +
			borderFg.Render(strings.Repeat("─", dashes)+"╮")
	}
	if n := len(boxLines); n > 0 {
		borderFg := lipgloss.NewStyle().Foreground(borderColor)
		help := " q: back  j/k: scroll "
		dashes := max(innerWidth-len([]rune(help)), 0)
		boxLines[n-1] = borderFg.Render("╰") +
			lipgloss.NewStyle().Faint(true).Render(help) +
			borderFg.Render(strings.Repeat("─", dashes)+"╯")
	}
	return strings.Join(boxLines, "\n")
}
