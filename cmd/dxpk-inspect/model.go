// Package main implements dxpk-inspect, a read-only Bubble Tea browser
// over a .dxpk archive: an event list grouped by activity, an inspector
// pane resolving the selected event's index tree back to View attributes,
// and a status line with device info and pool size.
package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/connglli/dxpk/device"
	"github.com/connglli/dxpk/event"
)

type viewMode int

const (
	viewList viewMode = iota
	viewInspect
)

type rowKind int

const (
	rowGroup rowKind = iota
	rowEvent
)

// displayRow is one line in the list pane: either an activity group header
// or one of its events, mirroring the teacher's tx-summary/event split in
// tui/model.go, grouped by activity name instead of transaction ID.
type displayRow struct {
	kind     rowKind
	groupIdx int // rowGroup: index into Model.groups; rowEvent: owning group
	eventIdx int // rowEvent: index into Model.events
}

// group is a maximal run of consecutive events sharing one activity name.
type group struct {
	activity string
	events   []int // indices into Model.events, in order
}

// Model is the dxpk-inspect Bubble Tea model. It never mutates the loaded
// archive: the archive fields (path, dev, app, pool, events, groups) are
// populated once at New and left read-only by Update, which changes only
// the layout, cursor, collapse and view-mode state.
type Model struct {
	path   string
	dev    device.Info
	app    string
	pool   int
	events []event.Event
	groups []group

	collapsed map[int]bool

	width, height int
	cursor        int
	displayRows   []displayRow

	view          viewMode
	inspectScroll int

	err error
}

// New builds a model over an archive already loaded from path, with its
// initial, fully-expanded display rows.
func New(path string, dev device.Info, app string, poolSize int, events []event.Event) Model {
	m := Model{
		path:      path,
		dev:       dev,
		app:       app,
		pool:      poolSize,
		events:    events,
		collapsed: make(map[int]bool),
	}
	m.groups = groupByActivity(events)
	m.displayRows = m.rebuildDisplayRows()
	return m
}

func groupByActivity(events []event.Event) []group {
	var groups []group
	for i, e := range events {
		name := ""
		if a := e.Activity(); a != nil {
			name = a.Name
		}
		if len(groups) == 0 || groups[len(groups)-1].activity != name {
			groups = append(groups, group{activity: name})
		}
		last := len(groups) - 1
		groups[last].events = append(groups[last].events, i)
	}
	return groups
}

func (m Model) rebuildDisplayRows() []displayRow {
	var rows []displayRow
	for gi, g := range m.groups {
		rows = append(rows, displayRow{kind: rowGroup, groupIdx: gi})
		if m.collapsed[gi] {
			continue
		}
		for _, ei := range g.events {
			rows = append(rows, displayRow{kind: rowEvent, groupIdx: gi, eventIdx: ei})
		}
	}
	return rows
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		switch m.view {
		case viewInspect:
			return m.updateInspect(msg)
		case viewList:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		if row, ok := m.cursorRow(); ok && row.kind == rowEvent {
			m.view = viewInspect
			m.inspectScroll = 0
		}
		return m, nil
	case " ":
		return m.toggleGroup(), nil
	case "j", "down":
		return m.navigate(1), nil
	case "k", "up":
		return m.navigate(-1), nil
	}
	return m, nil
}

func (m Model) updateInspect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.view = viewList
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	case "j", "down":
		maxScroll := max(len(m.inspectLines())-m.inspectVisibleRows(), 0)
		if m.inspectScroll < maxScroll {
			m.inspectScroll++
		}
		return m, nil
	case "k", "up":
		if m.inspectScroll > 0 {
			m.inspectScroll--
		}
		return m, nil
	}
	return m, nil
}

func (m Model) cursorRow() (displayRow, bool) {
	if m.cursor < 0 || m.cursor >= len(m.displayRows) {
		return displayRow{}, false
	}
	return m.displayRows[m.cursor], true
}

func (m Model) toggleGroup() Model {
	row, ok := m.cursorRow()
	if !ok {
		return m
	}
	gi := row.groupIdx
	m.collapsed[gi] = !m.collapsed[gi]
	m.displayRows = m.rebuildDisplayRows()
	for i, r := range m.displayRows {
		if r.kind == rowGroup && r.groupIdx == gi {
			m.cursor = i
			break
		}
	}
	return m
}

func (m Model) navigate(delta int) Model {
	n := len(m.displayRows)
	if n == 0 {
		return m
	}
	m.cursor = min(max(m.cursor+delta, 0), n-1)
	return m
}

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}
	if m.view == viewInspect {
		return m.renderInspector()
	}

	footer := "q: quit  j/k: navigate  space: toggle group  enter: inspect"
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderStatus(),
		m.renderList(m.listHeight()),
		footer,
	)
}

func (m Model) listHeight() int {
	return max(m.height-5, 3)
}
