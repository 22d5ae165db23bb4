package app

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/desk-pulse/pkg/components"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/pulse"
)

const (
	gridColumns = 2

	// cellZonePrefix namespaces the clickable zone marked around each grid
	// cell. Widgets mark their own zones inside the cell.
	cellZonePrefix = "cell:"

	// minCellHeight is the smallest outer cell height worth rendering:
	// two border rows, a title row, and one body row.
	minCellHeight = 4

	minTermWidth  = 24
	minTermHeight = 8
)

var zoneInit sync.Once

// Config holds the shell-level knobs. Widget behavior is configured on the
// widgets themselves.
type Config struct {
	// RefreshInterval is the cadence of the TickEvent chain that re-renders
	// relative timestamps and stale markers.
	RefreshInterval time.Duration

	// OpenURL handles OpenLinkEvents. Nil means links are ignored.
	OpenURL func(url string)
}

// DefaultConfig returns the standard shell configuration.
func DefaultConfig() Config {
	return Config{RefreshInterval: time.Second}
}

// Model is the root bubbletea model: a fixed two-column grid of widgets over
// a one-line status bar. It owns focus, expansion, the shared spinner, and
// the bridge that feeds reconciled widget states into the update loop.
type Model struct {
	cfg     Config
	widgets []Widget          // render and focus order
	byID    map[string]Widget // routing by widget ID
	states  map[string]pulse.WidgetState
	events  chan StateUpdateEvent
	spinner spinner.Model

	width    int
	height   int
	ready    bool
	focus    int
	expanded string // widget ID, "" when none
	quitting bool
}

var _ tea.Model = Model{}

// New builds the root model. Widgets render in the order given; sources are
// matched to widgets by widget ID, and each widget is seeded with its
// source's current state so the first frame never renders blind.
func New(cfg Config, sources []StateSource, widgets ...Widget) Model {
	zoneInit.Do(zone.NewGlobal)

	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultConfig().RefreshInterval
	}

	m := Model{
		cfg:     cfg,
		widgets: widgets,
		byID:    make(map[string]Widget, len(widgets)),
		states:  make(map[string]pulse.WidgetState, len(sources)),
		events:  fanIn(sources),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(components.AccentStyle),
		),
	}
	for _, w := range widgets {
		m.byID[w.ID()] = w
	}
	for _, src := range sources {
		st := src.Current()
		m.states[src.WidgetID()] = st
		if w, ok := m.byID[src.WidgetID()]; ok {
			w.Update(StateUpdateEvent{WidgetID: src.WidgetID(), State: st})
		}
	}
	return m
}

// Init starts the state bridge, the spinner, and the refresh ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		listenStates(m.events),
		m.spinner.Tick,
		TickCmd(m.cfg.RefreshInterval),
	)
}

// Update routes messages: global keys are handled here, remaining keys go to
// the focused widget, state updates go to their widget, and ticks broadcast
// to every widget.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StateUpdateEvent:
		m.states[msg.WidgetID] = msg.State
		var cmd tea.Cmd
		if w, ok := m.byID[msg.WidgetID]; ok {
			cmd = w.Update(msg)
		}
		return m, tea.Batch(cmd, listenStates(m.events))

	case TickEvent:
		msg.Frame = m.spinner.View()
		cmd := m.broadcast(msg)
		return m, tea.Batch(cmd, TickCmd(m.cfg.RefreshInterval))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.anyLoading() {
			// Keep loading cells animating between refresh ticks.
			bcast := m.broadcast(TickEvent{Time: time.Now(), Frame: m.spinner.View()})
			return m, tea.Batch(cmd, bcast)
		}
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case WidgetFocusEvent:
		m.focusTo(msg.WidgetID)
		return m, nil

	case WidgetExpandEvent:
		m.setExpanded(msg.WidgetID)
		return m, nil

	case OpenLinkEvent:
		open := m.cfg.OpenURL
		if open == nil || msg.URL == "" {
			return m, nil
		}
		url := msg.URL
		return m, func() tea.Msg {
			open(url)
			return nil
		}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "tab":
		m.cycleFocus(1)
		return m, nil
	case "shift+tab":
		m.cycleFocus(-1)
		return m, nil
	case "e":
		m.toggleExpand()
		return m, nil
	case "esc":
		m.expanded = ""
		return m, nil
	}
	if w := m.focusedWidget(); w != nil {
		return m, w.HandleKey(msg)
	}
	return m, nil
}

// handleMouse focuses the cell under a left-button release and forwards the
// event to that widget so it can hit-test its own row zones.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	for _, w := range m.widgets {
		if !zone.Get(cellZonePrefix + w.ID()).InBounds(msg) {
			continue
		}
		m.focusTo(w.ID())
		return m, w.Update(msg)
	}
	return m, nil
}

// broadcast sends msg to every widget and batches any commands they return.
func (m Model) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for _, w := range m.widgets {
		if cmd := w.Update(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// View renders the widget grid over the status bar. Before the first
// WindowSizeMsg there is nothing to size against, and after quit the screen
// is left clean.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}
	if m.width < minTermWidth || m.height < minTermHeight {
		return fmt.Sprintf("Terminal too small (%dx%d, need at least %dx%d)",
			m.width, m.height, minTermWidth, minTermHeight)
	}
	if len(m.widgets) == 0 {
		return "No widgets enabled."
	}

	avail := m.height - 1 // status bar

	if w, ok := m.byID[m.expanded]; ok {
		frame := lipgloss.JoinVertical(lipgloss.Left,
			m.renderCell(w, m.width, avail),
			m.statusBar(),
		)
		return zone.Scan(frame)
	}

	rows := (len(m.widgets) + gridColumns - 1) / gridColumns
	rowH := avail / rows
	if rowH < minCellHeight {
		return fmt.Sprintf("Terminal too small for %d widgets (try expanding one with 'e')",
			len(m.widgets))
	}
	extra := avail % rows

	var rendered []string
	for r := 0; r < rows; r++ {
		h := rowH
		if r < extra {
			h++
		}
		start := r * gridColumns
		end := start + gridColumns
		if end > len(m.widgets) {
			end = len(m.widgets)
		}
		rendered = append(rendered, m.renderRow(m.widgets[start:end], h))
	}
	rendered = append(rendered, m.statusBar())
	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left, rendered...))
}

// renderRow lays the row's widgets side by side. A lone trailing widget
// spans the full width.
func (m Model) renderRow(row []Widget, height int) string {
	if len(row) == 1 {
		return m.renderCell(row[0], m.width, height)
	}
	leftW := m.width / gridColumns
	cells := make([]string, len(row))
	for i, w := range row {
		cw := leftW
		if i == len(row)-1 {
			cw = m.width - leftW*(len(row)-1)
		}
		cells[i] = m.renderCell(w, cw, height)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// renderCell draws one bordered, titled, zone-marked cell. The widget's body
// gets the inner box minus the title line.
func (m Model) renderCell(w Widget, outerW, outerH int) string {
	iw := outerW - 2
	ih := outerH - 2

	title := components.TitleStyle.Render(components.Ellipsis(w.Title(), iw))
	content := title
	if ih > 1 {
		content += "\n" + w.View(iw, ih-1)
	}

	border := components.ColorMuted
	if fw := m.focusedWidget(); fw != nil && fw.ID() == w.ID() {
		border = components.ColorAccent
	}
	cell := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(iw).
		Height(ih).
		MaxWidth(outerW).
		MaxHeight(outerH).
		Render(content)
	return zone.Mark(cellZonePrefix+w.ID(), cell)
}

// statusBar renders the bottom line: spinner while anything is still
// loading, the most recent check time across all widgets, and key hints.
func (m Model) statusBar() string {
	left := " "
	if m.anyLoading() {
		left += m.spinner.View() + " "
	}
	if t, ok := m.latestCheck(); ok {
		left += components.FaintStyle.Render("checked " + t.Format("15:04:05"))
	} else {
		left += components.FaintStyle.Render("no data yet")
	}

	hints := components.FaintStyle.Render("tab:focus  e:expand  enter:open  q:quit")
	gap := m.width - components.VisibleLen(left) - components.VisibleLen(hints) - 1
	if gap < 1 {
		return components.Truncate(left, m.width)
	}
	return left + strings.Repeat(" ", gap) + hints + " "
}

// latestCheck returns the newest completed-fetch timestamp across every
// widget state. ok is false until any widget has completed a fetch.
func (m Model) latestCheck() (time.Time, bool) {
	var latest time.Time
	for _, st := range m.states {
		if at := st.LastActivity(); at.After(latest) {
			latest = at
		}
	}
	return latest, !latest.IsZero()
}

func (m Model) anyLoading() bool {
	for _, st := range m.states {
		if st.Phase == pulse.PhaseLoading {
			return true
		}
	}
	return false
}

// Width returns the last terminal width seen.
func (m Model) Width() int { return m.width }

// Height returns the last terminal height seen.
func (m Model) Height() int { return m.height }

// FocusedWidgetID returns the ID of the widget holding focus, or "" when no
// widgets are registered.
func (m Model) FocusedWidgetID() string {
	if w := m.focusedWidget(); w != nil {
		return w.ID()
	}
	return ""
}

// ExpandedWidgetID returns the ID of the fullscreen widget, or "" when the
// grid is showing.
func (m Model) ExpandedWidgetID() string { return m.expanded }

// Quitting reports whether a quit key has been handled.
func (m Model) Quitting() bool { return m.quitting }

// State returns the last reconciled state seen for a widget ID.
func (m Model) State(id string) (pulse.WidgetState, bool) {
	st, ok := m.states[id]
	return st, ok
}
