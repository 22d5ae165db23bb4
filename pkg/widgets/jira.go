package widgets

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/desk-pulse/pkg/app"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors/jira"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/components"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/pulse"
)

// jiraHint is the guidance shown when the Jira adapter reports missing or
// rejected credentials.
const jiraHint = "set JIRA_EMAIL and JIRA_API_TOKEN"

// JiraWidget displays the most recently updated tickets as a selectable
// list; enter or a click opens the selected ticket in the browser.
type JiraWidget struct {
	state    pulse.WidgetState
	frame    string
	selected int
}

// NewJiraWidget creates a new JiraWidget.
func NewJiraWidget() *JiraWidget {
	return &JiraWidget{}
}

// ID returns the unique identifier for this widget.
func (w *JiraWidget) ID() string {
	return "jira"
}

// Title returns the human-readable display name.
func (w *JiraWidget) Title() string {
	return "Jira"
}

// MinSize returns the minimum width and height this widget requires.
func (w *JiraWidget) MinSize() (int, int) {
	return 30, 4
}

// Update stores reconciled state updates and tick frames. A click on a row
// zone selects that ticket and opens it.
func (w *JiraWidget) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case app.StateUpdateEvent:
		if msg.WidgetID != w.ID() {
			return nil
		}
		w.state = msg.State
		w.selected = clampSelection(w.selected, len(w.tickets()))
	case app.TickEvent:
		w.frame = msg.Frame
	case tea.MouseMsg:
		for i := range w.tickets() {
			if zone.Get(w.rowZone(i)).InBounds(msg) {
				w.selected = i
				return w.openSelected()
			}
		}
	}
	return nil
}

// HandleKey moves the selection and opens the selected ticket.
func (w *JiraWidget) HandleKey(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "up", "k":
		w.selected = clampSelection(w.selected-1, len(w.tickets()))
	case "down", "j":
		w.selected = clampSelection(w.selected+1, len(w.tickets()))
	case "enter", "o":
		return w.openSelected()
	}
	return nil
}

// View renders the widget content into the given area dimensions.
func (w *JiraWidget) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	switch w.state.Phase {
	case pulse.PhaseLoading:
		return loadingView(w.frame, "Jira", width, height)
	case pulse.PhaseDegraded:
		lines := degradedLines(w.state, jiraHint, width)
		if ts := w.tickets(); ts != nil {
			lines = append(lines, w.jiraBody(ts, width, height-len(lines))...)
		}
		return fitLines(lines, width, height)
	default:
		if !w.state.HasData() {
			return centerMessage(components.MutedStyle.Render("No data"), width, height)
		}
		return fitLines(w.jiraBody(w.tickets(), width, height), width, height)
	}
}

// jiraBody renders one zone-marked ticket row per line, windowed around the
// selection, with the selected ticket's status and assignee as a footer.
func (w *JiraWidget) jiraBody(ts []jira.Ticket, width, height int) []string {
	if len(ts) == 0 {
		return []string{components.MutedStyle.Render("No tickets")}
	}

	rows := height - 1 // footer line
	if rows < 1 {
		rows = 1
	}

	var lines []string
	start := scrollWindow(w.selected, len(ts), rows)
	for i := start; i < len(ts) && i-start < rows; i++ {
		lines = append(lines, zone.Mark(w.rowZone(i), w.jiraRow(ts[i], i == w.selected, width)))
	}

	sel := ts[clampSelection(w.selected, len(ts))]
	footer := fmt.Sprintf("%s, %s", sel.Status, sel.Assignee)
	lines = append(lines, components.FaintStyle.Render(components.Truncate(footer, width)))
	return lines
}

// jiraRow renders "KEY summary" with the key accented.
func (w *JiraWidget) jiraRow(t jira.Ticket, selected bool, width int) string {
	key := components.AccentStyle.Render(t.Key)
	if selected {
		key = components.SelectedStyle.Render(t.Key)
	}
	return components.Truncate(key+" "+t.Summary, width)
}

// openSelected opens the selected ticket's URL.
func (w *JiraWidget) openSelected() tea.Cmd {
	ts := w.tickets()
	if len(ts) == 0 {
		return nil
	}
	url := ts[clampSelection(w.selected, len(ts))].URL
	if url == "" {
		return nil
	}
	return func() tea.Msg { return app.OpenLinkEvent{URL: url} }
}

// tickets returns the payload slice, nil when none is available.
func (w *JiraWidget) tickets() []jira.Ticket {
	ts, ok := pulse.DataAs[[]jira.Ticket](w.state)
	if !ok {
		return nil
	}
	return ts
}

// rowZone names the clickable zone for one ticket row.
func (w *JiraWidget) rowZone(i int) string {
	return w.ID() + ":" + strconv.Itoa(i)
}

// Compile-time check that JiraWidget satisfies the Widget interface.
var _ app.Widget = (*JiraWidget)(nil)
