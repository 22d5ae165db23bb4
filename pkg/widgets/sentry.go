package widgets

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/desk-pulse/pkg/app"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors/sentry"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/components"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/pulse"
)

// sentryHint is the guidance shown when the Sentry adapter reports missing
// or rejected credentials.
const sentryHint = "set SENTRY_AUTH_TOKEN"

// SentryWidget displays unresolved issues as a selectable list; enter or a
// click opens the selected issue in the browser.
type SentryWidget struct {
	state    pulse.WidgetState
	frame    string
	selected int
}

// NewSentryWidget creates a new SentryWidget.
func NewSentryWidget() *SentryWidget {
	return &SentryWidget{}
}

// ID returns the unique identifier for this widget.
func (w *SentryWidget) ID() string {
	return "sentry"
}

// Title returns the human-readable display name.
func (w *SentryWidget) Title() string {
	return "Sentry"
}

// MinSize returns the minimum width and height this widget requires.
func (w *SentryWidget) MinSize() (int, int) {
	return 30, 4
}

// Update stores reconciled state updates and tick frames. A click on a row
// zone selects that issue and opens it.
func (w *SentryWidget) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case app.StateUpdateEvent:
		if msg.WidgetID != w.ID() {
			return nil
		}
		w.state = msg.State
		w.selected = clampSelection(w.selected, len(w.issues()))
	case app.TickEvent:
		w.frame = msg.Frame
	case tea.MouseMsg:
		for i := range w.issues() {
			if zone.Get(w.rowZone(i)).InBounds(msg) {
				w.selected = i
				return w.openSelected()
			}
		}
	}
	return nil
}

// HandleKey moves the selection and opens the selected issue.
func (w *SentryWidget) HandleKey(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "up", "k":
		w.selected = clampSelection(w.selected-1, len(w.issues()))
	case "down", "j":
		w.selected = clampSelection(w.selected+1, len(w.issues()))
	case "enter", "o":
		return w.openSelected()
	}
	return nil
}

// View renders the widget content into the given area dimensions.
func (w *SentryWidget) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	switch w.state.Phase {
	case pulse.PhaseLoading:
		return loadingView(w.frame, "Sentry", width, height)
	case pulse.PhaseDegraded:
		lines := degradedLines(w.state, sentryHint, width)
		if is := w.issues(); is != nil {
			lines = append(lines, w.sentryBody(is, width, height-len(lines))...)
		}
		return fitLines(lines, width, height)
	default:
		if !w.state.HasData() {
			return centerMessage(components.MutedStyle.Render("No data"), width, height)
		}
		return fitLines(w.sentryBody(w.issues(), width, height), width, height)
	}
}

// sentryBody renders the unresolved count plus one zone-marked issue row
// per line, windowed around the selection.
func (w *SentryWidget) sentryBody(is []sentry.Issue, width, height int) []string {
	if len(is) == 0 {
		return []string{components.MutedStyle.Render("No unresolved issues")}
	}

	lines := []string{components.FaintStyle.Render(fmt.Sprintf("%d unresolved", len(is)))}

	rows := height - len(lines)
	start := scrollWindow(w.selected, len(is), rows)
	for i := start; i < len(is) && i-start < rows; i++ {
		lines = append(lines, zone.Mark(w.rowZone(i), w.sentryRow(is[i], i == w.selected, width)))
	}
	return lines
}

// sentryRow renders "3d 142x title" with age and event count leading, plus
// a bot marker for crawler-generated issues.
func (w *SentryWidget) sentryRow(issue sentry.Issue, selected bool, width int) string {
	age := fmt.Sprintf("%4s", issue.Age)
	count := components.WarnStyle.Render(fmt.Sprintf("%5dx", issue.Events))

	title := issue.Title
	if selected {
		title = components.SelectedStyle.Render(title)
	}
	line := fmt.Sprintf("%s %s %s", components.FaintStyle.Render(age), count, title)
	if issue.IsBot {
		line += " " + components.FaintStyle.Render("[bot]")
	}
	return components.Truncate(line, width)
}

// openSelected opens the selected issue's URL.
func (w *SentryWidget) openSelected() tea.Cmd {
	is := w.issues()
	if len(is) == 0 {
		return nil
	}
	url := is[clampSelection(w.selected, len(is))].URL
	if url == "" {
		return nil
	}
	return func() tea.Msg { return app.OpenLinkEvent{URL: url} }
}

// issues returns the payload slice, nil when none is available.
func (w *SentryWidget) issues() []sentry.Issue {
	is, ok := pulse.DataAs[[]sentry.Issue](w.state)
	if !ok {
		return nil
	}
	return is
}

// rowZone names the clickable zone for one issue row.
func (w *SentryWidget) rowZone(i int) string {
	return w.ID() + ":" + strconv.Itoa(i)
}

// Compile-time check that SentryWidget satisfies the Widget interface.
var _ app.Widget = (*SentryWidget)(nil)
