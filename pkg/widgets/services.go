package widgets

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/desk-pulse/pkg/app"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors/services"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/components"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/pulse"
)

// ServicesWidget displays the health probe results as a selectable list;
// enter or a click opens the selected service in the browser.
type ServicesWidget struct {
	state    pulse.WidgetState
	frame    string
	selected int
}

// NewServicesWidget creates a new ServicesWidget.
func NewServicesWidget() *ServicesWidget {
	return &ServicesWidget{}
}

// ID returns the unique identifier for this widget.
func (w *ServicesWidget) ID() string {
	return "services"
}

// Title returns the human-readable display name.
func (w *ServicesWidget) Title() string {
	return "Services"
}

// MinSize returns the minimum width and height this widget requires.
func (w *ServicesWidget) MinSize() (int, int) {
	return 30, 4
}

// Update stores reconciled state updates and tick frames. A click on a row
// zone selects that row and opens its URL.
func (w *ServicesWidget) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case app.StateUpdateEvent:
		if msg.WidgetID != w.ID() {
			return nil
		}
		w.state = msg.State
		w.selected = clampSelection(w.selected, len(w.services()))
	case app.TickEvent:
		w.frame = msg.Frame
	case tea.MouseMsg:
		for i := range w.services() {
			if zone.Get(w.rowZone(i)).InBounds(msg) {
				w.selected = i
				return w.openSelected()
			}
		}
	}
	return nil
}

// HandleKey moves the selection and opens the selected service.
func (w *ServicesWidget) HandleKey(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "up", "k":
		w.selected = clampSelection(w.selected-1, len(w.services()))
	case "down", "j":
		w.selected = clampSelection(w.selected+1, len(w.services()))
	case "enter", "o":
		return w.openSelected()
	}
	return nil
}

// View renders the widget content into the given area dimensions.
func (w *ServicesWidget) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	switch w.state.Phase {
	case pulse.PhaseLoading:
		return loadingView(w.frame, "services", width, height)
	case pulse.PhaseDegraded:
		lines := degradedLines(w.state, "add service targets to config.toml", width)
		if svcs := w.services(); svcs != nil {
			lines = append(lines, w.servicesBody(svcs, width, height-len(lines))...)
		}
		return fitLines(lines, width, height)
	default:
		if !w.state.HasData() {
			return centerMessage(components.MutedStyle.Render("No data"), width, height)
		}
		return fitLines(w.servicesBody(w.services(), width, height), width, height)
	}
}

// servicesBody renders one zone-marked probe row per service, windowed
// around the selection.
func (w *ServicesWidget) servicesBody(svcs []services.ServiceHealth, width, height int) []string {
	if len(svcs) == 0 {
		return []string{components.MutedStyle.Render("No services configured")}
	}

	var lines []string
	start := scrollWindow(w.selected, len(svcs), height)
	for i := start; i < len(svcs) && i-start < height; i++ {
		lines = append(lines, zone.Mark(w.rowZone(i), w.serviceRow(svcs[i], i == w.selected, width)))
	}
	return lines
}

// serviceRow renders "● name 200 123ms" for reachable services and
// "○ name error" for dead ones.
func (w *ServicesWidget) serviceRow(s services.ServiceHealth, selected bool, width int) string {
	name := s.Name
	if selected {
		name = components.SelectedStyle.Render(name)
	}

	var line string
	switch {
	case s.Up:
		line = fmt.Sprintf("%s %s  %d  %dms",
			components.GoodStyle.Render(upDot), name, s.StatusCode, s.LatencyMS)
	case s.Error != "":
		line = fmt.Sprintf("%s %s  %s",
			components.AlertStyle.Render(downDot), name, components.FaintStyle.Render(s.Error))
	default:
		line = fmt.Sprintf("%s %s  %d  %dms",
			components.AlertStyle.Render(downDot), name, s.StatusCode, s.LatencyMS)
	}
	return components.Truncate(line, width)
}

// openSelected opens the selected service's URL.
func (w *ServicesWidget) openSelected() tea.Cmd {
	svcs := w.services()
	if len(svcs) == 0 {
		return nil
	}
	url := svcs[clampSelection(w.selected, len(svcs))].URL
	if url == "" {
		return nil
	}
	return func() tea.Msg { return app.OpenLinkEvent{URL: url} }
}

// services returns the probe records, nil when none are available.
func (w *ServicesWidget) services() []services.ServiceHealth {
	report, ok := pulse.DataAs[services.HealthReport](w.state)
	if !ok {
		return nil
	}
	return report.Services
}

// rowZone names the clickable zone for one service row.
func (w *ServicesWidget) rowZone(i int) string {
	return w.ID() + ":" + strconv.Itoa(i)
}

// Compile-time check that ServicesWidget satisfies the Widget interface.
var _ app.Widget = (*ServicesWidget)(nil)
