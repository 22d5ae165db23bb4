package widgets

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/desk-pulse/pkg/app"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors/docker"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/components"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/pulse"
)

// DockerWidget displays running containers as a selectable list.
type DockerWidget struct {
	state    pulse.WidgetState
	frame    string
	selected int
}

// NewDockerWidget creates a new DockerWidget.
func NewDockerWidget() *DockerWidget {
	return &DockerWidget{}
}

// ID returns the unique identifier for this widget.
func (w *DockerWidget) ID() string {
	return "docker"
}

// Title returns the human-readable display name.
func (w *DockerWidget) Title() string {
	return "Docker"
}

// MinSize returns the minimum width and height this widget requires.
func (w *DockerWidget) MinSize() (int, int) {
	return 30, 4
}

// Update stores reconciled state updates and tick frames, and selects the
// clicked row on zone hits.
func (w *DockerWidget) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case app.StateUpdateEvent:
		if msg.WidgetID != w.ID() {
			return nil
		}
		w.state = msg.State
		w.selected = clampSelection(w.selected, len(w.containers()))
	case app.TickEvent:
		w.frame = msg.Frame
	case tea.MouseMsg:
		for i := range w.containers() {
			if zone.Get(w.rowZone(i)).InBounds(msg) {
				w.selected = i
				break
			}
		}
	}
	return nil
}

// HandleKey moves the selection; containers carry no URL so enter is a
// no-op here.
func (w *DockerWidget) HandleKey(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "up", "k":
		w.selected = clampSelection(w.selected-1, len(w.containers()))
	case "down", "j":
		w.selected = clampSelection(w.selected+1, len(w.containers()))
	}
	return nil
}

// View renders the widget content into the given area dimensions.
func (w *DockerWidget) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	switch w.state.Phase {
	case pulse.PhaseLoading:
		return loadingView(w.frame, "containers", width, height)
	case pulse.PhaseDegraded:
		lines := degradedLines(w.state, "", width)
		if cs := w.containers(); cs != nil {
			lines = append(lines, w.dockerBody(cs, width, height-len(lines))...)
		}
		return fitLines(lines, width, height)
	default:
		if !w.state.HasData() {
			return centerMessage(components.MutedStyle.Render("No data"), width, height)
		}
		return fitLines(w.dockerBody(w.containers(), width, height), width, height)
	}
}

// dockerBody renders the header count plus one zone-marked row per
// container, windowed around the selection.
func (w *DockerWidget) dockerBody(cs []docker.Container, width, height int) []string {
	if len(cs) == 0 {
		return []string{components.MutedStyle.Render("No containers running")}
	}

	lines := []string{components.FaintStyle.Render(fmt.Sprintf("%d running", len(cs)))}

	rows := height - len(lines)
	start := scrollWindow(w.selected, len(cs), rows)
	for i := start; i < len(cs) && i-start < rows; i++ {
		lines = append(lines, zone.Mark(w.rowZone(i), w.dockerRow(cs[i], i == w.selected, width)))
	}
	return lines
}

// dockerRow renders "● name image status" with ports appended when present.
func (w *DockerWidget) dockerRow(c docker.Container, selected bool, width int) string {
	dot := components.GoodStyle.Render(upDot)
	detail := c.Image
	if c.Ports != "" {
		detail += "  :" + c.Ports
	}
	if c.Uptime != "" {
		detail += "  " + c.Uptime
	}

	name := c.Name
	if selected {
		name = components.SelectedStyle.Render(name)
	}
	line := dot + " " + name + "  " + components.FaintStyle.Render(detail)
	return components.Truncate(line, width)
}

// containers returns the payload slice, nil when none is available.
func (w *DockerWidget) containers() []docker.Container {
	cs, ok := pulse.DataAs[[]docker.Container](w.state)
	if !ok {
		return nil
	}
	return cs
}

// rowZone names the clickable zone for one container row.
func (w *DockerWidget) rowZone(i int) string {
	return w.ID() + ":" + strconv.Itoa(i)
}

// Compile-time check that DockerWidget satisfies the Widget interface.
var _ app.Widget = (*DockerWidget)(nil)
