package widgets

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/desk-pulse/pkg/app"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors/ram"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/components"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/pulse"
)

// RAMWidget displays memory utilization and the processes with the largest
// resident footprints.
type RAMWidget struct {
	state pulse.WidgetState
	frame string
}

// NewRAMWidget creates a new RAMWidget.
func NewRAMWidget() *RAMWidget {
	return &RAMWidget{}
}

// ID returns the unique identifier for this widget.
func (w *RAMWidget) ID() string {
	return "ram"
}

// Title returns the human-readable display name.
func (w *RAMWidget) Title() string {
	return "Memory"
}

// MinSize returns the minimum width and height this widget requires.
func (w *RAMWidget) MinSize() (int, int) {
	return 25, 4
}

// Update stores reconciled state updates and tick frames.
func (w *RAMWidget) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case app.StateUpdateEvent:
		if msg.WidgetID != w.ID() {
			return nil
		}
		w.state = msg.State
	case app.TickEvent:
		w.frame = msg.Frame
	}
	return nil
}

// HandleKey is a no-op; the memory widget has no interactive state.
func (w *RAMWidget) HandleKey(_ tea.KeyMsg) tea.Cmd {
	return nil
}

// View renders the widget content into the given area dimensions.
func (w *RAMWidget) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	switch w.state.Phase {
	case pulse.PhaseLoading:
		return loadingView(w.frame, "memory", width, height)
	case pulse.PhaseDegraded:
		lines := degradedLines(w.state, "", width)
		if stats, ok := pulse.DataAs[ram.RAMStats](w.state); ok {
			lines = append(lines, ramBody(stats, width)...)
		}
		return fitLines(lines, width, height)
	default:
		stats, ok := pulse.DataAs[ram.RAMStats](w.state)
		if !ok {
			return centerMessage(components.MutedStyle.Render("No data"), width, height)
		}
		return fitLines(ramBody(stats, width), width, height)
	}
}

// ramBody renders the usage gauge, the used/total line, and the largest
// processes.
func ramBody(stats ram.RAMStats, width int) []string {
	lines := []string{
		cpuGaugeLine("RAM", stats.Percent, width),
		components.FaintStyle.Render(
			fmt.Sprintf("%s of %s", formatBytes(stats.UsedBytes), formatBytes(stats.TotalBytes))),
	}
	for _, p := range stats.TopProcesses {
		name := components.Ellipsis(p.Name, width-10)
		size := fmt.Sprintf("%9s", formatBytes(p.MemoryBytes))
		lines = append(lines, components.PadRight(name, width-10)+" "+size)
	}
	return lines
}

// Compile-time check that RAMWidget satisfies the Widget interface.
var _ app.Widget = (*RAMWidget)(nil)
