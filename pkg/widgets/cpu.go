package widgets

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/desk-pulse/pkg/app"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors/cpu"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/components"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/pulse"
)

// CPUWidget displays overall CPU utilization, a per-core breakdown, and the
// busiest processes.
type CPUWidget struct {
	state   pulse.WidgetState
	frame   string
	perCore bool
}

// NewCPUWidget creates a new CPUWidget.
func NewCPUWidget() *CPUWidget {
	return &CPUWidget{}
}

// ID returns the unique identifier for this widget.
func (w *CPUWidget) ID() string {
	return "cpu"
}

// Title returns the human-readable display name.
func (w *CPUWidget) Title() string {
	return "CPU"
}

// MinSize returns the minimum width and height this widget requires.
func (w *CPUWidget) MinSize() (int, int) {
	return 25, 4
}

// Update stores reconciled state updates and tick frames.
func (w *CPUWidget) Update(msg tea.Msg) tea.Cmd {
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

// HandleKey processes key events when this widget has focus. 'c' toggles
// between the top-process list and the per-core breakdown.
func (w *CPUWidget) HandleKey(key tea.KeyMsg) tea.Cmd {
	if key.String() == "c" {
		w.perCore = !w.perCore
	}
	return nil
}

// View renders the widget content into the given area dimensions.
func (w *CPUWidget) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	switch w.state.Phase {
	case pulse.PhaseLoading:
		return loadingView(w.frame, "CPU", width, height)
	case pulse.PhaseDegraded:
		lines := degradedLines(w.state, "", width)
		if stats, ok := pulse.DataAs[cpu.CPUStats](w.state); ok {
			lines = append(lines, w.cpuBody(stats, width)...)
		}
		return fitLines(lines, width, height)
	default:
		stats, ok := pulse.DataAs[cpu.CPUStats](w.state)
		if !ok {
			return centerMessage(components.MutedStyle.Render("No data"), width, height)
		}
		return fitLines(w.cpuBody(stats, width), width, height)
	}
}

// cpuBody renders the overall gauge followed by either the per-core
// breakdown or the top-process list.
func (w *CPUWidget) cpuBody(stats cpu.CPUStats, width int) []string {
	lines := []string{cpuGaugeLine("CPU", stats.OverallPercent, width)}

	if w.perCore {
		for _, core := range stats.Cores {
			label := fmt.Sprintf("#%d", core.ID)
			lines = append(lines, cpuGaugeLine(label, core.Percent, width))
		}
		return lines
	}

	if len(stats.Cores) > 0 {
		lines = append(lines, components.FaintStyle.Render(
			fmt.Sprintf("%d cores ('c' for breakdown)", len(stats.Cores))))
	}
	for _, p := range stats.TopProcesses {
		name := components.Ellipsis(p.Name, width-7)
		pct := fmt.Sprintf("%5.1f%%", p.Percent)
		lines = append(lines, components.PadRight(name, width-7)+" "+pct)
	}
	return lines
}

// cpuGaugeLine renders "label ▐bar▌ NN%" sized to the row width.
func cpuGaugeLine(label string, pct float64, width int) string {
	barWidth := width - len(label) - 7 // label + space + bar + " NNN%"
	if barWidth < 5 {
		barWidth = 5
	}
	return fmt.Sprintf("%s %s %3.0f%%", label, components.Bar(pct/100, barWidth), pct)
}

// Compile-time check that CPUWidget satisfies the Widget interface.
var _ app.Widget = (*CPUWidget)(nil)
