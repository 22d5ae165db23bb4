package widgets

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/desk-pulse/pkg/app"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors/disk"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/components"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/pulse"
)

// DiskWidget displays usage gauges for every tracked mount point.
type DiskWidget struct {
	state pulse.WidgetState
	frame string
}

// NewDiskWidget creates a new DiskWidget.
func NewDiskWidget() *DiskWidget {
	return &DiskWidget{}
}

// ID returns the unique identifier for this widget.
func (w *DiskWidget) ID() string {
	return "disk"
}

// Title returns the human-readable display name.
func (w *DiskWidget) Title() string {
	return "Disk"
}

// MinSize returns the minimum width and height this widget requires.
func (w *DiskWidget) MinSize() (int, int) {
	return 25, 4
}

// Update stores reconciled state updates and tick frames.
func (w *DiskWidget) Update(msg tea.Msg) tea.Cmd {
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

// HandleKey is a no-op; the disk widget has no interactive state.
func (w *DiskWidget) HandleKey(_ tea.KeyMsg) tea.Cmd {
	return nil
}

// View renders the widget content into the given area dimensions.
func (w *DiskWidget) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	switch w.state.Phase {
	case pulse.PhaseLoading:
		return loadingView(w.frame, "disk", width, height)
	case pulse.PhaseDegraded:
		lines := degradedLines(w.state, "", width)
		if stats, ok := pulse.DataAs[disk.DiskStats](w.state); ok {
			lines = append(lines, diskBody(stats, width)...)
		}
		return fitLines(lines, width, height)
	default:
		stats, ok := pulse.DataAs[disk.DiskStats](w.state)
		if !ok {
			return centerMessage(components.MutedStyle.Render("No data"), width, height)
		}
		return fitLines(diskBody(stats, width), width, height)
	}
}

// diskBody renders one gauge line per mount plus a faint used/total line.
func diskBody(stats disk.DiskStats, width int) []string {
	if len(stats.Mounts) == 0 {
		return []string{components.MutedStyle.Render("No mounts found")}
	}

	var lines []string
	for _, m := range stats.Mounts {
		label := m.Path
		if len(label) > 12 {
			label = label[:12]
		}
		lines = append(lines, cpuGaugeLine(label, m.Percent, width))
		lines = append(lines, components.FaintStyle.Render(
			fmt.Sprintf("  %s of %s", formatBytes(m.UsedBytes), formatBytes(m.TotalBytes))))
	}
	return lines
}

// Compile-time check that DiskWidget satisfies the Widget interface.
var _ app.Widget = (*DiskWidget)(nil)
