// Package widgets provides the concrete widget implementations for the
// desk-pulse TUI dashboard. Each widget implements the app.Widget interface,
// renders whatever its last reconciled state allows, and receives data only
// as app.StateUpdateEvents.
package widgets

import (
	"fmt"
	"strings"
	"time"

	"gitlab.com/tinyland/lab/desk-pulse/pkg/components"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/pulse"
)

// Status indicator characters.
const (
	upDot   = "●" // ● filled circle
	downDot = "○" // ○ empty circle
)

// loadingView renders the uniform loading body: the shared spinner frame
// plus a "Loading ..." line, centered in the cell.
func loadingView(frame, label string, width, height int) string {
	line := strings.TrimSpace(frame + " " + components.MutedStyle.Render("Loading "+label+"..."))
	return centerMessage(line, width, height)
}

// degradedHeader renders the guidance line for a classified failure.
// NotConfigured and AuthFailure are actionable and show the widget's hint
// (or the adapter's own message when no hint is given), UnsupportedPlatform
// shows the adapter's explanation, everything else gets the generic line.
func degradedHeader(err *pulse.ClassifiedError, hint string) string {
	if err == nil {
		return components.AlertStyle.Render("error loading")
	}
	switch err.Kind {
	case pulse.KindNotConfigured, pulse.KindAuthFailure:
		text := hint
		if text == "" {
			text = err.Message
		}
		return components.WarnStyle.Render(text)
	case pulse.KindUnsupportedPlatform:
		return components.MutedStyle.Render(err.Message)
	default:
		return components.AlertStyle.Render("error loading")
	}
}

// degradedLines builds the top of a degraded view: the guidance line, then
// either a stale marker (when a last good payload exists for the caller to
// render below) or the raw failure text for unclassified errors.
func degradedLines(state pulse.WidgetState, hint string, width int) []string {
	lines := []string{degradedHeader(state.Err, hint)}
	if state.HasData() {
		stale := "stale " + components.StaleStyle.Render("(fetched "+state.FetchedAt.Format("15:04:05")+")")
		lines = append(lines, stale)
		return lines
	}
	if state.Err != nil {
		switch state.Err.Kind {
		case pulse.KindTransientNetwork, pulse.KindUnknown:
			lines = append(lines, "")
			for _, l := range components.Wrap(state.Err.Message, width) {
				lines = append(lines, components.FaintStyle.Render(l))
			}
		}
	}
	return lines
}

// centerMessage renders a single message centered in the given area.
func centerMessage(msg string, width, height int) string {
	lines := make([]string, height)
	lines[height/2] = components.Center(msg, width)
	return strings.Join(lines, "\n")
}

// fitLines pads or truncates a slice of lines to exactly height lines, each
// at most width visible cells wide.
func fitLines(lines []string, width, height int) string {
	if len(lines) > height {
		lines = lines[:height]
	}
	out := make([]string, height)
	for i, line := range lines {
		if components.VisibleLen(line) > width {
			line = components.Truncate(line, width)
		}
		out[i] = line
	}
	return strings.Join(out, "\n")
}

// clampSelection keeps a list cursor inside [0, n). An empty list pins it
// at 0.
func clampSelection(sel, n int) int {
	if n <= 0 || sel < 0 {
		return 0
	}
	if sel >= n {
		return n - 1
	}
	return sel
}

// scrollWindow returns the first visible index so that sel stays on screen
// in a window of rows items.
func scrollWindow(sel, n, rows int) int {
	if rows <= 0 || n <= rows {
		return 0
	}
	start := sel - rows + 1
	if start < 0 {
		start = 0
	}
	if start > n-rows {
		start = n - rows
	}
	return start
}

// formatBytes formats a byte count into a human-readable string with
// appropriate units (B, KB, MB, GB, TB).
func formatBytes(bytes uint64) string {
	const (
		kb = 1 << 10
		mb = 1 << 20
		gb = 1 << 30
		tb = 1 << 40
	)
	switch {
	case bytes >= tb:
		return fmt.Sprintf("%.1f TB", float64(bytes)/float64(tb))
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// relTime formats t relative to now: "now", "5m ago", "3h ago", then a date.
func relTime(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	if d < time.Minute {
		return "now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return t.Format("Jan 02")
}
