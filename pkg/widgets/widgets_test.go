package widgets

import (
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/desk-pulse/pkg/app"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/components"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/pulse"
)

func TestMain(m *testing.M) {
	// Widgets mark click zones at render time; the global manager must
	// exist before any View call.
	zone.NewGlobal()
	os.Exit(m.Run())
}

// readyState builds a PhaseReady state around a payload.
func readyState(data interface{}) pulse.WidgetState {
	return pulse.WidgetState{
		Phase:     pulse.PhaseReady,
		Data:      data,
		FetchedAt: time.Date(2025, 8, 20, 15, 4, 5, 0, time.Local),
	}
}

// degradedState builds a PhaseDegraded state; lastGood may be nil.
func degradedState(kind pulse.Kind, msg string, lastGood interface{}) pulse.WidgetState {
	st := pulse.WidgetState{
		Phase:    pulse.PhaseDegraded,
		Err:      &pulse.ClassifiedError{Kind: kind, Message: msg},
		FailedAt: time.Date(2025, 8, 20, 15, 5, 0, 0, time.Local),
	}
	if lastGood != nil {
		st.Data = lastGood
		st.FetchedAt = time.Date(2025, 8, 20, 15, 4, 5, 0, time.Local)
	}
	return st
}

// sendState delivers a StateUpdateEvent for the widget's own ID.
func sendState(w app.Widget, st pulse.WidgetState) {
	w.Update(app.StateUpdateEvent{WidgetID: w.ID(), State: st})
}

// plainView renders the widget and strips styling so tests assert on
// visible content only.
func plainView(w app.Widget, width, height int) string {
	return components.StripANSI(w.View(width, height))
}

// keyMsg builds the KeyMsg for a named key or a plain rune.
func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// openedURL runs an openSelected command and returns the URL it carries, or
// "" when the command is nil or yields something else.
func openedURL(cmd tea.Cmd) string {
	if cmd == nil {
		return ""
	}
	msg, ok := cmd().(app.OpenLinkEvent)
	if !ok {
		return ""
	}
	return msg.URL
}

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   uint64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{6442450944, "6.0 GB"},
		{1536 << 20, "1.5 GB"},
		{3 << 40, "3.0 TB"},
	}
	for _, tc := range cases {
		if got := formatBytes(tc.in); got != tc.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRelTime(t *testing.T) {
	now := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		t    time.Time
		want string
	}{
		{now.Add(-30 * time.Second), "now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-48 * time.Hour), "Aug 18"},
		{time.Time{}, "never"},
	}
	for _, tc := range cases {
		if got := relTime(tc.t, now); got != tc.want {
			t.Errorf("relTime(%v) = %q, want %q", tc.t, got, tc.want)
		}
	}
}

func TestClampSelection(t *testing.T) {
	cases := []struct {
		sel, n, want int
	}{
		{0, 5, 0},
		{4, 5, 4},
		{5, 5, 4},
		{-1, 5, 0},
		{2, 0, 0},
	}
	for _, tc := range cases {
		if got := clampSelection(tc.sel, tc.n); got != tc.want {
			t.Errorf("clampSelection(%d, %d) = %d, want %d", tc.sel, tc.n, got, tc.want)
		}
	}
}

func TestScrollWindow(t *testing.T) {
	cases := []struct {
		sel, n, rows, want int
	}{
		{0, 10, 4, 0}, // top of list
		{3, 10, 4, 0}, // still inside first window
		{5, 10, 4, 2}, // window follows the selection
		{9, 10, 4, 6}, // bottom of list
		{2, 3, 10, 0}, // list shorter than window
		{1, 10, 0, 0}, // degenerate height
	}
	for _, tc := range cases {
		if got := scrollWindow(tc.sel, tc.n, tc.rows); got != tc.want {
			t.Errorf("scrollWindow(%d, %d, %d) = %d, want %d", tc.sel, tc.n, tc.rows, got, tc.want)
		}
	}
}

func TestFitLinesDimensions(t *testing.T) {
	out := fitLines([]string{"one", "two"}, 10, 4)
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}

	out = fitLines([]string{"a", "b", "c"}, 10, 2)
	if got := len(strings.Split(out, "\n")); got != 2 {
		t.Errorf("expected overflow trimmed to 2 lines, got %d", got)
	}

	out = fitLines([]string{strings.Repeat("x", 30)}, 10, 1)
	if w := components.VisibleLen(out); w != 10 {
		t.Errorf("expected long line truncated to 10 cells, got %d", w)
	}
}

func TestDegradedHeaderGuidance(t *testing.T) {
	notConfigured := &pulse.ClassifiedError{
		Kind:    pulse.KindNotConfigured,
		Message: "JIRA_API_TOKEN environment variable not set",
	}
	got := components.StripANSI(degradedHeader(notConfigured, "set JIRA_EMAIL and JIRA_API_TOKEN"))
	if got != "set JIRA_EMAIL and JIRA_API_TOKEN" {
		t.Errorf("NotConfigured with hint = %q, want the hint", got)
	}

	got = components.StripANSI(degradedHeader(notConfigured, ""))
	if got != "JIRA_API_TOKEN environment variable not set" {
		t.Errorf("NotConfigured without hint = %q, want the adapter message", got)
	}

	platform := &pulse.ClassifiedError{
		Kind:    pulse.KindUnsupportedPlatform,
		Message: "Spotify integration is only supported on macOS",
	}
	got = components.StripANSI(degradedHeader(platform, "unused"))
	if got != "Spotify integration is only supported on macOS" {
		t.Errorf("UnsupportedPlatform = %q, want the adapter explanation", got)
	}

	transient := &pulse.ClassifiedError{
		Kind:    pulse.KindTransientNetwork,
		Message: "connection refused",
	}
	got = components.StripANSI(degradedHeader(transient, "unused"))
	if got != "error loading" {
		t.Errorf("TransientNetwork = %q, want the generic line", got)
	}

	if got := components.StripANSI(degradedHeader(nil, "")); got != "error loading" {
		t.Errorf("nil error = %q, want the generic line", got)
	}
}

func TestDegradedLinesStaleMarker(t *testing.T) {
	st := degradedState(pulse.KindTransientNetwork, "connection refused", "payload")
	lines := degradedLines(st, "", 40)
	if len(lines) != 2 {
		t.Fatalf("expected guidance + stale marker, got %d lines", len(lines))
	}
	if !strings.Contains(components.StripANSI(lines[1]), "stale") {
		t.Errorf("expected stale marker, got %q", lines[1])
	}
	if !strings.Contains(components.StripANSI(lines[1]), "15:04:05") {
		t.Errorf("expected last good fetch time in stale marker, got %q", lines[1])
	}
}

func TestDegradedLinesRawMessageWithoutData(t *testing.T) {
	st := degradedState(pulse.KindUnknown, "something odd happened", nil)
	lines := degradedLines(st, "", 40)

	joined := components.StripANSI(strings.Join(lines, "\n"))
	if !strings.Contains(joined, "error loading") {
		t.Errorf("expected generic header, got %q", joined)
	}
	if !strings.Contains(joined, "something odd happened") {
		t.Errorf("expected raw message shown when no payload exists, got %q", joined)
	}
}
