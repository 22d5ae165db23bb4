package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/desk-pulse/pkg/pulse"
)

// Widget is the contract every dashboard cell implements. Widgets are pure
// views over reconciled state: they receive StateUpdateEvents and TickEvents
// through Update, focused keystrokes through HandleKey, and render whatever
// their last known state allows. They never call collectors, never see raw
// errors, and never hold timers.
type Widget interface {
	// ID returns the stable widget identifier used for focus, routing, and
	// subscription matching (e.g. "cpu", "jira").
	ID() string

	// Title returns the human-readable header rendered in the widget's cell.
	Title() string

	// MinSize returns the smallest (width, height) in cells at which the
	// widget renders something useful.
	MinSize() (w, h int)

	// Update processes a non-key message (state updates, ticks, mouse) and
	// optionally returns a command.
	Update(msg tea.Msg) tea.Cmd

	// HandleKey processes a keystroke. Only the focused widget receives keys,
	// and only those the shell does not consume itself.
	HandleKey(msg tea.KeyMsg) tea.Cmd

	// View renders the widget's body into a box of the given size.
	View(width, height int) string
}

// StateSource is the feed a widget's cell consumes: the current reconciled
// state plus a channel of subsequent transitions. *pulse.Subscription
// satisfies it.
type StateSource interface {
	WidgetID() string
	Current() pulse.WidgetState
	Updates() <-chan pulse.WidgetState
}
