// Package app provides the core Bubbletea application framework for
// desk-pulse. It defines the event types, root model, widget interface,
// and navigation logic that form the Elm-architecture skeleton.
//
// This package is designed against bubbletea v1.3.x but architected so that
// migrating to v2 requires only import-path changes and minor API adjustments.
package app

import (
	"time"

	"gitlab.com/tinyland/lab/desk-pulse/pkg/pulse"
)

// StateUpdateEvent carries one widget's reconciled state back into the
// bubbletea update loop. It is the only data message widgets ever receive;
// raw fetch payloads and raw errors stay behind the reconciler.
type StateUpdateEvent struct {
	WidgetID string
	State    pulse.WidgetState
}

// TickEvent is sent periodically to trigger UI refresh and stale-data
// checks. Frame carries the shared loading spinner's current frame so
// widgets can animate without owning timers of their own.
type TickEvent struct {
	Time  time.Time
	Frame string
}

// OpenLinkEvent asks the shell to open a URL with the system handler.
// Widgets emit it from their key and mouse handlers.
type OpenLinkEvent struct {
	URL string
}

// WidgetFocusEvent requests that focus move to a specific widget.
type WidgetFocusEvent struct {
	WidgetID string
}

// WidgetExpandEvent toggles a widget between normal and fullscreen mode.
type WidgetExpandEvent struct {
	WidgetID string
}
