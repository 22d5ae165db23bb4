// Package pulse implements the polling and state-reconciliation core of
// desk-pulse. Each widget owns an independent pipeline: a Poller drives a
// collector on a fixed interval, a Reconciler classifies every outcome and
// folds it into the widget's presentation state, and the Store publishes
// those states to subscribers. The Hub ties the pieces together and manages
// widget lifecycles: a poller exists only while at least one subscriber is
// attached.
package pulse

import "time"

// Phase identifies which variant of a WidgetState is active.
type Phase int

const (
	// PhaseLoading is the initial phase: no fetch has ever succeeded and no
	// real error has been surfaced. It is also held across adapter warm-up
	// failures (see KindStillLoading).
	PhaseLoading Phase = iota

	// PhaseReady means the most recent fetch succeeded and Data is current.
	PhaseReady

	// PhaseDegraded means the most recent fetch failed. Data still carries
	// the last successful payload when one exists.
	PhaseDegraded
)

// String returns a short lowercase label for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// WidgetState is the presentation state of one widget. Exactly one phase is
// active at a time; the remaining fields qualify it. A WidgetState is written
// only by its widget's Reconciler and must be treated as immutable by
// readers, including the payload behind Data.
type WidgetState struct {
	Phase Phase

	// Data is the most recent successful payload, or nil if no fetch has
	// ever succeeded. It is retained across failures: PhaseDegraded with a
	// non-nil Data means "stale but available".
	Data interface{}

	// FetchedAt is when Data was produced. Zero until the first success.
	FetchedAt time.Time

	// Err is the classified form of the most recent failure. Non-nil only
	// in PhaseDegraded.
	Err *ClassifiedError

	// FailedAt is when Err was produced. Zero unless PhaseDegraded.
	FailedAt time.Time
}

// HasData reports whether a successful payload is available, current or
// stale.
func (s WidgetState) HasData() bool { return s.Data != nil }

// LastActivity returns the timestamp of the most recent completed fetch,
// successful or not. The zero time means no fetch has ever completed; the
// aggregator treats such widgets as "no data yet".
func (s WidgetState) LastActivity() time.Time {
	if s.FailedAt.After(s.FetchedAt) {
		return s.FailedAt
	}
	return s.FetchedAt
}

// DataAs returns the state's payload as T. The second return is false when
// no payload is present or it holds a different type.
func DataAs[T any](s WidgetState) (T, bool) {
	var zero T
	if s.Data == nil {
		return zero, false
	}
	v, ok := s.Data.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// loadingState is the initial state of every widget lifecycle.
func loadingState() WidgetState {
	return WidgetState{Phase: PhaseLoading}
}
