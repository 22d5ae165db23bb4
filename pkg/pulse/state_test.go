package pulse

import (
	"testing"
	"time"
)

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseLoading, "loading"},
		{PhaseReady, "ready"},
		{PhaseDegraded, "degraded"},
		{Phase(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", int(tt.phase), got, tt.want)
		}
	}
}

func TestWidgetStateHasData(t *testing.T) {
	if loadingState().HasData() {
		t.Error("loading state should have no data")
	}

	ready := WidgetState{Phase: PhaseReady, Data: "payload", FetchedAt: time.Now()}
	if !ready.HasData() {
		t.Error("ready state with payload should have data")
	}

	stale := WidgetState{Phase: PhaseDegraded, Data: "old payload"}
	if !stale.HasData() {
		t.Error("degraded state retaining a payload should have data")
	}

	bare := WidgetState{Phase: PhaseDegraded, Err: &ClassifiedError{Kind: KindUnknown, Message: "x"}}
	if bare.HasData() {
		t.Error("degraded state that never succeeded should have no data")
	}
}

func TestWidgetStateLastActivity(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)

	var none WidgetState
	if !none.LastActivity().IsZero() {
		t.Error("zero state should report zero LastActivity")
	}

	fetched := WidgetState{Phase: PhaseReady, Data: 1, FetchedAt: t0}
	if !fetched.LastActivity().Equal(t0) {
		t.Errorf("LastActivity = %v, want FetchedAt %v", fetched.LastActivity(), t0)
	}

	// A failure after a success is the more recent activity.
	degraded := WidgetState{Phase: PhaseDegraded, Data: 1, FetchedAt: t0, FailedAt: t1}
	if !degraded.LastActivity().Equal(t1) {
		t.Errorf("LastActivity = %v, want FailedAt %v", degraded.LastActivity(), t1)
	}

	// A failure with no prior success.
	failedOnly := WidgetState{Phase: PhaseDegraded, FailedAt: t1}
	if !failedOnly.LastActivity().Equal(t1) {
		t.Errorf("LastActivity = %v, want FailedAt %v", failedOnly.LastActivity(), t1)
	}
}

func TestDataAs(t *testing.T) {
	type snapshot struct{ Track string }

	st := WidgetState{Phase: PhaseReady, Data: snapshot{Track: "song"}, FetchedAt: time.Now()}

	got, ok := DataAs[snapshot](st)
	if !ok {
		t.Fatal("DataAs should succeed for matching type")
	}
	if got.Track != "song" {
		t.Errorf("Track = %q, want %q", got.Track, "song")
	}

	if _, ok := DataAs[string](st); ok {
		t.Error("DataAs should fail for mismatched type")
	}

	if _, ok := DataAs[snapshot](loadingState()); ok {
		t.Error("DataAs should fail when no payload is present")
	}
}
