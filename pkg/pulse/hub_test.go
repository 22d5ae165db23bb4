package pulse

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors"
)

func newTestHub() (*Hub, *collectors.Registry) {
	store := NewStore()
	registry := collectors.NewRegistry()
	return NewHub(store, registry, NewReconciler(store, nil), nil), registry
}

// waitForState drains a subscription until a state satisfies pred, failing
// the test after two seconds.
func waitForState(t *testing.T, sub *Subscription, pred func(WidgetState) bool) WidgetState {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st, ok := <-sub.Updates():
			if !ok {
				t.Fatal("updates channel closed while waiting for state")
			}
			if pred(st) {
				return st
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state; current = %+v", sub.Current())
		}
	}
}

func TestHubSubscribeStartsPolling(t *testing.T) {
	h, registry := newTestHub()
	defer h.Shutdown()

	c := collectors.NewMockCollector("cpu", time.Hour, collectors.WithData("sample"))
	if err := h.Register(c); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	sub, err := h.Subscribe("cpu")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Cancel()

	st := waitForState(t, sub, func(st WidgetState) bool { return st.Phase == PhaseReady })
	if st.Data != "sample" {
		t.Errorf("Data = %v, want %q", st.Data, "sample")
	}
	if cur := sub.Current(); cur.Phase != PhaseReady {
		t.Errorf("Current().Phase = %v, want %v", cur.Phase, PhaseReady)
	}

	// The run was recorded against the registry status.
	s, ok := registry.Status("cpu")
	if !ok {
		t.Fatal("registry status missing")
	}
	if s.RunCount < 1 {
		t.Errorf("RunCount = %d, want >= 1", s.RunCount)
	}
}

func TestHubSubscribeUnregistered(t *testing.T) {
	h, _ := newTestHub()
	defer h.Shutdown()

	if _, err := h.Subscribe("ghost"); err == nil {
		t.Fatal("Subscribe should fail for an unregistered widget")
	}
}

func TestHubRegisterDuplicate(t *testing.T) {
	h, _ := newTestHub()
	defer h.Shutdown()

	_ = h.Register(collectors.NewMockCollector("dup", time.Second))
	if err := h.Register(collectors.NewMockCollector("dup", time.Second)); err == nil {
		t.Fatal("second Register should fail for duplicate name")
	}
}

func TestHubRegisterNonPositiveInterval(t *testing.T) {
	h, _ := newTestHub()
	defer h.Shutdown()

	err := h.Register(collectors.NewMockCollector("zero", 0))
	if err == nil {
		t.Fatal("Register should fail for a collector with no positive interval")
	}
	if !strings.Contains(err.Error(), "must be positive") {
		t.Errorf("error = %q, want mention of positive interval", err)
	}
}

func TestHubIntervalOverride(t *testing.T) {
	h, _ := newTestHub()
	defer h.Shutdown()

	// The collector claims an hour; the schedule overrides it down to
	// something observable.
	c := collectors.NewMockCollector("fast", time.Hour, collectors.WithData(1))
	if err := h.Register(c, WithInterval(15*time.Millisecond)); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	sub, err := h.Subscribe("fast")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Cancel()

	time.Sleep(120 * time.Millisecond)
	if got := c.CallCount(); got < 3 {
		t.Errorf("CallCount = %d after 120ms at 15ms interval, want >= 3", got)
	}
}

func TestHubRefcountedLifecycle(t *testing.T) {
	h, _ := newTestHub()
	defer h.Shutdown()

	c := collectors.NewMockCollector("docker", 15*time.Millisecond, collectors.WithData("ps"))
	_ = h.Register(c)

	sub1, err := h.Subscribe("docker")
	if err != nil {
		t.Fatalf("first Subscribe failed: %v", err)
	}
	sub2, err := h.Subscribe("docker")
	if err != nil {
		t.Fatalf("second Subscribe failed: %v", err)
	}

	waitForState(t, sub1, func(st WidgetState) bool { return st.Phase == PhaseReady })

	// Dropping one of two subscribers keeps the poller alive.
	sub1.Cancel()
	before := c.CallCount()
	time.Sleep(80 * time.Millisecond)
	if after := c.CallCount(); after <= before {
		t.Errorf("polling stalled after non-final Cancel: before=%d after=%d", before, after)
	}
	if _, ok := h.Store().Get("docker"); !ok {
		t.Error("state cell should survive a non-final Cancel")
	}

	// Dropping the last subscriber tears the lifecycle down.
	sub2.Cancel()
	if _, ok := h.Store().Get("docker"); ok {
		t.Error("state cell should be gone after the last Cancel")
	}
	stopped := c.CallCount()
	time.Sleep(80 * time.Millisecond)
	if after := c.CallCount(); after != stopped {
		t.Errorf("polling continued after last Cancel: before=%d after=%d", stopped, after)
	}
}

func TestHubCancelIdempotent(t *testing.T) {
	h, _ := newTestHub()
	defer h.Shutdown()

	_ = h.Register(collectors.NewMockCollector("cpu", time.Hour, collectors.WithData(1)))
	sub, _ := h.Subscribe("cpu")

	sub.Cancel()
	sub.Cancel()
	sub.Cancel()
}

func TestHubResubscribeStartsFreshLifecycle(t *testing.T) {
	h, _ := newTestHub()
	defer h.Shutdown()

	// Gate each fetch so the test controls exactly when data appears.
	gate := make(chan string)
	c := collectors.NewMockCollector("spotify", time.Hour,
		collectors.WithCollectFunc(func(ctx context.Context) (interface{}, error) {
			select {
			case v := <-gate:
				return v, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}),
	)
	_ = h.Register(c)

	sub1, err := h.Subscribe("spotify")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	gate <- "first lifecycle"
	waitForState(t, sub1, func(st WidgetState) bool { return st.Phase == PhaseReady })

	sub1.Cancel()

	// A new lifecycle starts over from loading; the old payload is gone.
	sub2, err := h.Subscribe("spotify")
	if err != nil {
		t.Fatalf("re-Subscribe failed: %v", err)
	}
	defer sub2.Cancel()

	if cur := sub2.Current(); cur.Phase != PhaseLoading || cur.HasData() {
		t.Errorf("fresh lifecycle Current() = %+v, want empty loading state", cur)
	}

	gate <- "second lifecycle"
	st := waitForState(t, sub2, func(st WidgetState) bool { return st.Phase == PhaseReady })
	if st.Data != "second lifecycle" {
		t.Errorf("Data = %v, want %q", st.Data, "second lifecycle")
	}
}

func TestHubClassifiesWithWidgetRules(t *testing.T) {
	h, _ := newTestHub()
	defer h.Shutdown()

	c := collectors.NewMockCollector("spotify", time.Hour,
		collectors.WithError(errors.New("player hibernating")),
	)
	err := h.Register(c, WithRules(Rule{Kind: KindNotConfigured, Markers: []string{"hibernating"}}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	sub, _ := h.Subscribe("spotify")
	defer sub.Cancel()

	st := waitForState(t, sub, func(st WidgetState) bool { return st.Phase == PhaseDegraded })
	if st.Err == nil || st.Err.Kind != KindNotConfigured {
		t.Errorf("Err = %v, want not-configured via widget rule", st.Err)
	}
}

func TestHubHealth(t *testing.T) {
	h, _ := newTestHub()
	defer h.Shutdown()

	good := collectors.NewMockCollector("good", time.Hour, collectors.WithData(1))
	bad := collectors.NewMockCollector("bad", time.Hour,
		collectors.WithError(errors.New("broken")),
		collectors.WithHealthy(false),
	)
	_ = h.Register(good)
	_ = h.Register(bad)

	// Before any run everything is presumed healthy.
	health := h.Health()
	if !health["good"] || !health["bad"] {
		t.Errorf("initial health = %v, want all true", health)
	}

	subGood, _ := h.Subscribe("good")
	defer subGood.Cancel()
	subBad, _ := h.Subscribe("bad")
	defer subBad.Cancel()

	waitForState(t, subGood, func(st WidgetState) bool { return st.Phase == PhaseReady })
	waitForState(t, subBad, func(st WidgetState) bool { return st.Phase == PhaseDegraded })

	health = h.Health()
	if !health["good"] {
		t.Error("good should remain healthy")
	}
	if health["bad"] {
		t.Error("bad should be unhealthy after a failed run")
	}
}

func TestHubRegistered(t *testing.T) {
	h, _ := newTestHub()
	defer h.Shutdown()

	_ = h.Register(collectors.NewMockCollector("ram", time.Second))
	_ = h.Register(collectors.NewMockCollector("cpu", time.Second))

	names := h.Registered()
	if len(names) != 2 || names[0] != "cpu" || names[1] != "ram" {
		t.Errorf("Registered() = %v, want [cpu ram]", names)
	}
}

func TestHubShutdown(t *testing.T) {
	h, _ := newTestHub()

	_ = h.Register(collectors.NewMockCollector("cpu", 20*time.Millisecond, collectors.WithData(1)))
	_ = h.Register(collectors.NewMockCollector("ram", 20*time.Millisecond, collectors.WithData(2)))

	subCPU, _ := h.Subscribe("cpu")
	subRAM, _ := h.Subscribe("ram")
	waitForState(t, subCPU, func(st WidgetState) bool { return st.Phase == PhaseReady })

	h.Shutdown()

	// All subscriber channels close.
	for _, sub := range []*Subscription{subCPU, subRAM} {
		deadline := time.After(2 * time.Second)
		for {
			var open bool
			select {
			case _, open = <-sub.Updates():
			case <-deadline:
				t.Fatalf("updates channel for %q not closed after Shutdown", sub.WidgetID())
			}
			if !open {
				break
			}
		}
	}

	if ids := h.Store().IDs(); len(ids) != 0 {
		t.Errorf("store still holds %v after Shutdown", ids)
	}
	if _, err := h.Subscribe("cpu"); err == nil {
		t.Error("Subscribe should fail after Shutdown")
	}
	if err := h.Register(collectors.NewMockCollector("new", time.Second)); err == nil {
		t.Error("Register should fail after Shutdown")
	}

	// Idempotent.
	h.Shutdown()
}
