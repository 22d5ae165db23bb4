package pulse

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors"
)

// schedule is the immutable polling definition for one widget: which
// collector to drive, how often, and any extra classification rules for its
// backend.
type schedule struct {
	collector collectors.Collector
	interval  time.Duration
	rules     []Rule
}

// ScheduleOption adjusts a widget's schedule at registration.
type ScheduleOption func(*schedule)

// WithInterval overrides the collector's own Interval.
func WithInterval(d time.Duration) ScheduleOption {
	return func(s *schedule) { s.interval = d }
}

// WithRules adds backend-specific classification markers for this widget.
func WithRules(rules ...Rule) ScheduleOption {
	return func(s *schedule) { s.rules = append(s.rules, rules...) }
}

// liveEntry is one active widget lifecycle: a running poller plus the count
// of attached subscribers.
type liveEntry struct {
	poller *Poller
	refs   int
}

// Hub owns widget lifecycles. Collectors are registered once with a
// schedule; the first Subscribe for a widget activates its state cell and
// starts its poller, and the last Cancel tears both down again. The Hub is
// safe for concurrent use.
type Hub struct {
	store      *Store
	registry   *collectors.Registry
	reconciler *Reconciler
	logger     *slog.Logger

	mu        sync.Mutex
	schedules map[string]schedule
	live      map[string]*liveEntry
	closed    bool
}

// NewHub wires a hub over the given store, registry, and reconciler. A nil
// logger discards.
func NewHub(store *Store, registry *collectors.Registry, reconciler *Reconciler, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		store:      store,
		registry:   registry,
		reconciler: reconciler,
		logger:     logger,
		schedules:  make(map[string]schedule),
		live:       make(map[string]*liveEntry),
	}
}

// Store returns the widget state store, for aggregate reads.
func (h *Hub) Store() *Store { return h.store }

// Registered returns the sorted ids of all registered widgets.
func (h *Hub) Registered() []string { return h.registry.List() }

// Register adds a collector under its Name with the given schedule options.
// The interval defaults to the collector's own Interval and must be
// positive. Registering the same name twice is an error.
func (h *Hub) Register(c collectors.Collector, opts ...ScheduleOption) error {
	sched := schedule{collector: c, interval: c.Interval()}
	for _, opt := range opts {
		opt(&sched)
	}
	if sched.interval <= 0 {
		return fmt.Errorf("widget %q: poll interval must be positive", c.Name())
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return fmt.Errorf("hub is shut down")
	}
	if err := h.registry.Register(c); err != nil {
		return err
	}
	h.schedules[c.Name()] = sched
	h.reconciler.setClassifier(c.Name(), NewClassifier(sched.rules...))
	return nil
}

// Subscribe attaches to a widget's state. The first subscriber activates the
// widget: its state cell is created in the loading phase and its poller
// starts with an immediate fetch. Read Current for the state at subscribe
// time and Updates for changes after it.
func (h *Hub) Subscribe(id string) (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, fmt.Errorf("hub is shut down")
	}
	sched, ok := h.schedules[id]
	if !ok {
		return nil, fmt.Errorf("widget %q not registered", id)
	}

	entry := h.live[id]
	fresh := entry == nil
	if fresh {
		h.store.activate(id)
		entry = &liveEntry{
			poller: NewPoller(sched.collector, sched.interval, h.outcomeFunc(id, sched.collector), h.logger),
		}
		h.live[id] = entry
	}

	sub, ch, ok := h.store.subscribe(id, DefaultSubscriptionBuffer)
	if !ok {
		return nil, fmt.Errorf("widget %q has no active state", id)
	}
	entry.refs++
	if fresh {
		entry.poller.Start(context.Background())
	}
	h.logger.Debug("subscribed", "widget", id, "subscribers", entry.refs)
	return &Subscription{widgetID: id, hub: h, sub: sub, ch: ch}, nil
}

// outcomeFunc builds the poller callback for one widget: record the run on
// the registry, then reconcile.
func (h *Hub) outcomeFunc(id string, c collectors.Collector) OutcomeFunc {
	return func(data interface{}, err error, latency time.Duration) {
		h.registry.RecordRun(id, latency, err, c.Healthy())
		if err != nil {
			h.logger.Debug("collect failed", "widget", id, "latency", latency, "error", err)
		} else {
			h.logger.Debug("collect succeeded", "widget", id, "latency", latency)
		}
		h.reconciler.Reconcile(id, data, err)
	}
}

// unsubscribe detaches one subscriber; the last one tears the lifecycle
// down. The state cell is deactivated before the poller stops, so an
// in-flight fetch's outcome is discarded no matter when it lands.
func (h *Hub) unsubscribe(id string, sub int) {
	h.mu.Lock()
	h.store.unsubscribe(id, sub)
	entry := h.live[id]
	if entry == nil {
		h.mu.Unlock()
		return
	}
	entry.refs--
	if entry.refs > 0 {
		h.mu.Unlock()
		return
	}
	delete(h.live, id)
	h.store.deactivate(id)
	poller := entry.poller
	h.mu.Unlock()

	poller.Stop()
	h.logger.Debug("widget stopped", "widget", id)
}

// Health reports per-widget collector health from the registry.
func (h *Hub) Health() map[string]bool {
	statuses := h.registry.AllStatus()
	out := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		out[s.Name] = s.Healthy
	}
	return out
}

// Shutdown stops every active poller, closes all subscriber channels, and
// refuses further Register/Subscribe calls. It blocks until all polling
// goroutines exit and is idempotent.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	pollers := make([]*Poller, 0, len(h.live))
	for id, entry := range h.live {
		pollers = append(pollers, entry.poller)
		h.store.deactivate(id)
	}
	h.live = make(map[string]*liveEntry)
	h.mu.Unlock()

	for _, p := range pollers {
		p.Stop()
	}
	h.logger.Debug("hub shut down", "stopped", len(pollers))
}

// Subscription is one attachment to a widget's state stream.
type Subscription struct {
	widgetID string
	hub      *Hub
	sub      int
	ch       <-chan WidgetState
	once     sync.Once
}

// WidgetID returns the subscribed widget's id.
func (s *Subscription) WidgetID() string { return s.widgetID }

// Current returns the widget's state right now. After the lifecycle has been
// torn down it returns the loading state.
func (s *Subscription) Current() WidgetState {
	st, ok := s.hub.store.Get(s.widgetID)
	if !ok {
		return loadingState()
	}
	return st
}

// Updates streams state changes. Delivery is best-effort: a slow consumer
// misses intermediate states, never blocking the Reconciler. The channel is
// closed when the subscription is cancelled or the hub shuts down.
func (s *Subscription) Updates() <-chan WidgetState { return s.ch }

// Cancel detaches the subscription. When it is the widget's last one, the
// poller stops and the state cell is torn down. Idempotent.
func (s *Subscription) Cancel() {
	s.once.Do(func() { s.hub.unsubscribe(s.widgetID, s.sub) })
}
