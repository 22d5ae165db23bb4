package pulse

import (
	"sort"
	"sync"
)

// DefaultSubscriptionBuffer is the channel capacity handed to each
// subscriber. Delivery is non-blocking: a subscriber that falls this far
// behind misses intermediate states but always observes the latest one via
// Current.
const DefaultSubscriptionBuffer = 64

// Store holds the latest WidgetState per active widget. Writes go through
// each widget's Reconciler; everything else gets atomic copy-on-read access.
// A widget has a cell only while its lifecycle is active: the Hub creates it
// on first subscribe and tears it down when the last subscriber leaves, and
// writes for inactive widgets are discarded.
type Store struct {
	mu      sync.RWMutex
	states  map[string]WidgetState
	subs    map[string]map[int]chan WidgetState
	nextSub int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		states: make(map[string]WidgetState),
		subs:   make(map[string]map[int]chan WidgetState),
	}
}

// Get returns the current state for the widget, or false if the widget has
// no active lifecycle.
func (s *Store) Get(id string) (WidgetState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[id]
	return st, ok
}

// All returns a copy of every active widget's current state.
func (s *Store) All() map[string]WidgetState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]WidgetState, len(s.states))
	for id, st := range s.states {
		out[id] = st
	}
	return out
}

// IDs returns the sorted ids of all active widgets.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.states))
	for id := range s.states {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// activate creates the widget's state cell in the loading phase. It is a
// no-op if the cell already exists.
func (s *Store) activate(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.states[id]; ok {
		return
	}
	s.states[id] = loadingState()
	if s.subs[id] == nil {
		s.subs[id] = make(map[int]chan WidgetState)
	}
}

// deactivate tears the widget's cell down and closes any remaining
// subscriber channels. Subsequent updates for the id are discarded until it
// is activated again.
func (s *Store) deactivate(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, id)
	for _, ch := range s.subs[id] {
		close(ch)
	}
	delete(s.subs, id)
}

// update atomically replaces the widget's state with fn(current) and
// notifies subscribers. It reports false, without calling fn, when the
// widget is inactive; the Reconciler uses this to discard outcomes that
// arrive after a lifecycle ended.
func (s *Store) update(id string, fn func(WidgetState) WidgetState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.states[id]
	if !ok {
		return false
	}
	next := fn(prev)
	s.states[id] = next
	for _, ch := range s.subs[id] {
		select {
		case ch <- next:
		default:
		}
	}
	return true
}

// subscribe registers a change channel for the widget and returns its
// subscriber id. It reports false when the widget is inactive.
func (s *Store) subscribe(id string, buffer int) (int, <-chan WidgetState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.states[id]; !ok {
		return 0, nil, false
	}
	s.nextSub++
	ch := make(chan WidgetState, buffer)
	s.subs[id][s.nextSub] = ch
	return s.nextSub, ch, true
}

// unsubscribe removes and closes one subscriber channel. It is a no-op if
// the subscriber is already gone.
func (s *Store) unsubscribe(id string, sub int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.subs[id][sub]
	if !ok {
		return
	}
	delete(s.subs[id], sub)
	close(ch)
}
