package pulse

import "time"

// LatestCheckTime returns the most recent completed-fetch timestamp
// (successful or failed) across the named widgets. The boolean is false when
// none of them has ever completed a fetch — widgets still in their initial
// loading phase contribute nothing. The result is recomputed from the
// current states on every call; nothing is cached.
func (s *Store) LatestCheckTime(ids ...string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest time.Time
	found := false
	for _, id := range ids {
		st, ok := s.states[id]
		if !ok {
			continue
		}
		t := st.LastActivity()
		if t.IsZero() {
			continue
		}
		if !found || t.After(latest) {
			latest = t
			found = true
		}
	}
	return latest, found
}
