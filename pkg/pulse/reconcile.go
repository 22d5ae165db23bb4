package pulse

import (
	"log/slog"
	"sync"
	"time"
)

// Reconciler folds raw collector outcomes into widget states, applying the
// per-widget state machine:
//
//	Loading  --(success)--------------> Ready
//	Loading  --(failure, StillLoading)> Loading
//	Loading  --(failure, other)-------> Degraded
//	Ready    --(success)--------------> Ready
//	Ready    --(failure, any)---------> Degraded (payload retained)
//	Degraded --(success)--------------> Ready
//	Degraded --(failure, any)---------> Degraded (error refreshed, payload retained)
//
// Loading is the only initial state and a widget never returns to it once
// data has been fetched. Failures never propagate out of Reconcile; every
// outcome becomes a state.
//
// Calls for the same widget are serialized by its Poller. Calls for
// different widgets may run concurrently; the store write is atomic.
type Reconciler struct {
	store  *Store
	logger *slog.Logger
	now    func() time.Time

	mu          sync.RWMutex
	classifiers map[string]*Classifier
	fallback    *Classifier
}

// NewReconciler returns a Reconciler writing to store. A nil logger
// discards.
func NewReconciler(store *Store, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reconciler{
		store:       store,
		logger:      logger,
		now:         time.Now,
		classifiers: make(map[string]*Classifier),
		fallback:    NewClassifier(),
	}
}

// setClassifier installs a widget-specific classifier, typically built with
// extra marker rules for that backend.
func (r *Reconciler) setClassifier(id string, c *Classifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classifiers[id] = c
}

func (r *Reconciler) classifierFor(id string) *Classifier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.classifiers[id]; ok {
		return c
	}
	return r.fallback
}

// Reconcile applies one collector outcome to the widget's state. Outcomes
// for widgets without an active lifecycle are discarded.
func (r *Reconciler) Reconcile(id string, data interface{}, err error) {
	if err == nil {
		applied := r.store.update(id, func(WidgetState) WidgetState {
			return WidgetState{
				Phase:     PhaseReady,
				Data:      data,
				FetchedAt: r.now(),
			}
		})
		if !applied {
			r.logger.Debug("discarded outcome for stopped widget", "widget", id)
		}
		return
	}

	cls := r.classifierFor(id).Classify(err.Error())
	held := false
	applied := r.store.update(id, func(prev WidgetState) WidgetState {
		if cls.Kind == KindStillLoading && prev.Phase == PhaseLoading {
			held = true
			return prev
		}
		return WidgetState{
			Phase:     PhaseDegraded,
			Data:      prev.Data,
			FetchedAt: prev.FetchedAt,
			Err:       cls,
			FailedAt:  r.now(),
		}
	})
	switch {
	case !applied:
		r.logger.Debug("discarded outcome for stopped widget", "widget", id)
	case held:
		r.logger.Debug("widget still warming up", "widget", id, "error", cls.Message)
	default:
		r.logger.Debug("widget degraded", "widget", id, "kind", cls.Kind, "error", cls.Message)
	}
}
