package pulse

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors"
)

// OutcomeFunc receives the result of one collector invocation along with how
// long it took. The Poller calls it synchronously after each fetch, so
// outcomes for a widget arrive strictly in completion order.
type OutcomeFunc func(data interface{}, err error, latency time.Duration)

// Poller drives one collector on a fixed interval. The first fetch happens
// immediately on Start, then once per interval. The fetch runs inline in the
// poller's single goroutine, so calls to the same collector never overlap: a
// fetch that outlasts the interval delays the next tick instead of stacking
// a concurrent call.
type Poller struct {
	collector collectors.Collector
	interval  time.Duration
	forward   OutcomeFunc
	logger    *slog.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewPoller returns an unstarted poller. interval must be positive; forward
// must be non-nil.
func NewPoller(c collectors.Collector, interval time.Duration, forward OutcomeFunc, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Poller{
		collector: c,
		interval:  interval,
		forward:   forward,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Start launches the polling goroutine. Further calls are no-ops. ctx is the
// parent for every fetch; Stop cancels it.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	ctx, p.cancel = context.WithCancel(ctx)
	p.mu.Unlock()

	p.logger.Debug("poller started", "collector", p.collector.Name(), "interval", p.interval)
	go p.run(ctx)
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	p.collectOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce(ctx)
		}
	}
}

func (p *Poller) collectOnce(ctx context.Context) {
	start := time.Now()
	data, err := p.collector.Collect(ctx)
	if ctx.Err() != nil {
		// Stopped while the fetch was in flight; the result is discarded.
		return
	}
	p.forward(data, err, time.Since(start))
}

// Stop cancels the schedule and any in-flight fetch, then waits for the
// polling goroutine to exit. After Stop returns no further outcomes are
// forwarded. Stop is idempotent and safe to call from multiple goroutines;
// calling it on a never-started poller is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	p.mu.Unlock()

	cancel()
	<-p.done
	p.logger.Debug("poller stopped", "collector", p.collector.Name())
}
