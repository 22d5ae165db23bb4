package collectors

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// MockCollector implements Collector for tests. Behavior is set through
// options at construction and may be changed mid-test through the setters;
// the collector counts every Collect call.
type MockCollector struct {
	name     string
	interval time.Duration

	mu      sync.RWMutex
	data    interface{}
	err     error
	healthy bool
	latency time.Duration

	callCount atomic.Int64

	// CollectFunc, if set, replaces the default Collect behavior entirely.
	// Tests use it to return different data per call or to block until
	// signalled.
	CollectFunc func(ctx context.Context) (interface{}, error)
}

// MockCollectorOption configures a MockCollector.
type MockCollectorOption func(*MockCollector)

// WithData sets the data returned by Collect.
func WithData(data interface{}) MockCollectorOption {
	return func(m *MockCollector) { m.data = data }
}

// WithError sets the error returned by Collect.
func WithError(err error) MockCollectorOption {
	return func(m *MockCollector) { m.err = err }
}

// WithHealthy sets the Healthy() return value.
func WithHealthy(healthy bool) MockCollectorOption {
	return func(m *MockCollector) { m.healthy = healthy }
}

// WithLatency makes every Collect take at least d, or less when the context
// is cancelled first. Used to simulate slow backends.
func WithLatency(d time.Duration) MockCollectorOption {
	return func(m *MockCollector) { m.latency = d }
}

// WithCollectFunc sets a custom function for Collect.
func WithCollectFunc(fn func(ctx context.Context) (interface{}, error)) MockCollectorOption {
	return func(m *MockCollector) { m.CollectFunc = fn }
}

// NewMockCollector creates a mock collector with the given name, interval,
// and options.
func NewMockCollector(name string, interval time.Duration, opts ...MockCollectorOption) *MockCollector {
	m := &MockCollector{
		name:     name,
		interval: interval,
		healthy:  true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the collector name.
func (m *MockCollector) Name() string { return m.name }

// Interval returns the configured collection interval.
func (m *MockCollector) Interval() time.Duration { return m.interval }

// Healthy returns the configured health status.
func (m *MockCollector) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.healthy
}

// SetHealthy updates the health status.
func (m *MockCollector) SetHealthy(h bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthy = h
}

// SetData updates the returned data.
func (m *MockCollector) SetData(data interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
}

// SetError updates the returned error.
func (m *MockCollector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetLatency updates the simulated fetch duration.
func (m *MockCollector) SetLatency(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latency = d
}

// Collect counts the call, waits out any configured latency, and returns the
// configured data and error, or delegates to CollectFunc when set.
func (m *MockCollector) Collect(ctx context.Context) (interface{}, error) {
	m.callCount.Add(1)

	if m.CollectFunc != nil {
		return m.CollectFunc(ctx)
	}

	m.mu.RLock()
	data, err, latency := m.data, m.err, m.latency
	m.mu.RUnlock()

	if latency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(latency):
		}
	}
	return data, err
}

// CallCount returns how many times Collect has been called.
func (m *MockCollector) CallCount() int64 {
	return m.callCount.Load()
}
