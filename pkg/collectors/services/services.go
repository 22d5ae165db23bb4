// Package services probes configured HTTP health endpoints and reports
// per-service reachability. One slow or down service never hides the others;
// the collector itself only fails when nothing at all is reachable.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors"
)

const (
	probeTimeout    = 8 * time.Second
	maxResponseBody = 1 << 20 // 1MB
)

// Target is one health endpoint to probe.
type Target struct {
	Name string
	URL  string
}

// Config controls the services collector behaviour.
type Config struct {
	// Interval is the polling rate (default 3s).
	Interval time.Duration

	// Targets are probed in order on every collection.
	Targets []Target
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{Interval: 3 * time.Second}
}

// ServiceHealth is the result of probing one target.
type ServiceHealth struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	Up         bool   `json:"is_up"`
	StatusCode int    `json:"status_code"`
	LatencyMS  int64  `json:"latency_ms"`
	CheckedAt  int64  `json:"checked_at_ms"`
	Error      string `json:"error,omitempty"`
}

// HealthReport is one collection's worth of probe results.
type HealthReport struct {
	Services []ServiceHealth `json:"services"`
}

// Collector probes each configured target with a GET.
type Collector struct {
	cfg    Config
	client *http.Client

	mu      sync.Mutex
	healthy bool
}

var _ collectors.Collector = (*Collector)(nil)

// New creates a Collector. A nil client uses a default with the probe
// timeout; tests inject an httptest client.
func New(cfg Config, client *http.Client) *Collector {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if client == nil {
		client = &http.Client{Timeout: probeTimeout}
	}
	return &Collector{cfg: cfg, client: client, healthy: true}
}

// Name returns the collector's unique identifier.
func (c *Collector) Name() string { return "services" }

// Interval returns the polling interval.
func (c *Collector) Interval() time.Duration { return c.cfg.Interval }

// Healthy reports whether the last collection succeeded.
func (c *Collector) Healthy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.healthy
}

func (c *Collector) setHealthy(h bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.healthy = h
}

// Collect probes every target sequentially. A non-2xx response is a result,
// not a collection error; the collection fails only when no targets are
// configured or every probe died at the transport level.
func (c *Collector) Collect(ctx context.Context) (interface{}, error) {
	if len(c.cfg.Targets) == 0 {
		c.setHealthy(false)
		return nil, errors.New("no services configured")
	}

	report := HealthReport{Services: make([]ServiceHealth, 0, len(c.cfg.Targets))}
	var failures int
	var firstErr error
	for _, target := range c.cfg.Targets {
		record, err := c.probe(ctx, target)
		if err != nil {
			failures++
			if firstErr == nil {
				firstErr = err
			}
		}
		report.Services = append(report.Services, record)
	}

	if failures == len(report.Services) {
		c.setHealthy(false)
		return nil, fmt.Errorf("all %d service checks failed: %w", failures, firstErr)
	}

	c.setHealthy(true)
	return report, nil
}

// probe GETs one target. err mirrors record.Error and is non-nil only for
// transport-level failures; latency is recorded either way.
func (c *Collector) probe(ctx context.Context, target Target) (ServiceHealth, error) {
	record := ServiceHealth{
		Name:      target.Name,
		URL:       target.URL,
		CheckedAt: time.Now().UnixMilli(),
	}
	started := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.URL, nil)
	if err != nil {
		record.LatencyMS = time.Since(started).Milliseconds()
		record.Error = err.Error()
		return record, err
	}

	resp, err := c.client.Do(req)
	record.LatencyMS = time.Since(started).Milliseconds()
	if err != nil {
		record.Error = err.Error()
		return record, err
	}
	defer func() { _ = resp.Body.Close() }()

	// Drain so the connection can be reused across probes.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))

	record.StatusCode = resp.StatusCode
	record.Up = resp.StatusCode >= 200 && resp.StatusCode <= 299
	return record, nil
}
