// Package cpu collects processor utilization via gopsutil: per-core
// percentages sampled over a short window, their mean as the overall figure,
// and the heaviest processes. Works on Darwin and Linux without /proc
// dependencies.
package cpu

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	gocpu "github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/process"

	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors"
)

// Config controls the cpu collector behaviour.
type Config struct {
	// Interval is the polling rate (default 2s).
	Interval time.Duration

	// SampleWindow is how long each utilization sample observes the
	// counters (default 200ms). The fetch blocks for this long.
	SampleWindow time.Duration

	// TopN is how many of the heaviest processes to report (default 3).
	TopN int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:     2 * time.Second,
		SampleWindow: 200 * time.Millisecond,
		TopN:         3,
	}
}

// CoreUsage is one logical core's utilization.
type CoreUsage struct {
	ID      int     `json:"id"`
	Percent float64 `json:"percent"`
}

// ProcessCPU is one process's share of CPU time.
type ProcessCPU struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

// CPUStats is the snapshot returned by Collect.
type CPUStats struct {
	OverallPercent float64      `json:"overall_percent"`
	Cores          []CoreUsage  `json:"cores"`
	TopProcesses   []ProcessCPU `json:"top_processes"`
}

// Collector gathers CPU utilization via gopsutil.
type Collector struct {
	cfg Config

	mu      sync.Mutex
	healthy bool
}

var _ collectors.Collector = (*Collector)(nil)

// New creates a Collector with the given configuration. Zero-value fields in
// cfg are replaced with defaults.
func New(cfg Config) *Collector {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.SampleWindow <= 0 {
		cfg.SampleWindow = def.SampleWindow
	}
	if cfg.TopN <= 0 {
		cfg.TopN = def.TopN
	}
	return &Collector{cfg: cfg, healthy: true}
}

// Name returns the collector's unique identifier.
func (c *Collector) Name() string { return "cpu" }

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

// Collect samples per-core utilization over the configured window and ranks
// processes by CPU share. A failed process enumeration is not fatal; the
// snapshot then carries core data only.
func (c *Collector) Collect(ctx context.Context) (interface{}, error) {
	perCore, err := gocpu.PercentWithContext(ctx, c.cfg.SampleWindow, true)
	if err != nil {
		c.setHealthy(false)
		return nil, fmt.Errorf("failed to sample cpu usage: %w", err)
	}

	stats := CPUStats{
		Cores:          make([]CoreUsage, 0, len(perCore)),
		OverallPercent: meanPercent(perCore),
	}
	for i, pct := range perCore {
		stats.Cores = append(stats.Cores, CoreUsage{ID: i, Percent: pct})
	}
	stats.TopProcesses = c.topProcesses(ctx)

	c.setHealthy(true)
	return stats, nil
}

func (c *Collector) topProcesses(ctx context.Context) []ProcessCPU {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil
	}

	ranked := make([]ProcessCPU, 0, len(procs))
	for _, p := range procs {
		pct, err := p.CPUPercentWithContext(ctx)
		if err != nil || pct <= 0 {
			continue
		}
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}
		ranked = append(ranked, ProcessCPU{Name: name, Percent: pct})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Percent > ranked[j].Percent })
	if len(ranked) > c.cfg.TopN {
		ranked = ranked[:c.cfg.TopN]
	}
	return ranked
}

// meanPercent averages per-core samples into the overall figure.
func meanPercent(cores []float64) float64 {
	if len(cores) == 0 {
		return 0
	}
	var sum float64
	for _, pct := range cores {
		sum += pct
	}
	return sum / float64(len(cores))
}
