// Package ram collects physical memory usage via gopsutil, plus the
// processes holding the most resident memory.
package ram

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"

	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors"
)

// Config controls the ram collector behaviour.
type Config struct {
	// Interval is the polling rate (default 2s).
	Interval time.Duration

	// TopN is how many of the heaviest processes to report (default 3).
	TopN int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 2 * time.Second,
		TopN:     3,
	}
}

// ProcessMem is one process's resident memory footprint.
type ProcessMem struct {
	Name        string  `json:"name"`
	MemoryBytes uint64  `json:"memory_bytes"`
	Percent     float64 `json:"percent"`
}

// RAMStats is the snapshot returned by Collect.
type RAMStats struct {
	UsedBytes    uint64       `json:"used_bytes"`
	TotalBytes   uint64       `json:"total_bytes"`
	Percent      float64      `json:"percent"`
	TopProcesses []ProcessMem `json:"top_processes"`
}

// Collector gathers memory usage via gopsutil.
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
	if cfg.TopN <= 0 {
		cfg.TopN = def.TopN
	}
	return &Collector{cfg: cfg, healthy: true}
}

// Name returns the collector's unique identifier.
func (c *Collector) Name() string { return "ram" }

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

// Collect reads virtual memory statistics and ranks processes by resident
// set size. A failed process enumeration is not fatal; the snapshot then
// carries totals only.
func (c *Collector) Collect(ctx context.Context) (interface{}, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		c.setHealthy(false)
		return nil, fmt.Errorf("failed to read memory stats: %w", err)
	}

	stats := RAMStats{
		UsedBytes:  vm.Used,
		TotalBytes: vm.Total,
		Percent:    vm.UsedPercent,
	}
	stats.TopProcesses = c.topProcesses(ctx, vm.Total)

	c.setHealthy(true)
	return stats, nil
}

func (c *Collector) topProcesses(ctx context.Context, total uint64) []ProcessMem {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil
	}

	ranked := make([]ProcessMem, 0, len(procs))
	for _, p := range procs {
		info, err := p.MemoryInfoWithContext(ctx)
		if err != nil || info == nil || info.RSS == 0 {
			continue
		}
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}
		ranked = append(ranked, ProcessMem{
			Name:        name,
			MemoryBytes: info.RSS,
			Percent:     rssPercent(info.RSS, total),
		})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].MemoryBytes > ranked[j].MemoryBytes })
	if len(ranked) > c.cfg.TopN {
		ranked = ranked[:c.cfg.TopN]
	}
	return ranked
}

// rssPercent expresses a resident set size as a share of total memory.
func rssPercent(rss, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(rss) / float64(total) * 100
}
