// Package disk collects filesystem usage via gopsutil for physical mounts,
// skipping virtual filesystems.
package disk

import (
	"context"
	"fmt"
	"sync"
	"time"

	godisk "github.com/shirou/gopsutil/v4/disk"

	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors"
)

// Config controls the disk collector behaviour.
type Config struct {
	// Interval is the polling rate (default 60s; disk usage moves slowly).
	Interval time.Duration

	// MonitoredMounts restricts collection to these mount paths. An empty
	// slice means "collect all non-virtual partitions".
	MonitoredMounts []string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{Interval: 60 * time.Second}
}

// MountUsage holds usage data for a single mount point.
type MountUsage struct {
	Path       string  `json:"path"`
	UsedBytes  uint64  `json:"used_bytes"`
	TotalBytes uint64  `json:"total_bytes"`
	Percent    float64 `json:"percent"`
}

// DiskStats is the snapshot returned by Collect.
type DiskStats struct {
	Mounts []MountUsage `json:"mounts"`
}

// Collector gathers disk usage via gopsutil.
type Collector struct {
	cfg Config

	mu      sync.Mutex
	healthy bool
}

var _ collectors.Collector = (*Collector)(nil)

// New creates a Collector with the given configuration. Zero-value fields in
// cfg are replaced with defaults.
func New(cfg Config) *Collector {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	return &Collector{cfg: cfg, healthy: true}
}

// Name returns the collector's unique identifier.
func (c *Collector) Name() string { return "disk" }

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

// Collect enumerates mounted filesystems and reads usage for each. Mounts
// that fail to stat are skipped.
func (c *Collector) Collect(ctx context.Context) (interface{}, error) {
	if len(c.cfg.MonitoredMounts) > 0 {
		stats := DiskStats{}
		for _, mp := range c.cfg.MonitoredMounts {
			usage, err := godisk.UsageWithContext(ctx, mp)
			if err != nil {
				continue
			}
			stats.Mounts = append(stats.Mounts, toMountUsage(usage))
		}
		c.setHealthy(true)
		return stats, nil
	}

	parts, err := godisk.PartitionsWithContext(ctx, false)
	if err != nil {
		c.setHealthy(false)
		return nil, fmt.Errorf("failed to enumerate disk partitions: %w", err)
	}

	stats := DiskStats{}
	for _, p := range parts {
		if isVirtualFS(p.Fstype) {
			continue
		}
		usage, err := godisk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			continue
		}
		stats.Mounts = append(stats.Mounts, toMountUsage(usage))
	}

	c.setHealthy(true)
	return stats, nil
}

func toMountUsage(u *godisk.UsageStat) MountUsage {
	return MountUsage{
		Path:       u.Path,
		UsedBytes:  u.Used,
		TotalBytes: u.Total,
		Percent:    u.UsedPercent,
	}
}

// isVirtualFS returns true for filesystem types that do not represent real
// storage and should be skipped during enumeration.
func isVirtualFS(fstype string) bool {
	switch fstype {
	case "devfs", "devtmpfs", "tmpfs", "sysfs", "proc", "cgroup", "cgroup2",
		"autofs", "mqueue", "hugetlbfs", "debugfs", "tracefs", "securityfs",
		"pstore", "bpf", "fusectl", "configfs", "ramfs", "rpc_pipefs",
		"nfsd", "map", "devpts", "squashfs":
		return true
	}
	return false
}
