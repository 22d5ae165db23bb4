// Package collectors defines the source-adapter contract for desk-pulse
// widgets and a registry that tracks the runtime status of every adapter.
// Each backend (cpu, ram, disk, docker, spotify, jira, sentry, services)
// implements the Collector interface in a sub-package; the pulse Hub drives
// registered collectors and records their runs here.
package collectors

import (
	"context"
	"time"
)

// Collector is the contract every backend adapter implements. A collector
// performs one fetch per Collect call and carries no schedule state of its
// own; polling, serialization, and retry-via-next-tick all live in the
// caller.
type Collector interface {
	// Name returns the unique widget id this collector feeds (e.g. "cpu").
	Name() string

	// Collect performs one fetch and returns the backend's typed record.
	// The value is opaque here; consumers type-assert based on Name. The
	// returned data must not be mutated afterwards: it is published as-is.
	// Errors must carry human-readable messages — classification matches
	// markers inside them.
	Collect(ctx context.Context) (interface{}, error)

	// Interval returns the default poll interval for this backend. The
	// schedule may override it from configuration.
	Interval() time.Duration

	// Healthy reports whether the collector is functioning. A collector
	// that has never run or whose last run succeeded is healthy.
	Healthy() bool
}

// CollectorStatus is the recorded runtime state of one collector. The hub
// updates it after every fetch via Registry.RecordRun.
type CollectorStatus struct {
	Name        string
	Healthy     bool
	LastRun     time.Time
	LastError   error
	RunCount    int64
	ErrorCount  int64
	LastLatency time.Duration
}
