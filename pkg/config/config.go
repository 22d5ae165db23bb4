// Package config provides TOML-based configuration for desk-pulse.
package config

import "time"

// WidgetIDs lists every widget the dashboard knows, in display order.
var WidgetIDs = []string{"cpu", "ram", "disk", "docker", "spotify", "services", "jira", "sentry"}

// Config is the root desk-pulse configuration.
type Config struct {
	General  GeneralConfig  `toml:"general"`
	Widgets  WidgetsConfig  `toml:"widgets"`
	CPU      CPUConfig      `toml:"cpu"`
	RAM      RAMConfig      `toml:"ram"`
	Disk     DiskConfig     `toml:"disk"`
	Jira     JiraConfig     `toml:"jira"`
	Sentry   SentryConfig   `toml:"sentry"`
	Services ServicesConfig `toml:"services"`
}

// GeneralConfig holds settings that are not tied to one widget.
type GeneralConfig struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// LogFile receives logs while the TUI owns the terminal. Empty logs
	// to stderr, which only one-shot mode leaves readable.
	LogFile string `toml:"log_file"`
}

// WidgetsConfig selects and tunes the widgets on the dashboard.
type WidgetsConfig struct {
	// Enabled lists widget ids in display order.
	Enabled []string `toml:"enabled"`

	// Intervals overrides the per-widget polling rate.
	Intervals map[string]Duration `toml:"intervals"`
}

// CPUConfig tunes the cpu widget.
type CPUConfig struct {
	TopProcesses int      `toml:"top_processes"`
	SampleWindow Duration `toml:"sample_window"`
}

// RAMConfig tunes the ram widget.
type RAMConfig struct {
	TopProcesses int `toml:"top_processes"`
}

// DiskConfig tunes the disk widget.
type DiskConfig struct {
	// Mounts pins the monitored mount points. Empty monitors everything
	// except virtual filesystems.
	Mounts []string `toml:"mounts"`
}

// JiraConfig holds Jira credentials and query settings. The JIRA_*
// environment variables override these.
type JiraConfig struct {
	BaseURL    string `toml:"base_url"`
	Email      string `toml:"email"`
	APIToken   string `toml:"api_token"`
	JQL        string `toml:"jql"`
	MaxResults int    `toml:"max_results"`
}

// SentryConfig holds Sentry project and credential settings. The
// SENTRY_AUTH_TOKEN environment variable overrides the token.
type SentryConfig struct {
	Organization string `toml:"organization"`
	ProjectID    string `toml:"project_id"`
	AuthToken    string `toml:"auth_token"`
	Limit        int    `toml:"limit"`
}

// ServicesConfig lists the health endpoints the services widget probes.
type ServicesConfig struct {
	Targets []ServiceTarget `toml:"targets"`
}

// ServiceTarget is one named health endpoint.
type ServiceTarget struct {
	Name string `toml:"name"`
	URL  string `toml:"url"`
}

// Interval returns the configured polling interval for a widget, or the
// fallback when the config carries no positive override.
func (c *Config) Interval(widget string, fallback time.Duration) time.Duration {
	if d, ok := c.Widgets.Intervals[widget]; ok && d.Duration > 0 {
		return d.Duration
	}
	return fallback
}

// WidgetEnabled reports whether a widget id is in the enabled list.
func (c *Config) WidgetEnabled(id string) bool {
	for _, w := range c.Widgets.Enabled {
		if w == id {
			return true
		}
	}
	return false
}
