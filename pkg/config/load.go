package config

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from the standard config path.
// Search order:
//  1. $XDG_CONFIG_HOME/desk-pulse/config.toml
//  2. ~/.config/desk-pulse/config.toml
//
// If no file exists, returns DefaultConfig().
func Load() (*Config, error) {
	paths := configSearchPaths()
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return LoadFromFile(p)
		}
	}
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader reads configuration from an io.Reader.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// DefaultConfig returns the default configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
		},
		Widgets: WidgetsConfig{
			Enabled: append([]string(nil), WidgetIDs...),
			Intervals: map[string]Duration{
				"cpu":      {2 * time.Second},
				"ram":      {2 * time.Second},
				"disk":     {60 * time.Second},
				"docker":   {3 * time.Second},
				"spotify":  {3 * time.Second},
				"services": {3 * time.Second},
				"jira":     {30 * time.Second},
				"sentry":   {30 * time.Second},
			},
		},
		CPU: CPUConfig{
			TopProcesses: 3,
			SampleWindow: Duration{200 * time.Millisecond},
		},
		RAM: RAMConfig{
			TopProcesses: 3,
		},
		Jira: JiraConfig{
			BaseURL:    "https://zw-systems.atlassian.net",
			MaxResults: 15,
		},
		Sentry: SentryConfig{
			Organization: "zw-systems-gmbh",
			ProjectID:    "4509966802485248",
			Limit:        15,
		},
	}
}

// applyEnvOverrides checks environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("JIRA_API_TOKEN"); v != "" {
		cfg.Jira.APIToken = v
	}
	if v := os.Getenv("JIRA_EMAIL"); v != "" {
		cfg.Jira.Email = v
	}
	if v := os.Getenv("JIRA_BASE_URL"); v != "" {
		cfg.Jira.BaseURL = v
	}
	if v := os.Getenv("JIRA_JQL"); v != "" {
		cfg.Jira.JQL = v
	}
	if v := os.Getenv("SENTRY_AUTH_TOKEN"); v != "" {
		cfg.Sentry.AuthToken = v
	}
	if v := os.Getenv("DPULSE_LOG_LEVEL"); v != "" {
		cfg.General.LogLevel = v
	}
	if v := os.Getenv("DPULSE_LOG_FILE"); v != "" {
		cfg.General.LogFile = v
	}
}

// configSearchPaths returns the ordered list of config file paths to try.
func configSearchPaths() []string {
	home, _ := os.UserHomeDir()
	var paths []string

	xdg := xdgConfigHome(home)
	paths = append(paths, filepath.Join(xdg, "desk-pulse", "config.toml"))

	// If XDG_CONFIG_HOME was explicitly set, also try the fallback default.
	defaultXDG := filepath.Join(home, ".config")
	if xdg != defaultXDG {
		paths = append(paths, filepath.Join(defaultXDG, "desk-pulse", "config.toml"))
	}

	return paths
}

// xdgConfigHome returns XDG_CONFIG_HOME or ~/.config as fallback.
func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}
