// Package spotify reports the current Spotify track by querying the desktop
// app over AppleScript. The query only exists on macOS; on other platforms
// Collect fails with an unsupported-platform message that the dashboard
// renders as an explanation rather than an error.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors"
)

// appleScript asks the running Spotify app for the current track, or yields
// the literal not_running when the app is closed.
const appleScript = `
tell application "Spotify"
	if it is running then
		set trackName to name of current track
		set artistName to artist of current track
		set albumName to album of current track
		set artworkUrl to artwork url of current track
		set playerState to player state as string
		return trackName & "|" & artistName & "|" & albumName & "|" & artworkUrl & "|" & playerState
	else
		return "not_running"
	end if
end tell`

// Runner abstracts osascript invocation for testability. err is set only
// when the command could not be started at all.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout []byte, exitCode int, err error)
}

// osRunner is the production Runner backed by os/exec.
type osRunner struct{}

func (osRunner) Run(ctx context.Context, name string, args ...string) ([]byte, int, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return out, exitErr.ExitCode(), nil
		}
		return out, -1, err
	}
	return out, 0, nil
}

// NowPlaying describes the current Spotify track.
type NowPlaying struct {
	Track      string `json:"track"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	ArtworkURL string `json:"artwork_url"`
	Playing    bool   `json:"playing"`
}

// Config controls the spotify collector behaviour.
type Config struct {
	// Interval is the polling rate (default 3s).
	Interval time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{Interval: 3 * time.Second}
}

// Collector reports the current Spotify track.
type Collector struct {
	cfg    Config
	runner Runner

	mu      sync.Mutex
	healthy bool
}

var _ collectors.Collector = (*Collector)(nil)

// New creates a Collector. A nil runner uses the real osascript binary;
// tests inject a fake.
func New(cfg Config, runner Runner) *Collector {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if runner == nil {
		runner = osRunner{}
	}
	return &Collector{cfg: cfg, runner: runner, healthy: true}
}

// Name returns the collector's unique identifier.
func (c *Collector) Name() string { return "spotify" }

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

// Collect returns the current track, or a platform explanation where the
// integration does not exist. The platform split lives in collect.
func (c *Collector) Collect(ctx context.Context) (interface{}, error) {
	data, err := c.collect(ctx)
	if err != nil {
		c.setHealthy(false)
		return nil, err
	}
	c.setHealthy(true)
	return data, nil
}

// fetchNowPlaying runs the AppleScript query and maps its reply. A non-zero
// osascript exit means the app is not scriptable right now, which presents
// the same as "closed".
func (c *Collector) fetchNowPlaying(ctx context.Context) (NowPlaying, error) {
	stdout, code, err := c.runner.Run(ctx, "osascript", "-e", appleScript)
	if err != nil {
		return NowPlaying{}, fmt.Errorf("failed to execute AppleScript: %v", err)
	}
	if code != 0 {
		return NowPlaying{}, errors.New("Spotify is not running")
	}

	reply := strings.TrimSpace(string(stdout))
	if reply == "not_running" {
		return NowPlaying{}, errors.New("Spotify is not running")
	}
	return parseScriptOutput(reply)
}

// parseScriptOutput maps the script's pipe-delimited reply to a NowPlaying.
func parseScriptOutput(reply string) (NowPlaying, error) {
	parts := strings.Split(reply, "|")
	if len(parts) < 5 {
		return NowPlaying{}, errors.New("failed to parse Spotify data")
	}
	return NowPlaying{
		Track:      parts[0],
		Artist:     parts[1],
		Album:      parts[2],
		ArtworkURL: parts[3],
		Playing:    parts[4] == "playing",
	}, nil
}
