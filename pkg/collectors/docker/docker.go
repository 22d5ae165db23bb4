// Package docker lists running containers by shelling out to the docker CLI.
// Compose-managed containers are renamed "folder - service" from their
// compose labels so stacks read naturally on the dashboard.
package docker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors"
)

const psFormat = "{{.ID}}|{{.Names}}|{{.Image}}|{{.Status}}|{{.Ports}}|{{.RunningFor}}"

// Runner abstracts CLI invocation for testability. The production
// implementation shells out; tests inject canned output.
type Runner interface {
	// LookPath reports the path of an executable, like exec.LookPath.
	LookPath(file string) (string, error)

	// Run executes a command and returns its output and exit code. err is
	// set only when the command could not be started at all.
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, exitCode int, err error)
}

// systemRunner is the production Runner backed by os/exec.
type systemRunner struct{}

func (systemRunner) LookPath(file string) (string, error) { return exec.LookPath(file) }

func (systemRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.Bytes(), stderr.Bytes(), exitErr.ExitCode(), nil
		}
		return stdout.Bytes(), stderr.Bytes(), -1, err
	}
	return stdout.Bytes(), stderr.Bytes(), 0, nil
}

// Config controls the docker collector behaviour.
type Config struct {
	// Interval is the polling rate (default 3s).
	Interval time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{Interval: 3 * time.Second}
}

// Container is one running container as shown on the dashboard.
type Container struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Image  string `json:"image"`
	Status string `json:"status"`
	Ports  string `json:"ports"`
	Uptime string `json:"uptime"`
}

// Collector lists running containers via the docker CLI.
type Collector struct {
	cfg    Config
	runner Runner

	mu      sync.Mutex
	healthy bool
}

var _ collectors.Collector = (*Collector)(nil)

// New creates a Collector. A nil runner uses the real docker CLI; tests
// inject a fake.
func New(cfg Config, runner Runner) *Collector {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if runner == nil {
		runner = systemRunner{}
	}
	return &Collector{cfg: cfg, runner: runner, healthy: true}
}

// Name returns the collector's unique identifier.
func (c *Collector) Name() string { return "docker" }

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

// Collect runs `docker ps` and returns the running containers. A missing
// binary and a stopped daemon produce distinct messages: the first is a
// configuration problem, the second surfaces the daemon's own stderr.
func (c *Collector) Collect(ctx context.Context) (interface{}, error) {
	bin, err := c.runner.LookPath("docker")
	if err != nil {
		c.setHealthy(false)
		return nil, errors.New("docker is not installed")
	}

	stdout, stderr, code, err := c.runner.Run(ctx, bin, "ps", "--format", psFormat)
	if err != nil {
		c.setHealthy(false)
		return nil, fmt.Errorf("failed to execute docker command: %v", err)
	}
	if code != 0 {
		c.setHealthy(false)
		msg := strings.TrimSpace(string(stderr))
		if msg == "" {
			msg = fmt.Sprintf("docker ps exited with code %d", code)
		}
		return nil, errors.New(msg)
	}

	containers := c.parsePS(ctx, bin, string(stdout))
	c.setHealthy(true)
	return containers, nil
}

func (c *Collector) parsePS(ctx context.Context, bin, out string) []Container {
	var containers []Container
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		for len(parts) < 6 {
			parts = append(parts, "")
		}

		name := parts[1]
		if folder, service, ok := c.composeInfo(ctx, bin, parts[0]); ok {
			name = folder + " - " + service
		}

		containers = append(containers, Container{
			ID:     parts[0],
			Name:   name,
			Image:  parts[2],
			Status: parts[3],
			Ports:  parsePorts(parts[4]),
			Uptime: parts[5],
		})
	}
	return containers
}

// composeInfo derives the compose display name parts from the container's
// labels. ok is false for non-compose containers and on any inspect failure;
// the container then keeps its docker name.
func (c *Collector) composeInfo(ctx context.Context, bin, id string) (folder, service string, ok bool) {
	stdout, _, code, err := c.runner.Run(ctx, bin, "inspect", "--format", "{{.Config.Labels}}", id)
	if err != nil || code != 0 {
		return "", "", false
	}

	project, service, workingDir := parseComposeLabels(string(stdout))
	if project == "" || service == "" {
		return "", "", false
	}

	folder = project
	if workingDir != "" {
		if last := lastPathSegment(workingDir); last != "" {
			folder = last
		}
	}
	return folder, service, true
}

// parseComposeLabels extracts the compose project, service, and working dir
// from the `map[key:value ...]` form docker inspect prints for labels.
func parseComposeLabels(raw string) (project, service, workingDir string) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "map[")
	s = strings.TrimSuffix(s, "]")
	for _, field := range strings.Fields(s) {
		switch {
		case strings.HasPrefix(field, "com.docker.compose.project.working_dir:"):
			workingDir = strings.TrimPrefix(field, "com.docker.compose.project.working_dir:")
		case strings.HasPrefix(field, "com.docker.compose.project:"):
			project = strings.TrimPrefix(field, "com.docker.compose.project:")
		case strings.HasPrefix(field, "com.docker.compose.service:"):
			service = strings.TrimPrefix(field, "com.docker.compose.service:")
		}
	}
	return project, service, workingDir
}

func lastPathSegment(dir string) string {
	trimmed := strings.TrimRight(dir, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// parsePorts reduces docker's port column to bare host port numbers:
// "0.0.0.0:80->80/tcp" becomes "80", "80/tcp" becomes "80". Mappings that
// match neither shape are dropped.
func parsePorts(raw string) string {
	if raw == "" {
		return ""
	}
	var ports []string
	for _, mapping := range strings.Split(raw, ",") {
		mapping = strings.TrimSpace(mapping)
		if arrow := strings.Index(mapping, "->"); arrow >= 0 {
			host := mapping[:arrow]
			if colon := strings.LastIndex(host, ":"); colon >= 0 {
				ports = append(ports, host[colon+1:])
			}
			continue
		}
		if slash := strings.Index(mapping, "/"); slash >= 0 {
			ports = append(ports, mapping[:slash])
		}
	}
	return strings.Join(ports, ", ")
}
