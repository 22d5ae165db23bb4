package docker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// fakeRunner cans responses per docker subcommand.
type fakeRunner struct {
	lookPathErr error

	psStdout string
	psStderr string
	psCode   int
	psErr    error

	// inspectLabels maps container id to the labels line `docker inspect`
	// would print. Missing ids fail with a non-zero exit.
	inspectLabels map[string]string
}

func (f *fakeRunner) LookPath(file string) (string, error) {
	if f.lookPathErr != nil {
		return "", f.lookPathErr
	}
	return "/usr/bin/" + file, nil
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, int, error) {
	if len(args) > 0 && args[0] == "ps" {
		return []byte(f.psStdout), []byte(f.psStderr), f.psCode, f.psErr
	}
	if len(args) > 0 && args[0] == "inspect" {
		id := args[len(args)-1]
		labels, ok := f.inspectLabels[id]
		if !ok {
			return nil, []byte("Error: No such object: " + id), 1, nil
		}
		return []byte(labels + "\n"), nil, 0, nil
	}
	return nil, nil, 0, nil
}

func TestName(t *testing.T) {
	c := New(DefaultConfig(), &fakeRunner{})
	if got := c.Name(); got != "docker" {
		t.Errorf("Name() = %q, want %q", got, "docker")
	}
}

func TestIntervalDefault(t *testing.T) {
	c := New(Config{}, &fakeRunner{})
	if got := c.Interval(); got != 3*time.Second {
		t.Errorf("Interval() with zero config = %v, want 3s", got)
	}
}

func TestCollectBinaryMissing(t *testing.T) {
	c := New(DefaultConfig(), &fakeRunner{lookPathErr: errors.New("exec: \"docker\": executable file not found in $PATH")})

	_, err := c.Collect(context.Background())
	if err == nil {
		t.Fatal("expected error when docker binary is missing")
	}
	if err.Error() != "docker is not installed" {
		t.Errorf("error = %q, want %q", err.Error(), "docker is not installed")
	}
	if c.Healthy() {
		t.Error("collector should be unhealthy after failure")
	}
}

func TestCollectExecFailure(t *testing.T) {
	c := New(DefaultConfig(), &fakeRunner{psErr: errors.New("fork/exec: resource temporarily unavailable")})

	_, err := c.Collect(context.Background())
	if err == nil {
		t.Fatal("expected error when docker cannot be started")
	}
	if !strings.HasPrefix(err.Error(), "failed to execute docker command:") {
		t.Errorf("error = %q, want failed-to-execute prefix", err.Error())
	}
}

func TestCollectDaemonDown(t *testing.T) {
	daemonMsg := "Cannot connect to the Docker daemon at unix:///var/run/docker.sock. Is the docker daemon running?"
	c := New(DefaultConfig(), &fakeRunner{psStderr: daemonMsg + "\n", psCode: 1})

	_, err := c.Collect(context.Background())
	if err == nil {
		t.Fatal("expected error when daemon is down")
	}
	// The daemon's own message passes through verbatim so classification and
	// display can use it.
	if err.Error() != daemonMsg {
		t.Errorf("error = %q, want daemon stderr verbatim", err.Error())
	}
}

func TestCollectParsesContainers(t *testing.T) {
	ps := "abc123|web|nginx:1.25|Up 2 hours|0.0.0.0:80->80/tcp|2 hours ago\n" +
		"def456|worker|redis:7|Up 5 minutes (healthy)|6379/tcp|5 minutes ago\n"
	c := New(DefaultConfig(), &fakeRunner{psStdout: ps})

	result, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	containers, ok := result.([]Container)
	if !ok {
		t.Fatalf("Collect() returned %T, want []Container", result)
	}
	if len(containers) != 2 {
		t.Fatalf("got %d containers, want 2", len(containers))
	}

	want := Container{ID: "abc123", Name: "web", Image: "nginx:1.25", Status: "Up 2 hours", Ports: "80", Uptime: "2 hours ago"}
	if containers[0] != want {
		t.Errorf("containers[0] = %+v, want %+v", containers[0], want)
	}
	if containers[1].Ports != "6379" {
		t.Errorf("containers[1].Ports = %q, want %q", containers[1].Ports, "6379")
	}
	if !c.Healthy() {
		t.Error("collector should be healthy after success")
	}
}

func TestCollectEmptyOutput(t *testing.T) {
	c := New(DefaultConfig(), &fakeRunner{psStdout: ""})

	result, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if containers := result.([]Container); len(containers) != 0 {
		t.Errorf("got %d containers for empty output, want 0", len(containers))
	}
}

func TestCollectComposeRename(t *testing.T) {
	ps := "abc123|customer-portal-mysql-1|mysql:8|Up 3 days|0.0.0.0:3306->3306/tcp|3 days ago\n" +
		"def456|standalone|nginx:1.25|Up 1 hour||1 hour ago\n"
	c := New(DefaultConfig(), &fakeRunner{
		psStdout: ps,
		inspectLabels: map[string]string{
			"abc123": "map[com.docker.compose.config-hash:9f2 com.docker.compose.project:customer-portal " +
				"com.docker.compose.project.working_dir:/home/dev/portal com.docker.compose.service:mysql " +
				"com.docker.compose.version:2.24.5]",
		},
	})

	result, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	containers := result.([]Container)

	if containers[0].Name != "portal - mysql" {
		t.Errorf("compose container Name = %q, want %q", containers[0].Name, "portal - mysql")
	}
	// Non-compose containers keep their docker name (inspect fails for them
	// in this fake, which must be tolerated).
	if containers[1].Name != "standalone" {
		t.Errorf("plain container Name = %q, want %q", containers[1].Name, "standalone")
	}
}

func TestParseComposeLabels(t *testing.T) {
	raw := "map[com.docker.compose.project:shop com.docker.compose.project.working_dir:/srv/shop-stack " +
		"com.docker.compose.service:api other.label:x]"

	project, service, workingDir := parseComposeLabels(raw)
	if project != "shop" {
		t.Errorf("project = %q, want %q", project, "shop")
	}
	if service != "api" {
		t.Errorf("service = %q, want %q", service, "api")
	}
	if workingDir != "/srv/shop-stack" {
		t.Errorf("workingDir = %q, want %q", workingDir, "/srv/shop-stack")
	}

	project, service, workingDir = parseComposeLabels("map[maintainer:nginx]")
	if project != "" || service != "" || workingDir != "" {
		t.Errorf("non-compose labels parsed as %q/%q/%q, want empty", project, service, workingDir)
	}
}

func TestLastPathSegment(t *testing.T) {
	tests := []struct {
		dir  string
		want string
	}{
		{"/home/dev/customer-portal", "customer-portal"},
		{"/home/dev/customer-portal/", "customer-portal"},
		{"portal", "portal"},
		{"/", ""},
	}
	for _, tt := range tests {
		if got := lastPathSegment(tt.dir); got != tt.want {
			t.Errorf("lastPathSegment(%q) = %q, want %q", tt.dir, got, tt.want)
		}
	}
}

func TestParsePorts(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", ""},
		{"published", "0.0.0.0:80->80/tcp", "80"},
		{"exposed only", "80/tcp", "80"},
		{"several", "0.0.0.0:80->80/tcp, 0.0.0.0:3306->3306/tcp", "80, 3306"},
		{"ipv6", ":::8080->8080/tcp", "8080"},
		{"mixed", "0.0.0.0:443->443/tcp, 9000/tcp", "443, 9000"},
		{"unparseable", "garbage", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parsePorts(tt.raw); got != tt.want {
				t.Errorf("parsePorts(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
