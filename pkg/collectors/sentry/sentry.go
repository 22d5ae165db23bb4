// Package sentry lists the newest unresolved issues for one Sentry project.
// The auth token comes from SENTRY_AUTH_TOKEN with a config fallback.
package sentry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors"
)

const (
	defaultBaseURL      = "https://sentry.io"
	defaultOrganization = "zw-systems-gmbh"
	defaultProjectID    = "4509966802485248"

	requestTimeout  = 12 * time.Second
	maxResponseBody = 1 << 20 // 1MB
)

// Config controls the sentry collector behaviour.
type Config struct {
	// Interval is the polling rate (default 30s).
	Interval time.Duration

	// Organization and ProjectID select the Sentry project to query.
	Organization string
	ProjectID    string

	// AuthToken mirrors the SENTRY_AUTH_TOKEN environment variable. The
	// environment wins when both are set.
	AuthToken string

	// BaseURL overrides the API host, for tests.
	BaseURL string

	// Limit caps how many issues are requested (default 15).
	Limit int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:     30 * time.Second,
		Organization: defaultOrganization,
		ProjectID:    defaultProjectID,
		Limit:        15,
	}
}

// Issue is one unresolved Sentry issue as shown on the dashboard.
type Issue struct {
	Title     string `json:"title"`
	LastSeen  string `json:"last_seen"`
	FirstSeen string `json:"first_seen"`
	Age       string `json:"age"`
	Events    uint64 `json:"events"`
	Users     uint64 `json:"users"`
	IsBot     bool   `json:"is_bot"`
	URL       string `json:"url"`
}

// Collector fetches unresolved issues from the Sentry API.
type Collector struct {
	cfg    Config
	client *http.Client
	now    func() time.Time

	mu      sync.Mutex
	healthy bool
}

var _ collectors.Collector = (*Collector)(nil)

// New creates a Collector. A nil client uses a default with a request
// timeout; tests inject an httptest client.
func New(cfg Config, client *http.Client) *Collector {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Organization == "" {
		cfg.Organization = def.Organization
	}
	if cfg.ProjectID == "" {
		cfg.ProjectID = def.ProjectID
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Limit <= 0 {
		cfg.Limit = def.Limit
	}
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	return &Collector{cfg: cfg, client: client, now: time.Now, healthy: true}
}

// Name returns the collector's unique identifier.
func (c *Collector) Name() string { return "sentry" }

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

// Collect fetches the project's unresolved issues, newest first.
func (c *Collector) Collect(ctx context.Context) (interface{}, error) {
	issues, err := c.fetchIssues(ctx)
	if err != nil {
		c.setHealthy(false)
		return nil, err
	}
	c.setHealthy(true)
	return issues, nil
}

func (c *Collector) fetchIssues(ctx context.Context) ([]Issue, error) {
	token := envOr("SENTRY_AUTH_TOKEN", c.cfg.AuthToken)
	if token == "" {
		return nil, errors.New("SENTRY_AUTH_TOKEN environment variable not set")
	}

	url := fmt.Sprintf("%s/api/0/organizations/%s/issues/?project=%s&statsPeriod=90d&sort=date&limit=%d&query=is:unresolved",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Organization, c.cfg.ProjectID, c.cfg.Limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Sentry issues: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Sentry issues: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Sentry issues: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("Sentry API error (%s): %s", resp.Status, body)
	}

	// Sentry error payloads are JSON objects, so sniff the shape before
	// decoding rather than after.
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New("invalid Sentry response format: expected array")
	}

	var raw []apiIssue
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse Sentry response: %v", err)
	}

	now := c.now()
	issues := make([]Issue, 0, len(raw))
	for _, item := range raw {
		issues = append(issues, item.toIssue(now))
	}
	return issues, nil
}

// apiIssue mirrors the slice of Sentry's issue payload we care about.
type apiIssue struct {
	Title     string    `json:"title"`
	LastSeen  string    `json:"lastSeen"`
	FirstSeen string    `json:"firstSeen"`
	Count     flexCount `json:"count"`
	UserCount uint64    `json:"userCount"`
	Permalink string    `json:"permalink"`
	Metadata  struct {
		Title string `json:"title"`
	} `json:"metadata"`
	Tags []struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"tags"`
}

func (a apiIssue) toIssue(now time.Time) Issue {
	title := a.Title
	if title == "" {
		title = a.Metadata.Title
	}
	if title == "" {
		title = "Unknown issue"
	}

	lastSeen := a.LastSeen
	if lastSeen == "" {
		lastSeen = "n/a"
	}
	firstSeen := a.FirstSeen
	if firstSeen == "" {
		firstSeen = "n/a"
	}

	// Crawler traffic shows up as a Python user agent in the browser tag.
	isBot := false
	for _, tag := range a.Tags {
		if tag.Key == "browser" && strings.Contains(tag.Value, "Python") {
			isBot = true
			break
		}
	}

	return Issue{
		Title:     title,
		LastSeen:  lastSeen,
		FirstSeen: firstSeen,
		Age:       formatAge(firstSeen, now),
		Events:    uint64(a.Count),
		Users:     a.UserCount,
		IsBot:     isBot,
		URL:       a.Permalink,
	}
}

// flexCount decodes Sentry's count field, which the API serves as a JSON
// string ("142") but older payloads carry as a number. Unparseable values
// decode to zero rather than failing the whole response.
type flexCount uint64

func (f *flexCount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexCount(n)
	return nil
}

// formatAge renders the time since firstSeen as the largest nonzero unit,
// "3d" / "7h" / "12m" / "45s". Unparseable timestamps render "n/a".
func formatAge(firstSeen string, now time.Time) string {
	t, err := time.Parse(time.RFC3339, firstSeen)
	if err != nil {
		return "n/a"
	}
	delta := now.Sub(t)
	if days := int64(delta.Hours() / 24); days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	if hours := int64(delta.Hours()); hours > 0 {
		return fmt.Sprintf("%dh", hours)
	}
	if minutes := int64(delta.Minutes()); minutes > 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	seconds := int64(delta.Seconds())
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%ds", seconds)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
