// Package jira surfaces the most recently updated tickets from a Jira Cloud
// search. Credentials come from the JIRA_* environment variables with config
// fields as fallback, so one laptop profile can drive several dashboards.
package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors"
)

const (
	defaultBaseURL = "https://zw-systems.atlassian.net"
	defaultJQL     = "updated >= -3650d ORDER BY updated DESC"

	requestTimeout  = 12 * time.Second
	maxResponseBody = 1 << 20 // 1MB
)

// Config controls the jira collector behaviour.
type Config struct {
	// Interval is the polling rate (default 30s).
	Interval time.Duration

	// BaseURL, Email, APIToken and JQL mirror the JIRA_BASE_URL, JIRA_EMAIL,
	// JIRA_API_TOKEN and JIRA_JQL environment variables. The environment wins
	// when both are set.
	BaseURL  string
	Email    string
	APIToken string
	JQL      string

	// MaxResults caps how many tickets are requested (default 15).
	MaxResults int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:   30 * time.Second,
		MaxResults: 15,
	}
}

// Ticket is one Jira issue as shown on the dashboard.
type Ticket struct {
	Key      string `json:"key"`
	Summary  string `json:"summary"`
	Status   string `json:"status"`
	Assignee string `json:"assignee"`
	URL      string `json:"url"`
}

// Collector fetches tickets from the Jira Cloud REST API.
type Collector struct {
	cfg    Config
	client *http.Client

	mu      sync.Mutex
	healthy bool
}

var _ collectors.Collector = (*Collector)(nil)

// New creates a Collector. A nil client uses a default with a request
// timeout; tests inject an httptest client.
func New(cfg Config, client *http.Client) *Collector {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultConfig().MaxResults
	}
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	return &Collector{cfg: cfg, client: client, healthy: true}
}

// Name returns the collector's unique identifier.
func (c *Collector) Name() string { return "jira" }

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

// Collect validates credentials against /myself and then runs the configured
// JQL search. Missing credentials fail before any request is made.
func (c *Collector) Collect(ctx context.Context) (interface{}, error) {
	tickets, err := c.fetchTickets(ctx)
	if err != nil {
		c.setHealthy(false)
		return nil, err
	}
	c.setHealthy(true)
	return tickets, nil
}

// settings is one fetch's resolved credentials and query.
type settings struct {
	base  string
	email string
	token string
	jql   string
}

// resolve reads the JIRA_* environment for every fetch so a token rotated in
// the shell takes effect without restarting the dashboard.
func (c *Collector) resolve() (settings, error) {
	token := envOr("JIRA_API_TOKEN", c.cfg.APIToken)
	if token == "" {
		return settings{}, errors.New("JIRA_API_TOKEN environment variable not set")
	}
	email := envOr("JIRA_EMAIL", c.cfg.Email)
	if email == "" {
		return settings{}, errors.New("JIRA_EMAIL environment variable not set")
	}
	base := envOr("JIRA_BASE_URL", c.cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	jql := envOr("JIRA_JQL", c.cfg.JQL)
	if strings.TrimSpace(jql) == "" {
		jql = defaultJQL
	}
	return settings{
		base:  strings.TrimRight(base, "/"),
		email: email,
		token: token,
		jql:   jql,
	}, nil
}

func (c *Collector) fetchTickets(ctx context.Context) ([]Ticket, error) {
	s, err := c.resolve()
	if err != nil {
		return nil, err
	}

	status, code, body, err := c.get(ctx, s, s.base+"/rest/api/3/myself")
	if err != nil {
		return nil, fmt.Errorf("failed to validate Jira credentials: %v", err)
	}
	if code < 200 || code > 299 {
		return nil, fmt.Errorf("Jira authentication failed (%s). Check JIRA_EMAIL and JIRA_API_TOKEN. %s", status, body)
	}

	searchURL := fmt.Sprintf("%s/rest/api/3/search/jql?jql=%s&maxResults=%d&fields=summary,status,assignee",
		s.base, url.QueryEscape(s.jql), c.cfg.MaxResults)

	status, code, body, err = c.get(ctx, s, searchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Jira tickets: %v", err)
	}
	if code < 200 || code > 299 {
		return nil, fmt.Errorf("Jira API error (%s): %s", status, body)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse Jira response: %v", err)
	}
	if parsed.Issues == nil {
		return nil, errors.New("invalid Jira response format: missing 'issues' array")
	}
	issues := *parsed.Issues
	if len(issues) == 0 {
		return nil, fmt.Errorf("Jira returned 0 tickets for JQL: `%s`. Verify query and Jira permissions.", s.jql)
	}

	tickets := make([]Ticket, 0, len(issues))
	for _, issue := range issues {
		tickets = append(tickets, ticketFromIssue(s.base, issue))
	}
	return tickets, nil
}

// get issues an authenticated GET and returns the status line, status code
// and body. err is set only for transport-level failures.
func (c *Collector) get(ctx context.Context, s settings, rawURL string) (status string, code int, body []byte, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", 0, nil, err
	}
	req.SetBasicAuth(s.email, s.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", 0, nil, err
	}
	return resp.Status, resp.StatusCode, body, nil
}

// searchResponse mirrors the slice of the search payload we care about.
// Issues is a pointer so a response without the array at all is
// distinguishable from an empty result.
type searchResponse struct {
	Issues *[]searchIssue `json:"issues"`
}

type searchIssue struct {
	Key    string       `json:"key"`
	Fields searchFields `json:"fields"`
}

type searchFields struct {
	Summary string `json:"summary"`
	Status  *struct {
		Name string `json:"name"`
	} `json:"status"`
	Assignee *struct {
		DisplayName string `json:"displayName"`
	} `json:"assignee"`
}

func ticketFromIssue(base string, issue searchIssue) Ticket {
	status := "Unknown"
	if issue.Fields.Status != nil && issue.Fields.Status.Name != "" {
		status = issue.Fields.Status.Name
	}
	assignee := "Unassigned"
	if issue.Fields.Assignee != nil && issue.Fields.Assignee.DisplayName != "" {
		assignee = issue.Fields.Assignee.DisplayName
	}
	return Ticket{
		Key:      issue.Key,
		Summary:  issue.Fields.Summary,
		Status:   status,
		Assignee: assignee,
		URL:      base + "/browse/" + issue.Key,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
