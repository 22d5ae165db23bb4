package widgets

import (
	"strings"
	"testing"

	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors/jira"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/pulse"
)

func jiraTestTickets() []jira.Ticket {
	return []jira.Ticket{
		{
			Key:      "LAB-42",
			Summary:  "Reconciler drops updates under load",
			Status:   "In Progress",
			Assignee: "Jules",
			URL:      "https://tinyland.atlassian.net/browse/LAB-42",
		},
		{
			Key:      "LAB-7",
			Summary:  "Dashboard flickers on resize",
			Status:   "To Do",
			Assignee: "Unassigned",
			URL:      "https://tinyland.atlassian.net/browse/LAB-7",
		},
	}
}

func TestJiraIdentity(t *testing.T) {
	w := NewJiraWidget()
	if w.ID() != "jira" {
		t.Errorf("ID = %q", w.ID())
	}
	if w.Title() != "Jira" {
		t.Errorf("Title = %q", w.Title())
	}
}

func TestJiraViewReady(t *testing.T) {
	w := NewJiraWidget()
	sendState(w, readyState(jiraTestTickets()))

	view := plainView(w, 60, 6)
	if !strings.Contains(view, "LAB-42") {
		t.Errorf("expected ticket key, got %q", view)
	}
	if !strings.Contains(view, "Reconciler drops updates under load") {
		t.Errorf("expected summary, got %q", view)
	}
	if !strings.Contains(view, "In Progress, Jules") {
		t.Errorf("expected footer with status and assignee, got %q", view)
	}
}

func TestJiraFooterFollowsSelection(t *testing.T) {
	w := NewJiraWidget()
	sendState(w, readyState(jiraTestTickets()))

	w.HandleKey(keyMsg("down"))
	view := plainView(w, 60, 6)
	if !strings.Contains(view, "To Do, Unassigned") {
		t.Errorf("expected footer for the selected ticket, got %q", view)
	}
}

func TestJiraViewEmpty(t *testing.T) {
	w := NewJiraWidget()
	sendState(w, readyState([]jira.Ticket{}))

	if view := plainView(w, 60, 4); !strings.Contains(view, "No tickets") {
		t.Errorf("expected empty sentinel, got %q", view)
	}
}

func TestJiraEnterOpensTicket(t *testing.T) {
	w := NewJiraWidget()
	sendState(w, readyState(jiraTestTickets()))

	if url := openedURL(w.HandleKey(keyMsg("enter"))); url != "https://tinyland.atlassian.net/browse/LAB-42" {
		t.Errorf("opened %q, want the selected ticket's URL", url)
	}

	w.HandleKey(keyMsg("j"))
	if url := openedURL(w.HandleKey(keyMsg("o"))); url != "https://tinyland.atlassian.net/browse/LAB-7" {
		t.Errorf("opened %q after moving selection", url)
	}
}

func TestJiraDegradedAuthShowsHint(t *testing.T) {
	w := NewJiraWidget()
	sendState(w, degradedState(pulse.KindAuthFailure, "jira API returned status 401", nil))

	if view := plainView(w, 60, 4); !strings.Contains(view, jiraHint) {
		t.Errorf("expected credential hint, got %q", view)
	}
}

func TestJiraDegradedKeepsLastGood(t *testing.T) {
	w := NewJiraWidget()
	sendState(w, degradedState(pulse.KindTransientNetwork, "dial tcp: i/o timeout", jiraTestTickets()))

	view := plainView(w, 60, 8)
	if !strings.Contains(view, "stale") {
		t.Errorf("expected stale marker, got %q", view)
	}
	if !strings.Contains(view, "LAB-42") {
		t.Errorf("expected cached tickets still listed, got %q", view)
	}
}
