package pulse

import "testing"

func TestClassifyRealMessages(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name    string
		message string
		want    Kind
	}{
		{"missing jira token", "JIRA_API_TOKEN environment variable not set", KindNotConfigured},
		{"missing sentry token", "SENTRY_AUTH_TOKEN environment variable not set", KindNotConfigured},
		{"docker missing", "docker is not installed", KindNotConfigured},
		{"spotify closed", "Spotify is not running", KindNotConfigured},
		{"no health targets", "no services configured", KindNotConfigured},
		{"jira rejected credentials", "Jira authentication failed (401 Unauthorized). Check JIRA_EMAIL and JIRA_API_TOKEN.", KindAuthFailure},
		{"forbidden status", "Jira API error (403 Forbidden): request denied", KindAuthFailure},
		{"bare unauthorized", "unauthorized", KindAuthFailure},
		{"spotify on linux", "Spotify integration is only supported on macOS", KindUnsupportedPlatform},
		{"warming up", "process table still warming up", KindStillLoading},
		{"loading", "cpu sample loading", KindStillLoading},
		{"refused", "Get \"https://sentry.io/api/0/\": dial tcp 35.1.2.3:443: connection refused", KindTransientNetwork},
		{"client timeout", "context deadline exceeded (Client.Timeout exceeded while awaiting headers)", KindTransientNetwork},
		{"dns failure", "dial tcp: lookup sentry.io: no such host", KindTransientNetwork},
		{"bad gateway", "Sentry API error (502 Bad Gateway): upstream unavailable", KindTransientNetwork},
		{"unexpected eof", "unexpected EOF", KindTransientNetwork},
		{"parse failure", "failed to parse Spotify data", KindUnknown},
		{"shape failure", "invalid Jira response format: missing 'issues' array", KindUnknown},
		{"gibberish", "flux capacitor misaligned", KindUnknown},
		{"empty message", "", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.message)
			if got == nil {
				t.Fatal("Classify returned nil")
			}
			if got.Kind != tt.want {
				t.Errorf("Classify(%q).Kind = %v, want %v", tt.message, got.Kind, tt.want)
			}
		})
	}
}

func TestClassifyPrecedence(t *testing.T) {
	c := NewClassifier()

	// Auth markers outrank network markers even when both match.
	got := c.Classify("Jira API error (503 Service Unavailable): authentication failed upstream")
	if got.Kind != KindAuthFailure {
		t.Errorf("auth + network message classified as %v, want %v", got.Kind, KindAuthFailure)
	}

	// Missing configuration outranks an auth complaint about it.
	got = c.Classify("API token not configured; server said unauthorized")
	if got.Kind != KindNotConfigured {
		t.Errorf("config + auth message classified as %v, want %v", got.Kind, KindNotConfigured)
	}

	// Platform support outranks the generic timeout that follows it.
	got = c.Classify("feature not supported on this platform: probe timed out")
	if got.Kind != KindUnsupportedPlatform {
		t.Errorf("platform + network message classified as %v, want %v", got.Kind, KindUnsupportedPlatform)
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		message string
		want    Kind
	}{
		{"CONNECTION REFUSED", KindTransientNetwork},
		{"Connection Refused", KindTransientNetwork},
		{"UNAUTHORIZED", KindAuthFailure},
		{"Docker Is Not Installed", KindNotConfigured},
	}
	for _, tt := range tests {
		if got := c.Classify(tt.message); got.Kind != tt.want {
			t.Errorf("Classify(%q).Kind = %v, want %v", tt.message, got.Kind, tt.want)
		}
	}
}

func TestClassifyPreservesMessage(t *testing.T) {
	c := NewClassifier()
	msg := "Jira Authentication Failed (401 Unauthorized). Check JIRA_EMAIL."

	got := c.Classify(msg)
	if got.Message != msg {
		t.Errorf("Message = %q, want original %q", got.Message, msg)
	}
	if got.Error() != msg {
		t.Errorf("Error() = %q, want original %q", got.Error(), msg)
	}
}

func TestClassifyExtraRules(t *testing.T) {
	c := NewClassifier(
		Rule{Kind: KindNotConfigured, Markers: []string{"spotify is closed"}},
		Rule{Kind: KindTransientNetwork, Markers: []string{"offline"}},
	)

	if got := c.Classify("Spotify is closed"); got.Kind != KindNotConfigured {
		t.Errorf("extra not-configured marker: got %v, want %v", got.Kind, KindNotConfigured)
	}
	if got := c.Classify("backend offline"); got.Kind != KindTransientNetwork {
		t.Errorf("extra network marker: got %v, want %v", got.Kind, KindTransientNetwork)
	}
	// Defaults still apply alongside extras.
	if got := c.Classify("connection refused"); got.Kind != KindTransientNetwork {
		t.Errorf("default marker lost after adding extras: got %v", got.Kind)
	}
}

func TestClassifyExtraRuleRaisesPrecedence(t *testing.T) {
	// "timed out" is a network marker by default. A widget that knows its
	// backend reports auth errors that way can claim the marker for a kind
	// scanned earlier.
	c := NewClassifier(Rule{Kind: KindAuthFailure, Markers: []string{"timed out"}})

	got := c.Classify("session timed out")
	if got.Kind != KindAuthFailure {
		t.Errorf("Classify = %v, want %v (extra rule on earlier kind wins)", got.Kind, KindAuthFailure)
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindNotConfigured, "not-configured"},
		{KindAuthFailure, "auth-failure"},
		{KindUnsupportedPlatform, "unsupported-platform"},
		{KindStillLoading, "still-loading"},
		{KindTransientNetwork, "transient-network"},
		{KindUnknown, "unknown"},
		{Kind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}
