package pulse

import "strings"

// Kind is the category of a classified failure. The declaration order is the
// classification precedence: when a message matches markers of several kinds,
// the kind declared first wins, so the most actionable category surfaces.
type Kind int

const (
	// KindNotConfigured means required credentials or configuration are
	// missing. Actionable by the user.
	KindNotConfigured Kind = iota

	// KindAuthFailure means the backend rejected the credentials it was
	// given. Actionable by the user.
	KindAuthFailure

	// KindUnsupportedPlatform means the capability does not exist on this
	// host OS.
	KindUnsupportedPlatform

	// KindStillLoading means the adapter is still warming up. Not a real
	// error: the widget stays in its loading state instead of flashing an
	// error during startup.
	KindStillLoading

	// KindTransientNetwork means the backend was reachable in principle but
	// the call failed. The next scheduled poll is the retry.
	KindTransientNetwork

	// KindUnknown is the total-function fallback for unmatched messages.
	KindUnknown
)

// String returns a short label for the kind.
func (k Kind) String() string {
	switch k {
	case KindNotConfigured:
		return "not-configured"
	case KindAuthFailure:
		return "auth-failure"
	case KindUnsupportedPlatform:
		return "unsupported-platform"
	case KindStillLoading:
		return "still-loading"
	case KindTransientNetwork:
		return "transient-network"
	default:
		return "unknown"
	}
}

// ClassifiedError is an adapter failure after classification. Message is the
// adapter's original text, preserved verbatim for display and logs.
type ClassifiedError struct {
	Kind    Kind
	Message string
}

// Error returns the original adapter message.
func (e *ClassifiedError) Error() string { return e.Message }

// Rule maps substring markers to a kind. Matching is case-insensitive.
type Rule struct {
	Kind    Kind
	Markers []string
}

// DefaultRules returns the shared marker table. The markers come from the
// error strings the bundled collectors actually produce plus the usual
// net/http and os/exec failure text.
func DefaultRules() []Rule {
	return []Rule{
		{Kind: KindNotConfigured, Markers: []string{
			"environment variable not set",
			"not configured",
			"no services configured",
			"not installed",
			"not running",
			"credentials not found",
			"missing api token",
		}},
		{Kind: KindAuthFailure, Markers: []string{
			"authentication failed",
			"unauthorized",
			"forbidden",
			"invalid credentials",
			"invalid token",
			"expired token",
			"(401",
			"(403",
			" 401",
			" 403",
		}},
		{Kind: KindUnsupportedPlatform, Markers: []string{
			"only supported",
			"not supported on",
			"unsupported platform",
		}},
		{Kind: KindStillLoading, Markers: []string{
			"loading",
			"warming up",
			"initializing",
		}},
		{Kind: KindTransientNetwork, Markers: []string{
			"connection refused",
			"connection reset",
			"cannot connect",
			"timeout",
			"timed out",
			"deadline exceeded",
			"no such host",
			"network is unreachable",
			"temporary failure",
			"tls handshake",
			"broken pipe",
			"service unavailable",
			"eof",
			"(502",
			"(503",
			"(504",
		}},
	}
}

// Classifier turns free-text adapter errors into ClassifiedErrors using an
// ordered marker table. It is immutable after construction and safe for
// concurrent use.
type Classifier struct {
	markers map[Kind][]string
}

// NewClassifier builds a classifier from the default rule table plus any
// widget-specific extra rules. Extra markers join their kind's marker set;
// precedence across kinds is fixed by Kind declaration order.
func NewClassifier(extra ...Rule) *Classifier {
	c := &Classifier{markers: make(map[Kind][]string)}
	for _, r := range extra {
		c.add(r)
	}
	for _, r := range DefaultRules() {
		c.add(r)
	}
	return c
}

func (c *Classifier) add(r Rule) {
	for _, m := range r.Markers {
		c.markers[r.Kind] = append(c.markers[r.Kind], strings.ToLower(m))
	}
}

// Classify maps a raw failure message to a ClassifiedError. It is total:
// anything the table does not match comes back as KindUnknown rather than an
// error or panic.
func (c *Classifier) Classify(message string) *ClassifiedError {
	lower := strings.ToLower(message)
	for kind := KindNotConfigured; kind < KindUnknown; kind++ {
		for _, marker := range c.markers[kind] {
			if strings.Contains(lower, marker) {
				return &ClassifiedError{Kind: kind, Message: message}
			}
		}
	}
	return &ClassifiedError{Kind: KindUnknown, Message: message}
}
