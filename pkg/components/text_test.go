package components

import (
	"strings"
	"testing"
)

func TestVisibleLen(t *testing.T) {
	tests := []struct {
		s    string
		want int
	}{
		{"", 0},
		{"hello", 5},
		{"\x1b[31mred\x1b[0m", 3},
		{"日本", 4}, // wide runes count double
		{"a\x1b[1mb\x1b[0mc", 3},
	}

	for _, tt := range tests {
		if got := VisibleLen(tt.s); got != tt.want {
			t.Errorf("VisibleLen(%q) = %d, want %d", tt.s, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello world", 5); got != "hello" {
		t.Errorf("Truncate = %q, want %q", got, "hello")
	}
	if got := Truncate("hi", 10); got != "hi" {
		t.Errorf("Truncate of short string = %q, want unchanged", got)
	}
	if got := Truncate("anything", 0); got != "" {
		t.Errorf("Truncate to width 0 = %q, want empty", got)
	}
}

func TestEllipsis(t *testing.T) {
	got := Ellipsis("container-name-long", 8)
	if VisibleLen(got) != 8 {
		t.Errorf("Ellipsis width = %d, want 8", VisibleLen(got))
	}
	if !strings.HasSuffix(StripANSI(got), "…") {
		t.Errorf("Ellipsis = %q, want … suffix", got)
	}

	if got := Ellipsis("short", 10); got != "short" {
		t.Errorf("Ellipsis of short string = %q, want unchanged", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 5); got != "ab   " {
		t.Errorf("PadRight = %q, want %q", got, "ab   ")
	}
	if got := PadRight("abcdef", 3); got != "abcdef" {
		t.Errorf("PadRight of wide string = %q, want unchanged", got)
	}
	// Padding is based on visible width, not byte length.
	styled := "\x1b[31mab\x1b[0m"
	if got := VisibleLen(PadRight(styled, 5)); got != 5 {
		t.Errorf("PadRight styled width = %d, want 5", got)
	}
}

func TestPadLeft(t *testing.T) {
	if got := PadLeft("42", 5); got != "   42" {
		t.Errorf("PadLeft = %q, want %q", got, "   42")
	}
	if got := PadLeft("123456", 3); got != "123456" {
		t.Errorf("PadLeft of wide string = %q, want unchanged", got)
	}
}

func TestCenter(t *testing.T) {
	if got := Center("ab", 6); got != "  ab  " {
		t.Errorf("Center = %q, want %q", got, "  ab  ")
	}
	// Odd leftover space goes right.
	if got := Center("ab", 5); got != " ab  " {
		t.Errorf("Center odd = %q, want %q", got, " ab  ")
	}
	if got := Center("abcdef", 3); got != "abcdef" {
		t.Errorf("Center of wide string = %q, want unchanged", got)
	}
}

func TestWrap(t *testing.T) {
	lines := Wrap("the quick brown fox jumps", 10)
	if len(lines) < 2 {
		t.Fatalf("Wrap produced %d lines, want at least 2", len(lines))
	}
	for _, line := range lines {
		if VisibleLen(line) > 10 {
			t.Errorf("wrapped line %q is %d cells, want <= 10", line, VisibleLen(line))
		}
	}

	if lines := Wrap("unbroken", 0); len(lines) != 1 || lines[0] != "unbroken" {
		t.Errorf("Wrap at width 0 = %v, want passthrough", lines)
	}
}

func TestStripANSI(t *testing.T) {
	if got := StripANSI("\x1b[1;31mboom\x1b[0m"); got != "boom" {
		t.Errorf("StripANSI = %q, want %q", got, "boom")
	}
	if got := StripANSI("plain"); got != "plain" {
		t.Errorf("StripANSI of plain string = %q, want unchanged", got)
	}
}
