// Package components provides the small rendering primitives widgets are
// built from: width-aware text helpers, usage bars, and the shared palette.
// All width math is in terminal cells, so ANSI sequences and wide runes are
// accounted for.
package components

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// VisibleLen returns the width of s in terminal cells. ANSI escape
// sequences are ignored; CJK and emoji count as width 2.
func VisibleLen(s string) int {
	return ansi.StringWidth(s)
}

// Truncate cuts s to at most width cells, preserving ANSI sequences before
// the cut point.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "")
}

// Ellipsis cuts s to at most width cells, ending in "…" when anything was
// cut. The ellipsis counts toward the width.
func Ellipsis(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}

// PadRight pads s with trailing spaces to exactly width cells. Wider
// strings are returned unchanged.
func PadRight(s string, width int) string {
	vis := VisibleLen(s)
	if vis >= width {
		return s
	}
	return s + strings.Repeat(" ", width-vis)
}

// PadLeft pads s with leading spaces to exactly width cells. Wider strings
// are returned unchanged.
func PadLeft(s string, width int) string {
	vis := VisibleLen(s)
	if vis >= width {
		return s
	}
	return strings.Repeat(" ", width-vis) + s
}

// Center pads s with spaces on both sides to width cells, with the odd
// space on the right. Wider strings are returned unchanged.
func Center(s string, width int) string {
	vis := VisibleLen(s)
	if vis >= width {
		return s
	}
	total := width - vis
	left := total / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", total-left)
}

// Wrap word-wraps s at width cells and returns the lines. Words longer
// than the width are broken.
func Wrap(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}
	return strings.Split(ansi.Wrap(s, width, ""), "\n")
}

// StripANSI removes all ANSI escape sequences. Tests use it to compare
// visible content independent of the active color profile.
func StripANSI(s string) string {
	return ansi.Strip(s)
}
