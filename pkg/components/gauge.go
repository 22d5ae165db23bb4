package components

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Eighth blocks give the bar sub-cell resolution, 8 steps per cell.
var barBlocks = [9]rune{' ', '▏', '▎', '▍', '▌', '▋', '▊', '▉', '█'}

// Fill color escalates as usage climbs.
const (
	barWarnAt = 0.70
	barCritAt = 0.90
)

// Bar renders a horizontal usage bar of exactly width cells for a ratio in
// [0, 1]. The filled portion uses eighth-block runes for sub-cell
// resolution and shifts from accent to warn to alert as the ratio climbs;
// the empty remainder renders as faint shade characters.
func Bar(ratio float64, width int) string {
	if width <= 0 {
		return ""
	}
	if math.IsNaN(ratio) || ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}

	units := width * 8
	filled := int(math.Round(ratio * float64(units)))

	fullCells := filled / 8
	partial := filled % 8
	emptyCells := width - fullCells
	if partial > 0 {
		emptyCells--
	}

	var fill strings.Builder
	fill.WriteString(strings.Repeat(string(barBlocks[8]), fullCells))
	if partial > 0 {
		fill.WriteRune(barBlocks[partial])
	}

	var b strings.Builder
	b.WriteString(fillStyle(ratio).Render(fill.String()))
	if emptyCells > 0 {
		b.WriteString(FaintStyle.Render(strings.Repeat("░", emptyCells)))
	}
	return b.String()
}

func fillStyle(ratio float64) lipgloss.Style {
	switch {
	case ratio >= barCritAt:
		return AlertStyle
	case ratio >= barWarnAt:
		return WarnStyle
	default:
		return AccentStyle
	}
}
