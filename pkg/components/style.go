package components

import "github.com/charmbracelet/lipgloss"

// Dashboard palette. Widgets never hardcode colors; they compose these so
// the whole surface degrades together under reduced color profiles.
var (
	ColorMuted  = lipgloss.Color("#6B7280")
	ColorFaint  = lipgloss.Color("#9CA3AF")
	ColorAccent = lipgloss.Color("#7C3AED")
	ColorBright = lipgloss.Color("#A78BFA")
	ColorGood   = lipgloss.Color("#22C55E")
	ColorWarn   = lipgloss.Color("#F59E0B")
	ColorAlert  = lipgloss.Color("#EF4444")
)

var (
	// TitleStyle renders widget titles.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorBright)

	// MutedStyle renders secondary text such as loading hints.
	MutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	// FaintStyle renders labels and separators.
	FaintStyle = lipgloss.NewStyle().Foreground(ColorFaint)

	// AccentStyle highlights primary values.
	AccentStyle = lipgloss.NewStyle().Foreground(ColorAccent)

	// GoodStyle marks healthy values, WarnStyle elevated ones, AlertStyle
	// failures and error guidance.
	GoodStyle  = lipgloss.NewStyle().Foreground(ColorGood)
	WarnStyle  = lipgloss.NewStyle().Foreground(ColorWarn)
	AlertStyle = lipgloss.NewStyle().Foreground(ColorAlert)

	// SelectedStyle marks the focused row in list widgets.
	SelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorBright)

	// StaleStyle dims retained data shown while a widget is degraded.
	StaleStyle = lipgloss.NewStyle().Faint(true)
)
