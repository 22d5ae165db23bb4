package app

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/desk-pulse/pkg/components"
)

// PlaceholderWidget displays its title and the dimensions it was rendered
// at. It exists to exercise layout, focus, and routing in tests and to fill
// grid slots while a real widget is disabled during development.
type PlaceholderWidget struct {
	id    string
	title string
}

// NewPlaceholder creates a PlaceholderWidget with the given id and title.
func NewPlaceholder(id, title string) *PlaceholderWidget {
	return &PlaceholderWidget{id: id, title: title}
}

func (w *PlaceholderWidget) ID() string { return w.id }

func (w *PlaceholderWidget) Title() string { return w.title }

// MinSize returns the minimum dimensions for the placeholder widget.
func (w *PlaceholderWidget) MinSize() (int, int) { return 10, 3 }

// Update is a no-op for the placeholder widget.
func (w *PlaceholderWidget) Update(_ tea.Msg) tea.Cmd { return nil }

// HandleKey is a no-op for the placeholder widget.
func (w *PlaceholderWidget) HandleKey(_ tea.KeyMsg) tea.Cmd { return nil }

// View renders the title and the requested dimensions, vertically centered.
func (w *PlaceholderWidget) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	body := []string{components.Center(components.MutedStyle.Render(w.title), width)}
	if height > 1 {
		dims := fmt.Sprintf("%dx%d", width, height)
		body = append(body, components.Center(components.FaintStyle.Render(dims), width))
	}

	lines := make([]string, 0, height)
	topPad := (height - len(body)) / 2
	for i := 0; i < topPad; i++ {
		lines = append(lines, "")
	}
	lines = append(lines, body...)
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines[:height], "\n")
}
