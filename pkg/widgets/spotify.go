package widgets

import (
	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/desk-pulse/pkg/app"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors/spotify"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/components"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/pulse"
)

// Playback state indicator characters.
const (
	spPlayingMark = "▶" // ▶
	spPausedMark  = "⏸" // ⏸
)

// SpotifyWidget displays the current Spotify track.
type SpotifyWidget struct {
	state pulse.WidgetState
	frame string
}

// NewSpotifyWidget creates a new SpotifyWidget.
func NewSpotifyWidget() *SpotifyWidget {
	return &SpotifyWidget{}
}

// ID returns the unique identifier for this widget.
func (w *SpotifyWidget) ID() string {
	return "spotify"
}

// Title returns the human-readable display name.
func (w *SpotifyWidget) Title() string {
	return "Spotify"
}

// MinSize returns the minimum width and height this widget requires.
func (w *SpotifyWidget) MinSize() (int, int) {
	return 25, 4
}

// Update stores reconciled state updates and tick frames.
func (w *SpotifyWidget) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case app.StateUpdateEvent:
		if msg.WidgetID != w.ID() {
			return nil
		}
		w.state = msg.State
	case app.TickEvent:
		w.frame = msg.Frame
	}
	return nil
}

// HandleKey is a no-op; playback control is out of scope.
func (w *SpotifyWidget) HandleKey(_ tea.KeyMsg) tea.Cmd {
	return nil
}

// View renders the widget content into the given area dimensions.
func (w *SpotifyWidget) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	switch w.state.Phase {
	case pulse.PhaseLoading:
		return loadingView(w.frame, "Spotify", width, height)
	case pulse.PhaseDegraded:
		lines := degradedLines(w.state, "", width)
		if np, ok := pulse.DataAs[spotify.NowPlaying](w.state); ok {
			lines = append(lines, spotifyBody(np, width)...)
		}
		return fitLines(lines, width, height)
	default:
		np, ok := pulse.DataAs[spotify.NowPlaying](w.state)
		if !ok {
			return centerMessage(components.MutedStyle.Render("No data"), width, height)
		}
		return fitLines(spotifyBody(np, width), width, height)
	}
}

// spotifyBody renders the playback marker, track, artist, and album.
func spotifyBody(np spotify.NowPlaying, width int) []string {
	mark := spPausedMark
	if np.Playing {
		mark = components.GoodStyle.Render(spPlayingMark)
	}
	return []string{
		mark + " " + components.Ellipsis(np.Track, width-2),
		components.Ellipsis(np.Artist, width),
		components.FaintStyle.Render(components.Ellipsis(np.Album, width)),
	}
}

// Compile-time check that SpotifyWidget satisfies the Widget interface.
var _ app.Widget = (*SpotifyWidget)(nil)
