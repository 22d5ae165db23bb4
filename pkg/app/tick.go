package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickCmd returns a bubbletea Cmd that sends a TickEvent after the given
// duration. This drives the periodic UI refresh cycle; the model re-arms it
// on every TickEvent it handles.
func TickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickEvent{Time: t}
	})
}

// fanIn starts one forwarding goroutine per state source and funnels every
// transition into a single channel the listen command reads from. The
// goroutines exit when the hub closes the subscription channels at shutdown.
func fanIn(sources []StateSource) chan StateUpdateEvent {
	events := make(chan StateUpdateEvent, 64)
	for _, src := range sources {
		go func(src StateSource) {
			for state := range src.Updates() {
				events <- StateUpdateEvent{WidgetID: src.WidgetID(), State: state}
			}
		}(src)
	}
	return events
}

// listenStates returns a Cmd that blocks on the fan-in channel and delivers
// the next state transition. The model re-arms it after every delivery; a
// closed channel ends the chain.
func listenStates(events <-chan StateUpdateEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return ev
	}
}
