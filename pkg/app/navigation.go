package app

// cycleFocus moves focus by delta through the widget order, wrapping at both
// ends. A delta of 1 is tab, -1 is shift+tab.
func (m *Model) cycleFocus(delta int) {
	n := len(m.widgets)
	if n == 0 {
		return
	}
	m.focus = ((m.focus+delta)%n + n) % n
}

// focusTo moves focus to the widget with the given ID and reports whether it
// exists. Unknown IDs leave focus unchanged.
func (m *Model) focusTo(id string) bool {
	for i, w := range m.widgets {
		if w.ID() == id {
			m.focus = i
			return true
		}
	}
	return false
}

// toggleExpand flips the focused widget between grid and fullscreen
// rendering. Expanding while another widget is expanded moves the expansion
// rather than stacking it.
func (m *Model) toggleExpand() {
	w := m.focusedWidget()
	if w == nil {
		return
	}
	if m.expanded == w.ID() {
		m.expanded = ""
	} else {
		m.expanded = w.ID()
	}
}

// setExpanded toggles expansion for a specific widget ID, used by
// WidgetExpandEvent and mouse handling.
func (m *Model) setExpanded(id string) {
	if _, ok := m.byID[id]; !ok {
		return
	}
	if m.expanded == id {
		m.expanded = ""
	} else {
		m.expanded = id
	}
}

// focusedWidget returns the widget holding focus, or nil when there are no
// widgets.
func (m *Model) focusedWidget() Widget {
	if m.focus < 0 || m.focus >= len(m.widgets) {
		return nil
	}
	return m.widgets[m.focus]
}
