package feed

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/giggles/core/sheet"
)

const (
	pageTop    = 1 // Rows above the page area
	holdWindow = 100 * time.Millisecond
)

func (m Model) handleMouseMsg(msg tea.MouseMsg) (Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		return m.handleWheel(msg.Button == tea.MouseButtonWheelDown)
	}

	if m.drag.active {
		switch msg.Action {
		case tea.MouseActionMotion:
			m.dragTo(msg.Y)
			return m, nil
		case tea.MouseActionRelease:
			m.dragTo(msg.Y)
			m.drag.active = false
			cmd := m.sheet.Release(m.drag.velocity)
			if m.sheet.State() == sheet.Closing {
				cmd = tea.Batch(cmd, m.blurInput())
			}
			return m, cmd
		}
	}

	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if m.sheet.Visible() {
		top := m.sheetTop()
		switch {
		case msg.Y == top || msg.Y == top+1:
			m.drag = dragState{active: true, startY: msg.Y, lastY: msg.Y, lastAt: m.now()}
			m.sheet.BeginDrag()
		case msg.Y < top:
			cmd := m.closeSheet()
			return m, cmd
		}
		return m, nil
	}
	if m.inPlayer(msg.X, msg.Y) && m.tracker.Active() != "" {
		m.playback.TogglePaused()
	}
	return m, nil
}

func (m Model) handleWheel(down bool) (Model, tea.Cmd) {
	if m.sheet.Visible() {
		if down {
			m.comments.LineDown(1)
		} else {
			m.comments.LineUp(1)
		}
		return m, nil
	}
	delta := float64(wheelStep)
	if !down {
		delta = -delta
	}
	return m, m.tracker.Scroll(m.tracker.Offset() + delta)
}

// dragTo moves the sheet with the pointer and tracks its velocity. A
// pointer held on one row longer than holdWindow has zero velocity.
func (m *Model) dragTo(y int) {
	now := m.now()
	dt := now.Sub(m.drag.lastAt)
	switch {
	case y != m.drag.lastY && dt > 0:
		m.drag.velocity = float64(y-m.drag.lastY) / dt.Seconds()
		m.drag.lastY = y
		m.drag.lastAt = now
	case y != m.drag.lastY:
		m.drag.lastY = y
	case dt > holdWindow:
		m.drag.velocity = 0
	}
	m.sheet.Drag(float64(y - m.drag.startY))
}

func (m Model) sheetTop() int {
	return pageTop + m.pageRows() - m.sheet.VisibleRows()
}

func (m Model) inPlayer(x, y int) bool {
	fw, fh := m.frameSize()
	return x >= 0 && x < fw && y >= pageTop && y < pageTop+fh
}
