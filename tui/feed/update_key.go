package feed

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.input.Focused() {
		return m.handleInputKey(msg)
	}
	if m.sheet.Visible() {
		return m.handleSheetKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		cmd := m.step(-1)
		return m, cmd
	case key.Matches(msg, m.keys.Down):
		cmd := m.step(1)
		return m, cmd
	case key.Matches(msg, m.keys.Refresh):
		m.loadSeq++
		m.loading = true
		m.status = ""
		return m, fetchVideos(m.videos, m.loadSeq)
	case key.Matches(msg, m.keys.ToggleHints):
		m.showHints = !m.showHints
		return m, nil
	}

	v, ok := m.tracker.ActiveVideo()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Pause):
		m.playback.TogglePaused()
		return m, nil
	case key.Matches(msg, m.keys.Like):
		return m, m.engagement.ToggleLike(v.ID)
	case key.Matches(msg, m.keys.Bookmark):
		return m, m.engagement.ToggleBookmark(v.ID)
	case key.Matches(msg, m.keys.Follow):
		return m, m.engagement.ToggleFollow(v.AuthorID)
	case key.Matches(msg, m.keys.Comments):
		cmd := m.openSheet(v.ID)
		return m, cmd
	case key.Matches(msg, m.keys.Focus):
		cmd := tea.Batch(m.openSheet(v.ID), m.focusInput())
		return m, cmd
	case key.Matches(msg, m.keys.Profile):
		return m, func() tea.Msg {
			return OpenProfileMsg{UserID: v.AuthorID, Name: v.Author()}
		}
	}
	return m, nil
}

func (m Model) handleSheetKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	id := m.sheet.OpenItemID()
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Comments):
		cmd := m.closeSheet()
		return m, cmd
	case key.Matches(msg, m.keys.Focus), key.Matches(msg, m.keys.Send):
		cmd := m.focusInput()
		return m, cmd
	case key.Matches(msg, m.keys.Up):
		m.comments.LineUp(1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.comments.LineDown(1)
		return m, nil
	case key.Matches(msg, m.keys.Like):
		return m, m.engagement.ToggleLike(id)
	case key.Matches(msg, m.keys.Pause):
		m.playback.TogglePaused()
		return m, nil
	case key.Matches(msg, m.keys.CommentEditor), key.Matches(msg, m.keys.CommentLong):
		req := ComposeRequestMsg{
			VideoID: id,
			Draft:   m.input.Value(),
			Inline:  key.Matches(msg, m.keys.CommentLong),
		}
		if v, ok := m.videoByID(id); ok {
			req.Author = v.Author()
		}
		return m, func() tea.Msg { return req }
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		cmd := m.blurInput()
		return m, cmd
	case "enter":
		cmd := m.sendComment(m.sheet.OpenItemID())
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) step(delta int) tea.Cmd {
	ch, changed := m.tracker.Step(delta)
	if !changed {
		return nil
	}
	return m.applyChange(ch)
}

func (m *Model) openSheet(id string) tea.Cmd {
	cmd := m.sheet.Open(id)
	m.status = ""
	m.refreshComments(false)
	return cmd
}

func (m *Model) closeSheet() tea.Cmd {
	m.input.Blur()
	return tea.Batch(m.sheet.Close(), m.sheet.HideKeyboard(0))
}

func (m *Model) focusInput() tea.Cmd {
	return tea.Batch(m.input.Focus(), m.sheet.ShowKeyboard(keyboardRows, 0, 0))
}

func (m *Model) blurInput() tea.Cmd {
	m.input.Blur()
	return m.sheet.HideKeyboard(0)
}
