package feed

import (
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/giggles/core/engagement"
	"github.com/CrestNiraj12/giggles/core/mutation"
	"github.com/CrestNiraj12/giggles/core/playback"
	"github.com/CrestNiraj12/giggles/core/preload"
	"github.com/CrestNiraj12/giggles/core/tracker"
	"github.com/CrestNiraj12/giggles/domain"
	"github.com/CrestNiraj12/giggles/infra/player"
	"github.com/CrestNiraj12/giggles/tui/compose"
)

// Update handles messages for the feed view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m.update(msg)
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case playTickMsg:
		m.advancePlayers()
		return m, playTick()

	case VideosLoadedMsg, VideosErrorMsg, DeepLinkMsg, tracker.VideoResolvedMsg:
		return m.handleFeedMsg(msg)

	case mutation.SettledMsg, engagement.ThreadLoadedMsg, engagement.LikesHydratedMsg, compose.DoneMsg:
		return m.handleEngagementMsg(msg)

	case player.LoadedMsg, playback.ReloadedMsg, preload.DoneMsg:
		return m.handlePlaybackMsg(msg)

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)
	}

	// Component ticks: scroll settling, scroll retries, sheet frames.
	ch, changed, cmd := m.tracker.Update(msg)
	cmds := []tea.Cmd{cmd, m.sheet.Update(msg)}
	if changed {
		cmds = append(cmds, m.applyChange(ch))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (Model, tea.Cmd) {
	m.width, m.height = msg.Width, msg.Height
	rows := m.pageRows()
	m.pager.rows = rows
	m.tracker.SetPageHeight(float64(rows))
	m.sheet.SetHeight(float64(m.sheetRows()))
	m.comments.Width = max(m.width-4, 10)
	m.comments.Height = m.commentRows()
	m.input.Width = max(m.width-8, 10)
	m.refreshComments(false)

	var cmds []tea.Cmd
	fw, fh := m.frameSize()
	for _, id := range m.playback.Mounted() {
		h, _ := m.playback.Handle(id)
		if p, ok := h.(Player); ok && p.Resize(fw, fh) {
			cmds = append(cmds, p.LoadCmd())
		}
	}
	cmds = append(cmds, m.mountWindow())
	return m, tea.Batch(cmds...)
}

func (m Model) handleFeedMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case VideosLoadedMsg:
		if msg.Seq != m.loadSeq {
			return m, nil
		}
		m.loading = false
		m.loaded = true
		m.err = nil
		m.engagement.Track(msg.Videos)
		ch, changed := m.tracker.SetItems(msg.Videos)
		cmds := []tea.Cmd{m.engagement.HydrateLikes()}
		if m.preload != nil {
			cmds = append(cmds, m.preload.WarmInitial(msg.Videos))
		}
		if changed {
			cmds = append(cmds, m.applyChange(ch))
		} else {
			cmds = append(cmds, m.mountWindow())
		}
		if link := m.pendingLink; link != "" {
			m.pendingLink = ""
			cmds = append(cmds, m.navigate(link))
		}
		return m, tea.Batch(cmds...)

	case VideosErrorMsg:
		if msg.Seq != m.loadSeq {
			return m, nil
		}
		m.loading = false
		m.loaded = true
		m.err = msg.Err
		m.logger.Warn("feed: load failed", "err", msg.Err)
		if link := m.pendingLink; link != "" {
			m.pendingLink = ""
			cmd := m.navigate(link)
			return m, cmd
		}
		return m, nil

	case DeepLinkMsg:
		if !m.loaded {
			m.pendingLink = msg.VideoID
			return m, nil
		}
		cmd := m.navigate(msg.VideoID)
		return m, cmd

	case tracker.VideoResolvedMsg:
		if msg.Err == nil && m.tracker.IndexOf(msg.ID) < 0 {
			v := msg.Video
			if v.ID == "" {
				v.ID = msg.ID
			}
			m.engagement.Track([]domain.Video{v})
		}
		if msg.Err != nil {
			m.status = "Video unavailable."
		}
		ch, changed, cmd := m.tracker.Update(msg)
		if changed {
			cmd = tea.Batch(cmd, m.applyChange(ch))
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) handleEngagementMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case mutation.SettledMsg:
		m.engagement.Update(msg)
		if m.draftVideo != "" && msg.Key == engagement.CommentKey(m.draftVideo) {
			if msg.Err == nil {
				m.input.Reset()
				m.draftVideo = ""
			} else {
				m.status = "Comment failed. Your draft is kept."
			}
		}
		if open := m.sheet.OpenItemID(); open != "" && msg.Key == engagement.CommentKey(open) {
			m.refreshComments(msg.Err == nil)
		}
		return m, nil

	case engagement.ThreadLoadedMsg:
		m.engagement.Update(msg)
		if msg.VideoID == m.sheet.OpenItemID() {
			m.refreshComments(false)
		}
		return m, nil

	case engagement.LikesHydratedMsg:
		m.engagement.Update(msg)
		return m, nil

	case compose.DoneMsg:
		if msg.Err != nil {
			m.logger.Warn("feed: compose failed", "video", msg.VideoID, "err", msg.Err)
			m.status = "Couldn't open the editor. Your draft is kept."
			return m, nil
		}
		if msg.Content == "" {
			return m, nil
		}
		m.input.SetValue(msg.Content)
		cmd := m.sendComment(msg.VideoID)
		return m, cmd
	}
	return m, nil
}

func (m Model) handlePlaybackMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case player.LoadedMsg:
		if msg.Err == nil || errors.Is(msg.Err, domain.ErrHandleReleased) {
			return m, nil
		}
		m.logger.Warn("feed: media load failed", "video", msg.ID, "err", msg.Err)
		return m, m.playback.ReportError(msg.ID)

	case playback.ReloadedMsg:
		m.playback.Update(msg)
		return m, nil

	case preload.DoneMsg:
		if m.preload != nil {
			m.preload.Update(msg, m.tracker.Items())
		}
		return m, nil
	}
	return m, nil
}

// applyChange reacts to a new active item: playback intent, mounted
// players, neighbor warming and the comments sheet.
func (m *Model) applyChange(ch tracker.Change) tea.Cmd {
	m.playback.SetActive(ch.To)
	cmds := []tea.Cmd{m.mountWindow()}
	if m.preload != nil {
		cmds = append(cmds, m.preload.OnActiveChanged(m.tracker.Items(), ch.Index))
	}
	if open := m.sheet.OpenItemID(); open != "" && open != ch.To {
		m.input.Blur()
		cmds = append(cmds, m.sheet.Close(), m.sheet.HideKeyboard(0))
	}
	return tea.Batch(cmds...)
}

func (m *Model) navigate(id string) tea.Cmd {
	ch, changed, cmd := m.tracker.Navigate(id)
	if changed {
		return tea.Batch(cmd, m.applyChange(ch))
	}
	return cmd
}

// mountWindow keeps players mounted for the active item and its direct
// neighbors and releases the rest.
func (m Model) mountWindow() tea.Cmd {
	items := m.tracker.Items()
	index := m.tracker.ActiveIndex()
	want := make(map[string]domain.Video, 3)
	if index >= 0 {
		for i := max(index-1, 0); i <= min(index+1, len(items)-1); i++ {
			want[items[i].ID] = items[i]
		}
	}

	for _, id := range m.playback.Mounted() {
		if _, ok := want[id]; ok {
			continue
		}
		h, _ := m.playback.Handle(id)
		m.playback.Unregister(id)
		if p, ok := h.(Player); ok {
			p.Release()
		}
	}

	if m.newPlayer == nil {
		return nil
	}
	var cmds []tea.Cmd
	fw, fh := m.frameSize()
	for id, v := range want {
		if _, ok := m.playback.Handle(id); ok {
			continue
		}
		p := m.newPlayer(v, fw, fh)
		if p == nil {
			continue
		}
		m.playback.Register(id, p)
		cmds = append(cmds, p.LoadCmd())
	}
	return tea.Batch(cmds...)
}

func (m Model) advancePlayers() {
	for _, id := range m.playback.Mounted() {
		h, _ := m.playback.Handle(id)
		if p, ok := h.(Player); ok {
			p.Advance()
		}
	}
}

func (m *Model) sendComment(videoID string) tea.Cmd {
	cmd := m.engagement.PostComment(videoID, m.input.Value())
	if cmd != nil {
		m.draftVideo = videoID
		m.status = ""
	}
	return cmd
}
