package feed

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/CrestNiraj12/giggles/domain"
	"github.com/CrestNiraj12/giggles/tui/common"
)

// View renders the feed as a string.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderTitle() + "\n")

	lines := fitLines(m.renderPage(), m.pageRows())
	if rows := m.sheet.VisibleRows(); rows > 0 {
		sheetLines := m.renderSheet()
		rows = min(rows, len(sheetLines), len(lines))
		copy(lines[len(lines)-rows:], sheetLines[:rows])
	}
	b.WriteString(strings.Join(lines, "\n") + "\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderTitle() string {
	title := common.AppTitleStyle.Render("▶ giggles")
	items := m.tracker.Items()
	if i := m.tracker.ActiveIndex(); i >= 0 {
		title += common.MutedStyle.Render(fmt.Sprintf("  %d/%d", i+1, len(items)))
	}
	if m.loading && len(items) > 0 {
		title += "  " + m.spinner.View()
	}
	return title
}

func (m Model) renderPage() string {
	items := m.tracker.Items()
	switch {
	case m.loading && len(items) == 0:
		return fmt.Sprintf("  %s Loading videos...", m.spinner.View())
	case m.err != nil && len(items) == 0:
		return common.ErrorStyle.Render("  Couldn't load videos.") + "\n\n  Press r to retry."
	case len(items) == 0:
		return "  No videos yet."
	}

	v := items[m.visibleIndex()]
	fw, fh := m.frameSize()
	frame := lipgloss.NewStyle().Width(fw).Height(fh).MaxHeight(fh).Render(m.renderFrame(v, fw, fh))
	top := lipgloss.JoinHorizontal(lipgloss.Top, frame, m.renderRail(v))
	return top + "\n" + m.renderCaption(v)
}

// visibleIndex is the page under the current scroll offset.
func (m Model) visibleIndex() int {
	n := len(m.tracker.Items())
	i := int(math.Round(m.tracker.Offset() / float64(m.pageRows())))
	return max(0, min(i, n-1))
}

func (m Model) renderFrame(v domain.Video, fw, fh int) string {
	if h, ok := m.playback.Handle(v.ID); ok {
		if p, ok := h.(Player); ok {
			if frame := p.Frame(); frame != "" {
				return frame
			}
			return lipgloss.Place(fw, fh, lipgloss.Center, lipgloss.Center, m.spinner.View()+" loading")
		}
	}
	label := common.MutedStyle.Render("▶ " + common.Truncate(common.SingleLine(v.Caption), fw-4))
	return lipgloss.Place(fw, fh, lipgloss.Center, lipgloss.Center, label)
}

func (m Model) renderRail(v domain.Video) string {
	st := m.engagement.Item(v.ID)
	author := m.engagement.Author(v.AuthorID)

	toggle := func(on bool, onText, offText string) string {
		if on {
			return common.RailActiveStyle.Render(onText)
		}
		return common.RailIdleStyle.Render(offText)
	}

	rows := []string{
		toggle(st.Liked, "♥", "♡"),
		common.RailIdleStyle.Render(common.FormatCount(st.LikeCount)),
		"",
		common.RailIdleStyle.Render("✎"),
		common.RailIdleStyle.Render(common.FormatCount(st.CommentCount)),
		"",
		toggle(st.Bookmarked, "★", "☆"),
		toggle(st.Bookmarked, "saved", "save"),
		"",
	}
	if v.AuthorID != "" && !m.engagement.IsSelf(v.AuthorID) {
		label := toggle(author.Following, "following", "+ follow")
		if author.FollowersKnown {
			label += "\n" + common.RailIdleStyle.Render(common.FormatCount(author.Followers))
		}
		rows = append(rows, label)
	}
	return common.RailStyle.Width(railWidth).Render(strings.Join(rows, "\n"))
}

func (m Model) renderCaption(v domain.Video) string {
	width := max(m.width-2, 10)
	author := common.AuthorStyle.Render("@" + v.Author())
	if v.ID == m.playback.Active() && m.playback.Paused() {
		author += " " + common.PausedStyle.Render("❚❚ paused")
	}
	caption := common.CaptionStyle.Render(common.Truncate(common.SingleLine(v.Caption), width))
	return " " + author + "\n " + caption
}

func (m Model) renderFooter() string {
	if m.status != "" {
		return common.StatusBarStyle.Render(m.status)
	}
	if m.showHints {
		return common.StatusBarStyle.Render(
			"j/k: scroll • space: pause • l: like • b: save • f: follow • c: comments • i: write • p: profile • r: refresh • q: quit",
		)
	}
	return common.StatusBarStyle.Render("j/k: scroll • l: like • c: comments • ?: more")
}

func (m Model) videoByID(id string) (domain.Video, bool) {
	if i := m.tracker.IndexOf(id); i >= 0 {
		return m.tracker.Items()[i], true
	}
	return domain.Video{}, false
}

// fitLines pads or cuts s to exactly n lines.
func fitLines(s string, n int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		return lines[:n]
	}
	for len(lines) < n {
		lines = append(lines, "")
	}
	return lines
}
