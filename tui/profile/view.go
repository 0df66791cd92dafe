package profile

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/CrestNiraj12/giggles/domain"
	"github.com/CrestNiraj12/giggles/tui/common"
)

// View renders the profile as a string.
func (m Model) View() string {
	var b strings.Builder

	name := m.name
	if name == "" {
		name = m.userID
	}
	b.WriteString(common.AppTitleStyle.Padding(0, 0, 0, 1).Render("@"+name) + "\n")

	switch {
	case m.loadingProfile:
		b.WriteString(fmt.Sprintf("  %s Loading profile...\n", m.spinner.View()))
	case m.err != nil && m.profile.ID == "":
		b.WriteString(common.ErrorStyle.Render("  Couldn't load this profile. Press r to retry.") + "\n")
	default:
		b.WriteString(m.renderStats() + "\n")
	}
	b.WriteString("\n")

	switch {
	case m.loadingVideos:
		b.WriteString(fmt.Sprintf("  %s Loading videos...\n", m.spinner.View()))
	case len(m.videos) == 0:
		b.WriteString(common.MutedStyle.Render("  No videos yet.") + "\n")
	default:
		b.WriteString(m.renderGrid() + "\n")
	}

	b.WriteString(common.StatusBarStyle.Render("arrows: move • enter: open • f: follow • r: refresh • esc: back"))
	return b.String()
}

func (m Model) renderStats() string {
	followers := m.profile.Followers
	var following bool
	if m.deps.Engagement != nil {
		st := m.deps.Engagement.Author(m.userID)
		following = st.Following
		if st.FollowersKnown {
			followers = st.Followers
		}
	}

	stat := func(n int, label string) string {
		return common.AuthorStyle.Render(common.FormatCount(n)) + " " + common.MutedStyle.Render(label)
	}
	stats := strings.Join([]string{
		stat(m.profile.Posts, "posts"),
		stat(followers, "followers"),
		stat(m.profile.Following, "following"),
		stat(m.profile.Aura, "aura"),
	}, "   ")

	if m.deps.Engagement != nil && m.deps.Engagement.IsSelf(m.userID) {
		return "  " + stats
	}
	button := common.RailIdleStyle.Render("[+ follow]")
	if following {
		button = common.RailActiveStyle.Render("[following]")
	}
	return "  " + stats + "   " + button
}

func (m Model) renderGrid() string {
	width := m.width
	if width == 0 {
		width = 80
	}
	tileWidth := max((width-2)/columns-4, 12)

	var rows []string
	for start := 0; start < len(m.videos); start += columns {
		var tiles []string
		for i := start; i < min(start+columns, len(m.videos)); i++ {
			tiles = append(tiles, m.renderTile(m.videos[i], i == m.cursor, tileWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, tiles...))
	}
	return lipgloss.NewStyle().PaddingLeft(1).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) renderTile(v domain.Video, selected bool, width int) string {
	likes := v.LikeCount
	if m.deps.Engagement != nil {
		likes = m.deps.Engagement.Item(v.ID).LikeCount
	}
	caption := common.Truncate(common.SingleLine(v.Caption), width)
	if caption == "" {
		caption = common.MutedStyle.Render("(no caption)")
	}
	body := caption + "\n" + common.MutedStyle.Render("♥ "+common.FormatCount(likes))

	style := common.TileStyle
	if selected {
		style = common.TileSelectedStyle
	}
	return style.Width(width).Render(body)
}
