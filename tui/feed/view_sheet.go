package feed

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/CrestNiraj12/giggles/tui/common"
)

// Sheet layout: top border, handle, header, comments, keyboard space and
// a two-row input bar.
const sheetChromeRows = 5 + keyboardRows

func (m Model) commentRows() int {
	return max(m.sheetRows()-sheetChromeRows, 1)
}

// renderSheet returns the sheet's lines from the top edge down.
func (m Model) renderSheet() []string {
	id := m.sheet.OpenItemID()
	inner := max(m.width-4, 16)
	st := m.engagement.Item(id)

	header := common.FormatCount(st.CommentCount) + " comments"
	bar := m.input.View()
	if m.engagement.Sending(id) {
		bar += " " + common.MutedStyle.Render("sending...")
	}

	// The input bar rides above the keyboard; the space it leaves moves
	// between above and below the bar.
	lift := int(math.Round(-m.sheet.KeyboardOffset()))
	lift = max(0, min(lift, keyboardRows))

	parts := []string{
		common.SheetHandleStyle.Width(inner).Render("───"),
		common.MutedStyle.Render(header),
		m.comments.View(),
	}
	parts = append(parts, blankRows(keyboardRows-lift)...)
	parts = append(parts, common.InputBarStyle.Width(inner).Render(bar))
	parts = append(parts, blankRows(lift)...)

	out := common.SheetStyle.Width(inner + 2).Render(strings.Join(parts, "\n"))
	return strings.Split(out, "\n")
}

// refreshComments rebuilds the comments viewport from the cached thread
// of the open item.
func (m *Model) refreshComments(bottom bool) {
	id := m.sheet.OpenItemID()
	if id == "" {
		m.comments.SetContent("")
		return
	}
	thread := m.engagement.Thread(id)
	if len(thread) == 0 {
		m.comments.SetContent(common.MutedStyle.Render("No comments yet. Be the first!"))
		return
	}

	text := lipgloss.NewStyle().Width(max(m.comments.Width, 10))
	var b strings.Builder
	for i, c := range thread {
		name := c.DisplayName
		if name == "" {
			name = c.AuthorID
		}
		line := common.CommentAuthorStyle.Render("@" + name)
		if !c.CreatedAt.IsZero() {
			line += " " + common.MutedStyle.Render(c.CreatedAt.Format("Jan 02 15:04"))
		}
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(line + "\n" + text.Render(c.Text))
	}
	m.comments.SetContent(b.String())
	if bottom {
		m.comments.GotoBottom()
	}
}

func blankRows(n int) []string {
	return make([]string, max(n, 0))
}
