package compose

import (
	"fmt"
	"strings"

	"github.com/CrestNiraj12/giggles/tui/common"
)

// View renders the compose view based on the active mode.
func (m Model) View() string {
	switch m.mode {
	case editorMode:
		return m.status + "\n"

	case inlineMode:
		var b strings.Builder
		b.WriteString(common.AppTitleStyle.Render("giggles"))
		if m.author != "" {
			b.WriteString(common.MutedStyle.Render("  comment on @" + m.author))
		}
		b.WriteString("\n\n")
		b.WriteString(m.textarea.View())
		b.WriteString("\n\n")
		b.WriteString(common.StatusBarStyle.Render(
			fmt.Sprintf("  ctrl+d: send • esc: cancel • %d/%d chars",
				len([]rune(m.textarea.Value())), charLimit),
		))
		return b.String()
	}
	return ""
}
