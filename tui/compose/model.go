package compose

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/giggles/infra/editor"
)

const charLimit = 500

type mode int

const (
	editorMode mode = iota
	inlineMode
)

// DoneMsg is sent when drafting ends. Content is empty when cancelled.
type DoneMsg struct {
	VideoID string
	Content string
	Err     error
}

// editorFinishedMsg is sent after the external editor exits.
type editorFinishedMsg struct {
	tmpPath string
	err     error
}

// Model drafts a long comment for one video.
type Model struct {
	mode     mode
	editor   *editor.EnvEditor
	videoID  string
	author   string
	draft    string
	status   string
	textarea textarea.Model // Only used in inline mode
	width    int
}

// NewEditor creates a model that drafts in $EDITOR via tea.ExecProcess.
func NewEditor(ed *editor.EnvEditor, videoID, author, draft string) Model {
	return Model{
		mode:    editorMode,
		editor:  ed,
		videoID: videoID,
		author:  author,
		draft:   draft,
		status:  "Opening editor...",
	}
}

// NewInline creates a model with a multi-line textarea.
func NewInline(videoID, author, draft string, width int) Model {
	ta := textarea.New()
	ta.Placeholder = "Say something nice..."
	ta.CharLimit = charLimit
	ta.SetWidth(max(min(width-4, 72), 20))
	ta.SetHeight(6)
	ta.SetValue(draft)
	ta.Focus()

	return Model{
		mode:     inlineMode,
		videoID:  videoID,
		author:   author,
		draft:    draft,
		textarea: ta,
		width:    width,
	}
}

// VideoID returns the video the draft belongs to.
func (m Model) VideoID() string { return m.videoID }

// Init returns the initial command for the active mode.
func (m Model) Init() tea.Cmd {
	switch m.mode {
	case editorMode:
		return m.launchEditor()
	case inlineMode:
		return textarea.Blink
	}
	return nil
}

func (m Model) launchEditor() tea.Cmd {
	if m.editor == nil {
		return done(DoneMsg{VideoID: m.videoID, Err: fmt.Errorf("no editor configured")})
	}
	cmd, tmpPath, err := m.editor.Cmd(m.draft, m.author)
	if err != nil {
		return done(DoneMsg{VideoID: m.videoID, Err: fmt.Errorf("preparing editor: %w", err)})
	}
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{tmpPath: tmpPath, err: err}
	})
}

// Update handles messages for the compose view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case editorFinishedMsg:
		if msg.err != nil {
			return m, done(DoneMsg{VideoID: m.videoID, Err: fmt.Errorf("editor: %w", msg.err)})
		}
		content, err := m.editor.ReadContent(msg.tmpPath)
		if err != nil {
			return m, done(DoneMsg{VideoID: m.videoID, Err: err})
		}
		return m, done(m.result(content))

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.mode == inlineMode {
			m.textarea.SetWidth(max(min(msg.Width-4, 72), 20))
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode != inlineMode {
			break
		}
		switch msg.String() {
		case "esc":
			return m, done(DoneMsg{VideoID: m.videoID})
		case "ctrl+d":
			return m, done(m.result(m.textarea.Value()))
		}
	}

	if m.mode == inlineMode {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd
	}
	return m, nil
}

// result cancels when the draft is empty or unchanged.
func (m Model) result(content string) DoneMsg {
	content = strings.TrimSpace(content)
	if content == "" || content == strings.TrimSpace(m.draft) {
		return DoneMsg{VideoID: m.videoID}
	}
	return DoneMsg{VideoID: m.videoID, Content: content}
}

// done wraps a DoneMsg into a tea.Cmd for immediate delivery.
func done(msg DoneMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}
