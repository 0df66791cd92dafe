package feed

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/CrestNiraj12/giggles/app"
	"github.com/CrestNiraj12/giggles/core/engagement"
	"github.com/CrestNiraj12/giggles/core/playback"
	"github.com/CrestNiraj12/giggles/core/preload"
	"github.com/CrestNiraj12/giggles/core/sheet"
	"github.com/CrestNiraj12/giggles/core/tracker"
	"github.com/CrestNiraj12/giggles/domain"
	"github.com/CrestNiraj12/giggles/tui/common"
)

const (
	chromeRows   = 2 // Title bar and footer
	captionRows  = 3
	railWidth    = 12
	wheelStep    = 3
	keyboardRows = 3
	playInterval = time.Second / 4
)

// --- Messages ---

// VideosLoadedMsg is sent when the feed fetch completes successfully.
type VideosLoadedMsg struct {
	Seq    int
	Videos []domain.Video
}

// VideosErrorMsg is sent when the feed fetch fails.
type VideosErrorMsg struct {
	Seq int
	Err error
}

// DeepLinkMsg asks the feed to show a video by id, fetching it when it is
// not in the list.
type DeepLinkMsg struct {
	VideoID string
}

// OpenProfileMsg is sent when the user opens the active author's profile.
type OpenProfileMsg struct {
	UserID string
	Name   string
}

// ComposeRequestMsg asks the root model to draft a long comment.
type ComposeRequestMsg struct {
	VideoID string
	Author  string
	Draft   string
	Inline  bool
}

type playTickMsg struct{}

// Player is a playback handle that can also render itself.
// *player.Player satisfies it.
type Player interface {
	playback.Handle
	LoadCmd() tea.Cmd
	Frame() string
	Advance()
	Release()
	Resize(width, height int) bool
}

// PlayerFactory creates a player for a video sized to the frame area.
type PlayerFactory func(v domain.Video, width, height int) Player

// Deps holds the feed's collaborators.
type Deps struct {
	Videos     app.VideoService
	Engagement *engagement.Coordinator
	Media      preload.Warmer // Optional
	NewPlayer  PlayerFactory  // Optional; without it videos show as placeholders
	Logger     *slog.Logger
	DeepLink   string // Video to open once the first feed load settles
}

// --- Model ---

// Model holds the state for the vertical feed.
type Model struct {
	videos    app.VideoService
	newPlayer PlayerFactory
	logger    *slog.Logger

	tracker    *tracker.Tracker
	pager      *pager
	playback   *playback.Controller
	preload    *preload.Preloader
	engagement *engagement.Coordinator
	sheet      *sheet.Model

	keys     common.KeyMap
	spinner  spinner.Model
	input    textinput.Model
	comments viewport.Model

	width, height int
	loading       bool
	loaded        bool
	loadSeq       int
	err           error
	pendingLink   string
	draftVideo    string // Video the last sent draft belongs to
	showHints     bool
	status        string
	drag          dragState
	now           func() time.Time
}

// dragState follows a mouse gesture on the sheet handle.
type dragState struct {
	active   bool
	startY   int
	lastY    int
	lastAt   time.Time
	velocity float64 // rows per second, positive downward
}

// New creates a feed model with injected dependencies.
func New(deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FE2C55"))

	ti := textinput.New()
	ti.Placeholder = "Add comment..."
	ti.CharLimit = 500
	ti.Prompt = "› "

	pg := &pager{}
	pc := playback.New(logger)
	coord := deps.Engagement
	if coord == nil {
		coord = engagement.New(deps.Videos, nil, nil, engagement.WithLogger(logger))
	}

	m := Model{
		videos:      deps.Videos,
		newPlayer:   deps.NewPlayer,
		logger:      logger,
		tracker:     tracker.New(pg, deps.Videos, tracker.WithLogger(logger)),
		pager:       pg,
		playback:    pc,
		engagement:  coord,
		sheet:       sheet.New(1, coord.LoadThread),
		keys:        common.DefaultKeyMap(),
		spinner:     s,
		input:       ti,
		comments:    viewport.New(0, 0),
		loading:     true,
		loadSeq:     1,
		pendingLink: deps.DeepLink,
		now:         time.Now,
	}
	if deps.Media != nil {
		m.preload = preload.New(deps.Media, pc, logger)
	}
	return m
}

// Init starts the first feed load, the spinner and the frame clock.
func (m Model) Init() tea.Cmd {
	return tea.Batch(fetchVideos(m.videos, m.loadSeq), m.spinner.Tick, playTick())
}

// Items returns the loaded videos in display order.
func (m Model) Items() []domain.Video { return m.tracker.Items() }

// ActiveID returns the id of the video that owns the screen.
func (m Model) ActiveID() string { return m.tracker.Active() }

// ActiveVideo returns the active video.
func (m Model) ActiveVideo() (domain.Video, bool) { return m.tracker.ActiveVideo() }

// Playback exposes the playback controller.
func (m Model) Playback() *playback.Controller { return m.playback }

// Sheet exposes the comments overlay.
func (m Model) Sheet() *sheet.Model { return m.sheet }

// Engagement exposes the mutation coordinator.
func (m Model) Engagement() *engagement.Coordinator { return m.engagement }

// Draft returns the pending comment text.
func (m Model) Draft() string { return m.input.Value() }

// Capturing reports whether the feed is consuming keys that would
// otherwise be global (quit, back).
func (m Model) Capturing() bool { return m.input.Focused() || m.sheet.Visible() }

// Shutdown pauses every mounted player.
func (m Model) Shutdown() { m.playback.StopAll() }

func (m Model) pageRows() int {
	return max(m.height-chromeRows, 1)
}

func (m Model) sheetRows() int {
	return max(m.pageRows()*2/3, 8)
}

func (m Model) frameSize() (int, int) {
	w := m.width - railWidth
	h := m.pageRows() - captionRows
	if m.width == 0 {
		w, h = 40, 12
	}
	return max(w, 10), max(h, 4)
}
