// Package profile shows a user's stats and video grid.
package profile

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/CrestNiraj12/giggles/app"
	"github.com/CrestNiraj12/giggles/core/engagement"
	"github.com/CrestNiraj12/giggles/domain"
	"github.com/CrestNiraj12/giggles/tui/common"
)

const columns = 3

// --- Messages ---

// SelectMsg is sent when a video in the grid is opened.
type SelectMsg struct {
	VideoID string
}

// BackMsg is sent when the user leaves the profile.
type BackMsg struct{}

type profileLoadedMsg struct {
	UserID  string
	Profile domain.Profile
	Err     error
}

type videosLoadedMsg struct {
	UserID string
	Videos []domain.Video
	Err    error
}

// Deps holds the profile screen's collaborators.
type Deps struct {
	Accounts   app.AccountService
	Videos     app.VideoService
	Engagement *engagement.Coordinator
	Logger     *slog.Logger
}

// Model holds the state for one user's profile.
type Model struct {
	deps    Deps
	keys    common.KeyMap
	spinner spinner.Model

	userID  string
	name    string
	profile domain.Profile
	videos  []domain.Video
	cursor  int

	loadingProfile bool
	loadingVideos  bool
	err            error
	width, height  int
}

// New creates a profile model for userID. name is shown until the
// profile loads.
func New(deps Deps, userID, name string) Model {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FE2C55"))
	return Model{
		deps:           deps,
		keys:           common.DefaultKeyMap(),
		spinner:        s,
		userID:         userID,
		name:           name,
		loadingProfile: true,
		loadingVideos:  true,
	}
}

// Init fetches the profile and its videos.
func (m Model) Init() tea.Cmd {
	return tea.Batch(fetchProfile(m.deps.Accounts, m.userID), fetchVideos(m.deps.Videos, m.userID), m.spinner.Tick)
}

// UserID returns the profile owner.
func (m Model) UserID() string { return m.userID }

// Videos returns the loaded grid.
func (m Model) Videos() []domain.Video { return m.videos }

// Cursor returns the selected grid index.
func (m Model) Cursor() int { return m.cursor }

func fetchProfile(accounts app.AccountService, userID string) tea.Cmd {
	return func() tea.Msg {
		p, err := accounts.Profile(context.Background(), userID)
		return profileLoadedMsg{UserID: userID, Profile: p, Err: err}
	}
}

func fetchVideos(videos app.VideoService, userID string) tea.Cmd {
	return func() tea.Msg {
		list, err := videos.VideosByUser(context.Background(), userID)
		return videosLoadedMsg{UserID: userID, Videos: list, Err: err}
	}
}

// Update handles messages for the profile view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.loadingProfile && !m.loadingVideos {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case profileLoadedMsg:
		if msg.UserID != m.userID {
			return m, nil
		}
		m.loadingProfile = false
		if msg.Err != nil {
			m.err = msg.Err
			m.deps.Logger.Warn("profile: load failed", "user", m.userID, "err", msg.Err)
			return m, nil
		}
		m.profile = msg.Profile
		if msg.Profile.Username != "" {
			m.name = msg.Profile.Username
		}
		if m.deps.Engagement != nil {
			m.deps.Engagement.SeedFollowers(m.userID, msg.Profile.Followers)
		}
		return m, nil

	case videosLoadedMsg:
		if msg.UserID != m.userID {
			return m, nil
		}
		m.loadingVideos = false
		if msg.Err != nil {
			m.err = msg.Err
			m.deps.Logger.Warn("profile: videos failed", "user", m.userID, "err", msg.Err)
			return m, nil
		}
		m.videos = msg.Videos
		m.cursor = min(m.cursor, max(len(m.videos)-1, 0))
		if m.deps.Engagement != nil {
			m.deps.Engagement.Track(msg.Videos)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Quit):
		return m, func() tea.Msg { return BackMsg{} }
	case key.Matches(msg, m.keys.Follow):
		if m.deps.Engagement == nil {
			return m, nil
		}
		return m, m.deps.Engagement.ToggleFollow(m.userID)
	case key.Matches(msg, m.keys.Refresh):
		m.loadingProfile, m.loadingVideos = true, true
		m.err = nil
		return m, tea.Batch(fetchProfile(m.deps.Accounts, m.userID), fetchVideos(m.deps.Videos, m.userID), m.spinner.Tick)
	case key.Matches(msg, m.keys.Select):
		if m.cursor < len(m.videos) {
			id := m.videos[m.cursor].ID
			return m, func() tea.Msg { return SelectMsg{VideoID: id} }
		}
		return m, nil
	case key.Matches(msg, m.keys.Left):
		m.move(-1)
	case key.Matches(msg, m.keys.Right):
		m.move(1)
	case key.Matches(msg, m.keys.Up):
		m.move(-columns)
	case key.Matches(msg, m.keys.Down):
		m.move(columns)
	}
	return m, nil
}

func (m *Model) move(delta int) {
	if len(m.videos) == 0 {
		return
	}
	next := m.cursor + delta
	if next < 0 || next >= len(m.videos) {
		return
	}
	m.cursor = next
}
