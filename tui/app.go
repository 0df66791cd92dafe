package tui

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/giggles/app"
	"github.com/CrestNiraj12/giggles/core/engagement"
	"github.com/CrestNiraj12/giggles/core/preload"
	"github.com/CrestNiraj12/giggles/infra/editor"
	"github.com/CrestNiraj12/giggles/tui/common"
	"github.com/CrestNiraj12/giggles/tui/compose"
	"github.com/CrestNiraj12/giggles/tui/feed"
	"github.com/CrestNiraj12/giggles/tui/profile"
)

// Deps holds all dependencies the TUI needs. Plain struct, not a DI container.
type Deps struct {
	Videos        app.VideoService
	Engagement    app.EngagementService
	Accounts      app.AccountService
	Media         preload.Warmer
	NewPlayer     feed.PlayerFactory
	Editor        *editor.EnvEditor
	Logger        *slog.Logger
	CommentsLimit int
	DeepLink      string
}

type activeView int

const (
	feedView activeView = iota
	composeView
	profileView
)

// App is the root Bubble Tea model. It routes between sub-views.
type App struct {
	deps    Deps
	active  activeView
	feed    feed.Model
	compose compose.Model
	profile profile.Model
	coord   *engagement.Coordinator
	keys    common.KeyMap
	width   int
	height  int
	held    bool // Pause state of the feed before another view covered it
}

// NewApp creates the root model with all dependencies wired.
func NewApp(deps Deps) App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	opts := []engagement.Option{engagement.WithLogger(deps.Logger)}
	if deps.CommentsLimit > 0 {
		opts = append(opts, engagement.WithCommentsLimit(deps.CommentsLimit))
	}
	coord := engagement.New(deps.Videos, deps.Engagement, deps.Accounts, opts...)

	return App{
		deps:   deps,
		active: feedView,
		coord:  coord,
		keys:   common.DefaultKeyMap(),
		feed: feed.New(feed.Deps{
			Videos:     deps.Videos,
			Engagement: coord,
			Media:      deps.Media,
			NewPlayer:  deps.NewPlayer,
			Logger:     deps.Logger,
			DeepLink:   deps.DeepLink,
		}),
	}
}

// Init delegates to the feed.
func (a App) Init() tea.Cmd {
	return a.feed.Init()
}

// Update handles messages and routes to the active sub-model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		var fc, pc tea.Cmd
		a.feed, fc = a.feed.Update(msg)
		if a.active == profileView {
			a.profile, pc = a.profile.Update(msg)
		}
		return a, tea.Batch(fc, pc)

	case tea.KeyMsg:
		// ctrl+c always quits; q only where nothing else captures it.
		if msg.String() == "ctrl+c" {
			a.feed.Shutdown()
			return a, tea.Quit
		}
		switch a.active {
		case feedView:
			if key.Matches(msg, a.keys.Quit) && !a.feed.Capturing() {
				a.feed.Shutdown()
				return a, tea.Quit
			}
			var cmd tea.Cmd
			a.feed, cmd = a.feed.Update(msg)
			return a, cmd
		case profileView:
			var cmd tea.Cmd
			a.profile, cmd = a.profile.Update(msg)
			return a, cmd
		case composeView:
			var cmd tea.Cmd
			a.compose, cmd = a.compose.Update(msg)
			return a, cmd
		}

	case feed.OpenProfileMsg:
		a.active = profileView
		a.holdPlayback()
		a.profile = profile.New(profile.Deps{
			Accounts:   a.deps.Accounts,
			Videos:     a.deps.Videos,
			Engagement: a.coord,
			Logger:     a.deps.Logger,
		}, msg.UserID, msg.Name)
		a.profile, _ = a.profile.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
		return a, a.profile.Init()

	case profile.BackMsg:
		a.active = feedView
		a.resumePlayback()
		return a, nil

	case profile.SelectMsg:
		a.active = feedView
		a.resumePlayback()
		var cmd tea.Cmd
		a.feed, cmd = a.feed.Update(feed.DeepLinkMsg{VideoID: msg.VideoID})
		return a, cmd

	case feed.ComposeRequestMsg:
		a.active = composeView
		a.holdPlayback()
		if msg.Inline {
			a.compose = compose.NewInline(msg.VideoID, msg.Author, msg.Draft, a.width)
		} else {
			a.compose = compose.NewEditor(a.deps.Editor, msg.VideoID, msg.Author, msg.Draft)
		}
		return a, a.compose.Init()

	case compose.DoneMsg:
		a.active = feedView
		a.resumePlayback()
		var cmd tea.Cmd
		a.feed, cmd = a.feed.Update(msg)
		return a, cmd
	}

	// Everything else belongs to the feed, which keeps its network
	// results and animations running under other views. The profile and
	// compose views get their own messages as well.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.feed, cmd = a.feed.Update(msg)
	cmds = append(cmds, cmd)
	switch a.active {
	case profileView:
		a.profile, cmd = a.profile.Update(msg)
		cmds = append(cmds, cmd)
	case composeView:
		a.compose, cmd = a.compose.Update(msg)
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

func (a *App) holdPlayback() {
	pc := a.feed.Playback()
	a.held = pc.Paused()
	pc.SetPaused(true)
}

func (a *App) resumePlayback() {
	a.feed.Playback().SetPaused(a.held)
}

// View renders the active sub-model.
func (a App) View() string {
	switch a.active {
	case composeView:
		return a.compose.View()
	case profileView:
		return a.profile.View()
	}
	return a.feed.View()
}
