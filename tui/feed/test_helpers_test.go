package feed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/giggles/app"
	"github.com/CrestNiraj12/giggles/core/engagement"
	"github.com/CrestNiraj12/giggles/domain"
	"github.com/CrestNiraj12/giggles/infra/player"
)

type stubVideos struct {
	mu     sync.Mutex
	list   []domain.Video
	extra  map[string]domain.Video
	thread map[string][]domain.Comment
	calls  int
}

func (s *stubVideos) ListVideos(context.Context) ([]domain.Video, error) {
	return s.list, nil
}

func (s *stubVideos) Video(_ context.Context, id string, _ int) (domain.Video, []domain.Comment, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	for _, v := range s.list {
		if v.ID == id {
			return v, s.thread[id], nil
		}
	}
	if v, ok := s.extra[id]; ok {
		return v, s.thread[id], nil
	}
	return domain.Video{}, nil, domain.ErrNotFound
}

func (s *stubVideos) VideosByUser(context.Context, string) ([]domain.Video, error) {
	return nil, nil
}

type stubEngagement struct {
	likeErr    error
	commentErr error
	likeCount  int
}

func (s *stubEngagement) Like(context.Context, string) (app.LikeResult, error) {
	if s.likeErr != nil {
		return app.LikeResult{}, s.likeErr
	}
	return app.LikeResult{LikeCount: s.likeCount, HasCount: s.likeCount > 0}, nil
}

func (s *stubEngagement) Unlike(context.Context, string) (app.LikeResult, error) {
	return app.LikeResult{}, s.likeErr
}

func (s *stubEngagement) LikedVideoIDs(context.Context) ([]string, error) { return nil, nil }

func (s *stubEngagement) PostComment(_ context.Context, videoID, text string) (app.CommentResult, error) {
	if s.commentErr != nil {
		return app.CommentResult{}, s.commentErr
	}
	return app.CommentResult{
		Comment: domain.Comment{ID: "c-new", AuthorID: "me", Text: text, DisplayName: "me"},
	}, nil
}

type stubAccounts struct{}

func (stubAccounts) CurrentUserID() string { return "me" }
func (stubAccounts) Profile(context.Context, string) (domain.Profile, error) {
	return domain.Profile{}, nil
}
func (stubAccounts) Follow(context.Context, string) (app.FollowResult, error) {
	return app.FollowResult{}, nil
}
func (stubAccounts) Unfollow(context.Context, string) (app.FollowResult, error) {
	return app.FollowResult{}, nil
}

// fakePlayer records transitions and renders a fixed frame.
type fakePlayer struct {
	id        string
	playing   bool
	released  bool
	loadErr   error
	replayErr error
	replays   int
	reloads   int
	stops     int
	advances  int
}

func (p *fakePlayer) Play() error {
	if p.released {
		return domain.ErrHandleReleased
	}
	p.playing = true
	return nil
}

func (p *fakePlayer) Pause() error {
	if p.released {
		return domain.ErrHandleReleased
	}
	p.playing = false
	return nil
}

func (p *fakePlayer) Playing() bool { return p.playing }

func (p *fakePlayer) Stop() error {
	p.stops++
	return p.Pause()
}

func (p *fakePlayer) Replay() error {
	p.replays++
	return p.replayErr
}

func (p *fakePlayer) Reload(context.Context) error {
	p.reloads++
	return nil
}

func (p *fakePlayer) LoadCmd() tea.Cmd {
	id, err := p.id, p.loadErr
	return func() tea.Msg { return player.LoadedMsg{ID: id, Err: err} }
}

func (p *fakePlayer) Frame() string                 { return "frame:" + p.id }
func (p *fakePlayer) Advance()                      { p.advances++ }
func (p *fakePlayer) Release()                      { p.released, p.playing = true, false }
func (p *fakePlayer) Resize(width, height int) bool { return false }

type fixture struct {
	videos     *stubVideos
	engagement *stubEngagement
	players    map[string]*fakePlayer
}

func makeVideos(n int) []domain.Video {
	out := make([]domain.Video, n)
	for i := range out {
		id := fmt.Sprintf("v%d", i+1)
		out[i] = domain.Video{
			ID:           id,
			MediaURL:     "http://media/" + id + ".mp4",
			AuthorID:     "author" + id,
			AuthorName:   "Author " + id,
			Caption:      "caption " + id,
			LikeCount:    10,
			CommentCount: 2,
		}
	}
	return out
}

// newLoadedModel returns a sized feed with n videos loaded.
func newLoadedModel(t *testing.T, n int) (Model, *fixture) {
	t.Helper()
	m, fx := newModel(t, n, "")
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	m, _ = m.Update(VideosLoadedMsg{Seq: 1, Videos: fx.videos.list})
	return m, fx
}

func newModel(t *testing.T, n int, deepLink string) (Model, *fixture) {
	t.Helper()
	fx := &fixture{
		videos:     &stubVideos{list: makeVideos(n), extra: map[string]domain.Video{}, thread: map[string][]domain.Comment{}},
		engagement: &stubEngagement{},
		players:    map[string]*fakePlayer{},
	}
	coord := engagement.New(fx.videos, fx.engagement, stubAccounts{})
	m := New(Deps{
		Videos:     fx.videos,
		Engagement: coord,
		NewPlayer: func(v domain.Video, _, _ int) Player {
			p := &fakePlayer{id: v.ID}
			fx.players[v.ID] = p
			return p
		},
		DeepLink: deepLink,
	})
	return m, fx
}

func sortedMounted(m Model) []string {
	ids := m.Playback().Mounted()
	sort.Strings(ids)
	return ids
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// runCmd executes cmd and flattens batches. Commands that do not return
// promptly (cursor blinks) are dropped.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, runCmd(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(300 * time.Millisecond):
		return nil
	}
}

// drive feeds the messages produced by cmd back into m until done reports
// true or nothing is left to run.
func drive(t *testing.T, m Model, cmd tea.Cmd, done func(Model) bool) Model {
	t.Helper()
	for i := 0; i < 500; i++ {
		if done(m) {
			return m
		}
		msgs := runCmd(cmd)
		if len(msgs) == 0 {
			break
		}
		var cmds []tea.Cmd
		for _, msg := range msgs {
			var c tea.Cmd
			m, c = m.Update(msg)
			cmds = append(cmds, c)
		}
		cmd = tea.Batch(cmds...)
	}
	if !done(m) {
		t.Fatalf("condition not reached")
	}
	return m
}

func findMsg[T any](msgs []tea.Msg) (T, bool) {
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

var errBoom = errors.New("boom")
