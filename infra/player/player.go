// Package player is a terminal video player: it decodes media into ANSI
// frames and loops them while playing.
package player

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/giggles/domain"
)

// Source provides media bytes, usually from the warm cache.
type Source interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// LoadedMsg reports that a player finished its initial load.
type LoadedMsg struct {
	ID  string
	Err error
}

// Player implements playback.Handle. It is safe for concurrent use; Load
// and Reload run in commands while the event loop reads frames.
type Player struct {
	id     string
	url    string
	source Source
	width  int
	height int

	mu       sync.Mutex
	frames   []string
	index    int
	playing  bool
	released bool
	err      error
	decode   func(ctx context.Context, data []byte, url string, w, h int) ([]string, error)
}

// New creates an unloaded player for a video.
func New(v domain.Video, source Source, width, height int) *Player {
	return &Player{
		id:     v.ID,
		url:    v.MediaURL,
		source: source,
		width:  width,
		height: height,
		decode: decodeFrames,
	}
}

// ID returns the video id.
func (p *Player) ID() string { return p.id }

// LoadCmd loads the media off the event loop.
func (p *Player) LoadCmd() tea.Cmd {
	return func() tea.Msg {
		return LoadedMsg{ID: p.id, Err: p.Load(context.Background())}
	}
}

// Load fetches and decodes the media.
func (p *Player) Load(ctx context.Context) error {
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return domain.ErrHandleReleased
	}
	url, w, h, decode := p.url, p.width, p.height, p.decode
	p.mu.Unlock()

	frames, err := p.fetchFrames(ctx, url, w, h, decode)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return domain.ErrHandleReleased
	}
	if err != nil {
		p.err = err
		return err
	}
	p.frames, p.index, p.err = frames, 0, nil
	return nil
}

func (p *Player) fetchFrames(ctx context.Context, url string, w, h int, decode func(context.Context, []byte, string, int, int) ([]string, error)) ([]string, error) {
	if p.source == nil {
		return nil, fmt.Errorf("%w: no media source", domain.ErrPlayback)
	}
	data, err := p.source.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPlayback, err)
	}
	frames, err := decode(ctx, data, url, w, h)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPlayback, err)
	}
	return frames, nil
}

func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return domain.ErrHandleReleased
	}
	p.playing = true
	return nil
}

func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return domain.ErrHandleReleased
	}
	p.playing = false
	return nil
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing && !p.released
}

func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return domain.ErrHandleReleased
	}
	p.playing = false
	p.index = 0
	return nil
}

// Replay rewinds and plays. It fails while the last load failed.
func (p *Player) Replay() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return domain.ErrHandleReleased
	}
	if p.err != nil {
		return p.err
	}
	p.index = 0
	p.playing = true
	return nil
}

// Reload drops the decoded frames and loads them again.
func (p *Player) Reload(ctx context.Context) error {
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return domain.ErrHandleReleased
	}
	p.frames, p.index = nil, 0
	p.mu.Unlock()
	return p.Load(ctx)
}

// Release tears the player down; later calls report ErrHandleReleased.
func (p *Player) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released = true
	p.playing = false
	p.frames = nil
}

// Resize changes the frame size. Frames are decoded again on the next load.
func (p *Player) Resize(width, height int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.width == width && p.height == height {
		return false
	}
	p.width, p.height = width, height
	return true
}

// Advance moves a playing player to its next frame, looping at the end.
func (p *Player) Advance() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing || p.released || len(p.frames) <= 1 {
		return
	}
	p.index = (p.index + 1) % len(p.frames)
}

// Loaded reports whether frames are available.
func (p *Player) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames) > 0
}

// Err returns the last load error.
func (p *Player) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Frame returns the current frame, or "" when nothing is loaded.
func (p *Player) Frame() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.frames) == 0 {
		return ""
	}
	return p.frames[p.index]
}

// FrameIndex returns the current frame position.
func (p *Player) FrameIndex() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}
