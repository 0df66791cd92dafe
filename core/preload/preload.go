// Package preload warms the media of neighboring videos so they start
// instantly when they become active.
package preload

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/giggles/core/playback"
	"github.com/CrestNiraj12/giggles/domain"
)

const (
	Ahead        = 3
	Behind       = 2
	InitialWarm  = 6
	warmDeadline = 30 * time.Second
)

// Warmer fetches a media URL into a cache. It must be goroutine-safe.
type Warmer interface {
	Warm(ctx context.Context, url string) error
}

// Handles exposes the mounted player handles and the active id.
// *playback.Controller satisfies it.
type Handles interface {
	Handle(id string) (playback.Handle, bool)
	Active() string
}

// DoneMsg reports a finished warm batch.
type DoneMsg struct {
	Initial bool
	Warmed  int
	Failed  int
}

// Preloader schedules warm batches. Only OnActiveChanged, WarmInitial and
// Update touch its state, all from the event loop.
type Preloader struct {
	cache   Warmer
	handles Handles
	logger  *slog.Logger
}

// New creates a Preloader.
func New(cache Warmer, handles Handles, logger *slog.Logger) *Preloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Preloader{cache: cache, handles: handles, logger: logger}
}

// Window returns the neighbor indexes of index in a list of n items:
// up to Ahead after it, then up to Behind before it.
func Window(n, index int) []int {
	if index < 0 || index >= n {
		return nil
	}
	out := make([]int, 0, Ahead+Behind)
	for d := 1; d <= Ahead; d++ {
		if i := index + d; i < n {
			out = append(out, i)
		}
	}
	for d := 1; d <= Behind; d++ {
		if i := index - d; i >= 0 {
			out = append(out, i)
		}
	}
	return out
}

// OnActiveChanged warms the neighbors of items[index].
func (p *Preloader) OnActiveChanged(items []domain.Video, index int) tea.Cmd {
	var urls []string
	for _, i := range Window(len(items), index) {
		urls = append(urls, items[i].MediaURL)
	}
	return p.warm(urls, false)
}

// WarmInitial warms the first videos of a freshly loaded feed.
func (p *Preloader) WarmInitial(items []domain.Video) tea.Cmd {
	urls := make([]string, 0, InitialWarm)
	for i := 0; i < len(items) && i < InitialWarm; i++ {
		urls = append(urls, items[i].MediaURL)
	}
	return p.warm(urls, true)
}

func (p *Preloader) warm(urls []string, initial bool) tea.Cmd {
	if p.cache == nil || len(urls) == 0 {
		return nil
	}
	cache, logger := p.cache, p.logger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), warmDeadline)
		defer cancel()

		var (
			wg     sync.WaitGroup
			mu     sync.Mutex
			failed int
		)
		for _, url := range urls {
			if url == "" {
				continue
			}
			wg.Add(1)
			go func(url string) {
				defer wg.Done()
				if err := cache.Warm(ctx, url); err != nil {
					if !errors.Is(err, context.Canceled) {
						logger.Debug("preload: warm failed", "url", url, "err", err)
					}
					mu.Lock()
					failed++
					mu.Unlock()
				}
			}(url)
		}
		wg.Wait()
		return DoneMsg{Initial: initial, Warmed: len(urls) - failed, Failed: failed}
	}
}

// Update handles DoneMsg. After a neighbor batch the mounted neighbor
// handles of the current active item are rewound; the active one is left
// alone. items must be the current list.
func (p *Preloader) Update(msg tea.Msg, items []domain.Video) bool {
	done, ok := msg.(DoneMsg)
	if !ok {
		return false
	}
	if done.Failed > 0 {
		p.logger.Debug("preload: batch finished with failures", "warmed", done.Warmed, "failed", done.Failed)
	}
	if done.Initial || p.handles == nil {
		return true
	}
	p.ResetNeighbors(items)
	return true
}

// ResetNeighbors stops and rewinds the mounted handles around the
// active item.
func (p *Preloader) ResetNeighbors(items []domain.Video) {
	active := p.handles.Active()
	index := -1
	for i, v := range items {
		if v.ID == active {
			index = i
			break
		}
	}
	for _, i := range Window(len(items), index) {
		id := items[i].ID
		if id == active {
			continue
		}
		h, ok := p.handles.Handle(id)
		if !ok {
			continue
		}
		if err := h.Stop(); err != nil && !errors.Is(err, domain.ErrHandleReleased) {
			p.logger.Debug("preload: neighbor reset failed", "video", id, "err", err)
		}
	}
}
