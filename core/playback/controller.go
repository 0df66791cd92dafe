// Package playback keeps exactly one player handle playing: the active
// one, unless the user paused it.
package playback

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/giggles/domain"
)

// Handle is a per-video player resource. Methods return
// domain.ErrHandleReleased once the handle has been torn down.
type Handle interface {
	Play() error
	Pause() error
	Playing() bool
	// Stop pauses and rewinds to the first frame.
	Stop() error
	// Replay rewinds and resumes in place.
	Replay() error
	// Reload unloads and loads the media again. It may block.
	Reload(ctx context.Context) error
}

// ReloadedMsg reports the end of a second-tier recovery.
type ReloadedMsg struct {
	ID  string
	Err error

	handle Handle
}

// Controller exclusively owns the id -> handle map. It must be used from
// the event loop only.
type Controller struct {
	handles map[string]Handle
	active  string
	paused  bool
	logger  *slog.Logger
}

// New creates an empty Controller.
func New(logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{handles: make(map[string]Handle), logger: logger}
}

func (c *Controller) Active() string { return c.active }
func (c *Controller) Paused() bool   { return c.paused }

// Handle returns the mounted handle for id.
func (c *Controller) Handle(id string) (Handle, bool) {
	h, ok := c.handles[id]
	return h, ok
}

// Mounted returns the ids with a registered handle.
func (c *Controller) Mounted() []string {
	ids := make([]string, 0, len(c.handles))
	for id := range c.handles {
		ids = append(ids, id)
	}
	return ids
}

// SetActive switches the active video. A new active video always starts
// unpaused.
func (c *Controller) SetActive(id string) {
	if id != c.active {
		c.active = id
		c.paused = false
	}
	c.Reconcile()
}

// SetPaused sets the user pause flag of the active video.
func (c *Controller) SetPaused(paused bool) {
	c.paused = paused
	c.Reconcile()
}

// TogglePaused flips the pause flag and returns the new value.
func (c *Controller) TogglePaused() bool {
	if c.active == "" {
		return c.paused
	}
	c.SetPaused(!c.paused)
	return c.paused
}

// Register mounts a handle for id, replacing any previous one.
func (c *Controller) Register(id string, h Handle) {
	if h == nil {
		return
	}
	if old, ok := c.handles[id]; ok && old != h {
		c.quiet(id, old.Pause())
	}
	c.handles[id] = h
	c.Reconcile()
}

// Unregister unmounts the handle for id. The caller releases it.
func (c *Controller) Unregister(id string) {
	h, ok := c.handles[id]
	if !ok {
		return
	}
	delete(c.handles, id)
	if h.Playing() {
		c.quiet(id, h.Pause())
	}
}

// Reconcile plays the (active, !paused) handle and pauses the rest.
// Handles already in the wanted state are not touched.
func (c *Controller) Reconcile() {
	for id, h := range c.handles {
		want := id == c.active && !c.paused
		if h.Playing() == want {
			continue
		}
		if want {
			c.quiet(id, h.Play())
		} else {
			c.quiet(id, h.Pause())
		}
	}
}

// ReportError starts recovery for a failing handle: an in-place replay
// first, then a full reload off the event loop.
func (c *Controller) ReportError(id string) tea.Cmd {
	h, ok := c.handles[id]
	if !ok {
		return nil
	}
	err := h.Replay()
	if err == nil {
		c.logger.Debug("playback: recovered by replay", "video", id)
		c.Reconcile()
		return nil
	}
	if errors.Is(err, domain.ErrHandleReleased) {
		return nil
	}
	c.logger.Warn("playback: replay failed, reloading", "video", id, "err", err)
	return func() tea.Msg {
		return ReloadedMsg{ID: id, Err: h.Reload(context.Background()), handle: h}
	}
}

// Update handles ReloadedMsg and reports whether msg was consumed.
func (c *Controller) Update(msg tea.Msg) bool {
	m, ok := msg.(ReloadedMsg)
	if !ok {
		return false
	}
	if m.Err != nil {
		if !errors.Is(m.Err, domain.ErrHandleReleased) {
			c.logger.Error("playback: reload failed", "video", m.ID, "err", m.Err)
		}
		return true
	}
	if cur, ok := c.handles[m.ID]; ok && cur == m.handle {
		c.Reconcile()
	}
	return true
}

// StopAll pauses every handle, used on shutdown.
func (c *Controller) StopAll() {
	for id, h := range c.handles {
		c.quiet(id, h.Stop())
	}
}

func (c *Controller) quiet(id string, err error) {
	if err == nil || errors.Is(err, domain.ErrHandleReleased) {
		return
	}
	c.logger.Warn("playback: handle transition failed", "video", id, "err", err)
}
