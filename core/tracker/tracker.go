// Package tracker turns scroll positions into the authoritative active
// video and resolves deep links to videos that are not loaded yet.
package tracker

import (
	"context"
	"log/slog"
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/giggles/app"
	"github.com/CrestNiraj12/giggles/domain"
)

const (
	// ScrollRetryDelay is the pause before the single scroll retry.
	ScrollRetryDelay = 50 * time.Millisecond
	// SettleDelay is how long the offset must stay still to count as settled.
	SettleDelay = 120 * time.Millisecond
)

// State is the tracker's position in Idle -> Settling -> Idle.
type State int

const (
	Idle State = iota
	Settling
)

func (s State) String() string {
	if s == Settling {
		return "settling"
	}
	return "idle"
}

// Change describes an active item transition.
type Change struct {
	From  string
	To    string
	Index int
}

// Scroller is the view that renders the pages. ScrollToIndex returns
// domain.ErrViewNotMeasured when it has no layout yet.
type Scroller interface {
	ScrollToIndex(index int, animated bool) error
}

// VideoResolvedMsg carries the result of a deep-link fetch.
type VideoResolvedMsg struct {
	ID    string
	Video domain.Video
	Err   error
}

type settleMsg struct{ seq int }

type scrollRetryMsg struct {
	index int
	seq   int
}

// Tracker holds the loaded items and the active id. It must be used from
// the event loop only.
type Tracker struct {
	view   Scroller
	videos app.VideoService
	logger *slog.Logger

	items      []domain.Video
	pageHeight float64
	offset     float64
	active     string
	state      State

	scrollSeq int
	jumpSeq   int
	resolving map[string]bool
}

// Option configures the Tracker.
type Option func(*Tracker)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// New creates a Tracker with a page height of one unit.
func New(view Scroller, videos app.VideoService, opts ...Option) *Tracker {
	t := &Tracker{
		view:       view,
		videos:     videos,
		logger:     slog.Default(),
		pageHeight: 1,
		resolving:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) Items() []domain.Video { return t.items }
func (t *Tracker) Active() string        { return t.active }
func (t *Tracker) Offset() float64       { return t.offset }
func (t *Tracker) State() State          { return t.state }

// ActiveIndex returns the index of the active item, or -1.
func (t *Tracker) ActiveIndex() int {
	return t.IndexOf(t.active)
}

// IndexOf returns the index of id in the loaded items, or -1.
func (t *Tracker) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, v := range t.items {
		if v.ID == id {
			return i
		}
	}
	return -1
}

// ActiveVideo returns the active item.
func (t *Tracker) ActiveVideo() (domain.Video, bool) {
	if i := t.ActiveIndex(); i >= 0 {
		return t.items[i], true
	}
	return domain.Video{}, false
}

// SetPageHeight sets the height of one page in offset units and keeps the
// offset on the active page.
func (t *Tracker) SetPageHeight(h float64) {
	if h <= 0 {
		h = 1
	}
	t.pageHeight = h
	if i := t.ActiveIndex(); i >= 0 {
		t.offset = float64(i) * h
	}
}

// SetItems replaces the loaded items. The active id is kept when it is
// still present, otherwise the first item becomes active.
func (t *Tracker) SetItems(items []domain.Video) (Change, bool) {
	t.items = items
	t.state = Idle
	index := t.IndexOf(t.active)
	if index < 0 {
		index = 0
	}
	if len(items) == 0 {
		t.offset = 0
		return t.activate("", 0)
	}
	t.offset = float64(index) * t.pageHeight
	return t.activate(items[index].ID, index)
}

// Scroll records a continuous offset and returns the command that settles
// it once it stops moving.
func (t *Tracker) Scroll(offset float64) tea.Cmd {
	t.offset = t.clampOffset(offset)
	t.state = Settling
	t.scrollSeq++
	seq := t.scrollSeq
	return tea.Tick(SettleDelay, func(time.Time) tea.Msg { return settleMsg{seq: seq} })
}

// Settle resolves offset to a page and activates it. No change is reported
// when the page holds the active item already.
func (t *Tracker) Settle(offset float64) (Change, bool) {
	t.state = Idle
	if len(t.items) == 0 {
		return Change{}, false
	}
	index := int(math.Round(offset / t.pageHeight))
	index = max(0, min(index, len(t.items)-1))
	t.offset = float64(index) * t.pageHeight
	return t.activate(t.items[index].ID, index)
}

// Step settles one page up or down from the current offset.
func (t *Tracker) Step(delta int) (Change, bool) {
	t.scrollSeq++
	return t.Settle(t.offset + float64(delta)*t.pageHeight)
}

// Navigate makes id active. A loaded id is jumped to directly; otherwise the
// video is fetched and prepended when the returned command resolves.
func (t *Tracker) Navigate(id string) (Change, bool, tea.Cmd) {
	if id == "" {
		return Change{}, false, nil
	}
	if index := t.IndexOf(id); index >= 0 {
		ch, ok := t.activate(id, index)
		return ch, ok, t.jump(index)
	}
	if t.resolving[id] {
		return Change{}, false, nil
	}
	t.resolving[id] = true
	svc := t.videos
	return Change{}, false, func() tea.Msg {
		v, _, err := svc.Video(context.Background(), id, 0)
		return VideoResolvedMsg{ID: id, Video: v, Err: err}
	}
}

// Update handles the tracker's own messages. ok reports an active change.
func (t *Tracker) Update(msg tea.Msg) (Change, bool, tea.Cmd) {
	switch msg := msg.(type) {
	case settleMsg:
		if msg.seq != t.scrollSeq || t.state != Settling {
			return Change{}, false, nil
		}
		ch, ok := t.Settle(t.offset)
		return ch, ok, nil

	case VideoResolvedMsg:
		delete(t.resolving, msg.ID)
		if msg.Err != nil {
			t.logger.Warn("tracker: deep link unresolved", "video", msg.ID, "err", msg.Err)
			return Change{}, false, nil
		}
		if index := t.IndexOf(msg.ID); index >= 0 {
			ch, ok := t.activate(msg.ID, index)
			return ch, ok, t.jump(index)
		}
		v := msg.Video
		if v.ID == "" {
			v.ID = msg.ID
		}
		t.items = append([]domain.Video{v}, t.items...)
		ch, ok := t.activate(v.ID, 0)
		return ch, ok, t.jump(0)

	case scrollRetryMsg:
		if msg.seq != t.jumpSeq {
			return Change{}, false, nil
		}
		if err := t.view.ScrollToIndex(msg.index, false); err != nil {
			t.logger.Warn("tracker: scroll to index failed", "index", msg.index, "err", err)
		}
		return Change{}, false, nil
	}
	return Change{}, false, nil
}

// jump moves the logical position to index and asks the view to follow,
// retrying once when the view is not ready.
func (t *Tracker) jump(index int) tea.Cmd {
	t.state = Idle
	t.scrollSeq++
	t.offset = float64(index) * t.pageHeight
	t.jumpSeq++
	if t.view == nil {
		return nil
	}
	if err := t.view.ScrollToIndex(index, false); err != nil {
		t.logger.Debug("tracker: scroll to index deferred", "index", index, "err", err)
		seq := t.jumpSeq
		return tea.Tick(ScrollRetryDelay, func(time.Time) tea.Msg {
			return scrollRetryMsg{index: index, seq: seq}
		})
	}
	return nil
}

func (t *Tracker) activate(id string, index int) (Change, bool) {
	if id == t.active {
		return Change{}, false
	}
	ch := Change{From: t.active, To: id, Index: index}
	t.active = id
	return ch, true
}

func (t *Tracker) clampOffset(offset float64) float64 {
	limit := float64(max(len(t.items)-1, 0)) * t.pageHeight
	return math.Max(0, math.Min(offset, limit))
}
