// Package sheet is the comments overlay: a panel that springs open over
// the feed, can be dragged down to dismiss, and carries an input bar that
// slides up with the keyboard.
package sheet

import (
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
)

// State is the overlay lifecycle.
type State int

const (
	Closed State = iota
	Opening
	Open
	Dragging
	Closing
)

func (s State) String() string {
	switch s {
	case Opening:
		return "opening"
	case Open:
		return "open"
	case Dragging:
		return "dragging"
	case Closing:
		return "closing"
	default:
		return "closed"
	}
}

const (
	FPS = 60

	// DragThreshold is the movement in rows before a drag is recognized.
	DragThreshold = 3.0
	// DefaultCloseVelocity is the downward release speed in rows per second
	// that dismisses the sheet.
	DefaultCloseVelocity = 40.0
	// DefaultCloseFraction of the sheet height dragged down dismisses it.
	DefaultCloseFraction = 0.25

	DefaultKeyboardDuration = 200 * time.Millisecond
	MaxKeyboardDuration     = 400 * time.Millisecond

	springFrequency = 9.0
	springDamping   = 1.0
	settleEpsilon   = 0.05
)

var frameInterval = time.Second / FPS

type frameMsg struct{ seq int }

type keyboardFrameMsg struct{ seq int }

// Model holds the overlay state. Offsets run from 0 (fully open) to the
// sheet height (fully closed). It must be used from the event loop only.
type Model struct {
	state      State
	openItemID string
	fetch      func(id string) tea.Cmd

	height   float64
	offset   float64
	velocity float64
	target   float64
	spring   harmonica.Spring
	animSeq  int

	closeVelocity float64
	closeFraction float64

	dragOrigin float64
	dragging   bool

	kbOffset float64
	kbFrom   float64
	kbTo     float64
	kbFrame  int
	kbFrames int
	kbSeq    int
}

// Option configures the Model.
type Option func(*Model)

// WithCloseVelocity sets the dismiss speed in rows per second.
func WithCloseVelocity(v float64) Option {
	return func(m *Model) { m.closeVelocity = v }
}

// WithCloseFraction sets the dismiss distance as a fraction of the height.
func WithCloseFraction(f float64) Option {
	return func(m *Model) { m.closeFraction = f }
}

// New creates a closed sheet of the given height. fetch loads the comment
// thread when the sheet opens and may be nil.
func New(height float64, fetch func(id string) tea.Cmd, opts ...Option) *Model {
	m := &Model{
		fetch:         fetch,
		spring:        harmonica.NewSpring(harmonica.FPS(FPS), springFrequency, springDamping),
		closeVelocity: DefaultCloseVelocity,
		closeFraction: DefaultCloseFraction,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.SetHeight(height)
	return m
}

func (m *Model) State() State            { return m.state }
func (m *Model) OpenItemID() string      { return m.openItemID }
func (m *Model) Offset() float64         { return m.offset }
func (m *Model) Height() float64         { return m.height }
func (m *Model) KeyboardOffset() float64 { return m.kbOffset }
func (m *Model) Visible() bool           { return m.state != Closed }
func (m *Model) Animating() bool         { return m.state == Opening || m.state == Closing || m.offset != m.target }

// VisibleRows returns how many rows of the sheet are on screen.
func (m *Model) VisibleRows() int {
	if m.state == Closed {
		return 0
	}
	return max(int(math.Round(m.height-m.offset)), 0)
}

// SetHeight resizes the sheet, keeping a closed sheet fully closed and an
// open one fully open.
func (m *Model) SetHeight(h float64) {
	h = math.Max(h, 1)
	m.height = h
	switch m.state {
	case Closed:
		m.offset, m.target = h, h
	case Open:
		if !m.dragging {
			m.offset, m.target = 0, 0
		}
	case Closing:
		m.target = h
	}
	m.offset = m.clamp(m.offset)
}

// Open shows the thread of id, fetching it fresh.
func (m *Model) Open(id string) tea.Cmd {
	if id == "" {
		return nil
	}
	if id == m.openItemID && (m.state == Open || m.state == Opening || m.state == Dragging) {
		return nil
	}
	if m.state == Closed {
		m.offset = m.height
		m.velocity = 0
	}
	m.openItemID = id
	m.state = Opening
	m.dragging = false

	var fetch tea.Cmd
	if m.fetch != nil {
		fetch = m.fetch(id)
	}
	return tea.Batch(fetch, m.animateTo(0))
}

// Close dismisses the sheet. OpenItemID is cleared when the animation ends.
func (m *Model) Close() tea.Cmd {
	if m.state == Closed || m.state == Closing {
		return nil
	}
	m.state = Closing
	m.dragging = false
	return m.animateTo(m.height)
}

// BeginDrag starts tracking a gesture from the current offset.
func (m *Model) BeginDrag() {
	if m.state != Open && m.state != Opening {
		return
	}
	m.dragOrigin = m.offset
	m.dragging = false
}

// Drag moves the sheet by dy rows from where the gesture began. Movement
// under DragThreshold is ignored until the gesture is recognized.
func (m *Model) Drag(dy float64) {
	switch m.state {
	case Open, Opening:
		if math.Abs(dy) < DragThreshold {
			return
		}
		m.state = Dragging
		m.dragging = true
		m.animSeq++
		m.velocity = 0
	case Dragging:
	default:
		return
	}
	m.offset = m.clamp(m.dragOrigin + dy)
	m.target = m.offset
}

// Release ends a drag. A fast enough flick or a long enough pull closes
// the sheet; otherwise it springs back open.
func (m *Model) Release(velocity float64) tea.Cmd {
	if m.state != Dragging {
		return nil
	}
	m.dragging = false
	distance := m.offset
	if velocity >= m.closeVelocity || distance >= m.closeFraction*m.height {
		m.state = Closing
		m.velocity = velocity
		return m.animateTo(m.height)
	}
	m.state = Open
	m.velocity = 0
	return m.animateTo(0)
}

// ShowKeyboard slides the input bar above a keyboard of the given height.
func (m *Model) ShowKeyboard(keyboardHeight, bottomInset float64, d time.Duration) tea.Cmd {
	to := 0.0
	if lift := keyboardHeight - bottomInset; lift > 0 {
		to = -lift
	}
	return m.tweenKeyboard(to, d)
}

// HideKeyboard slides the input bar back down.
func (m *Model) HideKeyboard(d time.Duration) tea.Cmd {
	return m.tweenKeyboard(0, d)
}

// Update advances animations. It ignores messages it does not own.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case frameMsg:
		if msg.seq != m.animSeq {
			return nil
		}
		return m.step()
	case keyboardFrameMsg:
		if msg.seq != m.kbSeq {
			return nil
		}
		return m.stepKeyboard()
	}
	return nil
}

func (m *Model) animateTo(target float64) tea.Cmd {
	m.target = target
	m.animSeq++
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	seq := m.animSeq
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return frameMsg{seq: seq} })
}

func (m *Model) step() tea.Cmd {
	m.offset, m.velocity = m.spring.Update(m.offset, m.velocity, m.target)
	m.offset = m.clamp(m.offset)
	if math.Abs(m.offset-m.target) > settleEpsilon || math.Abs(m.velocity) > settleEpsilon {
		return m.tick()
	}

	m.offset, m.velocity = m.target, 0
	switch m.state {
	case Opening:
		m.state = Open
	case Closing:
		m.state = Closed
		m.openItemID = ""
	}
	return nil
}

func (m *Model) tweenKeyboard(to float64, d time.Duration) tea.Cmd {
	if d <= 0 {
		d = DefaultKeyboardDuration
	}
	d = min(d, MaxKeyboardDuration)
	m.kbSeq++
	m.kbFrom = m.kbOffset
	m.kbTo = to
	m.kbFrame = 0
	m.kbFrames = max(int(math.Round(float64(d)/float64(frameInterval))), 1)
	if m.kbFrom == m.kbTo {
		return nil
	}
	return m.keyboardTick()
}

func (m *Model) keyboardTick() tea.Cmd {
	seq := m.kbSeq
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return keyboardFrameMsg{seq: seq} })
}

func (m *Model) stepKeyboard() tea.Cmd {
	m.kbFrame++
	if m.kbFrame >= m.kbFrames {
		m.kbOffset = m.kbTo
		return nil
	}
	p := float64(m.kbFrame) / float64(m.kbFrames)
	eased := 1 - math.Pow(1-p, 3)
	m.kbOffset = m.kbFrom + (m.kbTo-m.kbFrom)*eased
	return m.keyboardTick()
}

func (m *Model) clamp(v float64) float64 {
	return math.Max(0, math.Min(v, m.height))
}
