// Package mutation implements optimistic state changes that are applied
// locally first, sent to the backend as a command, and then either
// reconciled with the authoritative result or reverted.
package mutation

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
)

// SettledMsg reports that the remote half of a mutation resolved.
// The receiver must call Finish from Update so that the revert or
// reconcile step runs on the event loop.
type SettledMsg struct {
	Key string
	Err error

	finish func()
}

// Finish runs the revert (on error) or reconcile (on success) step.
// Calling it more than once has no further effect.
func (m SettledMsg) Finish() {
	if m.finish != nil {
		m.finish()
	}
}

// Mutation describes one optimistic change.
//
// Apply mutates local state and returns a closure restoring the exact prior
// state. Call performs the remote request; a nil Call makes the mutation
// local-only. Reconcile receives the authoritative result on success.
type Mutation[R any] struct {
	Key       string
	Apply     func() (revert func())
	Call      func(ctx context.Context) (R, error)
	Reconcile func(R)
	Logger    *slog.Logger
}

// Start applies the change immediately and returns the command that
// performs the remote call, or nil for a local-only mutation.
func (m Mutation[R]) Start() tea.Cmd {
	revert := m.Apply()
	if m.Call == nil {
		return nil
	}

	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	key, call, reconcile := m.Key, m.Call, m.Reconcile

	return func() tea.Msg {
		res, err := call(context.Background())
		done := false
		return SettledMsg{
			Key: key,
			Err: err,
			finish: func() {
				if done {
					return
				}
				done = true
				if err != nil {
					logger.Warn("mutation: rolled back", "key", key, "err", err)
					if revert != nil {
						revert()
					}
					return
				}
				if reconcile != nil {
					reconcile(res)
				}
			},
		}
	}
}
