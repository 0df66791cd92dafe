package mutation

import (
	"context"
	"errors"
	"testing"
)

type counter struct {
	on    bool
	count int
}

func toggle(c *counter, call func(ctx context.Context) (int, error)) Mutation[int] {
	return Mutation[int]{
		Key: "toggle",
		Apply: func() func() {
			prev := *c
			c.on = !c.on
			if c.on {
				c.count++
			} else {
				c.count--
			}
			return func() { *c = prev }
		},
		Call:      call,
		Reconcile: func(n int) { c.count = n },
	}
}

func TestStart_AppliesBeforeCall(t *testing.T) {
	c := &counter{count: 10}
	called := false
	cmd := toggle(c, func(ctx context.Context) (int, error) {
		called = true
		return 15, nil
	}).Start()

	if !c.on || c.count != 11 {
		t.Fatalf("expected optimistic state on/11, got %+v", *c)
	}
	if called {
		t.Fatalf("remote call must not run before the command executes")
	}
	if cmd == nil {
		t.Fatalf("expected a command")
	}
}

func TestFinish_ReconcilesOnSuccess(t *testing.T) {
	c := &counter{count: 10}
	cmd := toggle(c, func(ctx context.Context) (int, error) { return 15, nil }).Start()

	msg, ok := cmd().(SettledMsg)
	if !ok {
		t.Fatalf("expected SettledMsg")
	}
	if msg.Key != "toggle" || msg.Err != nil {
		t.Fatalf("unexpected settled msg: %+v", msg)
	}
	msg.Finish()
	if !c.on || c.count != 15 {
		t.Fatalf("expected authoritative 15, got %+v", *c)
	}
}

func TestFinish_RevertsOnFailure(t *testing.T) {
	c := &counter{count: 10}
	cmd := toggle(c, func(ctx context.Context) (int, error) { return 0, errors.New("offline") }).Start()

	msg := cmd().(SettledMsg)
	if msg.Err == nil {
		t.Fatalf("expected error on settled msg")
	}
	msg.Finish()
	if c.on || c.count != 10 {
		t.Fatalf("expected exact rollback to off/10, got %+v", *c)
	}
	msg.Finish()
	if c.on || c.count != 10 {
		t.Fatalf("second Finish must be a no-op, got %+v", *c)
	}
}

func TestStart_LocalOnlyReturnsNil(t *testing.T) {
	c := &counter{}
	if cmd := toggle(c, nil).Start(); cmd != nil {
		t.Fatalf("local-only mutation must not return a command")
	}
	if !c.on {
		t.Fatalf("local-only mutation must still apply")
	}
}

func TestLateResponses_LastResolvedWins(t *testing.T) {
	c := &counter{count: 10}
	like := toggle(c, func(ctx context.Context) (int, error) { return 11, nil }).Start()
	unlike := toggle(c, func(ctx context.Context) (int, error) { return 12, nil }).Start()

	second := unlike().(SettledMsg)
	first := like().(SettledMsg)
	second.Finish()
	first.Finish()

	if c.count != 11 {
		t.Fatalf("expected the last resolved response to win, got %d", c.count)
	}
}
