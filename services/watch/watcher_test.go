package watch

import (
	"context"
	"errors"
	"testing"
	"time"

	"helper/models"

	"go.uber.org/zap"
)

type fakeSource struct {
	events chan Event
	closed bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{events: make(chan Event, 8)}
}

func (f *fakeSource) Events() <-chan Event { return f.events }
func (f *fakeSource) Close()               { f.closed = true }

type fakeOpener struct {
	src   Source
	err   error
	calls int
}

func (f *fakeOpener) Open(ctx context.Context, callerID, role, missionID string) (Source, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.src, nil
}

func TestWatcherPermissionDeniedOnOpenIsTerminal(t *testing.T) {
	opener := &fakeOpener{err: ErrPermissionDenied}
	w := NewWatcher(opener, zap.NewNop())

	err := w.Run(context.Background(), "client-1", models.RoleClient, "m-1")
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("Run error = %v, want ErrPermissionDenied", err)
	}
	if got := w.State(); got != StateForbidden {
		t.Fatalf("state = %v, want forbidden", got)
	}
	if opener.calls != 1 {
		t.Fatalf("opener called %d times, want exactly 1", opener.calls)
	}

	// Forbidden sticks even through an explicit stop.
	w.Stop()
	if got := w.State(); got != StateForbidden {
		t.Fatalf("state after Stop = %v, want forbidden", got)
	}
}

func TestWatcherPermissionDeniedMidStreamIsTerminal(t *testing.T) {
	src := newFakeSource()
	opener := &fakeOpener{src: src}
	w := NewWatcher(opener, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background(), "p-1", models.RoleProvider, "m-1") }()

	src.events <- Event{View: &models.MissionView{MissionID: "m-1", Status: "pending"}}
	if view := <-w.Updates(); view.MissionID != "m-1" {
		t.Fatalf("update mission = %q, want m-1", view.MissionID)
	}
	if got := w.State(); got != StateLive {
		t.Fatalf("state = %v, want live", got)
	}

	src.events <- Event{Err: ErrPermissionDenied}
	if err := <-done; !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("Run error = %v, want ErrPermissionDenied", err)
	}
	if got := w.State(); got != StateForbidden {
		t.Fatalf("state = %v, want forbidden", got)
	}
	if opener.calls != 1 {
		t.Fatalf("opener called %d times, want no resubscribe", opener.calls)
	}
}

func TestWatcherDeliversUpdatesAndClosesOnSourceEnd(t *testing.T) {
	src := newFakeSource()
	w := NewWatcher(&fakeOpener{src: src}, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background(), "c-1", models.RoleClient, "m-2") }()

	for _, status := range []string{"searching", "assigned", "completed"} {
		src.events <- Event{View: &models.MissionView{MissionID: "m-2", Status: status}}
		view := <-w.Updates()
		if view.Status != status {
			t.Fatalf("update status = %q, want %q", view.Status, status)
		}
	}

	close(src.events)
	if err := <-done; err != nil {
		t.Fatalf("Run error = %v, want nil", err)
	}
	if got := w.State(); got != StateClosed {
		t.Fatalf("state = %v, want closed", got)
	}
	if _, ok := <-w.Updates(); ok {
		t.Fatal("updates channel still open after terminal state")
	}
}

func TestWatcherStopClosesCleanly(t *testing.T) {
	src := newFakeSource()
	w := NewWatcher(&fakeOpener{src: src}, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background(), "c-1", models.RoleClient, "m-3") }()

	w.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
	if got := w.State(); got != StateClosed {
		t.Fatalf("state = %v, want closed", got)
	}
}

func TestStateStringAndTerminal(t *testing.T) {
	cases := []struct {
		state    State
		name     string
		terminal bool
	}{
		{StateConnecting, "connecting", false},
		{StateLive, "live", false},
		{StateForbidden, "forbidden", true},
		{StateClosed, "closed", true},
	}
	for _, tc := range cases {
		if got := tc.state.String(); got != tc.name {
			t.Errorf("String() = %q, want %q", got, tc.name)
		}
		if got := tc.state.Terminal(); got != tc.terminal {
			t.Errorf("%s.Terminal() = %v, want %v", tc.name, got, tc.terminal)
		}
	}
}
