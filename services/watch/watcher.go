// Package watch follows a mission's lifecycle for one caller. Providers
// follow their inbox entry, clients the booking document. The defining rule
// is that a permission-denied from the data layer is terminal: the watcher
// tears down and never resubscribes, so an unauthorized caller cannot cause
// a retry storm against a document they will never be allowed to read.
package watch

import (
	"context"
	"errors"
	"sync"

	"helper/models"

	"go.uber.org/zap"
)

// ErrPermissionDenied is the error class that moves a watcher to Forbidden.
var ErrPermissionDenied = errors.New("watch: permission denied")

// State of a watcher. Forbidden and Closed are terminal; there is no
// transition out of Forbidden.
type State int

const (
	StateConnecting State = iota
	StateLive
	StateForbidden
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateLive:
		return "live"
	case StateForbidden:
		return "forbidden"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the watcher will never emit again.
func (s State) Terminal() bool {
	return s == StateForbidden || s == StateClosed
}

// Event is one delivery from a live source: either a view snapshot or an
// error.
type Event struct {
	View *models.MissionView
	Err  error
}

// Source is a live subscription to one mission view.
type Source interface {
	Events() <-chan Event
	Close()
}

// Opener authorizes the caller and opens a live source for the role-routed
// document. Open returns ErrPermissionDenied when the caller is not allowed
// to read the view.
type Opener interface {
	Open(ctx context.Context, callerID, role, missionID string) (Source, error)
}

// Watcher drives a single subscription through the
// Connecting → Live → {Forbidden, Closed} machine.
type Watcher struct {
	opener Opener
	logger *zap.Logger

	mu    sync.Mutex
	state State

	updates chan *models.MissionView
	done    chan struct{}
	stop    sync.Once
}

func NewWatcher(opener Opener, logger *zap.Logger) *Watcher {
	return &Watcher{
		opener:  opener,
		logger:  logger,
		state:   StateConnecting,
		updates: make(chan *models.MissionView, 8),
		done:    make(chan struct{}),
	}
}

// State returns the current machine state.
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Updates delivers view snapshots while the watcher is Live. The channel is
// closed when the watcher reaches a terminal state.
func (w *Watcher) Updates() <-chan *models.MissionView {
	return w.updates
}

// Stop closes the watcher. A watcher already in Forbidden stays Forbidden.
func (w *Watcher) Stop() {
	w.stop.Do(func() { close(w.done) })
}

// setState applies a transition unless the watcher is already terminal.
func (w *Watcher) setState(next State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Terminal() {
		return
	}
	w.state = next
}

// Run blocks until the watcher reaches a terminal state. It opens exactly
// one source; it never reopens after an error.
func (w *Watcher) Run(ctx context.Context, callerID, role, missionID string) error {
	defer close(w.updates)

	src, err := w.opener.Open(ctx, callerID, role, missionID)
	if err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			w.setState(StateForbidden)
			w.logger.Warn("watch forbidden",
				zap.String("missionId", missionID),
				zap.String("callerId", callerID),
			)
			return err
		}
		w.setState(StateClosed)
		return err
	}
	defer src.Close()

	for {
		select {
		case <-ctx.Done():
			w.setState(StateClosed)
			return nil
		case <-w.done:
			w.setState(StateClosed)
			return nil
		case ev, ok := <-src.Events():
			if !ok {
				w.setState(StateClosed)
				return nil
			}
			if ev.Err != nil {
				if errors.Is(ev.Err, ErrPermissionDenied) {
					w.setState(StateForbidden)
					w.logger.Warn("watch revoked mid-stream", zap.String("missionId", missionID))
					return ev.Err
				}
				w.setState(StateClosed)
				return ev.Err
			}
			w.setState(StateLive)
			select {
			case w.updates <- ev.View:
			case <-ctx.Done():
				w.setState(StateClosed)
				return nil
			case <-w.done:
				w.setState(StateClosed)
				return nil
			}
		}
	}
}
