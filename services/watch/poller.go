package watch

import (
	"context"
	"errors"
	"time"
)

// ErrMissionNotFound means the document never appeared within the poll
// budget.
var ErrMissionNotFound = errors.New("watch: mission not found")

// ExistenceChecker answers whether a mission document is visible yet in
// either collection.
type ExistenceChecker interface {
	Exists(ctx context.Context, missionID string) (bool, error)
	BookingExists(ctx context.Context, missionID string) (bool, error)
}

// Poller waits for a freshly created mission to become readable before a
// subscription is opened. Creation and first read race, so absence right
// after booking is expected; the poller retries with a doubling delay up to
// a hard attempt cap instead of failing on the first miss.
type Poller struct {
	Checker      ExistenceChecker
	InitialDelay time.Duration
	MaxDelay     time.Duration
	MaxAttempts  int

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewPoller(checker ExistenceChecker) *Poller {
	return &Poller{
		Checker:      checker,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     3 * time.Second,
		MaxAttempts:  8,
		sleep:        sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// WaitForMission polls missions first, then bookings, until the document
// shows up. Lookup errors count as a miss and burn an attempt; after
// MaxAttempts the caller gets ErrMissionNotFound rather than an open-ended
// wait.
func (p *Poller) WaitForMission(ctx context.Context, missionID string) error {
	delay := p.InitialDelay
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if ok, err := p.Checker.Exists(ctx, missionID); err == nil && ok {
			return nil
		}
		if ok, err := p.Checker.BookingExists(ctx, missionID); err == nil && ok {
			return nil
		}
		if attempt == p.MaxAttempts {
			break
		}
		if err := p.sleep(ctx, delay); err != nil {
			return err
		}
		delay *= 2
		if delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return ErrMissionNotFound
}
