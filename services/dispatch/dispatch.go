package dispatch

import (
	"context"
	"fmt"
	"time"

	"helper/models"
	"helper/services/notification"

	"go.uber.org/zap"

	dispatchRepo "helper/database/repository/dispatch"
	inboxRepo "helper/database/repository/inbox"
	missionRepo "helper/database/repository/mission"
	providerRepo "helper/database/repository/provider"
)

const (
	// maxAttempts bounds the zero-candidate expansion: one initial pass and
	// one redispatch with a doubled radius, then the log is the signal.
	maxAttempts = 2
	retryDelay  = 2 * time.Minute
)

// Dispatcher fans a searching mission out to candidate providers and runs
// the claim protocol.
type Dispatcher struct {
	Missions  missionRepo.Repository
	Providers providerRepo.Repository
	Inbox     inboxRepo.Repository
	Log       dispatchRepo.Repository
	Policy    CandidatePolicy
	Notifier  notification.Service
	Queue     TaskEnqueuer
	Logger    *zap.Logger
}

// Dispatch runs one fan-out pass for a mission. It is safe under
// at-least-once delivery: inbox writes are keyed upserts and the audit log
// accumulates attempts.
func (d *Dispatcher) Dispatch(ctx context.Context, missionID string, attempt int, radiusKm float64) error {
	m, err := d.Missions.GetByID(ctx, missionID)
	if err == missionRepo.ErrNotFound {
		d.Logger.Warn("dispatch for unknown mission", zap.String("missionId", missionID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load mission %s: %w", missionID, err)
	}

	// Guard: only searching missions are dispatchable. Every other status
	// (pending_payment, assigned, terminal) is a silent no-op.
	if m.Status != models.StatusSearching {
		d.Logger.Debug("dispatch skipped, mission not searching",
			zap.String("missionId", missionID),
			zap.String("status", string(m.Status)),
		)
		return nil
	}

	candidates, err := d.Policy.Candidates(ctx, m, radiusKm)
	if err != nil {
		return fmt.Errorf("candidate selection failed for mission %s: %w", missionID, err)
	}

	logEntry := models.DispatchAttempt{
		At:          time.Now().UTC(),
		TargetCount: len(candidates),
		Policy:      d.Policy.Name(),
		RadiusKm:    radiusKm,
	}

	if len(candidates) == 0 {
		if err := d.Log.AppendAttempt(ctx, missionID, logEntry); err != nil {
			return fmt.Errorf("failed to log empty dispatch: %w", err)
		}
		return d.scheduleRedispatch(m, attempt, radiusKm)
	}

	entries := make([]models.InboxEntry, 0, len(candidates))
	for _, c := range candidates {
		entries = append(entries, models.InboxEntry{
			ProviderID:  c.Provider.ID,
			MissionID:   m.ID,
			ServiceName: m.ServiceName,
			Address:     m.Address,
			ScheduledAt: m.ScheduledAt,
			Payout:      m.ProviderPayout,
			DistanceKm:  c.DistanceKm,
			Status:      models.InboxPending,
		})
	}
	if err := d.Inbox.UpsertBatch(ctx, entries); err != nil {
		return fmt.Errorf("inbox fan-out failed for mission %s: %w", missionID, err)
	}
	if err := d.Log.AppendAttempt(ctx, missionID, logEntry); err != nil {
		return fmt.Errorf("failed to log dispatch: %w", err)
	}

	d.notifyCandidates(ctx, m, candidates)

	d.Logger.Info("mission dispatched",
		zap.String("missionId", missionID),
		zap.Int("targetCount", len(candidates)),
		zap.String("policy", d.Policy.Name()),
		zap.Int("attempt", attempt),
	)
	return nil
}

// scheduleRedispatch queues one expanded retry after an empty pass. After
// the final attempt the mission stays in searching; the dispatch log is the
// operator's signal.
func (d *Dispatcher) scheduleRedispatch(m *models.Mission, attempt int, radiusKm float64) error {
	if attempt >= maxAttempts {
		d.Logger.Warn("dispatch exhausted with no candidates",
			zap.String("missionId", m.ID),
			zap.Int("attempts", attempt),
		)
		return nil
	}

	next := radiusKm * 2
	if next <= 0 {
		if rp, ok := d.Policy.(*RadiusPolicy); ok {
			next = rp.DefaultRadiusKm * 2
		}
	}
	task, opts, err := NewRetryTask(m.ID, attempt+1, next, retryDelay)
	if err != nil {
		return fmt.Errorf("failed to build retry task: %w", err)
	}
	if _, err := d.Queue.Enqueue(task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue redispatch: %w", err)
	}
	d.Logger.Info("redispatch scheduled",
		zap.String("missionId", m.ID),
		zap.Float64("radiusKm", next),
	)
	return nil
}

// notifyCandidates pushes the offer to each candidate. Pushes are
// best-effort; a failed push never fails the dispatch.
func (d *Dispatcher) notifyCandidates(ctx context.Context, m *models.Mission, candidates []Candidate) {
	if d.Notifier == nil {
		return
	}
	data := map[string]string{
		"missionId": m.ID,
		"type":      "new_offer",
	}
	for _, c := range candidates {
		err := d.Notifier.SendProviderPush(ctx, c.Provider.ID,
			"Nouvelle mission", fmt.Sprintf("%s — %.0f XOF", m.ServiceName, m.ProviderPayout), data)
		if err != nil {
			d.Logger.Warn("push to candidate failed",
				zap.String("providerId", c.Provider.ID),
				zap.String("missionId", m.ID),
				zap.Error(err),
			)
		}
	}
}
