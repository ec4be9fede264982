package dispatch

import (
	"context"
	"fmt"

	"helper/models"

	"go.uber.org/zap"

	inboxRepo "helper/database/repository/inbox"
)

// Accept claims the mission for the provider. First successful claim wins:
// the underlying write is a compare-and-swap on provider == null, so under
// concurrent accepts exactly one provider ends up assigned and everyone
// else receives ErrAlreadyAssigned.
func (d *Dispatcher) Accept(ctx context.Context, providerID, missionID string) (*models.Mission, error) {
	entry, err := d.Inbox.Get(ctx, providerID, missionID)
	if err == inboxRepo.ErrNotFound {
		return nil, ErrNoOffer
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load inbox entry: %w", err)
	}
	if entry.Status != models.InboxPending {
		return nil, ErrNoOffer
	}

	prov, err := d.Providers.GetByID(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load provider: %w", err)
	}

	claimed, err := d.Missions.Claim(ctx, missionID, prov.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("claim failed: %w", err)
	}
	if !claimed {
		// Lost the race (or the mission left searching). Retire the offer.
		if err := d.Inbox.SetStatus(ctx, providerID, missionID, models.InboxExpired); err != nil {
			d.Logger.Warn("failed to expire losing inbox entry",
				zap.String("providerId", providerID),
				zap.String("missionId", missionID),
				zap.Error(err),
			)
		}
		return nil, ErrAlreadyAssigned
	}

	if err := d.Inbox.SetStatus(ctx, providerID, missionID, models.InboxAccepted); err != nil {
		d.Logger.Warn("failed to mark inbox entry accepted",
			zap.String("providerId", providerID), zap.Error(err))
	}
	if err := d.Inbox.ExpirePending(ctx, missionID, providerID); err != nil {
		d.Logger.Warn("failed to expire competing inbox entries",
			zap.String("missionId", missionID), zap.Error(err))
	}

	m, err := d.Missions.GetByID(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload claimed mission: %w", err)
	}

	if d.Notifier != nil {
		data := map[string]string{"missionId": missionID, "type": "assigned"}
		if err := d.Notifier.SendUserPush(ctx, m.ClientID,
			"Prestataire trouvé", fmt.Sprintf("%s a accepté votre mission", prov.Name), data); err != nil {
			d.Logger.Warn("push to client failed", zap.String("missionId", missionID), zap.Error(err))
		}
	}

	d.Logger.Info("mission claimed",
		zap.String("missionId", missionID),
		zap.String("providerId", providerID),
	)
	return m, nil
}

// Decline retires the provider's pending offer. Declining is terminal for
// that provider; the mission keeps searching for everyone else.
func (d *Dispatcher) Decline(ctx context.Context, providerID, missionID string) error {
	entry, err := d.Inbox.Get(ctx, providerID, missionID)
	if err == inboxRepo.ErrNotFound {
		return ErrNoOffer
	}
	if err != nil {
		return fmt.Errorf("failed to load inbox entry: %w", err)
	}
	if entry.Status != models.InboxPending {
		return ErrNoOffer
	}
	if err := d.Inbox.SetStatus(ctx, providerID, missionID, models.InboxDeclined); err != nil {
		return fmt.Errorf("failed to decline offer: %w", err)
	}
	d.Logger.Info("offer declined",
		zap.String("missionId", missionID),
		zap.String("providerId", providerID),
	)
	return nil
}
