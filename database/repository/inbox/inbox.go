package inboxRepo

import (
	"context"
	"errors"

	"helper/models"
)

var ErrNotFound = errors.New("inbox entry not found")

// Repository persists provider inbox entries. Entries are keyed by
// (providerId, missionId); UpsertBatch makes the dispatch fan-out idempotent
// under at-least-once delivery.
type Repository interface {
	UpsertBatch(ctx context.Context, entries []models.InboxEntry) error
	Get(ctx context.Context, providerID, missionID string) (*models.InboxEntry, error)
	ListByProvider(ctx context.Context, providerID string, status models.InboxStatus) ([]models.InboxEntry, error)
	SetStatus(ctx context.Context, providerID, missionID string, status models.InboxStatus) error

	// ExpirePending marks every still-pending entry for the mission as
	// expired, except the winning provider's.
	ExpirePending(ctx context.Context, missionID, exceptProviderID string) error
}
