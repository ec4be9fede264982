package missionRepo

import (
	"context"
	"errors"

	"helper/models"
)

// ErrNotFound is returned when no mission matches the given id.
var ErrNotFound = errors.New("mission not found")

// Repository persists missions. A mission is materialized in two
// collections: "missions" (live, queried by dispatch) and "bookings"
// (historical, served to clients). Every write goes through this repository
// inside a single transaction so the two views cannot diverge.
type Repository interface {
	// Create inserts the mission into both collections atomically.
	Create(ctx context.Context, m *models.Mission) error

	// GetByID reads from the live collection.
	GetByID(ctx context.Context, id string) (*models.Mission, error)

	// GetBookingByID reads from the historical collection.
	GetBookingByID(ctx context.Context, id string) (*models.Mission, error)

	// Exists / BookingExists report document presence without decoding.
	Exists(ctx context.Context, id string) (bool, error)
	BookingExists(ctx context.Context, id string) (bool, error)

	// UpdateStatus applies a conditional from→to transition to both
	// collections. Returns false when the mission was not in the expected
	// state (including re-deliveries, which therefore no-op).
	UpdateStatus(ctx context.Context, id string, from, to models.MissionStatus) (bool, error)

	// MarkPaid flips the mission matching the transaction id from
	// pending_payment to searching and records the payment. The bool result
	// is false when the transition had already happened.
	MarkPaid(ctx context.Context, transactionID string) (*models.Mission, bool, error)

	// Claim assigns the provider to a still-unassigned searching mission.
	// Compare-and-swap on provider == null: exactly one concurrent caller
	// wins; all others get false.
	Claim(ctx context.Context, missionID string, snap models.ProviderSnapshot) (bool, error)

	// SetTransactionID attaches the payment transaction reference.
	SetTransactionID(ctx context.Context, missionID, transactionID string) error
}
