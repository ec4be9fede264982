package mission

import (
	"context"

	"helper/models"
	"helper/services/dispatch"

	"go.uber.org/zap"

	inboxRepo "helper/database/repository/inbox"
	missionRepo "helper/database/repository/mission"
	providerRepo "helper/database/repository/provider"
)

// Service is the mission factory and lifecycle API.
type Service interface {
	// Create validates and normalizes a booking payload, prices it
	// server-side, persists it to both mission views and, for cash
	// missions, hands it straight to dispatch.
	Create(ctx context.Context, clientID string, in models.MissionInput) (*models.CreateMissionResult, error)

	// Get returns the role-routed view of a mission: providers read their
	// inbox entry, clients their booking document.
	Get(ctx context.Context, callerID, role, missionID string) (*models.MissionView, error)

	// Cancel moves a non-terminal mission to cancelled. Clients may only
	// cancel their own missions.
	Cancel(ctx context.Context, clientID, missionID string) error

	// Start and Complete are called by the assigned provider.
	Start(ctx context.Context, providerID, missionID string) error
	Complete(ctx context.Context, providerID, missionID string) error
}

// DefaultMissionService implements Service.
type DefaultMissionService struct {
	Repo      missionRepo.Repository
	Inbox     inboxRepo.Repository
	Providers providerRepo.Repository
	Queue     dispatch.TaskEnqueuer
	Logger    *zap.Logger
}
