package mission

import (
	"context"
	"fmt"
	"strings"
	"time"

	"helper/models"
	"helper/services/dispatch"
	"helper/services/pricing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	inboxRepo "helper/database/repository/inbox"
	missionRepo "helper/database/repository/mission"
)

// scheduleLayouts are the accepted timestamp formats, most specific first.
var scheduleLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

const fallbackServiceName = "Service à domicile"

func (s *DefaultMissionService) Create(ctx context.Context, clientID string, in models.MissionInput) (*models.CreateMissionResult, error) {
	if clientID == "" {
		return nil, NewUnauthenticatedError("mission creation requires an authenticated client")
	}

	scheduledAt, err := parseSchedule(in.ScheduledAt, in.ScheduledDateTime)
	if err != nil {
		return nil, NewInvalidInputError(err.Error())
	}

	// Coerce numeric fields defensively rather than rejecting the payload.
	if in.CustomQuantity < 0 {
		in.CustomQuantity = 0
	}
	if in.SurfaceArea < 0 {
		in.SurfaceArea = 0
	}
	if in.TotalAmount < 0 {
		in.TotalAmount = 0
	}

	// The price is always recomputed here; the client preview is advisory.
	quote := pricing.GetPrice(pricing.QuoteRequest{
		CategoryID:     in.ServiceCategoryID,
		VariantKey:     in.VariantKey,
		CustomQuantity: in.CustomQuantity,
		SurfaceArea:    in.SurfaceArea,
		ScheduledAt:    scheduledAt,
	})
	if quote == nil {
		return nil, NewPriceUnavailableError("no price could be resolved for the requested configuration")
	}

	var total, commission, payout float64
	if quote.OnRequest {
		// Quotation missions carry the client-proposed amount until an
		// operator confirms; it defaults to zero.
		total = in.TotalAmount
	} else {
		total = quote.Amount
		commission, _ = pricing.Commission(quote)
		payout, _ = pricing.Payout(quote)
	}

	status := models.StatusPendingPayment
	paymentStatus := models.PaymentInitiated
	if in.PaymentMethod == models.PaymentMethodCash {
		// Cash has no payment gate; the mission is dispatchable immediately.
		status = models.StatusSearching
		paymentStatus = models.PaymentCashPending
	}

	m := &models.Mission{
		ID:                uuid.New().String(),
		ClientID:          clientID,
		ServiceCategoryID: in.ServiceCategoryID,
		ServiceName:       resolveServiceName(in),
		Address:           normalizeAddress(in.Address),
		LocationGeo:       in.Location,
		ScheduledAt:       scheduledAt,
		Status:            status,
		TotalAmount:       total,
		CommissionAmount:  commission,
		ProviderPayout:    payout,
		PriceOnRequest:    quote.OnRequest,
		PaymentMethod:     in.PaymentMethod,
		PaymentStatus:     paymentStatus,
		VariantKey:        in.VariantKey,
		CustomQuantity:    in.CustomQuantity,
		SurfaceArea:       in.SurfaceArea,
		Provider:          nil,
	}

	if err := s.Repo.Create(ctx, m); err != nil {
		s.Logger.Error("failed to persist mission", zap.String("missionId", m.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to create mission: %w", err)
	}

	if status == models.StatusSearching {
		if err := s.enqueueDispatch(m.ID); err != nil {
			// The mission is persisted; dispatch can still be replayed.
			s.Logger.Error("failed to enqueue dispatch", zap.String("missionId", m.ID), zap.Error(err))
		}
	}

	s.Logger.Info("mission created",
		zap.String("missionId", m.ID),
		zap.String("clientId", clientID),
		zap.String("status", string(status)),
		zap.Float64("totalAmount", total),
	)

	return &models.CreateMissionResult{Success: true, MissionID: m.ID, Status: status}, nil
}

func (s *DefaultMissionService) enqueueDispatch(missionID string) error {
	task, err := dispatch.NewFanoutTask(missionID)
	if err != nil {
		return err
	}
	_, err = s.Queue.Enqueue(task)
	return err
}

func (s *DefaultMissionService) Get(ctx context.Context, callerID, role, missionID string) (*models.MissionView, error) {
	if role == models.RoleProvider {
		entry, err := s.Inbox.Get(ctx, callerID, missionID)
		if err == inboxRepo.ErrNotFound {
			return nil, NewForbiddenError("no offer for this mission")
		}
		if err != nil {
			return nil, err
		}
		return &models.MissionView{
			MissionID:   entry.MissionID,
			Status:      string(entry.Status),
			ServiceName: entry.ServiceName,
			ScheduledAt: entry.ScheduledAt,
			Amount:      entry.Payout,
		}, nil
	}

	b, err := s.Repo.GetBookingByID(ctx, missionID)
	if err == missionRepo.ErrNotFound {
		return nil, NewNotFoundError("mission not found")
	}
	if err != nil {
		return nil, err
	}
	if b.ClientID != callerID {
		return nil, NewForbiddenError("mission belongs to another client")
	}
	return b.View(), nil
}

func (s *DefaultMissionService) Cancel(ctx context.Context, clientID, missionID string) error {
	m, err := s.Repo.GetByID(ctx, missionID)
	if err == missionRepo.ErrNotFound {
		return NewNotFoundError("mission not found")
	}
	if err != nil {
		return err
	}
	if m.ClientID != clientID {
		return NewForbiddenError("mission belongs to another client")
	}
	if m.Status.Terminal() {
		return NewConflictError(fmt.Sprintf("mission is already %s", m.Status))
	}

	applied, err := s.Repo.UpdateStatus(ctx, missionID, m.Status, models.StatusCancelled)
	if err != nil {
		return fmt.Errorf("failed to cancel mission: %w", err)
	}
	if !applied {
		return NewConflictError("mission changed state, retry the cancellation")
	}
	if err := s.Inbox.ExpirePending(ctx, missionID, ""); err != nil {
		s.Logger.Warn("failed to expire inbox entries after cancel", zap.String("missionId", missionID), zap.Error(err))
	}
	s.Logger.Info("mission cancelled", zap.String("missionId", missionID))
	return nil
}

func (s *DefaultMissionService) Start(ctx context.Context, providerID, missionID string) error {
	return s.providerTransition(ctx, providerID, missionID, models.StatusAssigned, models.StatusInProgress)
}

func (s *DefaultMissionService) Complete(ctx context.Context, providerID, missionID string) error {
	if err := s.providerTransition(ctx, providerID, missionID, models.StatusInProgress, models.StatusCompleted); err != nil {
		return err
	}
	if err := s.Providers.IncrementCompleted(ctx, providerID); err != nil {
		s.Logger.Warn("failed to increment provider completion count",
			zap.String("providerId", providerID), zap.Error(err))
	}
	return nil
}

func (s *DefaultMissionService) providerTransition(ctx context.Context, providerID, missionID string, from, to models.MissionStatus) error {
	m, err := s.Repo.GetByID(ctx, missionID)
	if err == missionRepo.ErrNotFound {
		return NewNotFoundError("mission not found")
	}
	if err != nil {
		return err
	}
	if m.Provider == nil || m.Provider.ID != providerID {
		return NewForbiddenError("mission is not assigned to this provider")
	}

	applied, err := s.Repo.UpdateStatus(ctx, missionID, from, to)
	if err != nil {
		return fmt.Errorf("failed to move mission to %s: %w", to, err)
	}
	if !applied {
		return NewConflictError(fmt.Sprintf("mission is not in %s", from))
	}
	s.Logger.Info("mission transitioned",
		zap.String("missionId", missionID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return nil
}

// resolveServiceName prefers the catalog name, then the client-supplied
// label, then a generic fallback.
func resolveServiceName(in models.MissionInput) string {
	if c, ok := pricing.CategoryByID(in.ServiceCategoryID); ok {
		return c.Name
	}
	if name := strings.TrimSpace(in.ServiceName); name != "" {
		return name
	}
	return fallbackServiceName
}

// normalizeAddress trims the address and defaults blank input to null.
func normalizeAddress(address string) *string {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// parseSchedule accepts either of the two schedule field names the app has
// historically sent, trying each known layout.
func parseSchedule(scheduledAt, scheduledDateTime string) (time.Time, error) {
	for _, raw := range []string{scheduledAt, scheduledDateTime} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		for _, layout := range scheduleLayouts {
			if ts, err := time.Parse(layout, raw); err == nil {
				return ts, nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("no parsable schedule timestamp in payload")
}
