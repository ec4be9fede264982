// Package payment handles card payment intents and the processor's webhook.
package payment

import (
	"context"
	"errors"
	"fmt"

	missionRepo "helper/database/repository/mission"
	"helper/models"
	"helper/services/dispatch"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

var (
	// ErrMissionNotPayable means the mission has no pending card payment.
	ErrMissionNotPayable = errors.New("mission has no pending payment")
)

// Service covers the card payment flow: intent creation before the client
// pays, and webhook settlement after.
type Service interface {
	CreateIntent(ctx context.Context, clientID string, req models.PaymentIntentRequest) (*models.PaymentIntentResponse, error)
	HandleWebhook(ctx context.Context, hook models.PaymentWebhook) error
}

// DefaultPaymentService settles payments against the mission repository and
// hands settled missions to dispatch.
type DefaultPaymentService struct {
	Missions missionRepo.Repository
	Queue    dispatch.TaskEnqueuer
	Logger   *zap.Logger
}

func NewPaymentService(missions missionRepo.Repository, queue dispatch.TaskEnqueuer, logger *zap.Logger) *DefaultPaymentService {
	return &DefaultPaymentService{Missions: missions, Queue: queue, Logger: logger}
}

// CreateIntent opens a Stripe payment intent for a mission awaiting card
// payment and attaches the transaction reference to the mission so the
// webhook can find it later.
func (s *DefaultPaymentService) CreateIntent(ctx context.Context, clientID string, req models.PaymentIntentRequest) (*models.PaymentIntentResponse, error) {
	m, err := s.Missions.GetByID(ctx, req.MissionID)
	if err != nil {
		if errors.Is(err, missionRepo.ErrNotFound) {
			return nil, missionRepo.ErrNotFound
		}
		return nil, fmt.Errorf("load mission: %w", err)
	}
	if m.ClientID != clientID {
		return nil, missionRepo.ErrNotFound
	}
	if m.Status != models.StatusPendingPayment {
		return nil, ErrMissionNotPayable
	}

	// XOF has no minor unit; amounts go to Stripe as whole francs.
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(m.TotalAmount)),
		Currency: stripe.String(string(stripe.CurrencyXOF)),
		Metadata: map[string]string{"missionId": m.ID},
	}
	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	if err := s.Missions.SetTransactionID(ctx, m.ID, intent.ID); err != nil {
		return nil, fmt.Errorf("attach transaction: %w", err)
	}

	s.Logger.Info("payment intent created",
		zap.String("missionId", m.ID),
		zap.String("transactionId", intent.ID),
	)
	return &models.PaymentIntentResponse{
		MissionID:    m.ID,
		Amount:       m.TotalAmount,
		Currency:     "xof",
		ClientSecret: intent.ClientSecret,
	}, nil
}

// HandleWebhook settles a successful payment. The processor delivers
// at-least-once, so the success path is a conditional flip of
// pending_payment → searching keyed by transaction id: the first delivery
// applies it and enqueues dispatch, every re-delivery finds the transition
// already done and returns without side effects.
func (s *DefaultPaymentService) HandleWebhook(ctx context.Context, hook models.PaymentWebhook) error {
	if hook.Status != models.WebhookSuccess {
		s.Logger.Info("ignoring non-success webhook",
			zap.String("transactionId", hook.TransactionID),
			zap.String("status", hook.Status),
		)
		return nil
	}

	m, applied, err := s.Missions.MarkPaid(ctx, hook.TransactionID)
	if err != nil {
		return fmt.Errorf("mark paid: %w", err)
	}
	if !applied {
		s.Logger.Info("webhook already applied", zap.String("transactionId", hook.TransactionID))
		return nil
	}

	task, err := dispatch.NewFanoutTask(m.ID)
	if err != nil {
		return fmt.Errorf("build dispatch task: %w", err)
	}
	if _, err := s.Queue.Enqueue(task); err != nil {
		// Payment is settled either way; dispatch can be replayed.
		s.Logger.Error("enqueue dispatch after payment",
			zap.String("missionId", m.ID),
			zap.Error(err),
		)
		return nil
	}

	s.Logger.Info("payment settled, dispatch queued",
		zap.String("missionId", m.ID),
		zap.String("transactionId", hook.TransactionID),
	)
	return nil
}
