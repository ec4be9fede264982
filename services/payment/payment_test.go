package payment

import (
	"context"
	"testing"

	missionRepo "helper/database/repository/mission"
	"helper/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type fakeMissionRepo struct {
	missionRepo.Repository

	missions map[string]*models.Mission // keyed by transaction id
	applied  map[string]bool
}

func newFakeMissionRepo() *fakeMissionRepo {
	return &fakeMissionRepo{
		missions: make(map[string]*models.Mission),
		applied:  make(map[string]bool),
	}
}

func (f *fakeMissionRepo) MarkPaid(ctx context.Context, transactionID string) (*models.Mission, bool, error) {
	m, ok := f.missions[transactionID]
	if !ok {
		return nil, false, missionRepo.ErrNotFound
	}
	if f.applied[transactionID] {
		return m, false, nil
	}
	f.applied[transactionID] = true
	m.Status = models.StatusSearching
	m.PaymentStatus = models.PaymentPaid
	return m, true, nil
}

type fakeQueue struct {
	tasks []*asynq.Task
}

func (f *fakeQueue) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func TestWebhookSuccessFlipsMissionAndQueuesDispatch(t *testing.T) {
	repo := newFakeMissionRepo()
	repo.missions["tx-1"] = &models.Mission{
		ID:     "m-1",
		Status: models.StatusPendingPayment,
	}
	queue := &fakeQueue{}
	svc := NewPaymentService(repo, queue, zap.NewNop())

	hook := models.PaymentWebhook{TransactionID: "tx-1", Status: models.WebhookSuccess}
	if err := svc.HandleWebhook(context.Background(), hook); err != nil {
		t.Fatalf("HandleWebhook = %v, want nil", err)
	}
	if got := repo.missions["tx-1"].Status; got != models.StatusSearching {
		t.Fatalf("mission status = %q, want searching", got)
	}
	if len(queue.tasks) != 1 {
		t.Fatalf("enqueued %d tasks, want 1", len(queue.tasks))
	}
}

func TestWebhookRedeliveryIsIdempotent(t *testing.T) {
	repo := newFakeMissionRepo()
	repo.missions["tx-2"] = &models.Mission{
		ID:     "m-2",
		Status: models.StatusPendingPayment,
	}
	queue := &fakeQueue{}
	svc := NewPaymentService(repo, queue, zap.NewNop())

	hook := models.PaymentWebhook{TransactionID: "tx-2", Status: models.WebhookSuccess}
	for i := 0; i < 3; i++ {
		if err := svc.HandleWebhook(context.Background(), hook); err != nil {
			t.Fatalf("delivery %d: HandleWebhook = %v, want nil", i+1, err)
		}
	}
	if len(queue.tasks) != 1 {
		t.Fatalf("enqueued %d tasks across redeliveries, want 1", len(queue.tasks))
	}
}

func TestWebhookIgnoresNonSuccessStatus(t *testing.T) {
	repo := newFakeMissionRepo()
	repo.missions["tx-3"] = &models.Mission{
		ID:     "m-3",
		Status: models.StatusPendingPayment,
	}
	queue := &fakeQueue{}
	svc := NewPaymentService(repo, queue, zap.NewNop())

	hook := models.PaymentWebhook{TransactionID: "tx-3", Status: "FAILED"}
	if err := svc.HandleWebhook(context.Background(), hook); err != nil {
		t.Fatalf("HandleWebhook = %v, want nil", err)
	}
	if got := repo.missions["tx-3"].Status; got != models.StatusPendingPayment {
		t.Fatalf("mission status = %q, want pending_payment untouched", got)
	}
	if len(queue.tasks) != 0 {
		t.Fatalf("enqueued %d tasks for failed payment, want 0", len(queue.tasks))
	}
}
