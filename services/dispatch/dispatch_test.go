package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	inboxRepo "helper/database/repository/inbox"
	missionRepo "helper/database/repository/mission"
	providerRepo "helper/database/repository/provider"
	"helper/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type memMissionRepo struct {
	missionRepo.Repository

	mu       sync.Mutex
	missions map[string]*models.Mission
}

func newMemMissionRepo(missions ...*models.Mission) *memMissionRepo {
	r := &memMissionRepo{missions: make(map[string]*models.Mission)}
	for _, m := range missions {
		r.missions[m.ID] = m
	}
	return r
}

func (r *memMissionRepo) GetByID(ctx context.Context, id string) (*models.Mission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.missions[id]
	if !ok {
		return nil, missionRepo.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *memMissionRepo) Claim(ctx context.Context, missionID string, snap models.ProviderSnapshot) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.missions[missionID]
	if !ok || m.Status != models.StatusSearching || m.Provider != nil {
		return false, nil
	}
	s := snap
	m.Provider = &s
	m.Status = models.StatusAssigned
	return true, nil
}

type memInboxRepo struct {
	inboxRepo.Repository

	mu      sync.Mutex
	entries map[string]*models.InboxEntry // providerID + "/" + missionID
	batches int
}

func newMemInboxRepo() *memInboxRepo {
	return &memInboxRepo{entries: make(map[string]*models.InboxEntry)}
}

func inboxKey(providerID, missionID string) string { return providerID + "/" + missionID }

func (r *memInboxRepo) UpsertBatch(ctx context.Context, entries []models.InboxEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches++
	for i := range entries {
		e := entries[i]
		key := inboxKey(e.ProviderID, e.MissionID)
		if existing, ok := r.entries[key]; ok {
			// Keyed upsert never resets an already-answered offer.
			e.Status = existing.Status
		}
		r.entries[key] = &e
	}
	return nil
}

func (r *memInboxRepo) Get(ctx context.Context, providerID, missionID string) (*models.InboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[inboxKey(providerID, missionID)]
	if !ok {
		return nil, inboxRepo.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *memInboxRepo) SetStatus(ctx context.Context, providerID, missionID string, status models.InboxStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[inboxKey(providerID, missionID)]
	if !ok {
		return inboxRepo.ErrNotFound
	}
	e.Status = status
	return nil
}

func (r *memInboxRepo) ExpirePending(ctx context.Context, missionID, exceptProviderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.MissionID == missionID && e.ProviderID != exceptProviderID && e.Status == models.InboxPending {
			e.Status = models.InboxExpired
		}
	}
	return nil
}

func (r *memInboxRepo) statuses(missionID string) map[string]models.InboxStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]models.InboxStatus)
	for _, e := range r.entries {
		if e.MissionID == missionID {
			out[e.ProviderID] = e.Status
		}
	}
	return out
}

type memProviderRepo struct {
	providerRepo.Repository

	providers []models.Provider
}

func (r *memProviderRepo) GetByID(ctx context.Context, id string) (*models.Provider, error) {
	for i := range r.providers {
		if r.providers[i].ID == id {
			cp := r.providers[i]
			return &cp, nil
		}
	}
	return nil, providerRepo.ErrNotFound
}

func (r *memProviderRepo) ActiveWithinRadius(ctx context.Context, center models.GeoPoint, radiusKm float64, categoryID string) ([]models.Provider, error) {
	var out []models.Provider
	for _, p := range r.providers {
		if p.Status != models.ProviderActive {
			continue
		}
		d := Haversine(center.Lat(), center.Lon(), p.LocationGeo.Lat(), p.LocationGeo.Lon())
		if d <= radiusKm {
			out = append(out, p)
		}
	}
	return out, nil
}

type memDispatchLog struct {
	mu       sync.Mutex
	attempts map[string][]models.DispatchAttempt
}

func newMemDispatchLog() *memDispatchLog {
	return &memDispatchLog{attempts: make(map[string][]models.DispatchAttempt)}
}

func (l *memDispatchLog) AppendAttempt(ctx context.Context, missionID string, attempt models.DispatchAttempt) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts[missionID] = append(l.attempts[missionID], attempt)
	return nil
}

func (l *memDispatchLog) Get(ctx context.Context, missionID string) (*models.DispatchLog, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return &models.DispatchLog{MissionID: missionID, Attempts: l.attempts[missionID]}, nil
}

type memQueue struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (q *memQueue) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func (q *memQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

func testProvider(id string, lon, lat float64) models.Provider {
	return models.Provider{
		ID:                id,
		Name:              "Provider " + id,
		Status:            models.ProviderActive,
		ServiceCategories: []string{"cat_plumbing"},
		LocationGeo:       models.NewGeoPoint(lon, lat),
	}
}

func searchingMission(id string) *models.Mission {
	loc := models.NewGeoPoint(-4.02, 5.33)
	return &models.Mission{
		ID:                id,
		ClientID:          "client-1",
		ServiceCategoryID: "cat_plumbing",
		ServiceName:       "Plomberie",
		Status:            models.StatusSearching,
		ScheduledAt:       time.Now().Add(24 * time.Hour),
		TotalAmount:       20000,
		ProviderPayout:    15000,
		LocationGeo:       &loc,
	}
}

func newTestDispatcher(m *memMissionRepo, providers *memProviderRepo, inbox *memInboxRepo, log *memDispatchLog, queue *memQueue) *Dispatcher {
	return &Dispatcher{
		Missions:  m,
		Providers: providers,
		Inbox:     inbox,
		Log:       log,
		Policy:    &RadiusPolicy{Providers: providers, DefaultRadiusKm: 7},
		Queue:     queue,
		Logger:    zap.NewNop(),
	}
}

func TestDispatchFansOutToNearbyProviders(t *testing.T) {
	missions := newMemMissionRepo(searchingMission("m-1"))
	providers := &memProviderRepo{providers: []models.Provider{
		testProvider("p-near", -4.02, 5.33),
		testProvider("p-close", -4.03, 5.34),
		testProvider("p-far", -3.50, 5.90),
	}}
	inbox := newMemInboxRepo()
	log := newMemDispatchLog()
	queue := &memQueue{}
	d := newTestDispatcher(missions, providers, inbox, log, queue)

	if err := d.Dispatch(context.Background(), "m-1", 1, 0); err != nil {
		t.Fatalf("Dispatch = %v, want nil", err)
	}

	statuses := inbox.statuses("m-1")
	if len(statuses) != 2 {
		t.Fatalf("inbox entries = %d, want 2 (far provider excluded)", len(statuses))
	}
	for id, st := range statuses {
		if st != models.InboxPending {
			t.Errorf("entry %s status = %q, want pending", id, st)
		}
	}

	rec, _ := log.Get(context.Background(), "m-1")
	if len(rec.Attempts) != 1 {
		t.Fatalf("log attempts = %d, want 1", len(rec.Attempts))
	}
	if rec.Attempts[0].TargetCount != 2 || rec.Attempts[0].Policy != "radius" {
		t.Fatalf("log attempt = %+v, want targetCount 2 policy radius", rec.Attempts[0])
	}
	if queue.count() != 0 {
		t.Fatalf("queued %d retries after a successful pass, want 0", queue.count())
	}
}

func TestDispatchNoOpForNonSearchingStatuses(t *testing.T) {
	for _, status := range []models.MissionStatus{
		models.StatusPendingPayment,
		models.StatusAssigned,
		models.StatusInProgress,
		models.StatusCompleted,
		models.StatusCancelled,
	} {
		t.Run(string(status), func(t *testing.T) {
			m := searchingMission("m-guard")
			m.Status = status
			missions := newMemMissionRepo(m)
			providers := &memProviderRepo{providers: []models.Provider{testProvider("p-1", -4.02, 5.33)}}
			inbox := newMemInboxRepo()
			log := newMemDispatchLog()
			d := newTestDispatcher(missions, providers, inbox, log, &memQueue{})

			if err := d.Dispatch(context.Background(), "m-guard", 1, 0); err != nil {
				t.Fatalf("Dispatch = %v, want nil", err)
			}
			if got := len(inbox.statuses("m-guard")); got != 0 {
				t.Fatalf("inbox entries = %d, want 0", got)
			}
			rec, _ := log.Get(context.Background(), "m-guard")
			if len(rec.Attempts) != 0 {
				t.Fatalf("log attempts = %d, want 0", len(rec.Attempts))
			}
		})
	}
}

func TestDispatchUnknownMissionIsSilent(t *testing.T) {
	d := newTestDispatcher(newMemMissionRepo(), &memProviderRepo{}, newMemInboxRepo(), newMemDispatchLog(), &memQueue{})
	if err := d.Dispatch(context.Background(), "ghost", 1, 0); err != nil {
		t.Fatalf("Dispatch = %v, want nil", err)
	}
}

func TestDispatchZeroCandidatesSchedulesOneExpandedRetry(t *testing.T) {
	missions := newMemMissionRepo(searchingMission("m-empty"))
	providers := &memProviderRepo{} // nobody registered
	inbox := newMemInboxRepo()
	log := newMemDispatchLog()
	queue := &memQueue{}
	d := newTestDispatcher(missions, providers, inbox, log, queue)

	if err := d.Dispatch(context.Background(), "m-empty", 1, 0); err != nil {
		t.Fatalf("Dispatch = %v, want nil", err)
	}
	rec, _ := log.Get(context.Background(), "m-empty")
	if len(rec.Attempts) != 1 || rec.Attempts[0].TargetCount != 0 {
		t.Fatalf("log = %+v, want one zero-target attempt", rec.Attempts)
	}
	if queue.count() != 1 {
		t.Fatalf("queued %d retries, want 1", queue.count())
	}

	// The final attempt gives up instead of queueing forever.
	if err := d.Dispatch(context.Background(), "m-empty", 2, 14); err != nil {
		t.Fatalf("Dispatch = %v, want nil", err)
	}
	if queue.count() != 1 {
		t.Fatalf("queued %d retries after final attempt, want still 1", queue.count())
	}
}

func TestDispatchRedeliveryKeepsAnsweredOffers(t *testing.T) {
	missions := newMemMissionRepo(searchingMission("m-re"))
	providers := &memProviderRepo{providers: []models.Provider{testProvider("p-1", -4.02, 5.33)}}
	inbox := newMemInboxRepo()
	d := newTestDispatcher(missions, providers, inbox, newMemDispatchLog(), &memQueue{})

	if err := d.Dispatch(context.Background(), "m-re", 1, 0); err != nil {
		t.Fatalf("first Dispatch = %v", err)
	}
	if err := inbox.SetStatus(context.Background(), "p-1", "m-re", models.InboxDeclined); err != nil {
		t.Fatal(err)
	}
	if err := d.Dispatch(context.Background(), "m-re", 1, 0); err != nil {
		t.Fatalf("second Dispatch = %v", err)
	}
	if st := inbox.statuses("m-re")["p-1"]; st != models.InboxDeclined {
		t.Fatalf("re-delivered dispatch reset offer status to %q", st)
	}
}
