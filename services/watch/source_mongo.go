package watch

import (
	"context"
	"errors"
	"fmt"

	inboxRepo "helper/database/repository/inbox"
	missionRepo "helper/database/repository/mission"
	"helper/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoOpener authorizes the caller against the role-routed collection and
// opens a change stream on it. Providers follow their own inbox entry;
// clients follow the booking document they created.
type MongoOpener struct {
	db       *mongo.Database
	inbox    inboxRepo.Repository
	missions missionRepo.Repository
	logger   *zap.Logger
}

func NewMongoOpener(db *mongo.Database, inbox inboxRepo.Repository, missions missionRepo.Repository, logger *zap.Logger) *MongoOpener {
	return &MongoOpener{db: db, inbox: inbox, missions: missions, logger: logger}
}

func (o *MongoOpener) Open(ctx context.Context, callerID, role, missionID string) (Source, error) {
	switch role {
	case models.RoleProvider:
		return o.openProvider(ctx, callerID, missionID)
	case models.RoleClient:
		return o.openClient(ctx, callerID, missionID)
	default:
		return nil, ErrPermissionDenied
	}
}

// openProvider admits only providers holding an inbox entry for the
// mission. No entry means the mission was never offered to this provider,
// which is a permission failure, not a transient one.
func (o *MongoOpener) openProvider(ctx context.Context, providerID, missionID string) (Source, error) {
	entry, err := o.inbox.Get(ctx, providerID, missionID)
	if err != nil {
		if errors.Is(err, inboxRepo.ErrNotFound) {
			return nil, ErrPermissionDenied
		}
		return nil, fmt.Errorf("open provider watch: %w", err)
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "fullDocument.providerId", Value: providerID},
			{Key: "fullDocument.missionId", Value: missionID},
		}}},
	}
	stream, err := o.db.Collection("provider_inbox").Watch(ctx, pipeline,
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return nil, fmt.Errorf("open provider watch: %w", err)
	}

	src := newMongoSource(o.logger, stream, decodeInboxView)
	src.emit(providerInboxView(entry))
	go src.pump()
	return src, nil
}

// openClient admits only the booking's owner.
func (o *MongoOpener) openClient(ctx context.Context, clientID, missionID string) (Source, error) {
	m, err := o.missions.GetBookingByID(ctx, missionID)
	if err != nil {
		if errors.Is(err, missionRepo.ErrNotFound) {
			return nil, ErrPermissionDenied
		}
		return nil, fmt.Errorf("open client watch: %w", err)
	}
	if m.ClientID != clientID {
		return nil, ErrPermissionDenied
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "fullDocument.id", Value: missionID}}}},
	}
	stream, err := o.db.Collection("bookings").Watch(ctx, pipeline,
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return nil, fmt.Errorf("open client watch: %w", err)
	}

	src := newMongoSource(o.logger, stream, decodeBookingView)
	src.emit(m.View())
	go src.pump()
	return src, nil
}

type decodeFunc func(raw bson.Raw) (*models.MissionView, error)

// mongoSource adapts a change stream to the Source interface. The initial
// snapshot is emitted before streaming so a watcher sees current state even
// when the document never changes again.
type mongoSource struct {
	logger *zap.Logger
	stream *mongo.ChangeStream
	decode decodeFunc

	events chan Event
	ctx    context.Context
	cancel context.CancelFunc
}

func newMongoSource(logger *zap.Logger, stream *mongo.ChangeStream, decode decodeFunc) *mongoSource {
	ctx, cancel := context.WithCancel(context.Background())
	return &mongoSource{
		logger: logger,
		stream: stream,
		decode: decode,
		events: make(chan Event, 8),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *mongoSource) Events() <-chan Event { return s.events }

func (s *mongoSource) Close() { s.cancel() }

func (s *mongoSource) emit(view *models.MissionView) {
	select {
	case s.events <- Event{View: view}:
	case <-s.ctx.Done():
	}
}

func (s *mongoSource) pump() {
	defer close(s.events)
	defer func() {
		if err := s.stream.Close(context.Background()); err != nil {
			s.logger.Debug("change stream close", zap.Error(err))
		}
	}()

	for s.stream.Next(s.ctx) {
		var change struct {
			FullDocument bson.Raw `bson:"fullDocument"`
		}
		if err := s.stream.Decode(&change); err != nil {
			s.emitErr(fmt.Errorf("decode change: %w", err))
			return
		}
		if change.FullDocument == nil {
			continue
		}
		view, err := s.decode(change.FullDocument)
		if err != nil {
			s.emitErr(err)
			return
		}
		s.emit(view)
	}
	if err := s.stream.Err(); err != nil && !errors.Is(err, context.Canceled) {
		s.emitErr(err)
	}
}

func (s *mongoSource) emitErr(err error) {
	select {
	case s.events <- Event{Err: err}:
	case <-s.ctx.Done():
	}
}

func decodeInboxView(raw bson.Raw) (*models.MissionView, error) {
	var entry models.InboxEntry
	if err := bson.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decode inbox entry: %w", err)
	}
	return providerInboxView(&entry), nil
}

func decodeBookingView(raw bson.Raw) (*models.MissionView, error) {
	var m models.Mission
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode booking: %w", err)
	}
	return m.View(), nil
}

// providerInboxView projects an inbox entry into the shared view shape: the
// status is the offer status and the amount is the provider payout, never
// the client-facing total.
func providerInboxView(entry *models.InboxEntry) *models.MissionView {
	return &models.MissionView{
		MissionID:   entry.MissionID,
		Status:      string(entry.Status),
		ServiceName: entry.ServiceName,
		ScheduledAt: entry.ScheduledAt,
		Amount:      entry.Payout,
	}
}
