package inboxRepo

import (
	"context"
	"fmt"
	"time"

	"helper/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoInboxRepo implements Repository on MongoDB.
type MongoInboxRepo struct {
	coll *mongo.Collection
}

func NewMongoInboxRepo(db *mongo.Database) *MongoInboxRepo {
	return &MongoInboxRepo{coll: db.Collection("provider_inbox")}
}

// EnsureIndexes creates the compound key index. The unique constraint is
// what keeps fan-out idempotent at the storage level.
func (r *MongoInboxRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "providerId", Value: 1}, {Key: "missionId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "providerId", Value: 1}, {Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "missionId", Value: 1}},
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create inbox indexes: %w", err)
	}
	return nil
}

func (r *MongoInboxRepo) UpsertBatch(ctx context.Context, entries []models.InboxEntry) error {
	if len(entries) == 0 {
		return nil
	}
	now := time.Now().UTC()
	writes := make([]mongo.WriteModel, 0, len(entries))
	for _, e := range entries {
		e.UpdatedAt = now
		filter := bson.M{"providerId": e.ProviderID, "missionId": e.MissionID}
		update := bson.M{
			"$set": bson.M{
				"serviceName": e.ServiceName,
				"address":     e.Address,
				"scheduledAt": e.ScheduledAt,
				"payout":      e.Payout,
				"distanceKm":  e.DistanceKm,
				"updatedAt":   e.UpdatedAt,
			},
			"$setOnInsert": bson.M{
				"status":    models.InboxPending,
				"createdAt": now,
			},
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(filter).
			SetUpdate(update).
			SetUpsert(true))
	}
	if _, err := r.coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("inbox bulk upsert failed: %w", err)
	}
	return nil
}

func (r *MongoInboxRepo) Get(ctx context.Context, providerID, missionID string) (*models.InboxEntry, error) {
	var e models.InboxEntry
	err := r.coll.FindOne(ctx, bson.M{"providerId": providerID, "missionId": missionID}).Decode(&e)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch inbox entry: %w", err)
	}
	return &e, nil
}

func (r *MongoInboxRepo) ListByProvider(ctx context.Context, providerID string, status models.InboxStatus) ([]models.InboxEntry, error) {
	filter := bson.M{"providerId": providerID}
	if status != "" {
		filter["status"] = status
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("inbox query failed: %w", err)
	}
	defer cur.Close(ctx)

	var entries []models.InboxEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode inbox entries: %w", err)
	}
	return entries, nil
}

func (r *MongoInboxRepo) SetStatus(ctx context.Context, providerID, missionID string, status models.InboxStatus) error {
	filter := bson.M{"providerId": providerID, "missionId": missionID}
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update inbox status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoInboxRepo) ExpirePending(ctx context.Context, missionID, exceptProviderID string) error {
	filter := bson.M{
		"missionId":  missionID,
		"status":     models.InboxPending,
		"providerId": bson.M{"$ne": exceptProviderID},
	}
	update := bson.M{"$set": bson.M{"status": models.InboxExpired, "updatedAt": time.Now().UTC()}}
	if _, err := r.coll.UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to expire pending inbox entries: %w", err)
	}
	return nil
}
