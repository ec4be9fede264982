package dispatchRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"helper/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("dispatch log not found")

// Repository is the append-only dispatch audit trail. One document per
// mission; attempts accumulate instead of overwriting each other.
type Repository interface {
	AppendAttempt(ctx context.Context, missionID string, attempt models.DispatchAttempt) error
	Get(ctx context.Context, missionID string) (*models.DispatchLog, error)
}

// MongoDispatchRepo implements Repository on MongoDB.
type MongoDispatchRepo struct {
	coll *mongo.Collection
}

func NewMongoDispatchRepo(db *mongo.Database) *MongoDispatchRepo {
	return &MongoDispatchRepo{coll: db.Collection("mission_dispatch_log")}
}

func (r *MongoDispatchRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "missionId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.coll.Indexes().CreateOne(ctx, index); err != nil {
		return fmt.Errorf("failed to create dispatch log index: %w", err)
	}
	return nil
}

func (r *MongoDispatchRepo) AppendAttempt(ctx context.Context, missionID string, attempt models.DispatchAttempt) error {
	filter := bson.M{"missionId": missionID}
	update := bson.M{
		"$push": bson.M{"attempts": attempt},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	_, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to append dispatch attempt: %w", err)
	}
	return nil
}

func (r *MongoDispatchRepo) Get(ctx context.Context, missionID string) (*models.DispatchLog, error) {
	var l models.DispatchLog
	err := r.coll.FindOne(ctx, bson.M{"missionId": missionID}).Decode(&l)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dispatch log: %w", err)
	}
	return &l, nil
}
