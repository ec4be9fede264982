package missionRepo

import (
	"context"
	"fmt"
	"time"

	"helper/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	missionsCollection = "missions"
	bookingsCollection = "bookings"
)

// MongoMissionRepo implements Repository on MongoDB.
type MongoMissionRepo struct {
	missions *mongo.Collection
	bookings *mongo.Collection
}

func NewMongoMissionRepo(db *mongo.Database) *MongoMissionRepo {
	return &MongoMissionRepo{
		missions: db.Collection(missionsCollection),
		bookings: db.Collection(bookingsCollection),
	}
}

// withTransaction runs fn inside a Mongo session transaction.
func (r *MongoMissionRepo) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	client := r.missions.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return fmt.Errorf("mission transaction failed: %w", err)
	}
	return nil
}

func (r *MongoMissionRepo) Create(ctx context.Context, m *models.Mission) error {
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.missions.InsertOne(sc, m); err != nil {
			return fmt.Errorf("insert mission failed: %w", err)
		}
		if _, err := r.bookings.InsertOne(sc, m); err != nil {
			return fmt.Errorf("insert booking mirror failed: %w", err)
		}
		return nil
	})
}

func (r *MongoMissionRepo) getFrom(ctx context.Context, coll *mongo.Collection, id string) (*models.Mission, error) {
	var m models.Mission
	err := coll.FindOne(ctx, bson.M{"id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mission %s: %w", id, err)
	}
	return &m, nil
}

func (r *MongoMissionRepo) GetByID(ctx context.Context, id string) (*models.Mission, error) {
	return r.getFrom(ctx, r.missions, id)
}

func (r *MongoMissionRepo) GetBookingByID(ctx context.Context, id string) (*models.Mission, error) {
	return r.getFrom(ctx, r.bookings, id)
}

func (r *MongoMissionRepo) existsIn(ctx context.Context, coll *mongo.Collection, id string) (bool, error) {
	n, err := coll.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return false, fmt.Errorf("existence check failed for %s: %w", id, err)
	}
	return n > 0, nil
}

func (r *MongoMissionRepo) Exists(ctx context.Context, id string) (bool, error) {
	return r.existsIn(ctx, r.missions, id)
}

func (r *MongoMissionRepo) BookingExists(ctx context.Context, id string) (bool, error) {
	return r.existsIn(ctx, r.bookings, id)
}

func (r *MongoMissionRepo) UpdateStatus(ctx context.Context, id string, from, to models.MissionStatus) (bool, error) {
	if !models.CanTransition(from, to) {
		return false, fmt.Errorf("illegal transition %s -> %s", from, to)
	}
	filter := bson.M{"id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now().UTC()}}

	applied := false
	err := r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := r.missions.UpdateOne(sc, filter, update)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			// Mission is not in the expected state; leave both views alone.
			return nil
		}
		if _, err := r.bookings.UpdateOne(sc, filter, update); err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}

func (r *MongoMissionRepo) MarkPaid(ctx context.Context, transactionID string) (*models.Mission, bool, error) {
	filter := bson.M{"transactionId": transactionID, "status": models.StatusPendingPayment}
	update := bson.M{"$set": bson.M{
		"status":        models.StatusSearching,
		"paymentStatus": models.PaymentPaid,
		"updatedAt":     time.Now().UTC(),
	}}

	var m *models.Mission
	applied := false
	err := r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := r.missions.UpdateOne(sc, filter, update)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return nil
		}
		if _, err := r.bookings.UpdateOne(sc, filter, update); err != nil {
			return err
		}
		applied = true
		var found models.Mission
		if err := r.missions.FindOne(sc, bson.M{"transactionId": transactionID}).Decode(&found); err != nil {
			return err
		}
		m = &found
		return nil
	})
	return m, applied, err
}

func (r *MongoMissionRepo) Claim(ctx context.Context, missionID string, snap models.ProviderSnapshot) (bool, error) {
	// The CAS filter is what makes first-claim-wins hold: a second claimer
	// no longer matches provider == null.
	filter := bson.M{
		"id":       missionID,
		"status":   models.StatusSearching,
		"provider": nil,
	}
	update := bson.M{"$set": bson.M{
		"provider":  snap,
		"status":    models.StatusAssigned,
		"updatedAt": time.Now().UTC(),
	}}

	claimed := false
	err := r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := r.missions.UpdateOne(sc, filter, update)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return nil
		}
		if _, err := r.bookings.UpdateOne(sc, filter, update); err != nil {
			return err
		}
		claimed = true
		return nil
	})
	return claimed, err
}

func (r *MongoMissionRepo) SetTransactionID(ctx context.Context, missionID, transactionID string) error {
	update := bson.M{"$set": bson.M{"transactionId": transactionID, "updatedAt": time.Now().UTC()}}
	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.missions.UpdateOne(sc, bson.M{"id": missionID}, update); err != nil {
			return err
		}
		_, err := r.bookings.UpdateOne(sc, bson.M{"id": missionID}, update)
		return err
	})
}
