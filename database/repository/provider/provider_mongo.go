package providerRepo

import (
	"context"
	"fmt"
	"time"

	"helper/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// earthRadiusKm converts a km radius to radians for $centerSphere.
const earthRadiusKm = 6371.0

// MongoProviderRepo implements Repository on MongoDB.
type MongoProviderRepo struct {
	coll *mongo.Collection
}

func NewMongoProviderRepo(db *mongo.Database) *MongoProviderRepo {
	return &MongoProviderRepo{coll: db.Collection("providers")}
}

func (r *MongoProviderRepo) Create(ctx context.Context, p *models.Provider) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to insert provider: %w", err)
	}
	return nil
}

func (r *MongoProviderRepo) findOne(ctx context.Context, filter bson.M) (*models.Provider, error) {
	var p models.Provider
	err := r.coll.FindOne(ctx, filter).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch provider: %w", err)
	}
	return &p, nil
}

func (r *MongoProviderRepo) GetByID(ctx context.Context, id string) (*models.Provider, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoProviderRepo) GetByEmail(ctx context.Context, email string) (*models.Provider, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoProviderRepo) ActiveWithinRadius(ctx context.Context, center models.GeoPoint, radiusKm float64, categoryID string) ([]models.Provider, error) {
	filter := bson.M{
		"status": models.ProviderActive,
		"locationGeo": bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{
					center.Coordinates,
					radiusKm / earthRadiusKm,
				},
			},
		},
	}
	if categoryID != "" {
		filter["serviceCategories"] = categoryID
	}
	return r.findAll(ctx, filter, nil)
}

func (r *MongoProviderRepo) ActiveTopN(ctx context.Context, n int, categoryID string) ([]models.Provider, error) {
	filter := bson.M{"status": models.ProviderActive}
	if categoryID != "" {
		filter["serviceCategories"] = categoryID
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}}).
		SetLimit(int64(n))
	return r.findAll(ctx, filter, opts)
}

func (r *MongoProviderRepo) findAll(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Provider, error) {
	var cur *mongo.Cursor
	var err error
	if opts != nil {
		cur, err = r.coll.Find(ctx, filter, opts)
	} else {
		cur, err = r.coll.Find(ctx, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("provider query failed: %w", err)
	}
	defer cur.Close(ctx)

	var providers []models.Provider
	if err := cur.All(ctx, &providers); err != nil {
		return nil, fmt.Errorf("failed to decode providers: %w", err)
	}
	return providers, nil
}

func (r *MongoProviderRepo) UpdateFCMToken(ctx context.Context, id, token string) error {
	update := bson.M{"$set": bson.M{"fcmToken": token, "updatedAt": time.Now().UTC()}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update fcm token: %w", err)
	}
	return nil
}

func (r *MongoProviderRepo) IncrementCompleted(ctx context.Context, id string) error {
	update := bson.M{
		"$inc": bson.M{"completedMissions": 1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	_, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to increment completed missions: %w", err)
	}
	return nil
}
