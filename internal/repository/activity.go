package repository

import (
	"context"
	"fmt"
	"time"

	"movi/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const activitiesCollection = "userActivities"

type ActivityRepository interface {
	// Insert appends an immutable activity row with a server-assigned
	// creation timestamp.
	Insert(ctx context.Context, actorID primitive.ObjectID, label string, meta map[string]interface{}) (primitive.ObjectID, error)

	// ListByActors returns rows for any of the given actors, newest first,
	// truncated to limit. An empty actor set returns nothing without querying.
	ListByActors(ctx context.Context, actorIDs []primitive.ObjectID, limit int64) ([]models.Activity, error)

	// FindByReviewID returns the actor's rows whose meta references the given
	// review id.
	FindByReviewID(ctx context.Context, actorID primitive.ObjectID, reviewID string) ([]models.Activity, error)

	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) error
}

type activityRepository struct {
	db *mongo.Database
}

func NewActivityRepository(db *mongo.Database) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) collection() *mongo.Collection {
	return r.db.Collection(activitiesCollection)
}

func (r *activityRepository) Insert(ctx context.Context, actorID primitive.ObjectID, label string, meta map[string]interface{}) (primitive.ObjectID, error) {
	row := models.Activity{
		UserID:    actorID,
		Activity:  label,
		Meta:      meta,
		CreatedAt: time.Now().UTC(),
	}
	res, err := r.collection().InsertOne(ctx, row)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert activity: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid, nil
}

func (r *activityRepository) ListByActors(ctx context.Context, actorIDs []primitive.ObjectID, limit int64) ([]models.Activity, error) {
	if len(actorIDs) == 0 {
		return nil, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)
	cur, err := r.collection().Find(ctx, bson.M{"userId": bson.M{"$in": actorIDs}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer cur.Close(ctx)

	var rows []models.Activity
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode activities: %w", err)
	}
	return rows, nil
}

func (r *activityRepository) FindByReviewID(ctx context.Context, actorID primitive.ObjectID, reviewID string) ([]models.Activity, error) {
	cur, err := r.collection().Find(ctx, bson.M{
		"userId":        actorID,
		"meta.reviewId": reviewID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find activities by review id: %w", err)
	}
	defer cur.Close(ctx)

	var rows []models.Activity
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode activities: %w", err)
	}
	return rows, nil
}

func (r *activityRepository) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.collection().DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("failed to delete activities: %w", err)
	}
	return nil
}
