package repository

import (
	"context"
	"fmt"

	"movi/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

type UserRepository interface {
	Create(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, limit int64) ([]models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// ResolveActors batch-resolves display metadata for the given ids in one
	// projected query. Ids with no matching user are absent from the result.
	ResolveActors(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Actor, error)

	PushRef(ctx context.Context, userID primitive.ObjectID, field string, ref models.UserRef) error
	PullRef(ctx context.Context, userID primitive.ObjectID, field string, refID primitive.ObjectID) error

	// AddToList adds a value to a membership array with $addToSet; PullFromList
	// removes it with $pull. Both create/ignore missing arrays as mongo does.
	AddToList(ctx context.Context, userID primitive.ObjectID, field string, value interface{}) error
	PullFromList(ctx context.Context, userID primitive.ObjectID, field string, value interface{}) error

	// PushActivityRef prepends an activity id to the user's activities list so
	// the list stays newest-first.
	PushActivityRef(ctx context.Context, userID, activityID primitive.ObjectID) error
	PullActivityRefs(ctx context.Context, userID primitive.ObjectID, activityIDs []primitive.ObjectID) error
}

type userRepository struct {
	db *mongo.Database
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) collection() *mongo.Collection {
	return r.db.Collection(usersCollection)
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	res, err := r.collection().InsertOne(ctx, user)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert user: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid, nil
}

// GetByID returns (nil, nil) when no user matches.
func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection().FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, limit int64) ([]models.User, error) {
	cur, err := r.collection().Find(ctx, bson.M{}, options.Find().SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (r *userRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := r.collection().DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (r *userRepository) ResolveActors(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Actor, error) {
	resolved := make(map[primitive.ObjectID]models.Actor)
	if len(ids) == 0 {
		return resolved, nil
	}

	projection := bson.M{"_id": 1, "username": 1, "name": 1, "avatarUrl": 1}
	cur, err := r.collection().Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(projection))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve actors: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc struct {
			ID        primitive.ObjectID `bson:"_id"`
			Username  *string            `bson:"username"`
			Name      *models.Name       `bson:"name"`
			AvatarURL *string            `bson:"avatarUrl"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode actor: %w", err)
		}
		resolved[doc.ID] = models.Actor{
			ID:        doc.ID.Hex(),
			Username:  doc.Username,
			Name:      doc.Name,
			AvatarURL: doc.AvatarURL,
		}
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate actors: %w", err)
	}
	return resolved, nil
}

func (r *userRepository) PushRef(ctx context.Context, userID primitive.ObjectID, field string, ref models.UserRef) error {
	_, err := r.collection().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$push": bson.M{field: ref}})
	if err != nil {
		return fmt.Errorf("failed to push %s reference: %w", field, err)
	}
	return nil
}

func (r *userRepository) PullRef(ctx context.Context, userID primitive.ObjectID, field string, refID primitive.ObjectID) error {
	_, err := r.collection().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{field: bson.M{"_id": refID}}})
	if err != nil {
		return fmt.Errorf("failed to pull %s reference: %w", field, err)
	}
	return nil
}

func (r *userRepository) AddToList(ctx context.Context, userID primitive.ObjectID, field string, value interface{}) error {
	_, err := r.collection().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{field: value}})
	if err != nil {
		return fmt.Errorf("failed to add to %s: %w", field, err)
	}
	return nil
}

func (r *userRepository) PullFromList(ctx context.Context, userID primitive.ObjectID, field string, value interface{}) error {
	_, err := r.collection().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{field: value}})
	if err != nil {
		return fmt.Errorf("failed to pull from %s: %w", field, err)
	}
	return nil
}

func (r *userRepository) PushActivityRef(ctx context.Context, userID, activityID primitive.ObjectID) error {
	_, err := r.collection().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$push": bson.M{"activities": bson.M{
			"$each":     bson.A{activityID},
			"$position": 0,
		}}})
	if err != nil {
		return fmt.Errorf("failed to push activity reference: %w", err)
	}
	return nil
}

func (r *userRepository) PullActivityRefs(ctx context.Context, userID primitive.ObjectID, activityIDs []primitive.ObjectID) error {
	if len(activityIDs) == 0 {
		return nil
	}
	_, err := r.collection().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"activities": bson.M{"$in": activityIDs}}})
	if err != nil {
		return fmt.Errorf("failed to pull activity references: %w", err)
	}
	return nil
}
