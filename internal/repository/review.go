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

const (
	movieReviewsCollection = "movieReviews"
	bookReviewsCollection  = "bookReviews"
)

type ReviewRepository interface {
	InsertMovie(ctx context.Context, review *models.MovieReview) (primitive.ObjectID, error)
	InsertBook(ctx context.Context, review *models.BookReview) (primitive.ObjectID, error)
	GetMovie(ctx context.Context, id primitive.ObjectID) (*models.MovieReview, error)
	GetBook(ctx context.Context, id primitive.ObjectID) (*models.BookReview, error)
	DeleteMovie(ctx context.Context, id primitive.ObjectID) (bool, error)
	DeleteBook(ctx context.Context, id primitive.ObjectID) (bool, error)
	ListMoviesByUser(ctx context.Context, userID primitive.ObjectID) ([]models.MovieReview, error)
	ListBooksByUser(ctx context.Context, userID primitive.ObjectID) ([]models.BookReview, error)
}

type reviewRepository struct {
	db *mongo.Database
}

func NewReviewRepository(db *mongo.Database) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) InsertMovie(ctx context.Context, review *models.MovieReview) (primitive.ObjectID, error) {
	return r.insert(ctx, movieReviewsCollection, review)
}

func (r *reviewRepository) InsertBook(ctx context.Context, review *models.BookReview) (primitive.ObjectID, error) {
	return r.insert(ctx, bookReviewsCollection, review)
}

func (r *reviewRepository) insert(ctx context.Context, coll string, review interface{}) (primitive.ObjectID, error) {
	res, err := r.db.Collection(coll).InsertOne(ctx, review)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert review: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid, nil
}

// GetMovie returns (nil, nil) when no review matches.
func (r *reviewRepository) GetMovie(ctx context.Context, id primitive.ObjectID) (*models.MovieReview, error) {
	var review models.MovieReview
	err := r.db.Collection(movieReviewsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find movie review: %w", err)
	}
	return &review, nil
}

func (r *reviewRepository) GetBook(ctx context.Context, id primitive.ObjectID) (*models.BookReview, error) {
	var review models.BookReview
	err := r.db.Collection(bookReviewsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find book review: %w", err)
	}
	return &review, nil
}

func (r *reviewRepository) DeleteMovie(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return r.delete(ctx, movieReviewsCollection, id)
}

func (r *reviewRepository) DeleteBook(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return r.delete(ctx, bookReviewsCollection, id)
}

func (r *reviewRepository) delete(ctx context.Context, coll string, id primitive.ObjectID) (bool, error) {
	res, err := r.db.Collection(coll).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("failed to delete review: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *reviewRepository) ListMoviesByUser(ctx context.Context, userID primitive.ObjectID) ([]models.MovieReview, error) {
	cur, err := r.db.Collection(movieReviewsCollection).Find(ctx,
		bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list movie reviews: %w", err)
	}
	defer cur.Close(ctx)

	var reviews []models.MovieReview
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode movie reviews: %w", err)
	}
	return reviews, nil
}

func (r *reviewRepository) ListBooksByUser(ctx context.Context, userID primitive.ObjectID) ([]models.BookReview, error) {
	cur, err := r.db.Collection(bookReviewsCollection).Find(ctx,
		bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list book reviews: %w", err)
	}
	defer cur.Close(ctx)

	var reviews []models.BookReview
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode book reviews: %w", err)
	}
	return reviews, nil
}
