package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MovieReview struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	MovieID   int                `bson:"movieId" json:"movieId"`
	Rating    int                `bson:"rating" json:"rating"`
	Title     *string            `bson:"title,omitempty" json:"title,omitempty"`
	Body      string             `bson:"body" json:"body"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type BookReview struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	BookID    string             `bson:"bookId" json:"bookId"`
	Rating    int                `bson:"rating" json:"rating"`
	Title     *string            `bson:"title,omitempty" json:"title,omitempty"`
	Body      string             `bson:"body" json:"body"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ShapedReview is a review merged with best-effort catalog metadata for
// display. Catalog fields stay unset when enrichment fails; the review's own
// fields are always populated. ItemYear is a string for movies and an int for
// books, matching the two catalog payloads.
type ShapedReview struct {
	ID         string      `json:"id"`
	Kind       string      `json:"kind"`
	ItemID     interface{} `json:"itemId"`
	ItemTitle  *string     `json:"itemTitle,omitempty"`
	ItemAuthor *string     `json:"itemAuthor,omitempty"`
	ItemPoster *string     `json:"itemPoster,omitempty"`
	ItemCover  *string     `json:"itemCover,omitempty"`
	ItemYear   interface{} `json:"itemYear,omitempty"`
	Rating     int         `json:"rating"`
	Title      *string     `json:"title,omitempty"`
	Body       string      `json:"body"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}
