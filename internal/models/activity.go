package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity is an append-only row in the userActivities collection. Meta is an
// open map because producers attach different fields per activity label
// (item id, rating, title, cover URL, review id, ...).
type Activity struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID     `bson:"userId" json:"userId"`
	Activity  string                 `bson:"activity" json:"activity"`
	Meta      map[string]interface{} `bson:"meta,omitempty" json:"meta,omitempty"`
	CreatedAt time.Time              `bson:"createdAt" json:"createdAt"`
}

// FeedEntry is an activity row with actor display metadata attached where it
// could be resolved. It exists only as a response shape.
type FeedEntry struct {
	Activity
	Actor *Actor `json:"actor,omitempty"`
}
