package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Name struct {
	First string `bson:"first" json:"first"`
	Last  string `bson:"last" json:"last"`
}

// User is the document stored in the users collection. Membership lists and
// review/activity references are denormalized onto the document itself.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email        string             `bson:"email" json:"email" validate:"required,email"`
	Username     *string            `bson:"username,omitempty" json:"username,omitempty" validate:"omitempty,max=50"`
	Name         *Name              `bson:"name,omitempty" json:"name,omitempty"`
	Bio          *string            `bson:"bio,omitempty" json:"bio,omitempty"`
	AvatarURL    *string            `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	PasswordHash string             `bson:"passwordHash,omitempty" json:"-"`

	Followers []UserRef     `bson:"followers,omitempty" json:"followers,omitempty"`
	Following []FollowEntry `bson:"following,omitempty" json:"following,omitempty"`

	WatchedMovies    []interface{} `bson:"watchedMovies,omitempty" json:"watchedMovies,omitempty"`
	WatchLaterMovies []interface{} `bson:"watchLaterMovies,omitempty" json:"watchLaterMovies,omitempty"`
	ReadBooks        []string      `bson:"readBooks,omitempty" json:"readBooks,omitempty"`
	ToBeReadBooks    []string      `bson:"toBeReadBooks,omitempty" json:"toBeReadBooks,omitempty"`

	MovieReviews []primitive.ObjectID `bson:"movieReviews,omitempty" json:"movieReviews,omitempty"`
	BookReviews  []primitive.ObjectID `bson:"bookReviews,omitempty" json:"bookReviews,omitempty"`
	Activities   []primitive.ObjectID `bson:"activities,omitempty" json:"activities,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PublicUser is the response shape for user reads; it never carries the
// password hash or the membership lists.
type PublicUser struct {
	ID        string    `json:"_id"`
	Email     string    `json:"email"`
	Username  *string   `json:"username,omitempty"`
	Name      *Name     `json:"name,omitempty"`
	Bio       *string   `json:"bio,omitempty"`
	AvatarURL *string   `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:        u.ID.Hex(),
		Email:     u.Email,
		Username:  u.Username,
		Name:      u.Name,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserRef is the lightweight reference kept in followers/following lists.
type UserRef struct {
	ID       primitive.ObjectID `bson:"_id" json:"userId"`
	Username *string            `bson:"username,omitempty" json:"username,omitempty"`
	Name     *Name              `bson:"name,omitempty" json:"name,omitempty"`
}

// Ref builds the follower/following reference for this user.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Username: u.Username, Name: u.Name}
}

// FollowEntry is one element of a stored following/followers array. Older
// documents hold plain ids (ObjectID or hex string) where newer ones hold
// reference documents, so decoding accepts all three shapes. Entries that
// resolve to no id decode to a zero ID and are skipped by callers.
type FollowEntry struct {
	ID       primitive.ObjectID
	Username *string
	Name     *Name
}

func (f *FollowEntry) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeObjectID:
		return rv.Unmarshal(&f.ID)
	case bson.TypeString:
		var s string
		if err := rv.Unmarshal(&s); err != nil {
			return err
		}
		if oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(s)); err == nil {
			f.ID = oid
		}
		return nil
	case bson.TypeEmbeddedDocument:
		var doc bson.M
		if err := rv.Unmarshal(&doc); err != nil {
			return err
		}
		for _, key := range []string{"_id", "id", "userId"} {
			if oid, ok := objectIDFromValue(doc[key]); ok {
				f.ID = oid
				break
			}
		}
		if s, ok := doc["username"].(string); ok {
			f.Username = &s
		}
		if m, ok := doc["name"].(bson.M); ok {
			name := &Name{}
			if first, ok := m["first"].(string); ok {
				name.First = first
			}
			if last, ok := m["last"].(string); ok {
				name.Last = last
			}
			f.Name = name
		}
		return nil
	default:
		// Unknown shapes are tolerated as unresolvable entries.
		return nil
	}
}

func objectIDFromValue(v interface{}) (primitive.ObjectID, bool) {
	switch val := v.(type) {
	case primitive.ObjectID:
		return val, true
	case string:
		if oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(val)); err == nil {
			return oid, true
		}
	}
	return primitive.NilObjectID, false
}

// Actor is the resolved display metadata attached to feed entries.
type Actor struct {
	ID        string  `json:"id"`
	Username  *string `json:"username,omitempty"`
	Name      *Name   `json:"name,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}
