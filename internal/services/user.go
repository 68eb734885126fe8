package services

import (
	"context"
	"time"

	"movi/internal/models"
	"movi/internal/repository"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultUserListLimit = 50

// UserService covers registration, login and the follow graph.
type UserService struct {
	users  repository.UserRepository
	logger *logrus.Logger
}

func NewUserService(users repository.UserRepository, logger *logrus.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// Register creates a user with a hashed password. The email must not be in
// use yet.
func (s *UserService) Register(ctx context.Context, user *models.User, password string) (*models.User, error) {
	existing, err := s.users.GetByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user.ID = primitive.NilObjectID
	user.PasswordHash = hash
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	oid, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = oid

	s.logger.WithFields(logrus.Fields{
		"user_id": oid.Hex(),
		"email":   user.Email,
	}).Info("A user has been created...")
	return user, nil
}

// Authenticate checks credentials and issues a JWT for the user.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil || user.PasswordHash == "" || !CheckPassword(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := CreateToken(user.ID.Hex())
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Create inserts a user without credentials (internal/admin path).
func (s *UserService) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = primitive.NilObjectID
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	oid, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = oid
	return user, nil
}

func (s *UserService) List(ctx context.Context, limit int64) ([]models.User, error) {
	if limit < 1 {
		limit = DefaultUserListLimit
	}
	return s.users.List(ctx, limit)
}

// GetByEmail returns ErrUserNotFound when no user matches.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.users.Delete(ctx, id)
}

// Followers returns the user's follower references, skipping entries without
// a resolvable id.
func (s *UserService) Followers(ctx context.Context, userID primitive.ObjectID) ([]models.UserRef, error) {
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return validRefs(user.Followers), nil
}

func (s *UserService) Following(ctx context.Context, userID primitive.ObjectID) ([]models.UserRef, error) {
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	refs := make([]models.UserRef, 0, len(user.Following))
	for _, entry := range user.Following {
		if entry.ID.IsZero() {
			continue
		}
		refs = append(refs, models.UserRef{ID: entry.ID, Username: entry.Username, Name: entry.Name})
	}
	return refs, nil
}

// AddFollower records target as a follower of userID. Both users must exist;
// adding somebody twice is a duplicate-entry error.
func (s *UserService) AddFollower(ctx context.Context, userID, targetID primitive.ObjectID) error {
	return s.addRef(ctx, userID, targetID, "followers")
}

func (s *UserService) AddFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error {
	return s.addRef(ctx, userID, targetID, "following")
}

func (s *UserService) addRef(ctx context.Context, userID, targetID primitive.ObjectID, field string) error {
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return err
	}
	target, err := s.requireUser(ctx, targetID)
	if err != nil {
		return err
	}

	for _, id := range refIDs(user, field) {
		if id == targetID {
			return ErrDuplicateEntry
		}
	}
	return s.users.PushRef(ctx, userID, field, target.Ref())
}

// RemoveFollower removes target from the user's followers and reports the new
// list size plus whether anything changed.
func (s *UserService) RemoveFollower(ctx context.Context, userID, targetID primitive.ObjectID) (int, bool, error) {
	return s.removeRef(ctx, userID, targetID, "followers")
}

func (s *UserService) RemoveFollowing(ctx context.Context, userID, targetID primitive.ObjectID) (int, bool, error) {
	return s.removeRef(ctx, userID, targetID, "following")
}

func (s *UserService) removeRef(ctx context.Context, userID, targetID primitive.ObjectID, field string) (int, bool, error) {
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return 0, false, err
	}
	if _, err := s.requireUser(ctx, targetID); err != nil {
		return 0, false, err
	}

	before := len(refIDs(user, field))
	if err := s.users.PullRef(ctx, userID, field, targetID); err != nil {
		return 0, false, err
	}

	updated, err := s.requireUser(ctx, userID)
	if err != nil {
		return 0, false, err
	}
	after := len(refIDs(updated, field))
	return after, after != before, nil
}

func (s *UserService) requireUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func refIDs(user *models.User, field string) []primitive.ObjectID {
	var ids []primitive.ObjectID
	switch field {
	case "followers":
		for _, ref := range user.Followers {
			ids = append(ids, ref.ID)
		}
	case "following":
		for _, entry := range user.Following {
			ids = append(ids, entry.ID)
		}
	}
	return ids
}

func validRefs(refs []models.UserRef) []models.UserRef {
	out := make([]models.UserRef, 0, len(refs))
	for _, ref := range refs {
		if ref.ID.IsZero() {
			continue
		}
		out = append(out, ref)
	}
	return out
}
