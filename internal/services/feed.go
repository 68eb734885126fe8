package services

import (
	"context"
	"fmt"

	"movi/internal/models"
	"movi/internal/repository"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultOwnFeedLimit     = 50
	DefaultNetworkFeedLimit = 100
	MaxFeedLimit            = 500
)

// FeedService merges actors' raw activity into one chronological feed,
// annotated with actor display metadata.
type FeedService struct {
	users      repository.UserRepository
	activities repository.ActivityRepository
	logger     *logrus.Logger
}

func NewFeedService(users repository.UserRepository, activities repository.ActivityRepository, logger *logrus.Logger) *FeedService {
	return &FeedService{users: users, activities: activities, logger: logger}
}

// Record appends an activity row for the user and prepends its id to the
// user's activities list. It returns the new activity id and the resulting
// reference count.
func (s *FeedService) Record(ctx context.Context, userID primitive.ObjectID, label string, meta map[string]interface{}) (primitive.ObjectID, int, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return primitive.NilObjectID, 0, err
	}
	if user == nil {
		return primitive.NilObjectID, 0, ErrUserNotFound
	}

	activityID, err := s.activities.Insert(ctx, userID, label, meta)
	if err != nil {
		return primitive.NilObjectID, 0, err
	}
	if err := s.users.PushActivityRef(ctx, userID, activityID); err != nil {
		return primitive.NilObjectID, 0, err
	}

	count := len(user.Activities) + 1
	s.logger.WithFields(logrus.Fields{
		"user_id":  userID.Hex(),
		"activity": label,
	}).Info("Activity recorded")
	return activityID, count, nil
}

// OwnFeed returns the user's own recent activity, newest first. A user with
// no activity yields an empty feed, not an error.
func (s *FeedService) OwnFeed(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.FeedEntry, error) {
	return s.buildFeed(ctx, []primitive.ObjectID{userID}, limit)
}

// NetworkFeed merges the user's activity with their friends'. A nil friendIDs
// slice derives the friend set from the stored following relation; a non-nil
// (possibly empty) slice is used as supplied. The limit caps the merged feed
// across all actors by recency, so a prolific actor can crowd out others.
// It returns the feed and the size of the friend set it aggregated over.
func (s *FeedService) NetworkFeed(ctx context.Context, userID primitive.ObjectID, friendIDs []primitive.ObjectID, limit int64) ([]models.FeedEntry, int, error) {
	if friendIDs == nil {
		derived, err := s.followingIDs(ctx, userID)
		if err != nil {
			return nil, 0, err
		}
		friendIDs = derived
	}

	actorIDs := make([]primitive.ObjectID, 0, len(friendIDs)+1)
	actorIDs = append(actorIDs, userID)
	seen := map[primitive.ObjectID]bool{userID: true}
	for _, id := range friendIDs {
		if id.IsZero() || seen[id] {
			continue
		}
		seen[id] = true
		actorIDs = append(actorIDs, id)
	}

	entries, err := s.buildFeed(ctx, actorIDs, limit)
	if err != nil {
		return nil, 0, err
	}
	return entries, len(actorIDs) - 1, nil
}

// followingIDs extracts actor ids from the user's stored following entries,
// silently skipping unresolvable ones. A missing user derives an empty set.
func (s *FeedService) followingIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return []primitive.ObjectID{}, nil
	}

	ids := make([]primitive.ObjectID, 0, len(user.Following))
	for _, entry := range user.Following {
		if entry.ID.IsZero() {
			continue
		}
		ids = append(ids, entry.ID)
	}
	return ids, nil
}

// buildFeed fetches up to limit rows across the actor set in one bounded
// store query (ordering honored by the store), resolves actor metadata in one
// batch, and attaches it where available.
func (s *FeedService) buildFeed(ctx context.Context, actorIDs []primitive.ObjectID, limit int64) ([]models.FeedEntry, error) {
	if limit < 1 {
		limit = DefaultOwnFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}

	rows, err := s.activities.ListByActors(ctx, actorIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activity rows: %w", err)
	}
	if len(rows) == 0 {
		return []models.FeedEntry{}, nil
	}

	actors, err := s.users.ResolveActors(ctx, actorIDs)
	if err != nil {
		// Enrichment must never fail the primary operation.
		s.logger.WithError(err).Warn("Failed to resolve actors, returning unannotated feed")
		actors = map[primitive.ObjectID]models.Actor{}
	}

	entries := make([]models.FeedEntry, 0, len(rows))
	for _, row := range rows {
		entry := models.FeedEntry{Activity: row}
		if actor, ok := actors[row.UserID]; ok {
			a := actor
			entry.Actor = &a
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
