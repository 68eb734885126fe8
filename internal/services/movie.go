package services

import (
	"context"
	"strconv"

	"movi/internal/models"
	"movi/internal/repository"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultWatchedLimit = 50

// MovieList selects one of the user's movie membership lists.
type MovieList string

const (
	ListWatched    MovieList = "watchedMovies"
	ListWatchLater MovieList = "watchLaterMovies"
)

type movieBulkCatalog interface {
	movieCatalog
	MoviesByIDs(ctx context.Context, ids []int) []models.Movie
}

// MovieService covers watched / watch-later membership and the bulk
// enrichment of a user's movie lists.
type MovieService struct {
	users      repository.UserRepository
	activities repository.ActivityRepository
	movies     movieBulkCatalog
	logger     *logrus.Logger
}

func NewMovieService(users repository.UserRepository, activities repository.ActivityRepository, movies movieBulkCatalog, logger *logrus.Logger) *MovieService {
	return &MovieService{users: users, activities: activities, movies: movies, logger: logger}
}

// MoviesByUser reads one of the user's movie id lists and enriches up to
// limit entries from the catalog, preserving list order and omitting failed
// lookups.
func (s *MovieService) MoviesByUser(ctx context.Context, userID primitive.ObjectID, list MovieList, limit int) ([]models.Movie, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	raw := user.WatchedMovies
	if list == ListWatchLater {
		raw = user.WatchLaterMovies
	}

	ids := coerceMovieIDs(raw)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return s.movies.MoviesByIDs(ctx, ids), nil
}

// AddMovie adds a movie to the given list. Adding to watched also removes the
// movie from watch-later.
func (s *MovieService) AddMovie(ctx context.Context, userID primitive.ObjectID, movieID int, list MovieList) error {
	movie, err := s.movies.GetMovie(ctx, movieID)
	if err != nil {
		return ErrMovieNotFound
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	current := user.WatchedMovies
	if list == ListWatchLater {
		current = user.WatchLaterMovies
	}
	for _, id := range coerceMovieIDs(current) {
		if id == movieID {
			return ErrDuplicateEntry
		}
	}

	if err := s.users.AddToList(ctx, userID, string(list), movieID); err != nil {
		return err
	}
	if list == ListWatched {
		if err := s.users.PullFromList(ctx, userID, string(ListWatchLater), movieID); err != nil {
			return err
		}
	}

	status := "Watched"
	label := "Added movie to Watched"
	if list == ListWatchLater {
		status = "Watch Later"
		label = "Added movie to Watch Later"
	}
	meta := map[string]interface{}{
		"movieId": movieID,
		"status":  status,
		"type":    "movie",
	}
	if movie.Title != "" {
		meta["title"] = movie.Title
	}
	if movie.PosterURL != nil {
		meta["posterUrl"] = *movie.PosterURL
	}
	s.logActivity(ctx, userID, label, meta)
	return nil
}

// RemoveMovie removes a movie from the given list and reports the new list
// size plus whether anything changed.
func (s *MovieService) RemoveMovie(ctx context.Context, userID primitive.ObjectID, movieID int, list MovieList) (int, bool, error) {
	if _, err := s.movies.GetMovie(ctx, movieID); err != nil {
		return 0, false, ErrMovieNotFound
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, false, err
	}
	if user == nil {
		return 0, false, ErrUserNotFound
	}

	before := s.listSize(user, list)
	if err := s.users.PullFromList(ctx, userID, string(list), movieID); err != nil {
		return 0, false, err
	}

	updated, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, false, err
	}
	if updated == nil {
		return 0, false, ErrUserNotFound
	}
	after := s.listSize(updated, list)
	return after, after != before, nil
}

func (s *MovieService) listSize(user *models.User, list MovieList) int {
	if list == ListWatchLater {
		return len(user.WatchLaterMovies)
	}
	return len(user.WatchedMovies)
}

func (s *MovieService) logActivity(ctx context.Context, userID primitive.ObjectID, label string, meta map[string]interface{}) {
	activityID, err := s.activities.Insert(ctx, userID, label, meta)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID.Hex()).Warn("Activity log failed")
		return
	}
	if err := s.users.PushActivityRef(ctx, userID, activityID); err != nil {
		s.logger.WithError(err).WithField("user_id", userID.Hex()).Warn("Activity reference push failed")
	}
}

// coerceMovieIDs converts a stored movie id list to ints, dropping values
// that cannot be coerced and deduplicating while preserving order. Stored
// lists can mix numeric BSON types and legacy string ids.
func coerceMovieIDs(raw []interface{}) []int {
	seen := make(map[int]bool, len(raw))
	ids := make([]int, 0, len(raw))
	for _, v := range raw {
		var (
			id int
			ok bool
		)
		switch val := v.(type) {
		case int:
			id, ok = val, true
		case int32:
			id, ok = int(val), true
		case int64:
			id, ok = int(val), true
		case float64:
			id, ok = int(val), true
		case string:
			if parsed, err := strconv.Atoi(val); err == nil {
				id, ok = parsed, true
			}
		}
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
