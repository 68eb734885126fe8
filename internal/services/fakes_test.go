package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"time"

	"movi/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeUserRepo is an in-memory UserRepository that applies list updates to
// the stored documents so before/after comparisons behave like the real store.
type fakeUserRepo struct {
	users map[primitive.ObjectID]*models.User
	err   error
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	if r.err != nil {
		return primitive.NilObjectID, r.err
	}
	id := primitive.NewObjectID()
	stored := *user
	stored.ID = id
	r.users[id] = &stored
	return id, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) List(ctx context.Context, limit int64) ([]models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	users := make([]models.User, 0, len(r.users))
	for _, user := range r.users {
		if int64(len(users)) >= limit {
			break
		}
		users = append(users, *user)
	}
	return users, nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if r.err != nil {
		return r.err
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) ResolveActors(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Actor, error) {
	if r.err != nil {
		return nil, r.err
	}
	resolved := make(map[primitive.ObjectID]models.Actor)
	for _, id := range ids {
		user, ok := r.users[id]
		if !ok {
			continue
		}
		resolved[id] = models.Actor{
			ID:        id.Hex(),
			Username:  user.Username,
			Name:      user.Name,
			AvatarURL: user.AvatarURL,
		}
	}
	return resolved, nil
}

func (r *fakeUserRepo) PushRef(ctx context.Context, userID primitive.ObjectID, field string, ref models.UserRef) error {
	if r.err != nil {
		return r.err
	}
	user, ok := r.users[userID]
	if !ok {
		return nil
	}
	switch field {
	case "followers":
		user.Followers = append(user.Followers, ref)
	case "following":
		user.Following = append(user.Following, models.FollowEntry{ID: ref.ID, Username: ref.Username, Name: ref.Name})
	}
	return nil
}

func (r *fakeUserRepo) PullRef(ctx context.Context, userID primitive.ObjectID, field string, refID primitive.ObjectID) error {
	if r.err != nil {
		return r.err
	}
	user, ok := r.users[userID]
	if !ok {
		return nil
	}
	switch field {
	case "followers":
		kept := user.Followers[:0]
		for _, ref := range user.Followers {
			if ref.ID != refID {
				kept = append(kept, ref)
			}
		}
		user.Followers = kept
	case "following":
		kept := user.Following[:0]
		for _, entry := range user.Following {
			if entry.ID != refID {
				kept = append(kept, entry)
			}
		}
		user.Following = kept
	}
	return nil
}

func (r *fakeUserRepo) AddToList(ctx context.Context, userID primitive.ObjectID, field string, value interface{}) error {
	if r.err != nil {
		return r.err
	}
	user, ok := r.users[userID]
	if !ok {
		return nil
	}
	switch field {
	case "readBooks":
		user.ReadBooks = addString(user.ReadBooks, value)
	case "toBeReadBooks":
		user.ToBeReadBooks = addString(user.ToBeReadBooks, value)
	case "watchedMovies":
		user.WatchedMovies = addValue(user.WatchedMovies, value)
	case "watchLaterMovies":
		user.WatchLaterMovies = addValue(user.WatchLaterMovies, value)
	case "bookReviews":
		user.BookReviews = addObjectID(user.BookReviews, value)
	case "movieReviews":
		user.MovieReviews = addObjectID(user.MovieReviews, value)
	}
	return nil
}

func (r *fakeUserRepo) PullFromList(ctx context.Context, userID primitive.ObjectID, field string, value interface{}) error {
	if r.err != nil {
		return r.err
	}
	user, ok := r.users[userID]
	if !ok {
		return nil
	}
	switch field {
	case "readBooks":
		user.ReadBooks = removeString(user.ReadBooks, value)
	case "toBeReadBooks":
		user.ToBeReadBooks = removeString(user.ToBeReadBooks, value)
	case "watchedMovies":
		user.WatchedMovies = removeValue(user.WatchedMovies, value)
	case "watchLaterMovies":
		user.WatchLaterMovies = removeValue(user.WatchLaterMovies, value)
	case "bookReviews":
		user.BookReviews = removeObjectID(user.BookReviews, value)
	case "movieReviews":
		user.MovieReviews = removeObjectID(user.MovieReviews, value)
	}
	return nil
}

func (r *fakeUserRepo) PushActivityRef(ctx context.Context, userID, activityID primitive.ObjectID) error {
	if r.err != nil {
		return r.err
	}
	user, ok := r.users[userID]
	if !ok {
		return nil
	}
	user.Activities = append([]primitive.ObjectID{activityID}, user.Activities...)
	return nil
}

func (r *fakeUserRepo) PullActivityRefs(ctx context.Context, userID primitive.ObjectID, activityIDs []primitive.ObjectID) error {
	if r.err != nil {
		return r.err
	}
	user, ok := r.users[userID]
	if !ok {
		return nil
	}
	drop := make(map[primitive.ObjectID]bool, len(activityIDs))
	for _, id := range activityIDs {
		drop[id] = true
	}
	kept := user.Activities[:0]
	for _, id := range user.Activities {
		if !drop[id] {
			kept = append(kept, id)
		}
	}
	user.Activities = kept
	return nil
}

func addString(list []string, value interface{}) []string {
	s, ok := value.(string)
	if !ok {
		return list
	}
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}

func removeString(list []string, value interface{}) []string {
	s, ok := value.(string)
	if !ok {
		return list
	}
	kept := list[:0]
	for _, existing := range list {
		if existing != s {
			kept = append(kept, existing)
		}
	}
	return kept
}

func addValue(list []interface{}, value interface{}) []interface{} {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}

func removeValue(list []interface{}, value interface{}) []interface{} {
	kept := list[:0]
	for _, existing := range list {
		if existing != value {
			kept = append(kept, existing)
		}
	}
	return kept
}

func addObjectID(list []primitive.ObjectID, value interface{}) []primitive.ObjectID {
	oid, ok := value.(primitive.ObjectID)
	if !ok {
		return list
	}
	for _, existing := range list {
		if existing == oid {
			return list
		}
	}
	return append(list, oid)
}

func removeObjectID(list []primitive.ObjectID, value interface{}) []primitive.ObjectID {
	oid, ok := value.(primitive.ObjectID)
	if !ok {
		return list
	}
	kept := list[:0]
	for _, existing := range list {
		if existing != oid {
			kept = append(kept, existing)
		}
	}
	return kept
}

type fakeActivityRepo struct {
	rows []models.Activity
	now  time.Time
	err  error
}

func (r *fakeActivityRepo) Insert(ctx context.Context, actorID primitive.ObjectID, label string, meta map[string]interface{}) (primitive.ObjectID, error) {
	if r.err != nil {
		return primitive.NilObjectID, r.err
	}
	created := r.now
	if created.IsZero() {
		created = time.Now().UTC()
	}
	row := models.Activity{
		ID:        primitive.NewObjectID(),
		UserID:    actorID,
		Activity:  label,
		Meta:      meta,
		CreatedAt: created,
	}
	r.rows = append(r.rows, row)
	return row.ID, nil
}

func (r *fakeActivityRepo) ListByActors(ctx context.Context, actorIDs []primitive.ObjectID, limit int64) ([]models.Activity, error) {
	if r.err != nil {
		return nil, r.err
	}
	if len(actorIDs) == 0 {
		return nil, nil
	}
	actors := make(map[primitive.ObjectID]bool, len(actorIDs))
	for _, id := range actorIDs {
		actors[id] = true
	}
	var rows []models.Activity
	for _, row := range r.rows {
		if actors[row.UserID] {
			rows = append(rows, row)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	if limit > 0 && int64(len(rows)) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *fakeActivityRepo) FindByReviewID(ctx context.Context, actorID primitive.ObjectID, reviewID string) ([]models.Activity, error) {
	if r.err != nil {
		return nil, r.err
	}
	var rows []models.Activity
	for _, row := range r.rows {
		if row.UserID != actorID {
			continue
		}
		if id, ok := row.Meta["reviewId"].(string); ok && id == reviewID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (r *fakeActivityRepo) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) error {
	if r.err != nil {
		return r.err
	}
	drop := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := r.rows[:0]
	for _, row := range r.rows {
		if !drop[row.ID] {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	return nil
}

type fakeReviewRepo struct {
	movies map[primitive.ObjectID]*models.MovieReview
	books  map[primitive.ObjectID]*models.BookReview
	err    error
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{
		movies: make(map[primitive.ObjectID]*models.MovieReview),
		books:  make(map[primitive.ObjectID]*models.BookReview),
	}
}

func (r *fakeReviewRepo) InsertMovie(ctx context.Context, review *models.MovieReview) (primitive.ObjectID, error) {
	if r.err != nil {
		return primitive.NilObjectID, r.err
	}
	stored := *review
	stored.ID = primitive.NewObjectID()
	r.movies[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeReviewRepo) InsertBook(ctx context.Context, review *models.BookReview) (primitive.ObjectID, error) {
	if r.err != nil {
		return primitive.NilObjectID, r.err
	}
	stored := *review
	stored.ID = primitive.NewObjectID()
	r.books[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeReviewRepo) GetMovie(ctx context.Context, id primitive.ObjectID) (*models.MovieReview, error) {
	if r.err != nil {
		return nil, r.err
	}
	review, ok := r.movies[id]
	if !ok {
		return nil, nil
	}
	clone := *review
	return &clone, nil
}

func (r *fakeReviewRepo) GetBook(ctx context.Context, id primitive.ObjectID) (*models.BookReview, error) {
	if r.err != nil {
		return nil, r.err
	}
	review, ok := r.books[id]
	if !ok {
		return nil, nil
	}
	clone := *review
	return &clone, nil
}

func (r *fakeReviewRepo) DeleteMovie(ctx context.Context, id primitive.ObjectID) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.movies[id]
	delete(r.movies, id)
	return ok, nil
}

func (r *fakeReviewRepo) DeleteBook(ctx context.Context, id primitive.ObjectID) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.books[id]
	delete(r.books, id)
	return ok, nil
}

func (r *fakeReviewRepo) ListMoviesByUser(ctx context.Context, userID primitive.ObjectID) ([]models.MovieReview, error) {
	if r.err != nil {
		return nil, r.err
	}
	var reviews []models.MovieReview
	for _, review := range r.movies {
		if review.UserID == userID {
			reviews = append(reviews, *review)
		}
	}
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
	return reviews, nil
}

func (r *fakeReviewRepo) ListBooksByUser(ctx context.Context, userID primitive.ObjectID) ([]models.BookReview, error) {
	if r.err != nil {
		return nil, r.err
	}
	var reviews []models.BookReview
	for _, review := range r.books {
		if review.UserID == userID {
			reviews = append(reviews, *review)
		}
	}
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
	return reviews, nil
}

var errCatalogMiss = errors.New("catalog lookup failed")

type fakeBookCatalog struct {
	books map[string]*models.Book
}

func (c *fakeBookCatalog) GetBook(ctx context.Context, id string) (*models.Book, error) {
	book, ok := c.books[id]
	if !ok {
		return nil, errCatalogMiss
	}
	clone := *book
	return &clone, nil
}

type fakeMovieCatalog struct {
	movies map[int]*models.Movie
}

func (c *fakeMovieCatalog) GetMovie(ctx context.Context, id int) (*models.Movie, error) {
	movie, ok := c.movies[id]
	if !ok {
		return nil, errCatalogMiss
	}
	clone := *movie
	return &clone, nil
}

func (c *fakeMovieCatalog) MoviesByIDs(ctx context.Context, ids []int) []models.Movie {
	items := make([]models.Movie, 0, len(ids))
	for _, id := range ids {
		if movie, ok := c.movies[id]; ok {
			items = append(items, *movie)
		}
	}
	return items
}
