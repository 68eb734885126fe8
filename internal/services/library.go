package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"movi/internal/models"
	"movi/internal/repository"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RatingMin = 1
	RatingMax = 10
)

// BookList selects one of the user's book membership lists.
type BookList string

const (
	ListRead     BookList = "readBooks"
	ListToBeRead BookList = "toBeReadBooks"
)

type bookCatalog interface {
	GetBook(ctx context.Context, id string) (*models.Book, error)
}

type movieCatalog interface {
	GetMovie(ctx context.Context, id int) (*models.Movie, error)
}

// LibraryService covers book list membership and reviews for both media
// kinds, including the display shaping of stored reviews.
type LibraryService struct {
	users      repository.UserRepository
	reviews    repository.ReviewRepository
	activities repository.ActivityRepository
	books      bookCatalog
	movies     movieCatalog
	logger     *logrus.Logger
}

func NewLibraryService(
	users repository.UserRepository,
	reviews repository.ReviewRepository,
	activities repository.ActivityRepository,
	books bookCatalog,
	movies movieCatalog,
	logger *logrus.Logger,
) *LibraryService {
	return &LibraryService{
		users:      users,
		reviews:    reviews,
		activities: activities,
		books:      books,
		movies:     movies,
		logger:     logger,
	}
}

// BooksByUser returns the enriched contents of one of the user's book lists.
// Ids whose catalog lookup fails are omitted.
func (s *LibraryService) BooksByUser(ctx context.Context, userID primitive.ObjectID, list BookList) ([]models.Book, error) {
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := user.ReadBooks
	if list == ListToBeRead {
		ids = user.ToBeReadBooks
	}

	items := make([]models.Book, 0, len(ids))
	for _, id := range ids {
		book, err := s.books.GetBook(ctx, id)
		if err != nil {
			s.logger.WithError(err).WithField("book_id", id).Debug("Skipping failed book lookup")
			continue
		}
		items = append(items, *book)
	}
	return items, nil
}

// AddBook adds a book to the given list. Adding to the read list also removes
// the book from the to-be-read list, promoting it. The book must exist in the
// catalog and may not already be on the list.
func (s *LibraryService) AddBook(ctx context.Context, userID primitive.ObjectID, bookID string, list BookList) error {
	book, err := s.books.GetBook(ctx, bookID)
	if err != nil {
		return ErrBookNotFound
	}
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return err
	}

	current := user.ReadBooks
	if list == ListToBeRead {
		current = user.ToBeReadBooks
	}
	for _, id := range current {
		if id == bookID {
			return ErrDuplicateEntry
		}
	}

	if err := s.users.AddToList(ctx, userID, string(list), bookID); err != nil {
		return err
	}
	if list == ListRead {
		if err := s.users.PullFromList(ctx, userID, string(ListToBeRead), bookID); err != nil {
			return err
		}
	}

	status := "Read"
	label := "Added book to Read"
	if list == ListToBeRead {
		status = "Read Later"
		label = "Added book to Read Later"
	}
	meta := map[string]interface{}{
		"bookId": bookID,
		"status": status,
		"type":   "book",
	}
	if book.Title != "" {
		meta["title"] = book.Title
	}
	if book.CoverURL != nil {
		meta["coverUrl"] = *book.CoverURL
	}
	s.logActivity(ctx, userID, label, meta)
	return nil
}

// RemoveBook removes a book from the given list and reports the new list size
// plus whether anything changed.
func (s *LibraryService) RemoveBook(ctx context.Context, userID primitive.ObjectID, bookID string, list BookList) (int, bool, error) {
	if _, err := s.books.GetBook(ctx, bookID); err != nil {
		return 0, false, ErrBookNotFound
	}
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return 0, false, err
	}

	before := len(user.ReadBooks)
	if list == ListToBeRead {
		before = len(user.ToBeReadBooks)
	}

	if err := s.users.PullFromList(ctx, userID, string(list), bookID); err != nil {
		return 0, false, err
	}

	updated, err := s.requireUser(ctx, userID)
	if err != nil {
		return 0, false, err
	}
	after := len(updated.ReadBooks)
	if list == ListToBeRead {
		after = len(updated.ToBeReadBooks)
	}
	return after, after != before, nil
}

func validateReview(rating int, body string) (string, error) {
	if rating < RatingMin || rating > RatingMax {
		return "", ErrRatingOutOfRange
	}
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return "", ErrMissingBody
	}
	return trimmed, nil
}

// CreateBookReview stores a review and runs the follow-up steps: reference
// the review on the user document, promote the book into the read list, and
// log an activity row. The steps are independent single-document writes with
// no rollback; a failure after the insert is reported as a partial write
// carrying the created review id.
func (s *LibraryService) CreateBookReview(ctx context.Context, userID primitive.ObjectID, bookID string, rating int, title *string, body string) (primitive.ObjectID, error) {
	trimmed, err := validateReview(rating, body)
	if err != nil {
		return primitive.NilObjectID, err
	}
	book, err := s.books.GetBook(ctx, bookID)
	if err != nil {
		return primitive.NilObjectID, ErrBookNotFound
	}
	if _, err := s.requireUser(ctx, userID); err != nil {
		return primitive.NilObjectID, err
	}

	now := time.Now().UTC()
	reviewID, err := s.reviews.InsertBook(ctx, &models.BookReview{
		UserID:    userID,
		BookID:    bookID,
		Rating:    rating,
		Title:     title,
		Body:      trimmed,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return primitive.NilObjectID, err
	}

	if err := s.users.AddToList(ctx, userID, "bookReviews", reviewID); err != nil {
		return reviewID, &PartialWriteError{Step: "review reference update", ReviewID: reviewID, Err: err}
	}
	if err := s.users.AddToList(ctx, userID, string(ListRead), bookID); err != nil {
		return reviewID, &PartialWriteError{Step: "read list update", ReviewID: reviewID, Err: err}
	}
	if err := s.users.PullFromList(ctx, userID, string(ListToBeRead), bookID); err != nil {
		return reviewID, &PartialWriteError{Step: "to-be-read list update", ReviewID: reviewID, Err: err}
	}

	meta := map[string]interface{}{
		"bookId":   bookID,
		"rating":   rating,
		"reviewId": reviewID.Hex(),
		"type":     "book",
	}
	if title != nil {
		meta["title"] = *title
	}
	if book.CoverURL != nil {
		meta["coverUrl"] = *book.CoverURL
	}
	s.logActivity(ctx, userID, "Reviewed book", meta)
	return reviewID, nil
}

// CreateMovieReview is the movie counterpart of CreateBookReview, promoting
// the movie from watch-later into watched.
func (s *LibraryService) CreateMovieReview(ctx context.Context, userID primitive.ObjectID, movieID int, rating int, title *string, body string) (primitive.ObjectID, error) {
	trimmed, err := validateReview(rating, body)
	if err != nil {
		return primitive.NilObjectID, err
	}
	movie, err := s.movies.GetMovie(ctx, movieID)
	if err != nil {
		return primitive.NilObjectID, ErrMovieNotFound
	}
	if _, err := s.requireUser(ctx, userID); err != nil {
		return primitive.NilObjectID, err
	}

	now := time.Now().UTC()
	reviewID, err := s.reviews.InsertMovie(ctx, &models.MovieReview{
		UserID:    userID,
		MovieID:   movieID,
		Rating:    rating,
		Title:     title,
		Body:      trimmed,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return primitive.NilObjectID, err
	}

	if err := s.users.AddToList(ctx, userID, "movieReviews", reviewID); err != nil {
		return reviewID, &PartialWriteError{Step: "review reference update", ReviewID: reviewID, Err: err}
	}
	if err := s.users.AddToList(ctx, userID, "watchedMovies", movieID); err != nil {
		return reviewID, &PartialWriteError{Step: "watched list update", ReviewID: reviewID, Err: err}
	}
	if err := s.users.PullFromList(ctx, userID, "watchLaterMovies", movieID); err != nil {
		return reviewID, &PartialWriteError{Step: "watch-later list update", ReviewID: reviewID, Err: err}
	}

	meta := map[string]interface{}{
		"movieId":  movieID,
		"rating":   rating,
		"reviewId": reviewID.Hex(),
		"type":     "movie",
	}
	if title != nil {
		meta["title"] = *title
	}
	if movie.PosterURL != nil {
		meta["posterUrl"] = *movie.PosterURL
	}
	s.logActivity(ctx, userID, "Reviewed movie", meta)
	return reviewID, nil
}

// DeleteReview deletes a review of either kind, prunes its reference from the
// user document and removes associated activity rows. The cleanup after the
// delete is best-effort: its failures are logged and swallowed.
func (s *LibraryService) DeleteReview(ctx context.Context, kind string, reviewID primitive.ObjectID) (bool, primitive.ObjectID, error) {
	var (
		userID  primitive.ObjectID
		field   string
		deleted bool
	)

	switch kind {
	case "movie":
		review, err := s.reviews.GetMovie(ctx, reviewID)
		if err != nil {
			return false, primitive.NilObjectID, err
		}
		if review == nil {
			return false, primitive.NilObjectID, ErrReviewNotFound
		}
		userID = review.UserID
		field = "movieReviews"
		deleted, err = s.reviews.DeleteMovie(ctx, reviewID)
		if err != nil {
			return false, primitive.NilObjectID, err
		}
	case "book":
		review, err := s.reviews.GetBook(ctx, reviewID)
		if err != nil {
			return false, primitive.NilObjectID, err
		}
		if review == nil {
			return false, primitive.NilObjectID, ErrReviewNotFound
		}
		userID = review.UserID
		field = "bookReviews"
		deleted, err = s.reviews.DeleteBook(ctx, reviewID)
		if err != nil {
			return false, primitive.NilObjectID, err
		}
	}

	if !userID.IsZero() {
		if err := s.users.PullFromList(ctx, userID, field, reviewID); err != nil {
			s.logger.WithError(err).Warn("Failed to prune review reference")
		}
		s.cleanupActivities(ctx, userID, reviewID)
	}
	return deleted, userID, nil
}

func (s *LibraryService) cleanupActivities(ctx context.Context, userID, reviewID primitive.ObjectID) {
	rows, err := s.activities.FindByReviewID(ctx, userID, reviewID.Hex())
	if err != nil || len(rows) == 0 {
		if err != nil {
			s.logger.WithError(err).Warn("Failed to look up review activities")
		}
		return
	}

	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, row := range rows {
		if !row.ID.IsZero() {
			ids = append(ids, row.ID)
		}
	}
	if err := s.activities.DeleteByIDs(ctx, ids); err != nil {
		s.logger.WithError(err).Warn("Failed to delete review activities")
		return
	}
	if err := s.users.PullActivityRefs(ctx, userID, ids); err != nil {
		s.logger.WithError(err).Warn("Failed to prune activity references")
	}
}

// ListReviews returns the user's movie and book reviews combined, shaped for
// display and re-sorted newest first. The re-sort is required because the two
// source collections are only ordered internally.
func (s *LibraryService) ListReviews(ctx context.Context, userID primitive.ObjectID) ([]models.ShapedReview, error) {
	movieReviews, err := s.reviews.ListMoviesByUser(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to list movie reviews")
		movieReviews = nil
	}
	bookReviews, err := s.reviews.ListBooksByUser(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to list book reviews")
		bookReviews = nil
	}

	items := make([]models.ShapedReview, 0, len(movieReviews)+len(bookReviews))
	for i := range movieReviews {
		if shaped := s.ShapeMovieReview(ctx, &movieReviews[i]); shaped != nil {
			items = append(items, *shaped)
		}
	}
	for i := range bookReviews {
		if shaped := s.ShapeBookReview(ctx, &bookReviews[i]); shaped != nil {
			items = append(items, *shaped)
		}
	}

	// Newest first; zero timestamps sort last.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// ShapeMovieReview merges a stored movie review with catalog metadata. Failed
// enrichment leaves the item fields unset; the review's own fields are always
// kept. Returns nil only when the record lacks a usable identifier.
func (s *LibraryService) ShapeMovieReview(ctx context.Context, review *models.MovieReview) *models.ShapedReview {
	if review == nil || review.ID.IsZero() {
		return nil
	}

	shaped := &models.ShapedReview{
		ID:        review.ID.Hex(),
		Kind:      "movie",
		ItemID:    review.MovieID,
		Rating:    review.Rating,
		Title:     review.Title,
		Body:      review.Body,
		CreatedAt: review.CreatedAt,
		UpdatedAt: review.UpdatedAt,
	}
	movie, err := s.movies.GetMovie(ctx, review.MovieID)
	if err != nil {
		return shaped
	}
	if movie.Title != "" {
		shaped.ItemTitle = &movie.Title
	}
	shaped.ItemPoster = movie.PosterURL
	if movie.Year != "" {
		shaped.ItemYear = movie.Year
	}
	return shaped
}

// ShapeBookReview is the book counterpart; the author field joins the
// resolved contributor names.
func (s *LibraryService) ShapeBookReview(ctx context.Context, review *models.BookReview) *models.ShapedReview {
	if review == nil || review.ID.IsZero() {
		return nil
	}

	shaped := &models.ShapedReview{
		ID:        review.ID.Hex(),
		Kind:      "book",
		ItemID:    review.BookID,
		Rating:    review.Rating,
		Title:     review.Title,
		Body:      review.Body,
		CreatedAt: review.CreatedAt,
		UpdatedAt: review.UpdatedAt,
	}
	book, err := s.books.GetBook(ctx, review.BookID)
	if err != nil {
		return shaped
	}
	if book.Title != "" {
		shaped.ItemTitle = &book.Title
	}
	if len(book.Authors) > 0 {
		author := strings.Join(book.Authors, ", ")
		shaped.ItemAuthor = &author
	}
	shaped.ItemCover = book.CoverURL
	if book.Year != nil {
		shaped.ItemYear = *book.Year
	}
	return shaped
}

// logActivity records an activity row and prepends its reference to the user
// document. Failures are swallowed so library operations never error out
// because of logging.
func (s *LibraryService) logActivity(ctx context.Context, userID primitive.ObjectID, label string, meta map[string]interface{}) {
	activityID, err := s.activities.Insert(ctx, userID, label, meta)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID.Hex()).Warn("Activity log failed")
		return
	}
	if err := s.users.PushActivityRef(ctx, userID, activityID); err != nil {
		s.logger.WithError(err).WithField("user_id", userID.Hex()).Warn("Activity reference push failed")
	}
}

func (s *LibraryService) requireUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
