package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"movi/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultBookSearchResults = 20

type LibraryHandler struct {
	library *services.LibraryService
	books   *services.OpenLibraryClient
	logger  *logrus.Logger
}

func NewLibraryHandler(library *services.LibraryService, books *services.OpenLibraryClient, logger *logrus.Logger) *LibraryHandler {
	return &LibraryHandler{library: library, books: books, logger: logger}
}

// SearchBooks handles both /book?name=... and /book/{title}.
func (h *LibraryHandler) SearchBooks(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(chi.URLParam(r, "title"))
	if title == "" {
		title = strings.TrimSpace(r.URL.Query().Get("name"))
	}

	n := defaultBookSearchResults
	if raw := r.URL.Query().Get("n"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			n = parsed
		}
	}

	result, err := h.books.SearchBooks(r.Context(), title, n)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *LibraryHandler) ReadBooks(w http.ResponseWriter, r *http.Request) {
	h.listBooks(w, r, services.ListRead, "readBooks")
}

func (h *LibraryHandler) ToBeReadBooks(w http.ResponseWriter, r *http.Request) {
	h.listBooks(w, r, services.ListToBeRead, "toBeReadBooks")
}

func (h *LibraryHandler) listBooks(w http.ResponseWriter, r *http.Request, list services.BookList, key string) {
	userID, err := parseObjectID(chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_user_id")
		return
	}

	items, err := h.library.BooksByUser(r.Context(), userID, list)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"userId": userID.Hex(),
		"count":  len(items),
		key:      items,
	})
}

func (h *LibraryHandler) AddReadBook(w http.ResponseWriter, r *http.Request) {
	h.addBook(w, r, services.ListRead)
}

func (h *LibraryHandler) AddToBeReadBook(w http.ResponseWriter, r *http.Request) {
	h.addBook(w, r, services.ListToBeRead)
}

func (h *LibraryHandler) addBook(w http.ResponseWriter, r *http.Request, list services.BookList) {
	userID, bookID, ok := bookParams(w, r)
	if !ok {
		return
	}
	if err := h.library.AddBook(r.Context(), userID, bookID, list); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"userId": userID.Hex(),
		"bookId": bookID,
	})
}

func (h *LibraryHandler) RemoveReadBook(w http.ResponseWriter, r *http.Request) {
	h.removeBook(w, r, services.ListRead)
}

func (h *LibraryHandler) RemoveToBeReadBook(w http.ResponseWriter, r *http.Request) {
	h.removeBook(w, r, services.ListToBeRead)
}

func (h *LibraryHandler) removeBook(w http.ResponseWriter, r *http.Request, list services.BookList) {
	userID, bookID, ok := bookParams(w, r)
	if !ok {
		return
	}
	newCount, modified, err := h.library.RemoveBook(r.Context(), userID, bookID, list)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":       true,
		"userId":   userID.Hex(),
		"bookId":   bookID,
		"newCount": newCount,
		"modified": modified,
	})
}

func bookParams(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, string, bool) {
	userID, err := parseObjectID(chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_user_id")
		return primitive.NilObjectID, "", false
	}
	bookID := strings.TrimSpace(chi.URLParam(r, "bookId"))
	if bookID == "" {
		respondError(w, http.StatusBadRequest, "invalid_book_id")
		return primitive.NilObjectID, "", false
	}
	return userID, bookID, true
}

type bookReviewRequest struct {
	UserID string      `json:"userId"`
	BookID string      `json:"bookId"`
	Rating json.Number `json:"rating"`
	Title  *string     `json:"title"`
	Body   string      `json:"body"`
}

func (h *LibraryHandler) CreateBookReview(w http.ResponseWriter, r *http.Request) {
	var req bookReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_payload")
		return
	}
	userID, err := parseObjectID(req.UserID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_user_id")
		return
	}
	if strings.TrimSpace(req.BookID) == "" {
		respondError(w, http.StatusBadRequest, "invalid_book_id")
		return
	}
	rating, err := strconv.Atoi(req.Rating.String())
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_rating")
		return
	}

	reviewID, err := h.library.CreateBookReview(r.Context(), userID, strings.TrimSpace(req.BookID), rating, req.Title, req.Body)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"ok":     true,
		"id":     reviewID.Hex(),
		"bookId": strings.TrimSpace(req.BookID),
		"userId": userID.Hex(),
		"rating": rating,
	})
}

type movieReviewRequest struct {
	UserID  string      `json:"userId"`
	MovieID json.Number `json:"movieId"`
	Rating  json.Number `json:"rating"`
	Title   *string     `json:"title"`
	Body    string      `json:"body"`
}

func (h *LibraryHandler) CreateMovieReview(w http.ResponseWriter, r *http.Request) {
	var req movieReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_payload")
		return
	}
	userID, err := parseObjectID(req.UserID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_user_id")
		return
	}
	movieID, err := services.ParseMovieID(req.MovieID.String())
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_movie_id")
		return
	}
	rating, err := strconv.Atoi(req.Rating.String())
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_rating")
		return
	}

	reviewID, err := h.library.CreateMovieReview(r.Context(), userID, movieID, rating, req.Title, req.Body)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"ok":      true,
		"id":      reviewID.Hex(),
		"movieId": movieID,
		"userId":  userID.Hex(),
		"rating":  rating,
	})
}

// ListReviews returns the user's combined movie and book reviews, newest
// first.
func (h *LibraryHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	userID, err := parseObjectID(chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_user_id")
		return
	}

	items, err := h.library.ListReviews(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"userId": userID.Hex(),
		"count":  len(items),
		"items":  items,
	})
}

func (h *LibraryHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	kind := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "kind")))
	if kind != "movie" && kind != "book" {
		respondError(w, http.StatusBadRequest, "invalid_kind")
		return
	}
	reviewID, err := parseObjectID(chi.URLParam(r, "reviewId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_review_id")
		return
	}

	deleted, userID, err := h.library.DeleteReview(r.Context(), kind, reviewID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	payload := map[string]interface{}{
		"ok":       true,
		"kind":     kind,
		"reviewId": reviewID.Hex(),
		"deleted":  deleted,
	}
	if !userID.IsZero() {
		payload["userId"] = userID.Hex()
	}
	respondJSON(w, http.StatusOK, payload)
}
