package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"movi/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const movieDetailAppend = "credits,watch/providers,videos"

type MovieHandler struct {
	movies *services.MovieService
	tmdb   *services.TMDBClient
	logger *logrus.Logger
}

func NewMovieHandler(movies *services.MovieService, tmdb *services.TMDBClient, logger *logrus.Logger) *MovieHandler {
	return &MovieHandler{movies: movies, tmdb: tmdb, logger: logger}
}

// Search returns normalized search results for ?name=&page=.
func (h *MovieHandler) Search(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		respondError(w, http.StatusBadRequest, "missing name")
		return
	}

	result, err := h.tmdb.SearchMovies(r.Context(), name, r.URL.Query().Get("page"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// SearchRaw proxies the provider's search response unchanged.
func (h *MovieHandler) SearchRaw(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "missing q")
		return
	}

	raw, err := h.tmdb.SearchMoviesRaw(r.Context(), query, r.URL.Query().Get("page"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

// SearchSimple is the normalized variant of SearchRaw.
func (h *MovieHandler) SearchSimple(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "missing q")
		return
	}

	result, err := h.tmdb.SearchMovies(r.Context(), query, r.URL.Query().Get("page"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Details proxies full movie details with credits, providers and videos
// appended.
func (h *MovieHandler) Details(w http.ResponseWriter, r *http.Request) {
	id, err := services.ParseMovieID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_movie_id")
		return
	}

	raw, err := h.tmdb.MovieDetailsRaw(r.Context(), id, movieDetailAppend)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

// WatchedByQuery serves the legacy ?id=&limit= form of the watched list.
func (h *MovieHandler) WatchedByQuery(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("id"))
	if raw == "" {
		respondError(w, http.StatusBadRequest, "missing_id")
		return
	}
	userID, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id")
		return
	}

	limit := services.DefaultWatchedLimit
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		if parsed, err := strconv.Atoi(rawLimit); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	items, err := h.movies.MoviesByUser(r.Context(), userID, services.ListWatched, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"userId": userID.Hex(),
		"count":  len(items),
		"items":  items,
	})
}

func (h *MovieHandler) WatchedMovies(w http.ResponseWriter, r *http.Request) {
	h.listMovies(w, r, services.ListWatched, "watchedMovies")
}

func (h *MovieHandler) WatchLaterMovies(w http.ResponseWriter, r *http.Request) {
	h.listMovies(w, r, services.ListWatchLater, "watchLaterMovies")
}

func (h *MovieHandler) listMovies(w http.ResponseWriter, r *http.Request, list services.MovieList, key string) {
	userID, err := parseObjectID(chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_user_id")
		return
	}

	items, err := h.movies.MoviesByUser(r.Context(), userID, list, services.DefaultWatchedLimit)
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

func (h *MovieHandler) AddWatchedMovie(w http.ResponseWriter, r *http.Request) {
	h.addMovie(w, r, services.ListWatched)
}

func (h *MovieHandler) AddWatchLaterMovie(w http.ResponseWriter, r *http.Request) {
	h.addMovie(w, r, services.ListWatchLater)
}

func (h *MovieHandler) addMovie(w http.ResponseWriter, r *http.Request, list services.MovieList) {
	userID, movieID, ok := movieParams(w, r)
	if !ok {
		return
	}
	if err := h.movies.AddMovie(r.Context(), userID, movieID, list); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"userId":  userID.Hex(),
		"movieId": movieID,
	})
}

func (h *MovieHandler) RemoveWatchedMovie(w http.ResponseWriter, r *http.Request) {
	h.removeMovie(w, r, services.ListWatched)
}

func (h *MovieHandler) RemoveWatchLaterMovie(w http.ResponseWriter, r *http.Request) {
	h.removeMovie(w, r, services.ListWatchLater)
}

func (h *MovieHandler) removeMovie(w http.ResponseWriter, r *http.Request, list services.MovieList) {
	userID, movieID, ok := movieParams(w, r)
	if !ok {
		return
	}
	newCount, modified, err := h.movies.RemoveMovie(r.Context(), userID, movieID, list)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":       true,
		"userId":   userID.Hex(),
		"movieId":  movieID,
		"newCount": newCount,
		"modified": modified,
	})
}

func movieParams(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, int, bool) {
	userID, err := parseObjectID(chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_user_id")
		return primitive.NilObjectID, 0, false
	}
	movieID, err := services.ParseMovieID(chi.URLParam(r, "movieId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_movie_id")
		return primitive.NilObjectID, 0, false
	}
	return userID, movieID, true
}
