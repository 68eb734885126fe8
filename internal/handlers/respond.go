package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"movi/internal/logger"
	"movi/internal/services"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Get().WithError(err).Error("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code string) {
	respondJSON(w, status, map[string]interface{}{"error": code})
}

func respondErrorDetail(w http.ResponseWriter, status int, code, detail string) {
	respondJSON(w, status, map[string]interface{}{"error": code, "detail": detail})
}

// respondServiceError maps service-layer failures onto the error taxonomy:
// specific 4xx codes for client and not-found faults, 502 with the upstream
// status for catalog failures, 500 with a detail string for the rest.
func respondServiceError(w http.ResponseWriter, err error) {
	var upstream *services.UpstreamError
	var partial *services.PartialWriteError

	switch {
	case errors.Is(err, services.ErrUserNotFound):
		respondErrorDetail(w, http.StatusNotFound, "user_not_found", "The requested user was not found")
	case errors.Is(err, services.ErrReviewNotFound):
		respondError(w, http.StatusNotFound, "review_not_found")
	case errors.Is(err, services.ErrBookNotFound):
		respondErrorDetail(w, http.StatusNotFound, "book_not_found", "The requested book was not found")
	case errors.Is(err, services.ErrMovieNotFound):
		respondErrorDetail(w, http.StatusNotFound, "movie_not_found", "The requested movie was not found")
	case errors.Is(err, services.ErrDuplicateEntry):
		respondErrorDetail(w, http.StatusConflict, "duplicate_entry", "The requested entry is already registered")
	case errors.Is(err, services.ErrEmailTaken):
		respondError(w, http.StatusBadRequest, "email_taken")
	case errors.Is(err, services.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid_credentials")
	case errors.Is(err, services.ErrRatingOutOfRange):
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "rating_out_of_range",
			"min":   services.RatingMin,
			"max":   services.RatingMax,
		})
	case errors.Is(err, services.ErrMissingBody):
		respondError(w, http.StatusBadRequest, "missing_body")
	case errors.Is(err, services.ErrNotConfigured):
		respondErrorDetail(w, http.StatusInternalServerError, "server", "TMDB_V3_KEY not set")
	case errors.As(err, &upstream):
		respondJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error":  "upstream",
			"status": upstream.Status,
		})
	case errors.As(err, &partial):
		respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error":    "user_update_failed",
			"detail":   partial.Error(),
			"reviewId": partial.ReviewID.Hex(),
		})
	default:
		respondErrorDetail(w, http.StatusInternalServerError, "server", err.Error())
	}
}

// parseObjectID validates a user-facing id string against the 24-hex shape
// before it is used in any lookup.
func parseObjectID(s string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(strings.TrimSpace(s))
}

// queryLimit reads a limit query parameter, clamped to [1, max].
func queryLimit(r *http.Request, def, max int64) int64 {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	if limit < 1 {
		return 1
	}
	if limit > max {
		return max
	}
	return limit
}
