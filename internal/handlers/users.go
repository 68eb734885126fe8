package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"movi/internal/models"
	"movi/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserHandler struct {
	users  *services.UserService
	feed   *services.FeedService
	logger *logrus.Logger
}

func NewUserHandler(users *services.UserService, feed *services.FeedService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{users: users, feed: feed, logger: logger}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context(), queryLimit(r, services.DefaultUserListLimit, services.MaxFeedLimit))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	shaped := make([]*models.PublicUser, 0, len(users))
	for i := range users {
		shaped = append(shaped, users[i].Public())
	}
	respondJSON(w, http.StatusOK, shaped)
}

type createUserRequest struct {
	Email     string       `json:"email" validate:"required,email"`
	Username  *string      `json:"username" validate:"omitempty,max=50"`
	Name      *models.Name `json:"name"`
	Bio       *string      `json:"bio"`
	AvatarURL *string      `json:"avatarUrl" validate:"omitempty,url"`
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_payload")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondErrorDetail(w, http.StatusBadRequest, "invalid_payload", err.Error())
		return
	}

	user := &models.User{
		Email:     req.Email,
		Username:  req.Username,
		Name:      req.Name,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	}
	created, err := h.users.Create(r.Context(), user)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created.Public())
}

func (h *UserHandler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByEmail(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user.Public())
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := parseObjectID(chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_user_id")
		return
	}
	if err := h.users.Delete(r.Context(), userID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"userId": userID.Hex(),
	})
}

type recordActivityRequest struct {
	Activity string                 `json:"activity"`
	Meta     map[string]interface{} `json:"meta"`
}

// RecordActivity logs a manual activity row for actions other handlers do not
// log themselves.
func (h *UserHandler) RecordActivity(w http.ResponseWriter, r *http.Request) {
	userID, err := parseObjectID(chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_user_id")
		return
	}

	var req recordActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_payload")
		return
	}
	label := strings.TrimSpace(req.Activity)
	if label == "" {
		respondError(w, http.StatusBadRequest, "missing_activity")
		return
	}

	activityID, count, err := h.feed.Record(r.Context(), userID, label, req.Meta)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"ok":              true,
		"activityId":      activityID.Hex(),
		"userId":          userID.Hex(),
		"activitiesCount": count,
	})
}

// OwnFeed returns the user's recent activity, newest first.
func (h *UserHandler) OwnFeed(w http.ResponseWriter, r *http.Request) {
	userID, err := parseObjectID(chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_user_id")
		return
	}

	entries, err := h.feed.OwnFeed(r.Context(), userID, queryLimit(r, services.DefaultOwnFeedLimit, services.MaxFeedLimit))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"count": len(entries),
		"items": entries,
	})
}

// NetworkFeed returns the user's activity merged with their friends'. The
// friend set comes from the ?friends= list when supplied (malformed entries
// silently skipped) and from the stored following relation otherwise.
func (h *UserHandler) NetworkFeed(w http.ResponseWriter, r *http.Request) {
	userID, err := parseObjectID(chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_user_id")
		return
	}

	var friendIDs []primitive.ObjectID
	if raw := strings.TrimSpace(r.URL.Query().Get("friends")); raw != "" {
		friendIDs = []primitive.ObjectID{}
		for _, part := range strings.Split(raw, ",") {
			id, err := parseObjectID(part)
			if err != nil {
				continue
			}
			friendIDs = append(friendIDs, id)
		}
	}

	entries, friendCount, err := h.feed.NetworkFeed(r.Context(), userID, friendIDs,
		queryLimit(r, services.DefaultNetworkFeedLimit, services.MaxFeedLimit))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":          true,
		"userId":      userID.Hex(),
		"friendCount": friendCount,
		"count":       len(entries),
		"items":       entries,
	})
}
