package handlers

import (
	"context"
	"net/http"

	"movi/internal/models"
	"movi/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FriendHandler struct {
	users  *services.UserService
	logger *logrus.Logger
}

func NewFriendHandler(users *services.UserService, logger *logrus.Logger) *FriendHandler {
	return &FriendHandler{users: users, logger: logger}
}

type networkEntry struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	UserID   string `json:"userId"`
}

func shapeNetworkEntries(refs []models.UserRef) []networkEntry {
	items := make([]networkEntry, 0, len(refs))
	for _, ref := range refs {
		entry := networkEntry{UserID: ref.ID.Hex()}
		if ref.Username != nil {
			entry.Username = *ref.Username
			entry.Name = *ref.Username
		}
		if ref.Name != nil {
			entry.Name = ref.Name.First + " " + ref.Name.Last
		}
		items = append(items, entry)
	}
	return items
}

func (h *FriendHandler) Followers(w http.ResponseWriter, r *http.Request) {
	userID, err := parseObjectID(chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_user_id")
		return
	}

	refs, err := h.users.Followers(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	items := shapeNetworkEntries(refs)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"userId":    userID.Hex(),
		"count":     len(items),
		"followers": items,
	})
}

func (h *FriendHandler) Following(w http.ResponseWriter, r *http.Request) {
	userID, err := parseObjectID(chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_user_id")
		return
	}

	refs, err := h.users.Following(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	items := shapeNetworkEntries(refs)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"userId":    userID.Hex(),
		"count":     len(items),
		"following": items,
	})
}

func (h *FriendHandler) AddFollower(w http.ResponseWriter, r *http.Request) {
	h.add(w, r, h.users.AddFollower)
}

func (h *FriendHandler) AddFollowing(w http.ResponseWriter, r *http.Request) {
	h.add(w, r, h.users.AddFollowing)
}

func (h *FriendHandler) add(w http.ResponseWriter, r *http.Request, op func(context.Context, primitive.ObjectID, primitive.ObjectID) error) {
	userID, err := parseObjectID(chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_user_id")
		return
	}
	targetID, err := parseObjectID(chi.URLParam(r, "targetId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_user_id")
		return
	}

	if err := op(r.Context(), userID, targetID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":          true,
		"userId":      userID.Hex(),
		"userAddedId": targetID.Hex(),
	})
}

func (h *FriendHandler) RemoveFollower(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, h.users.RemoveFollower)
}

func (h *FriendHandler) RemoveFollowing(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, h.users.RemoveFollowing)
}

func (h *FriendHandler) remove(w http.ResponseWriter, r *http.Request, op func(context.Context, primitive.ObjectID, primitive.ObjectID) (int, bool, error)) {
	userID, err := parseObjectID(chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_user_id")
		return
	}
	targetID, err := parseObjectID(chi.URLParam(r, "targetId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_user_id")
		return
	}

	newCount, modified, err := op(r.Context(), userID, targetID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":            true,
		"userId":        userID.Hex(),
		"removedUserId": targetID.Hex(),
		"newCount":      newCount,
		"modified":      modified,
	})
}
