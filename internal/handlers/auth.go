package handlers

import (
	"encoding/json"
	"net/http"

	"movi/internal/models"
	"movi/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

var validate = validator.New()

type AuthHandler struct {
	users  *services.UserService
	logger *logrus.Logger
}

func NewAuthHandler(users *services.UserService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{users: users, logger: logger}
}

type registerRequest struct {
	Email     string       `json:"email" validate:"required,email"`
	Password  string       `json:"password" validate:"required,min=1"`
	Username  *string      `json:"username" validate:"omitempty,max=50"`
	Name      *models.Name `json:"name"`
	Bio       *string      `json:"bio"`
	AvatarURL *string      `json:"avatarUrl" validate:"omitempty,url"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_payload")
		return
	}
	if req.Password == "" {
		respondError(w, http.StatusBadRequest, "missing_password")
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
	created, err := h.users.Register(r.Context(), user, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created.Public())
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_payload")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "missing_credentials")
		return
	}

	token, user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user.Public(),
	})
}
