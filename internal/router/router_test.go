package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"movi/internal/handlers"
	"movi/internal/services"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthRoute(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	tmdb := services.NewTMDBClient(&services.TMDBConfig{Logger: log})
	h := &Handlers{
		Auth:    &handlers.AuthHandler{},
		Users:   &handlers.UserHandler{},
		Friends: &handlers.FriendHandler{},
		Library: &handlers.LibraryHandler{},
		Movies:  &handlers.MovieHandler{},
		Health:  handlers.NewHealthHandler(tmdb, PublicRoutes),
	}
	r := New(h, log)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		OK     bool            `json:"ok"`
		Auth   map[string]bool `json:"auth"`
		Routes []string        `json:"routes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.OK)
	assert.False(t, body.Auth["v3"])
	assert.Equal(t, PublicRoutes, body.Routes)
}

func TestUnknownRoute(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	tmdb := services.NewTMDBClient(&services.TMDBConfig{Logger: log})
	h := &Handlers{
		Auth:    &handlers.AuthHandler{},
		Users:   &handlers.UserHandler{},
		Friends: &handlers.FriendHandler{},
		Library: &handlers.LibraryHandler{},
		Movies:  &handlers.MovieHandler{},
		Health:  handlers.NewHealthHandler(tmdb, PublicRoutes),
	}
	r := New(h, log)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
