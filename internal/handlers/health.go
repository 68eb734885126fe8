package handlers

import (
	"net/http"

	"movi/internal/services"
)

type HealthHandler struct {
	tmdb   *services.TMDBClient
	routes []string
}

func NewHealthHandler(tmdb *services.TMDBClient, routes []string) *HealthHandler {
	return &HealthHandler{tmdb: tmdb, routes: routes}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ok": true,
		"auth": map[string]bool{
			"v3": h.tmdb.Enabled(),
		},
		"routes": h.routes,
	})
}
