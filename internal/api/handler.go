// Package api provides HTTP handlers for the garden planner REST API.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/containerd/errdefs"
	"github.com/go-chi/chi/v5"

	"gardenai/internal/store"
)

// maxBodySize caps request bodies (1MB).
const maxBodySize = 1 << 20

// Handler provides common handler utilities over the repository.
type Handler struct {
	repo store.Repository
}

// NewHandler creates a new Handler.
func NewHandler(repo store.Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes mounts all REST endpoints under /api.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/plants", func(r chi.Router) {
			r.Get("/", h.ListPlants)
			r.Post("/", h.CreatePlant)
			r.Get("/{id}", h.GetPlant)
			r.Patch("/{id}", h.UpdatePlant)
			r.Delete("/{id}", h.DeletePlant)
		})
		r.Route("/seeds", func(r chi.Router) {
			r.Get("/", h.ListSeeds)
			r.Post("/", h.CreateSeed)
			r.Get("/{id}", h.GetSeed)
			r.Patch("/{id}", h.UpdateSeed)
			r.Delete("/{id}", h.DeleteSeed)
		})
		r.Route("/locations", func(r chi.Router) {
			r.Get("/", h.ListLocations)
			r.Post("/", h.CreateLocation)
			r.Get("/{id}", h.GetLocation)
			r.Patch("/{id}", h.UpdateLocation)
			r.Delete("/{id}", h.DeleteLocation)
		})
		r.Route("/plantings", func(r chi.Router) {
			r.Get("/", h.ListPlantings)
			r.Post("/", h.CreatePlanting)
			r.Get("/{id}", h.GetPlanting)
			r.Patch("/{id}", h.UpdatePlanting)
			r.Delete("/{id}", h.DeletePlanting)
		})
		r.Get("/dashboard", h.GetDashboard)
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.ListSessions)
			r.Post("/", h.CreateSession)
			r.Get("/{id}", h.GetSession)
			r.Get("/{id}/messages", h.ListSessionMessages)
		})
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// StoreError maps repository failures onto HTTP status codes.
func StoreError(w http.ResponseWriter, err error) {
	switch {
	case errdefs.IsNotFound(err):
		Error(w, http.StatusNotFound, err.Error())
	case errdefs.IsConflict(err):
		Error(w, http.StatusConflict, err.Error())
	case errdefs.IsInvalidArgument(err):
		Error(w, http.StatusBadRequest, err.Error())
	default:
		Error(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// parseAPIDate accepts RFC3339 timestamps or plain dates like 2026-03-15.
func parseAPIDate(s string) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, true
		}
	}
	return nil, false
}
