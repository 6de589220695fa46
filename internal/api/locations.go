package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gardenai/internal/domain"
	"gardenai/internal/store"
)

type locationPayload struct {
	Name         *string `json:"name"`
	LocationType *string `json:"locationType"`
	Description  *string `json:"description"`
	SunExposure  *string `json:"sunExposure"`
	SoilType     *string `json:"soilType"`
	ClimateZone  *string `json:"climateZone"`
}

// ListLocations handles GET /api/locations.
func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.repo.ListLocations(r.Context())
	if err != nil {
		StoreError(w, err)
		return
	}
	JSON(w, http.StatusOK, locations)
}

// GetLocation handles GET /api/locations/{id}.
func (h *Handler) GetLocation(w http.ResponseWriter, r *http.Request) {
	location, err := h.repo.GetLocation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		StoreError(w, err)
		return
	}
	JSON(w, http.StatusOK, location)
}

// CreateLocation handles POST /api/locations.
func (h *Handler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req locationPayload
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == nil || *req.Name == "" {
		Error(w, http.StatusBadRequest, "name is required")
		return
	}

	l := &domain.GardenLocation{Name: *req.Name}
	if req.LocationType != nil {
		l.LocationType = domain.LocationType(*req.LocationType)
	}
	if req.Description != nil {
		l.Description = *req.Description
	}
	if req.SunExposure != nil {
		l.SunExposure = domain.SunRequirement(*req.SunExposure)
	}
	if req.SoilType != nil {
		l.SoilType = *req.SoilType
	}
	if req.ClimateZone != nil {
		l.ClimateZone = *req.ClimateZone
	}

	if err := h.repo.CreateLocation(r.Context(), l); err != nil {
		StoreError(w, err)
		return
	}
	JSON(w, http.StatusCreated, l)
}

// UpdateLocation handles PATCH /api/locations/{id}.
func (h *Handler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req locationPayload
	if !decodeBody(w, r, &req) {
		return
	}

	u := store.LocationUpdate{
		Name:        req.Name,
		Description: req.Description,
		SoilType:    req.SoilType,
		ClimateZone: req.ClimateZone,
	}
	if req.LocationType != nil {
		lt := domain.LocationType(*req.LocationType)
		u.LocationType = &lt
	}
	if req.SunExposure != nil {
		se := domain.SunRequirement(*req.SunExposure)
		u.SunExposure = &se
	}

	location, err := h.repo.UpdateLocation(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		StoreError(w, err)
		return
	}
	JSON(w, http.StatusOK, location)
}

// DeleteLocation handles DELETE /api/locations/{id}.
func (h *Handler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	location, err := h.repo.DeleteLocation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		StoreError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"deletedName": location.Name})
}
