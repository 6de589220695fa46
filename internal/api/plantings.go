package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"gardenai/internal/domain"
	"gardenai/internal/store"
)

type plantingPayload struct {
	PlantID        *string `json:"plantId"`
	LocationID     *string `json:"locationId"`
	Year           *int    `json:"year"`
	Status         *string `json:"status"`
	SowIndoorDate  *string `json:"sowIndoorDate"`
	SowOutdoorDate *string `json:"sowOutdoorDate"`
	TransplantDate *string `json:"transplantDate"`
	HarvestStart   *string `json:"harvestStart"`
	HarvestEnd     *string `json:"harvestEnd"`
	Notes          *string `json:"notes"`
}

// ListPlantings handles GET /api/plantings with optional filters.
func (h *Handler) ListPlantings(w http.ResponseWriter, r *http.Request) {
	f := store.PlantingFilter{
		PlantID:    r.URL.Query().Get("plantId"),
		LocationID: r.URL.Query().Get("locationId"),
		Status:     domain.PlantingStatus(r.URL.Query().Get("status")),
	}
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			Error(w, http.StatusBadRequest, "invalid year")
			return
		}
		f.Year = year
	}

	plantings, err := h.repo.ListPlantings(r.Context(), f)
	if err != nil {
		StoreError(w, err)
		return
	}
	JSON(w, http.StatusOK, plantings)
}

// GetPlanting handles GET /api/plantings/{id}.
func (h *Handler) GetPlanting(w http.ResponseWriter, r *http.Request) {
	planting, err := h.repo.GetPlanting(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		StoreError(w, err)
		return
	}
	JSON(w, http.StatusOK, planting)
}

// CreatePlanting handles POST /api/plantings.
func (h *Handler) CreatePlanting(w http.ResponseWriter, r *http.Request) {
	var req plantingPayload
	if !decodeBody(w, r, &req) {
		return
	}
	if req.PlantID == nil || *req.PlantID == "" {
		Error(w, http.StatusBadRequest, "plantId is required")
		return
	}

	pl := &domain.Planting{PlantID: *req.PlantID}
	if req.LocationID != nil {
		pl.LocationID = *req.LocationID
	}
	if req.Year != nil {
		pl.Year = *req.Year
	}
	if req.Status != nil {
		pl.Status = domain.PlantingStatus(*req.Status)
	}
	if req.Notes != nil {
		pl.Notes = *req.Notes
	}

	dates := []struct {
		raw  *string
		dest **time.Time
	}{
		{req.SowIndoorDate, &pl.SowIndoorDate},
		{req.SowOutdoorDate, &pl.SowOutdoorDate},
		{req.TransplantDate, &pl.TransplantDate},
		{req.HarvestStart, &pl.HarvestStart},
		{req.HarvestEnd, &pl.HarvestEnd},
	}
	for _, d := range dates {
		if d.raw == nil {
			continue
		}
		t, ok := parseAPIDate(*d.raw)
		if !ok {
			Error(w, http.StatusBadRequest, "invalid date format")
			return
		}
		*d.dest = t
	}

	if err := h.repo.CreatePlanting(r.Context(), pl); err != nil {
		StoreError(w, err)
		return
	}
	JSON(w, http.StatusCreated, pl)
}

// UpdatePlanting handles PATCH /api/plantings/{id}.
func (h *Handler) UpdatePlanting(w http.ResponseWriter, r *http.Request) {
	var req plantingPayload
	if !decodeBody(w, r, &req) {
		return
	}

	u := store.PlantingUpdate{
		LocationID: req.LocationID,
		Year:       req.Year,
		Notes:      req.Notes,
	}
	if req.Status != nil {
		st := domain.PlantingStatus(*req.Status)
		u.Status = &st
	}

	dates := []struct {
		raw  *string
		dest **time.Time
	}{
		{req.SowIndoorDate, &u.SowIndoorDate},
		{req.SowOutdoorDate, &u.SowOutdoorDate},
		{req.TransplantDate, &u.TransplantDate},
		{req.HarvestStart, &u.HarvestStart},
		{req.HarvestEnd, &u.HarvestEnd},
	}
	for _, d := range dates {
		if d.raw == nil {
			continue
		}
		t, ok := parseAPIDate(*d.raw)
		if !ok || t == nil {
			Error(w, http.StatusBadRequest, "invalid date format")
			return
		}
		*d.dest = t
	}

	planting, err := h.repo.UpdatePlanting(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		StoreError(w, err)
		return
	}
	JSON(w, http.StatusOK, planting)
}

// DeletePlanting handles DELETE /api/plantings/{id}.
func (h *Handler) DeletePlanting(w http.ResponseWriter, r *http.Request) {
	planting, err := h.repo.DeletePlanting(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		StoreError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"deletedPlantingId": planting.ID})
}
