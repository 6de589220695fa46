package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gardenai/internal/domain"
	"gardenai/internal/store"
)

type plantPayload struct {
	Name           *string `json:"name"`
	Variety        *string `json:"variety"`
	Type           *string `json:"type"`
	DaysToMaturity *int    `json:"daysToMaturity"`
	SunRequirement *string `json:"sunRequirement"`
	WaterNeeds     *string `json:"waterNeeds"`
	GrowingNotes   *string `json:"growingNotes"`
}

// ListPlants handles GET /api/plants with optional name and type filters.
func (h *Handler) ListPlants(w http.ResponseWriter, r *http.Request) {
	f := store.PlantFilter{
		Name: r.URL.Query().Get("name"),
		Type: domain.PlantType(r.URL.Query().Get("type")),
	}
	plants, err := h.repo.ListPlants(r.Context(), f)
	if err != nil {
		StoreError(w, err)
		return
	}
	JSON(w, http.StatusOK, plants)
}

// GetPlant handles GET /api/plants/{id}.
func (h *Handler) GetPlant(w http.ResponseWriter, r *http.Request) {
	plant, err := h.repo.GetPlant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		StoreError(w, err)
		return
	}
	JSON(w, http.StatusOK, plant)
}

// CreatePlant handles POST /api/plants.
func (h *Handler) CreatePlant(w http.ResponseWriter, r *http.Request) {
	var req plantPayload
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == nil || *req.Name == "" {
		Error(w, http.StatusBadRequest, "name is required")
		return
	}

	p := &domain.Plant{Name: *req.Name, DaysToMaturity: req.DaysToMaturity}
	if req.Variety != nil {
		p.Variety = *req.Variety
	}
	if req.Type != nil {
		p.Type = domain.PlantType(*req.Type)
	}
	if req.SunRequirement != nil {
		p.SunRequirement = domain.SunRequirement(*req.SunRequirement)
	}
	if req.WaterNeeds != nil {
		p.WaterNeeds = domain.WaterNeeds(*req.WaterNeeds)
	}
	if req.GrowingNotes != nil {
		p.GrowingNotes = *req.GrowingNotes
	}

	if err := h.repo.CreatePlant(r.Context(), p); err != nil {
		StoreError(w, err)
		return
	}
	JSON(w, http.StatusCreated, p)
}

// UpdatePlant handles PATCH /api/plants/{id}.
func (h *Handler) UpdatePlant(w http.ResponseWriter, r *http.Request) {
	var req plantPayload
	if !decodeBody(w, r, &req) {
		return
	}

	u := store.PlantUpdate{
		Name:           req.Name,
		Variety:        req.Variety,
		DaysToMaturity: req.DaysToMaturity,
		GrowingNotes:   req.GrowingNotes,
	}
	if req.Type != nil {
		t := domain.PlantType(*req.Type)
		u.Type = &t
	}
	if req.SunRequirement != nil {
		s := domain.SunRequirement(*req.SunRequirement)
		u.SunRequirement = &s
	}
	if req.WaterNeeds != nil {
		wn := domain.WaterNeeds(*req.WaterNeeds)
		u.WaterNeeds = &wn
	}

	plant, err := h.repo.UpdatePlant(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		StoreError(w, err)
		return
	}
	JSON(w, http.StatusOK, plant)
}

// DeletePlant handles DELETE /api/plants/{id}.
func (h *Handler) DeletePlant(w http.ResponseWriter, r *http.Request) {
	plant, err := h.repo.DeletePlant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		StoreError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"deletedName": plant.Name})
}
