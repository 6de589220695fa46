package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gardenai/internal/domain"
	"gardenai/internal/store"
)

type seedPayload struct {
	PlantID      *string `json:"plantId"`
	Quantity     *int    `json:"quantity"`
	QuantityUnit *string `json:"quantityUnit"`
	Supplier     *string `json:"supplier"`
	Viability    *int    `json:"viability"`
	LotNumber    *string `json:"lotNumber"`
	Notes        *string `json:"notes"`
	PurchaseDate *string `json:"purchaseDate"`
	ExpiryDate   *string `json:"expiryDate"`
}

// ListSeeds handles GET /api/seeds with optional plantId and supplier filters.
func (h *Handler) ListSeeds(w http.ResponseWriter, r *http.Request) {
	f := store.SeedFilter{
		PlantID:  r.URL.Query().Get("plantId"),
		Supplier: r.URL.Query().Get("supplier"),
	}
	seeds, err := h.repo.ListSeeds(r.Context(), f)
	if err != nil {
		StoreError(w, err)
		return
	}
	JSON(w, http.StatusOK, seeds)
}

// GetSeed handles GET /api/seeds/{id}.
func (h *Handler) GetSeed(w http.ResponseWriter, r *http.Request) {
	seed, err := h.repo.GetSeed(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		StoreError(w, err)
		return
	}
	JSON(w, http.StatusOK, seed)
}

// CreateSeed handles POST /api/seeds.
func (h *Handler) CreateSeed(w http.ResponseWriter, r *http.Request) {
	var req seedPayload
	if !decodeBody(w, r, &req) {
		return
	}
	if req.PlantID == nil || *req.PlantID == "" {
		Error(w, http.StatusBadRequest, "plantId is required")
		return
	}
	if req.Quantity == nil {
		Error(w, http.StatusBadRequest, "quantity is required")
		return
	}

	sd := &domain.Seed{
		PlantID:   *req.PlantID,
		Quantity:  *req.Quantity,
		Viability: req.Viability,
	}
	if req.QuantityUnit != nil {
		sd.QuantityUnit = *req.QuantityUnit
	}
	if req.Supplier != nil {
		sd.Supplier = *req.Supplier
	}
	if req.LotNumber != nil {
		sd.LotNumber = *req.LotNumber
	}
	if req.Notes != nil {
		sd.Notes = *req.Notes
	}

	var ok bool
	if req.PurchaseDate != nil {
		if sd.PurchaseDate, ok = parseAPIDate(*req.PurchaseDate); !ok {
			Error(w, http.StatusBadRequest, "invalid purchaseDate")
			return
		}
	}
	if req.ExpiryDate != nil {
		if sd.ExpiryDate, ok = parseAPIDate(*req.ExpiryDate); !ok {
			Error(w, http.StatusBadRequest, "invalid expiryDate")
			return
		}
	}

	if err := h.repo.CreateSeed(r.Context(), sd); err != nil {
		StoreError(w, err)
		return
	}
	JSON(w, http.StatusCreated, sd)
}

// UpdateSeed handles PATCH /api/seeds/{id}.
func (h *Handler) UpdateSeed(w http.ResponseWriter, r *http.Request) {
	var req seedPayload
	if !decodeBody(w, r, &req) {
		return
	}

	u := store.SeedUpdate{
		Quantity:     req.Quantity,
		QuantityUnit: req.QuantityUnit,
		Supplier:     req.Supplier,
		Viability:    req.Viability,
		LotNumber:    req.LotNumber,
		Notes:        req.Notes,
	}
	if req.PurchaseDate != nil {
		t, ok := parseAPIDate(*req.PurchaseDate)
		if !ok || t == nil {
			Error(w, http.StatusBadRequest, "invalid purchaseDate")
			return
		}
		u.PurchaseDate = t
	}
	if req.ExpiryDate != nil {
		t, ok := parseAPIDate(*req.ExpiryDate)
		if !ok || t == nil {
			Error(w, http.StatusBadRequest, "invalid expiryDate")
			return
		}
		u.ExpiryDate = t
	}

	seed, err := h.repo.UpdateSeed(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		StoreError(w, err)
		return
	}
	JSON(w, http.StatusOK, seed)
}

// DeleteSeed handles DELETE /api/seeds/{id}.
func (h *Handler) DeleteSeed(w http.ResponseWriter, r *http.Request) {
	seed, err := h.repo.DeleteSeed(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		StoreError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"deletedSeedId": seed.ID})
}
