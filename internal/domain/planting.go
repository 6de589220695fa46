package domain

import (
	"time"
)

// PlantingStatus tracks a planting through its lifecycle.
type PlantingStatus string

// Planting status values, in rough lifecycle order.
const (
	StatusPlanned      PlantingStatus = "PLANNED"
	StatusSown         PlantingStatus = "SOWN"
	StatusGerminated   PlantingStatus = "GERMINATED"
	StatusTransplanted PlantingStatus = "TRANSPLANTED"
	StatusGrowing      PlantingStatus = "GROWING"
	StatusHarvesting   PlantingStatus = "HARVESTING"
	StatusDone         PlantingStatus = "DONE"
	StatusFailed       PlantingStatus = "FAILED"
)

// ActiveStatuses are the statuses counted as "active" on the dashboard.
var ActiveStatuses = []PlantingStatus{
	StatusPlanned, StatusSown, StatusGerminated,
	StatusTransplanted, StatusGrowing, StatusHarvesting,
}

// Planting schedules a plant at a garden location for a given year.
// LocationID may be empty when no location has been chosen yet.
type Planting struct {
	ID             string         `json:"id"`
	PlantID        string         `json:"plantId"`
	LocationID     string         `json:"locationId,omitempty"`
	Year           int            `json:"year"`
	Status         PlantingStatus `json:"status"`
	SowIndoorDate  *time.Time     `json:"sowIndoorDate,omitempty"`
	SowOutdoorDate *time.Time     `json:"sowOutdoorDate,omitempty"`
	TransplantDate *time.Time     `json:"transplantDate,omitempty"`
	HarvestStart   *time.Time     `json:"harvestStart,omitempty"`
	HarvestEnd     *time.Time     `json:"harvestEnd,omitempty"`
	Notes          string         `json:"notes,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`

	// Denormalized from related rows on list/get queries.
	PlantName    string `json:"plantName,omitempty"`
	PlantVariety string `json:"plantVariety,omitempty"`
	LocationName string `json:"locationName,omitempty"`
}

// DashboardSummary aggregates garden state for the overview page and the
// assistant's getDashboardSummary tool.
type DashboardSummary struct {
	PlantCount          int         `json:"plantCount"`
	SeedCount           int         `json:"seedCount"`
	LocationCount       int         `json:"locationCount"`
	ActivePlantingCount int         `json:"activePlantingCount"`
	UpcomingPlantings   []*Planting `json:"upcomingPlantings"`
}
