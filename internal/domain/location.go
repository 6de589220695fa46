package domain

import (
	"time"
)

// LocationType categorizes garden locations.
type LocationType string

// Location type values.
const (
	LocationBed        LocationType = "BED"
	LocationPot        LocationType = "POT"
	LocationContainer  LocationType = "CONTAINER"
	LocationRow        LocationType = "ROW"
	LocationGreenhouse LocationType = "GREENHOUSE"
	LocationIndoor     LocationType = "INDOOR"
	LocationOther      LocationType = "OTHER"
)

// GardenLocation is a place where plantings happen. Name is unique.
type GardenLocation struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	LocationType LocationType   `json:"locationType"`
	Description  string         `json:"description,omitempty"`
	SunExposure  SunRequirement `json:"sunExposure,omitempty"`
	SoilType     string         `json:"soilType,omitempty"`
	ClimateZone  string         `json:"climateZone,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`

	// Denormalized count populated on list/get queries.
	PlantingCount int `json:"plantingCount"`
}
