// Package domain contains core domain types for the garden planner.
package domain

import (
	"time"
)

// PlantType categorizes catalog plants.
type PlantType string

// Plant type values.
const (
	PlantTypeVegetable PlantType = "VEGETABLE"
	PlantTypeHerb      PlantType = "HERB"
	PlantTypeFlower    PlantType = "FLOWER"
	PlantTypeFruit     PlantType = "FRUIT"
	PlantTypeOther     PlantType = "OTHER"
)

// SunRequirement describes how much sun a plant or location gets.
type SunRequirement string

// Sun requirement values.
const (
	SunFull    SunRequirement = "FULL_SUN"
	SunPartial SunRequirement = "PARTIAL_SUN"
	SunShade   SunRequirement = "SHADE"
)

// WaterNeeds describes how much water a plant needs.
type WaterNeeds string

// Water needs values.
const (
	WaterLow      WaterNeeds = "LOW"
	WaterModerate WaterNeeds = "MODERATE"
	WaterHigh     WaterNeeds = "HIGH"
)

// Plant is a catalog entry. (Name, Variety) is unique.
type Plant struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Variety        string         `json:"variety,omitempty"`
	Type           PlantType      `json:"type"`
	DaysToMaturity *int           `json:"daysToMaturity,omitempty"`
	SunRequirement SunRequirement `json:"sunRequirement,omitempty"`
	WaterNeeds     WaterNeeds     `json:"waterNeeds,omitempty"`
	GrowingNotes   string         `json:"growingNotes,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`

	// Denormalized counts populated on list/get queries.
	SeedCount     int `json:"seedCount"`
	PlantingCount int `json:"plantingCount"`
}

// DisplayName returns "Name (Variety)" or just the name when no variety is set.
func (p *Plant) DisplayName() string {
	if p.Variety == "" {
		return p.Name
	}
	return p.Name + " (" + p.Variety + ")"
}
