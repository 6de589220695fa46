package domain

import (
	"time"
)

// Seed is an inventory entry for seeds of a catalog plant.
type Seed struct {
	ID           string     `json:"id"`
	PlantID      string     `json:"plantId"`
	Quantity     int        `json:"quantity"`
	QuantityUnit string     `json:"quantityUnit"`
	Supplier     string     `json:"supplier,omitempty"`
	Viability    *int       `json:"viability,omitempty"` // germination rate, 0-100
	LotNumber    string     `json:"lotNumber,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	PurchaseDate *time.Time `json:"purchaseDate,omitempty"`
	ExpiryDate   *time.Time `json:"expiryDate,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Denormalized from the owning plant on list/get queries.
	PlantName    string `json:"plantName,omitempty"`
	PlantVariety string `json:"plantVariety,omitempty"`
}

// DefaultQuantityUnit is used when a seed entry does not specify a unit.
const DefaultQuantityUnit = "packets"
