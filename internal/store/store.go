// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"gardenai/internal/domain"
)

// PlantFilter narrows ListPlants results.
type PlantFilter struct {
	// Name matches case-insensitively against plant name or variety.
	Name string
	Type domain.PlantType
}

// SeedFilter narrows ListSeeds results.
type SeedFilter struct {
	PlantID  string
	Supplier string
}

// PlantingFilter narrows ListPlantings results.
type PlantingFilter struct {
	PlantID    string
	LocationID string
	Year       int
	Status     domain.PlantingStatus
}

// PlantUpdate holds partial plant updates; nil fields are left unchanged.
type PlantUpdate struct {
	Name           *string
	Variety        *string
	Type           *domain.PlantType
	DaysToMaturity *int
	SunRequirement *domain.SunRequirement
	WaterNeeds     *domain.WaterNeeds
	GrowingNotes   *string
}

// SeedUpdate holds partial seed updates; nil fields are left unchanged.
type SeedUpdate struct {
	Quantity     *int
	QuantityUnit *string
	Supplier     *string
	Viability    *int
	LotNumber    *string
	Notes        *string
	PurchaseDate *time.Time
	ExpiryDate   *time.Time
}

// LocationUpdate holds partial location updates; nil fields are left unchanged.
type LocationUpdate struct {
	Name         *string
	LocationType *domain.LocationType
	Description  *string
	SunExposure  *domain.SunRequirement
	SoilType     *string
	ClimateZone  *string
}

// PlantingUpdate holds partial planting updates; nil fields are left unchanged.
type PlantingUpdate struct {
	LocationID     *string
	Year           *int
	Status         *domain.PlantingStatus
	SowIndoorDate  *time.Time
	SowOutdoorDate *time.Time
	TransplantDate *time.Time
	HarvestStart   *time.Time
	HarvestEnd     *time.Time
	Notes          *string
}

// MessageInput carries a new chat message for AppendMessage.
type MessageInput struct {
	Role        string
	Content     string
	ToolCalls   string // serialized JSON, empty when none
	ToolResults string // serialized JSON, empty when none
}

// Repository defines the persistence interface for the garden planner.
//
// Lookup methods fail with a wrapped errdefs.ErrNotFound when the referenced
// row is missing; creates fail with a wrapped errdefs.ErrConflict on
// uniqueness violations. All operations are atomic at single-row (or for
// AppendMessage, single-session) granularity.
type Repository interface {
	// Plant catalog.
	ListPlants(ctx context.Context, f PlantFilter) ([]*domain.Plant, error)
	GetPlant(ctx context.Context, id string) (*domain.Plant, error)
	CreatePlant(ctx context.Context, p *domain.Plant) error
	UpdatePlant(ctx context.Context, id string, u PlantUpdate) (*domain.Plant, error)
	DeletePlant(ctx context.Context, id string) (*domain.Plant, error)

	// Seed inventory.
	ListSeeds(ctx context.Context, f SeedFilter) ([]*domain.Seed, error)
	GetSeed(ctx context.Context, id string) (*domain.Seed, error)
	CreateSeed(ctx context.Context, s *domain.Seed) error
	UpdateSeed(ctx context.Context, id string, u SeedUpdate) (*domain.Seed, error)
	DeleteSeed(ctx context.Context, id string) (*domain.Seed, error)

	// Garden locations.
	ListLocations(ctx context.Context) ([]*domain.GardenLocation, error)
	GetLocation(ctx context.Context, id string) (*domain.GardenLocation, error)
	CreateLocation(ctx context.Context, l *domain.GardenLocation) error
	UpdateLocation(ctx context.Context, id string, u LocationUpdate) (*domain.GardenLocation, error)
	DeleteLocation(ctx context.Context, id string) (*domain.GardenLocation, error)

	// Planting schedule.
	ListPlantings(ctx context.Context, f PlantingFilter) ([]*domain.Planting, error)
	GetPlanting(ctx context.Context, id string) (*domain.Planting, error)
	CreatePlanting(ctx context.Context, p *domain.Planting) error
	UpdatePlanting(ctx context.Context, id string, u PlantingUpdate) (*domain.Planting, error)
	DeletePlanting(ctx context.Context, id string) (*domain.Planting, error)

	// Dashboard aggregates.
	DashboardSummary(ctx context.Context) (*domain.DashboardSummary, error)

	// Chat sessions and messages.
	CreateChatSession(ctx context.Context, title string) (*domain.ChatSession, error)
	GetChatSession(ctx context.Context, id string) (*domain.ChatSession, error)
	ListChatSessions(ctx context.Context) ([]*domain.ChatSession, error)
	// LatestSessionWithMessages returns the most recently updated session
	// that has at least one message, or nil when no such session exists.
	LatestSessionWithMessages(ctx context.Context) (*domain.ChatSession, error)
	AppendMessage(ctx context.Context, sessionID string, msg MessageInput) (*domain.ChatMessage, error)
	ListMessages(ctx context.Context, sessionID string) ([]*domain.ChatMessage, error)
	UpdateSessionSummary(ctx context.Context, sessionID, summary string) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
