// Seed loads sample garden data into the database for local development.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/containerd/errdefs"
	"github.com/joho/godotenv"

	"gardenai/internal/config"
	"gardenai/internal/domain"
	"gardenai/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	ctx := context.Background()
	slog.Info("Seeding database", "db_path", cfg.DBPath)

	if err := seedAll(ctx, repo); err != nil {
		slog.Error("Seeding failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Seed data created successfully")
}

func intp(v int) *int { return &v }

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic("bad fixture date: " + s)
	}
	return &t
}

// seedAll inserts the sample catalog, inventory, locations, and schedule.
// Re-running against an existing database skips rows that already exist.
func seedAll(ctx context.Context, repo store.Repository) error {
	plants := []*domain.Plant{
		{
			Name: "Tomato", Variety: "Cherokee Purple", Type: domain.PlantTypeVegetable,
			DaysToMaturity: intp(80), SunRequirement: domain.SunFull, WaterNeeds: domain.WaterModerate,
			GrowingNotes: "Indeterminate heirloom. Stake or cage. Rich, well-drained soil.",
		},
		{
			Name: "Basil", Variety: "Genovese", Type: domain.PlantTypeHerb,
			DaysToMaturity: intp(60), SunRequirement: domain.SunFull, WaterNeeds: domain.WaterModerate,
			GrowingNotes: "Pinch flowers to encourage leaf growth. Companion to tomatoes.",
		},
		{
			Name: "Marigold", Variety: "French Dwarf", Type: domain.PlantTypeFlower,
			DaysToMaturity: intp(50), SunRequirement: domain.SunFull, WaterNeeds: domain.WaterLow,
			GrowingNotes: "Great companion plant. Deters pests. Deadhead for continuous blooms.",
		},
		{
			Name: "Pepper", Variety: "Jalapeño", Type: domain.PlantTypeVegetable,
			DaysToMaturity: intp(75), SunRequirement: domain.SunFull, WaterNeeds: domain.WaterModerate,
			GrowingNotes: "Start indoors 8-10 weeks before last frost. Likes warm soil.",
		},
		{
			Name: "Lettuce", Variety: "Buttercrunch", Type: domain.PlantTypeVegetable,
			DaysToMaturity: intp(55), SunRequirement: domain.SunPartial, WaterNeeds: domain.WaterHigh,
			GrowingNotes: "Cool-season crop. Bolt-resistant. Succession sow every 2-3 weeks.",
		},
		{
			Name: "Strawberry", Variety: "Everbearing", Type: domain.PlantTypeFruit,
			DaysToMaturity: intp(90), SunRequirement: domain.SunFull, WaterNeeds: domain.WaterModerate,
			GrowingNotes: "Remove first-year flowers for stronger plants. Mulch well.",
		},
	}

	plantIDs := map[string]string{}
	for _, p := range plants {
		if err := repo.CreatePlant(ctx, p); err != nil {
			if !errdefs.IsConflict(err) {
				return err
			}
			existing, err := findPlant(ctx, repo, p.Name, p.Variety)
			if err != nil {
				return err
			}
			p.ID = existing.ID
		}
		plantIDs[p.Name] = p.ID
	}

	seeds := []*domain.Seed{
		{PlantID: plantIDs["Tomato"], Quantity: 3, QuantityUnit: "packets", Supplier: "Baker Creek", Viability: intp(90)},
		{PlantID: plantIDs["Basil"], Quantity: 2, QuantityUnit: "packets", Supplier: "Johnny's Seeds", Viability: intp(85)},
		{PlantID: plantIDs["Marigold"], Quantity: 5, QuantityUnit: "packets", Supplier: "Burpee", Viability: intp(95)},
		{PlantID: plantIDs["Pepper"], Quantity: 1, QuantityUnit: "packets", Supplier: "Baker Creek", Viability: intp(88)},
		{PlantID: plantIDs["Lettuce"], Quantity: 4, QuantityUnit: "grams", Supplier: "Territorial Seed", Viability: intp(80)},
		{PlantID: plantIDs["Strawberry"], Quantity: 10, QuantityUnit: "runners", Supplier: "Local Nursery", Viability: intp(100)},
	}
	existingSeeds, err := repo.ListSeeds(ctx, store.SeedFilter{})
	if err != nil {
		return err
	}
	if len(existingSeeds) == 0 {
		for _, sd := range seeds {
			if err := repo.CreateSeed(ctx, sd); err != nil {
				return err
			}
		}
	}

	locations := []*domain.GardenLocation{
		{
			Name: "Raised Bed A", LocationType: domain.LocationBed,
			Description: "4x8 raised bed, south-facing",
			SunExposure: domain.SunFull, SoilType: "Amended loam",
		},
		{
			Name: "Herb Pots", LocationType: domain.LocationPot,
			Description: "Collection of terracotta pots on back patio",
			SunExposure: domain.SunPartial, SoilType: "Potting mix",
		},
		{
			Name: "Small Greenhouse", LocationType: domain.LocationGreenhouse,
			Description: "6x8 polycarbonate greenhouse",
			SunExposure: domain.SunFull, SoilType: "Seed starting mix",
		},
	}
	locationIDs := map[string]string{}
	for _, l := range locations {
		if err := repo.CreateLocation(ctx, l); err != nil {
			if !errdefs.IsConflict(err) {
				return err
			}
			existing, err := findLocation(ctx, repo, l.Name)
			if err != nil {
				return err
			}
			l.ID = existing.ID
		}
		locationIDs[l.Name] = l.ID
	}

	existingPlantings, err := repo.ListPlantings(ctx, store.PlantingFilter{})
	if err != nil {
		return err
	}
	if len(existingPlantings) > 0 {
		return nil
	}

	plantings := []*domain.Planting{
		{
			PlantID: plantIDs["Tomato"], LocationID: locationIDs["Raised Bed A"], Year: 2026,
			SowIndoorDate: date("2026-03-01"), TransplantDate: date("2026-05-15"),
			HarvestStart: date("2026-07-15"), HarvestEnd: date("2026-09-30"),
			Status: domain.StatusPlanned,
			Notes:  "Start indoors in greenhouse, transplant after last frost",
		},
		{
			PlantID: plantIDs["Basil"], LocationID: locationIDs["Herb Pots"], Year: 2026,
			SowIndoorDate: date("2026-04-01"), TransplantDate: date("2026-05-20"),
			Status: domain.StatusPlanned,
			Notes:  "Direct sow some in herb pots too",
		},
		{
			PlantID: plantIDs["Lettuce"], LocationID: locationIDs["Raised Bed A"], Year: 2026,
			SowOutdoorDate: date("2026-03-15"),
			HarvestStart:   date("2026-05-01"), HarvestEnd: date("2026-06-15"),
			Status: domain.StatusPlanned,
			Notes:  "Early spring succession planting",
		},
		{
			PlantID: plantIDs["Pepper"], LocationID: locationIDs["Small Greenhouse"], Year: 2026,
			SowIndoorDate: date("2026-02-15"), TransplantDate: date("2026-05-25"),
			Status: domain.StatusSown,
			Notes:  "Started seeds in greenhouse",
		},
	}
	for _, pl := range plantings {
		if err := repo.CreatePlanting(ctx, pl); err != nil {
			return err
		}
	}
	return nil
}

func findPlant(ctx context.Context, repo store.Repository, name, variety string) (*domain.Plant, error) {
	plants, err := repo.ListPlants(ctx, store.PlantFilter{Name: name})
	if err != nil {
		return nil, err
	}
	for _, p := range plants {
		if p.Name == name && p.Variety == variety {
			return p, nil
		}
	}
	return nil, errdefs.ErrNotFound
}

func findLocation(ctx context.Context, repo store.Repository, name string) (*domain.GardenLocation, error) {
	locations, err := repo.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range locations {
		if l.Name == name {
			return l, nil
		}
	}
	return nil, errdefs.ErrNotFound
}
