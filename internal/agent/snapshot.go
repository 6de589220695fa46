package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"gardenai/internal/domain"
	"gardenai/internal/store"
)

// DomainSnapshot renders the current garden state as prompt text. It is
// assembled fresh per turn so the model reasons over real identifiers
// reflecting the store at invocation time, never a cache.
func DomainSnapshot(ctx context.Context, repo store.Repository) (string, error) {
	var (
		plants    []*domain.Plant
		seeds     []*domain.Seed
		locations []*domain.GardenLocation
		plantings []*domain.Planting
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		plants, err = repo.ListPlants(gctx, store.PlantFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		seeds, err = repo.ListSeeds(gctx, store.SeedFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		locations, err = repo.ListLocations(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		plantings, err = repo.ListPlantings(gctx, store.PlantingFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("fetch domain snapshot: %w", err)
	}

	var b strings.Builder
	b.WriteString("## Current Garden Data\n\n")
	b.WriteString("The identifiers below are the real IDs in the database. Use them exactly as shown when calling tools. Never invent identifiers.\n")

	b.WriteString("\n### Plants\n")
	if len(plants) == 0 {
		b.WriteString("(none yet)\n")
	}
	for _, p := range plants {
		fmt.Fprintf(&b, "- %s (id: %s, type: %s, seeds: %d, plantings: %d)\n",
			p.DisplayName(), p.ID, p.Type, p.SeedCount, p.PlantingCount)
	}

	b.WriteString("\n### Seed Inventory\n")
	if len(seeds) == 0 {
		b.WriteString("(none yet)\n")
	}
	for _, s := range seeds {
		fmt.Fprintf(&b, "- %s: %d %s (id: %s, supplier: %s)\n",
			seedDisplayName(s), s.Quantity, s.QuantityUnit, s.ID, orNone(s.Supplier))
	}

	b.WriteString("\n### Garden Locations\n")
	if len(locations) == 0 {
		b.WriteString("(none yet)\n")
	}
	for _, l := range locations {
		fmt.Fprintf(&b, "- %s (id: %s, type: %s, plantings: %d)\n",
			l.Name, l.ID, l.LocationType, l.PlantingCount)
	}

	b.WriteString("\n### Plantings\n")
	if len(plantings) == 0 {
		b.WriteString("(none yet)\n")
	}
	for _, pl := range plantings {
		loc := pl.LocationName
		if loc == "" {
			loc = "no location"
		}
		fmt.Fprintf(&b, "- %s at %s, %d: %s (id: %s)\n",
			plantingDisplayName(pl), loc, pl.Year, pl.Status, pl.ID)
	}

	return b.String(), nil
}

func seedDisplayName(s *domain.Seed) string {
	if s.PlantVariety != "" {
		return s.PlantName + " " + s.PlantVariety
	}
	return s.PlantName
}

func plantingDisplayName(pl *domain.Planting) string {
	if pl.PlantVariety != "" {
		return pl.PlantName + " " + pl.PlantVariety
	}
	return pl.PlantName
}

func orNone(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func isoDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
