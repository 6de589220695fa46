package agent

import (
	"context"
	"strings"
	"testing"

	"gardenai/internal/domain"
)

func TestDomainSnapshotEmpty(t *testing.T) {
	t.Parallel()
	_, repo := newTestRegistry(t)

	snap, err := DomainSnapshot(context.Background(), repo)
	if err != nil {
		t.Fatalf("DomainSnapshot failed: %v", err)
	}
	if !strings.Contains(snap, "## Current Garden Data") {
		t.Error("Expected snapshot header")
	}
	if strings.Count(snap, "(none yet)") != 4 {
		t.Errorf("Expected four empty sections, got:\n%s", snap)
	}
}

func TestDomainSnapshotListsEntities(t *testing.T) {
	t.Parallel()
	_, repo := newTestRegistry(t)
	ctx := context.Background()

	plant := &domain.Plant{Name: "Tomato", Variety: "Roma", Type: domain.PlantTypeVegetable}
	if err := repo.CreatePlant(ctx, plant); err != nil {
		t.Fatalf("CreatePlant failed: %v", err)
	}
	loc := &domain.GardenLocation{Name: "Bed A"}
	if err := repo.CreateLocation(ctx, loc); err != nil {
		t.Fatalf("CreateLocation failed: %v", err)
	}
	pl := &domain.Planting{PlantID: plant.ID, LocationID: loc.ID, Year: 2026}
	if err := repo.CreatePlanting(ctx, pl); err != nil {
		t.Fatalf("CreatePlanting failed: %v", err)
	}

	snap, err := DomainSnapshot(ctx, repo)
	if err != nil {
		t.Fatalf("DomainSnapshot failed: %v", err)
	}
	if !strings.Contains(snap, "Tomato (Roma)") {
		t.Errorf("Expected plant display name in snapshot:\n%s", snap)
	}
	if !strings.Contains(snap, plant.ID) {
		t.Error("Expected real plant ID in snapshot")
	}
	if !strings.Contains(snap, "Tomato Roma at Bed A, 2026: PLANNED") {
		t.Errorf("Expected planting line in snapshot:\n%s", snap)
	}
}

func TestComposeSystemPrompt(t *testing.T) {
	t.Parallel()

	prompt := composeSystemPrompt("## Current Garden Data\n", "")
	if !strings.Contains(prompt, "## Current Garden Data") {
		t.Error("Expected snapshot embedded in prompt")
	}
	if strings.Contains(prompt, "## Previous Conversation Context") {
		t.Error("Expected no summary section without a summary")
	}

	prompt = composeSystemPrompt("snapshot", "earlier we planted basil")
	if !strings.Contains(prompt, "## Previous Conversation Context") {
		t.Error("Expected summary section with a summary")
	}
	if !strings.Contains(prompt, "earlier we planted basil") {
		t.Error("Expected summary text in prompt")
	}
}
