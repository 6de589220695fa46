package agent

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"gardenai/internal/domain"
	"gardenai/internal/store"
)

// Tool couples an OpenAI-compatible definition with its executor. Executors
// always return the uniform envelope {success: true, ...} or
// {success: false, error}; failures never propagate past the dispatch
// boundary so the model loop can keep reasoning.
type Tool struct {
	Definition openai.Tool
	Execute    func(ctx context.Context, args json.RawMessage) json.RawMessage
}

// Registry holds the fixed tool catalogue wired to the repository.
type Registry struct {
	repo  store.Repository
	tools map[string]Tool
	order []string
}

// NewRegistry builds the tool catalogue over the repository.
func NewRegistry(repo store.Repository) *Registry {
	r := &Registry{repo: repo, tools: map[string]Tool{}}

	r.register("searchPlants",
		"Search for plants in the catalog by name, variety, or type. Returns a list of matching plants with their IDs, names, types, and related counts.",
		objectSchema(map[string]jsonschema.Definition{
			"query": stringProp("Search term to match against plant name or variety"),
			"type":  enumProp("Filter by plant type", "VEGETABLE", "HERB", "FLOWER", "FRUIT", "OTHER"),
		}, nil),
		r.searchPlants)

	r.register("addPlant",
		"Add a new plant to the catalog. Returns the created plant with its ID. Use this when the user wants to add a plant that doesn't exist yet.",
		objectSchema(map[string]jsonschema.Definition{
			"name":           stringProp("Plant name (e.g., 'Tomato', 'Basil')"),
			"variety":        stringProp("Plant variety (e.g., 'Roma', 'Sweet Genovese')"),
			"type":           enumProp("The category of plant", "VEGETABLE", "HERB", "FLOWER", "FRUIT", "OTHER"),
			"daysToMaturity": numberProp("Approximate number of days from planting to harvest"),
			"sunRequirement": enumProp("How much sun the plant needs", "FULL_SUN", "PARTIAL_SUN", "SHADE"),
			"waterNeeds":     enumProp("How much water the plant needs", "LOW", "MODERATE", "HIGH"),
			"growingNotes":   stringProp("Any additional growing tips or notes"),
		}, []string{"name"}),
		r.addPlant)

	r.register("updatePlantTool",
		"Update an existing plant's details. Use searchPlants first to find the plant ID.",
		objectSchema(map[string]jsonschema.Definition{
			"plantId":        stringProp("The ID of the plant to update (get from searchPlants)"),
			"name":           stringProp("New plant name"),
			"variety":        stringProp("New variety name"),
			"type":           enumProp("New plant type", "VEGETABLE", "HERB", "FLOWER", "FRUIT", "OTHER"),
			"daysToMaturity": numberProp("New days to maturity"),
			"sunRequirement": enumProp("New sun requirement", "FULL_SUN", "PARTIAL_SUN", "SHADE"),
			"waterNeeds":     enumProp("New water needs", "LOW", "MODERATE", "HIGH"),
			"growingNotes":   stringProp("New growing notes"),
		}, []string{"plantId"}),
		r.updatePlant)

	r.register("deletePlantTool",
		"Delete a plant from the catalog. Use searchPlants first to find the plant ID. This will also delete associated seeds and plantings.",
		objectSchema(map[string]jsonschema.Definition{
			"plantId": stringProp("The ID of the plant to delete"),
		}, []string{"plantId"}),
		r.deletePlant)

	r.register("addSeed",
		"Add seeds to the inventory for an existing plant. You must search for the plant first to get its ID. Use this when the user wants to record seed packets they have.",
		objectSchema(map[string]jsonschema.Definition{
			"plantId":      stringProp("The ID of the plant this seed belongs to (get this from searchPlants first)"),
			"quantity":     numberProp("Number of seed packets or units"),
			"quantityUnit": stringProp("Unit of measurement (e.g., 'packets', 'grams', 'seeds')"),
			"supplier":     stringProp("Where the seeds were purchased from"),
			"viability":    numberProp("Estimated viability/germination rate as a percentage (0-100)"),
			"notes":        stringProp("Any additional notes about these seeds"),
		}, []string{"plantId", "quantity"}),
		r.addSeed)

	r.register("getSeedInventory",
		"List seed inventory entries. Can filter by plant or supplier. Returns seed details including plant name, quantity, supplier, and viability.",
		objectSchema(map[string]jsonschema.Definition{
			"plantId":  stringProp("Filter seeds by plant ID"),
			"supplier": stringProp("Filter seeds by supplier name"),
		}, nil),
		r.getSeedInventory)

	r.register("updateInventory",
		"Update an existing seed inventory entry. Use this to change quantity, viability, or notes on a seed record.",
		objectSchema(map[string]jsonschema.Definition{
			"seedId":    stringProp("The ID of the seed entry to update"),
			"quantity":  numberProp("New quantity value"),
			"viability": numberProp("New viability percentage (0-100)"),
			"notes":     stringProp("Updated notes"),
		}, []string{"seedId"}),
		r.updateInventory)

	r.register("deleteSeedTool",
		"Delete a seed inventory entry. Use getSeedInventory first to find the seed ID.",
		objectSchema(map[string]jsonschema.Definition{
			"seedId": stringProp("The ID of the seed entry to delete"),
		}, []string{"seedId"}),
		r.deleteSeed)

	r.register("getPlantingSchedule",
		"Get the planting schedule. Can be filtered by year, location, plant, or status. Returns a list of plantings with dates and status.",
		objectSchema(map[string]jsonschema.Definition{
			"year":       numberProp("Filter by planting year (e.g., 2026)"),
			"locationId": stringProp("Filter by garden location ID"),
			"plantId":    stringProp("Filter by plant ID"),
			"status":     stringProp("Filter by status: PLANNED, SOWN, GERMINATED, TRANSPLANTED, GROWING, HARVESTING, DONE, FAILED"),
		}, nil),
		r.getPlantingSchedule)

	r.register("createPlanting",
		"Schedule a new planting for a plant at a garden location. Requires a plant ID (search for the plant first). Location ID is optional. Dates should be ISO strings.",
		objectSchema(map[string]jsonschema.Definition{
			"plantId":        stringProp("The plant ID to create a planting for (search for the plant first)"),
			"locationId":     stringProp("The garden location ID (use getLocations to find available locations)"),
			"year":           numberProp("The planting year (defaults to current year)"),
			"sowIndoorDate":  stringProp("Date to start seeds indoors (ISO date string, e.g., '2026-03-15')"),
			"sowOutdoorDate": stringProp("Date to sow seeds outdoors (ISO date string)"),
			"transplantDate": stringProp("Date to transplant seedlings (ISO date string)"),
			"harvestStart":   stringProp("Expected harvest start date (ISO date string)"),
			"harvestEnd":     stringProp("Expected harvest end date (ISO date string)"),
			"notes":          stringProp("Any notes about this planting"),
		}, []string{"plantId"}),
		r.createPlanting)

	r.register("updatePlanting",
		"Update an existing planting's status, dates, or notes. Use this to track planting progress through its lifecycle.",
		objectSchema(map[string]jsonschema.Definition{
			"plantingId":     stringProp("The ID of the planting to update"),
			"status":         enumProp("New planting status", "PLANNED", "SOWN", "GERMINATED", "TRANSPLANTED", "GROWING", "HARVESTING", "DONE", "FAILED"),
			"notes":          stringProp("Updated notes"),
			"sowIndoorDate":  stringProp("Updated indoor sow date (ISO date string)"),
			"sowOutdoorDate": stringProp("Updated outdoor sow date (ISO date string)"),
			"transplantDate": stringProp("Updated transplant date (ISO date string)"),
			"harvestStart":   stringProp("Updated harvest start date (ISO date string)"),
			"harvestEnd":     stringProp("Updated harvest end date (ISO date string)"),
		}, []string{"plantingId"}),
		r.updatePlanting)

	r.register("deletePlantingTool",
		"Delete a planting from the schedule. Use getPlantingSchedule first to find the planting ID.",
		objectSchema(map[string]jsonschema.Definition{
			"plantingId": stringProp("The ID of the planting to delete"),
		}, []string{"plantingId"}),
		r.deletePlanting)

	r.register("getLocations",
		"List all garden locations (beds, pots, containers, rows, greenhouse, indoor areas). Returns location names and IDs needed for creating plantings.",
		objectSchema(map[string]jsonschema.Definition{}, nil),
		r.getLocations)

	r.register("addLocation",
		"Create a new garden location (bed, pot, container, row, greenhouse, indoor area). Use this when the user wants to add a new location to their garden.",
		objectSchema(map[string]jsonschema.Definition{
			"name":         stringProp("Location name (e.g., 'Big Greenhouse', 'Raised Bed A')"),
			"locationType": enumProp("The type of garden location", "BED", "POT", "CONTAINER", "ROW", "GREENHOUSE", "INDOOR", "OTHER"),
			"description":  stringProp("Description of the location"),
			"sunExposure":  enumProp("Sun exposure level", "FULL_SUN", "PARTIAL_SUN", "SHADE"),
			"soilType":     stringProp("Type of soil (e.g., 'loamy', 'sandy')"),
			"climateZone":  stringProp("USDA hardiness zone or climate zone"),
		}, []string{"name"}),
		r.addLocation)

	r.register("updateLocationTool",
		"Update an existing garden location's details. Use getLocations first to find the location ID.",
		objectSchema(map[string]jsonschema.Definition{
			"locationId":   stringProp("The ID of the location to update (get from getLocations)"),
			"name":         stringProp("New name for the location"),
			"locationType": enumProp("New location type", "BED", "POT", "CONTAINER", "ROW", "GREENHOUSE", "INDOOR", "OTHER"),
			"description":  stringProp("New description"),
			"sunExposure":  enumProp("New sun exposure level", "FULL_SUN", "PARTIAL_SUN", "SHADE"),
			"soilType":     stringProp("New soil type"),
			"climateZone":  stringProp("New climate zone"),
		}, []string{"locationId"}),
		r.updateLocation)

	r.register("deleteLocationTool",
		"Delete a garden location. Use getLocations first to find the location ID. Plantings at this location will lose their location reference.",
		objectSchema(map[string]jsonschema.Definition{
			"locationId": stringProp("The ID of the location to delete"),
		}, []string{"locationId"}),
		r.deleteLocation)

	r.register("getDashboardSummary",
		"Get an overview of the garden including total plant count, seed count, active plantings, and upcoming tasks. Use this when the user asks for a summary or overview.",
		objectSchema(map[string]jsonschema.Definition{}, nil),
		r.getDashboardSummary)

	r.register("navigateTo",
		"Navigate the user to a specific page in the app. Use this to help users find information or after performing an action (e.g., navigate to the plant detail page after adding a new plant).",
		objectSchema(map[string]jsonschema.Definition{
			"page":    enumProp("The page to navigate to", "dashboard", "plants", "seeds", "garden", "calendar", "chat"),
			"plantId": stringProp("If provided, navigate to the detail page for this specific plant"),
			"seedId":  stringProp("If provided, navigate to the detail page for this specific seed"),
		}, []string{"page"}),
		r.navigateTo)

	return r
}

func (r *Registry) register(name, description string, params jsonschema.Definition, exec func(ctx context.Context, args json.RawMessage) json.RawMessage) {
	r.tools[name] = Tool{
		Definition: openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        name,
				Description: description,
				Parameters:  params,
			},
		},
		Execute: exec,
	}
	r.order = append(r.order, name)
}

// Definitions returns the tool definitions in registration order.
func (r *Registry) Definitions() []openai.Tool {
	defs := make([]openai.Tool, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition)
	}
	return defs
}

// Execute dispatches a call by name. Unknown tools get an error envelope so
// the model can recover without the turn aborting.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) json.RawMessage {
	t, ok := r.tools[name]
	if !ok {
		slog.Warn("unknown tool requested", "tool", name)
		return toolErr("Unknown tool: " + name)
	}
	slog.Info("tool call", "tool", name)
	return t.Execute(ctx, args)
}

func toolOK(data map[string]any) json.RawMessage {
	if data == nil {
		data = map[string]any{}
	}
	data["success"] = true
	out, err := json.Marshal(data)
	if err != nil {
		slog.Error("marshal tool result failed", "error", err)
		return json.RawMessage(`{"success":false,"error":"internal tool error"}`)
	}
	return out
}

func toolErr(msg string) json.RawMessage {
	out, err := json.Marshal(map[string]any{"success": false, "error": msg})
	if err != nil {
		return json.RawMessage(`{"success":false,"error":"internal tool error"}`)
	}
	return out
}

func objectSchema(props map[string]jsonschema.Definition, required []string) jsonschema.Definition {
	return jsonschema.Definition{
		Type:       jsonschema.Object,
		Properties: props,
		Required:   required,
	}
}

func stringProp(desc string) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.String, Description: desc}
}

func numberProp(desc string) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.Number, Description: desc}
}

func enumProp(desc string, values ...string) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.String, Description: desc, Enum: values}
}

func parseDate(s string) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, true
		}
	}
	return nil, false
}

func (r *Registry) searchPlants(ctx context.Context, args json.RawMessage) json.RawMessage {
	var in struct {
		Query string `json:"query"`
		Type  string `json:"type"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return toolErr("Invalid arguments for searchPlants.")
	}

	plants, err := r.repo.ListPlants(ctx, store.PlantFilter{
		Name: in.Query,
		Type: domain.PlantType(in.Type),
	})
	if err != nil {
		slog.Error("searchPlants failed", "error", err)
		return toolErr("Failed to search plants. Please try again.")
	}

	out := make([]map[string]any, 0, len(plants))
	for _, p := range plants {
		out = append(out, map[string]any{
			"id":             p.ID,
			"name":           p.Name,
			"variety":        p.Variety,
			"type":           p.Type,
			"daysToMaturity": p.DaysToMaturity,
			"sunRequirement": p.SunRequirement,
			"waterNeeds":     p.WaterNeeds,
			"seedCount":      p.SeedCount,
			"plantingCount":  p.PlantingCount,
		})
	}
	return toolOK(map[string]any{"plants": out})
}

func (r *Registry) addPlant(ctx context.Context, args json.RawMessage) json.RawMessage {
	var in struct {
		Name           string   `json:"name"`
		Variety        string   `json:"variety"`
		Type           string   `json:"type"`
		DaysToMaturity *float64 `json:"daysToMaturity"`
		SunRequirement string   `json:"sunRequirement"`
		WaterNeeds     string   `json:"waterNeeds"`
		GrowingNotes   string   `json:"growingNotes"`
	}
	if err := json.Unmarshal(args, &in); err != nil || in.Name == "" {
		return toolErr("Invalid arguments for addPlant. A plant name is required.")
	}

	p := &domain.Plant{
		Name:           in.Name,
		Variety:        in.Variety,
		Type:           domain.PlantType(in.Type),
		SunRequirement: domain.SunRequirement(in.SunRequirement),
		WaterNeeds:     domain.WaterNeeds(in.WaterNeeds),
		GrowingNotes:   in.GrowingNotes,
	}
	if in.DaysToMaturity != nil {
		d := int(*in.DaysToMaturity)
		p.DaysToMaturity = &d
	}

	if err := r.repo.CreatePlant(ctx, p); err != nil {
		slog.Error("addPlant failed", "name", in.Name, "error", err)
		return toolErr("Failed to add plant. It may already exist with that name and variety.")
	}
	return toolOK(map[string]any{"plant": map[string]any{
		"id":             p.ID,
		"name":           p.Name,
		"variety":        p.Variety,
		"type":           p.Type,
		"daysToMaturity": p.DaysToMaturity,
		"sunRequirement": p.SunRequirement,
		"waterNeeds":     p.WaterNeeds,
	}})
}

func (r *Registry) updatePlant(ctx context.Context, args json.RawMessage) json.RawMessage {
	var in struct {
		PlantID        string   `json:"plantId"`
		Name           *string  `json:"name"`
		Variety        *string  `json:"variety"`
		Type           *string  `json:"type"`
		DaysToMaturity *float64 `json:"daysToMaturity"`
		SunRequirement *string  `json:"sunRequirement"`
		WaterNeeds     *string  `json:"waterNeeds"`
		GrowingNotes   *string  `json:"growingNotes"`
	}
	if err := json.Unmarshal(args, &in); err != nil || in.PlantID == "" {
		return toolErr("Invalid arguments for updatePlantTool. A plant ID is required.")
	}

	u := store.PlantUpdate{
		Name:         in.Name,
		Variety:      in.Variety,
		GrowingNotes: in.GrowingNotes,
	}
	if in.Type != nil {
		t := domain.PlantType(*in.Type)
		u.Type = &t
	}
	if in.DaysToMaturity != nil {
		d := int(*in.DaysToMaturity)
		u.DaysToMaturity = &d
	}
	if in.SunRequirement != nil {
		s := domain.SunRequirement(*in.SunRequirement)
		u.SunRequirement = &s
	}
	if in.WaterNeeds != nil {
		w := domain.WaterNeeds(*in.WaterNeeds)
		u.WaterNeeds = &w
	}

	p, err := r.repo.UpdatePlant(ctx, in.PlantID, u)
	if err != nil {
		slog.Error("updatePlant failed", "plant_id", in.PlantID, "error", err)
		return toolErr("Failed to update plant.")
	}
	return toolOK(map[string]any{"plant": map[string]any{
		"id":             p.ID,
		"name":           p.Name,
		"variety":        p.Variety,
		"type":           p.Type,
		"daysToMaturity": p.DaysToMaturity,
		"sunRequirement": p.SunRequirement,
		"waterNeeds":     p.WaterNeeds,
	}})
}

func (r *Registry) deletePlant(ctx context.Context, args json.RawMessage) json.RawMessage {
	var in struct {
		PlantID string `json:"plantId"`
	}
	if err := json.Unmarshal(args, &in); err != nil || in.PlantID == "" {
		return toolErr("Invalid arguments for deletePlantTool. A plant ID is required.")
	}

	p, err := r.repo.DeletePlant(ctx, in.PlantID)
	if err != nil {
		slog.Error("deletePlant failed", "plant_id", in.PlantID, "error", err)
		return toolErr("Failed to delete plant.")
	}
	return toolOK(map[string]any{"deletedName": p.Name})
}

func (r *Registry) addSeed(ctx context.Context, args json.RawMessage) json.RawMessage {
	var in struct {
		PlantID      string   `json:"plantId"`
		Quantity     *float64 `json:"quantity"`
		QuantityUnit string   `json:"quantityUnit"`
		Supplier     string   `json:"supplier"`
		Viability    *float64 `json:"viability"`
		Notes        string   `json:"notes"`
	}
	if err := json.Unmarshal(args, &in); err != nil || in.PlantID == "" || in.Quantity == nil {
		return toolErr("Invalid arguments for addSeed. A plant ID and quantity are required.")
	}

	sd := &domain.Seed{
		PlantID:      in.PlantID,
		Quantity:     int(*in.Quantity),
		QuantityUnit: in.QuantityUnit,
		Supplier:     in.Supplier,
		Notes:        in.Notes,
	}
	if in.Viability != nil {
		v := int(*in.Viability)
		sd.Viability = &v
	}

	if err := r.repo.CreateSeed(ctx, sd); err != nil {
		slog.Error("addSeed failed", "plant_id", in.PlantID, "error", err)
		return toolErr("Failed to add seed. Make sure the plant ID is valid.")
	}
	return toolOK(map[string]any{"seed": map[string]any{
		"id":           sd.ID,
		"plantId":      sd.PlantID,
		"plantName":    sd.PlantName,
		"quantity":     sd.Quantity,
		"quantityUnit": sd.QuantityUnit,
		"supplier":     sd.Supplier,
		"viability":    sd.Viability,
	}})
}

func (r *Registry) getSeedInventory(ctx context.Context, args json.RawMessage) json.RawMessage {
	var in struct {
		PlantID  string `json:"plantId"`
		Supplier string `json:"supplier"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return toolErr("Invalid arguments for getSeedInventory.")
	}

	seeds, err := r.repo.ListSeeds(ctx, store.SeedFilter{PlantID: in.PlantID, Supplier: in.Supplier})
	if err != nil {
		slog.Error("getSeedInventory failed", "error", err)
		return toolErr("Failed to get seed inventory.")
	}

	out := make([]map[string]any, 0, len(seeds))
	for _, sd := range seeds {
		out = append(out, map[string]any{
			"id":           sd.ID,
			"plantId":      sd.PlantID,
			"plantName":    sd.PlantName,
			"plantVariety": sd.PlantVariety,
			"quantity":     sd.Quantity,
			"quantityUnit": sd.QuantityUnit,
			"supplier":     sd.Supplier,
			"viability":    sd.Viability,
			"lotNumber":    sd.LotNumber,
			"notes":        sd.Notes,
			"purchaseDate": isoDate(sd.PurchaseDate),
			"expiryDate":   isoDate(sd.ExpiryDate),
		})
	}
	return toolOK(map[string]any{"seeds": out})
}

func (r *Registry) updateInventory(ctx context.Context, args json.RawMessage) json.RawMessage {
	var in struct {
		SeedID    string   `json:"seedId"`
		Quantity  *float64 `json:"quantity"`
		Viability *float64 `json:"viability"`
		Notes     *string  `json:"notes"`
	}
	if err := json.Unmarshal(args, &in); err != nil || in.SeedID == "" {
		return toolErr("Invalid arguments for updateInventory. A seed ID is required.")
	}

	u := store.SeedUpdate{Notes: in.Notes}
	if in.Quantity != nil {
		q := int(*in.Quantity)
		u.Quantity = &q
	}
	if in.Viability != nil {
		v := int(*in.Viability)
		u.Viability = &v
	}

	sd, err := r.repo.UpdateSeed(ctx, in.SeedID, u)
	if err != nil {
		slog.Error("updateInventory failed", "seed_id", in.SeedID, "error", err)
		return toolErr("Failed to update seed. Make sure the seed ID is valid.")
	}
	return toolOK(map[string]any{"seed": map[string]any{
		"id":           sd.ID,
		"plantName":    sd.PlantName,
		"quantity":     sd.Quantity,
		"quantityUnit": sd.QuantityUnit,
		"viability":    sd.Viability,
		"notes":        sd.Notes,
	}})
}

func (r *Registry) deleteSeed(ctx context.Context, args json.RawMessage) json.RawMessage {
	var in struct {
		SeedID string `json:"seedId"`
	}
	if err := json.Unmarshal(args, &in); err != nil || in.SeedID == "" {
		return toolErr("Invalid arguments for deleteSeedTool. A seed ID is required.")
	}

	sd, err := r.repo.DeleteSeed(ctx, in.SeedID)
	if err != nil {
		slog.Error("deleteSeed failed", "seed_id", in.SeedID, "error", err)
		return toolErr("Failed to delete seed.")
	}
	return toolOK(map[string]any{"deletedSeedId": sd.ID})
}

func (r *Registry) getPlantingSchedule(ctx context.Context, args json.RawMessage) json.RawMessage {
	var in struct {
		Year       *float64 `json:"year"`
		LocationID string   `json:"locationId"`
		PlantID    string   `json:"plantId"`
		Status     string   `json:"status"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return toolErr("Invalid arguments for getPlantingSchedule.")
	}

	f := store.PlantingFilter{
		LocationID: in.LocationID,
		PlantID:    in.PlantID,
		Status:     domain.PlantingStatus(in.Status),
	}
	if in.Year != nil {
		f.Year = int(*in.Year)
	}

	plantings, err := r.repo.ListPlantings(ctx, f)
	if err != nil {
		slog.Error("getPlantingSchedule failed", "error", err)
		return toolErr("Failed to get planting schedule.")
	}

	out := make([]map[string]any, 0, len(plantings))
	for _, pl := range plantings {
		out = append(out, map[string]any{
			"id":             pl.ID,
			"plantName":      pl.PlantName,
			"plantVariety":   pl.PlantVariety,
			"locationName":   nilIfEmpty(pl.LocationName),
			"year":           pl.Year,
			"status":         pl.Status,
			"sowIndoorDate":  isoDate(pl.SowIndoorDate),
			"sowOutdoorDate": isoDate(pl.SowOutdoorDate),
			"transplantDate": isoDate(pl.TransplantDate),
			"harvestStart":   isoDate(pl.HarvestStart),
			"harvestEnd":     isoDate(pl.HarvestEnd),
			"notes":          pl.Notes,
		})
	}
	return toolOK(map[string]any{"plantings": out})
}

func (r *Registry) createPlanting(ctx context.Context, args json.RawMessage) json.RawMessage {
	var in struct {
		PlantID        string   `json:"plantId"`
		LocationID     string   `json:"locationId"`
		Year           *float64 `json:"year"`
		SowIndoorDate  string   `json:"sowIndoorDate"`
		SowOutdoorDate string   `json:"sowOutdoorDate"`
		TransplantDate string   `json:"transplantDate"`
		HarvestStart   string   `json:"harvestStart"`
		HarvestEnd     string   `json:"harvestEnd"`
		Notes          string   `json:"notes"`
	}
	if err := json.Unmarshal(args, &in); err != nil || in.PlantID == "" {
		return toolErr("Invalid arguments for createPlanting. A plant ID is required.")
	}

	pl := &domain.Planting{
		PlantID:    in.PlantID,
		LocationID: in.LocationID,
		Notes:      in.Notes,
	}
	if in.Year != nil {
		pl.Year = int(*in.Year)
	}

	dates := []struct {
		raw  string
		dest **time.Time
	}{
		{in.SowIndoorDate, &pl.SowIndoorDate},
		{in.SowOutdoorDate, &pl.SowOutdoorDate},
		{in.TransplantDate, &pl.TransplantDate},
		{in.HarvestStart, &pl.HarvestStart},
		{in.HarvestEnd, &pl.HarvestEnd},
	}
	for _, d := range dates {
		t, ok := parseDate(d.raw)
		if !ok {
			return toolErr("Invalid date format. Use ISO dates like '2026-03-15'.")
		}
		*d.dest = t
	}

	if err := r.repo.CreatePlanting(ctx, pl); err != nil {
		slog.Error("createPlanting failed", "plant_id", in.PlantID, "error", err)
		return toolErr("Failed to create planting. Make sure the plant ID (and location ID if provided) are valid.")
	}
	return toolOK(map[string]any{"planting": map[string]any{
		"id":             pl.ID,
		"plantName":      pl.PlantName,
		"locationName":   nilIfEmpty(pl.LocationName),
		"year":           pl.Year,
		"status":         pl.Status,
		"sowIndoorDate":  isoDate(pl.SowIndoorDate),
		"sowOutdoorDate": isoDate(pl.SowOutdoorDate),
		"transplantDate": isoDate(pl.TransplantDate),
		"harvestStart":   isoDate(pl.HarvestStart),
		"harvestEnd":     isoDate(pl.HarvestEnd),
	}})
}

func (r *Registry) updatePlanting(ctx context.Context, args json.RawMessage) json.RawMessage {
	var in struct {
		PlantingID     string  `json:"plantingId"`
		Status         *string `json:"status"`
		Notes          *string `json:"notes"`
		SowIndoorDate  *string `json:"sowIndoorDate"`
		SowOutdoorDate *string `json:"sowOutdoorDate"`
		TransplantDate *string `json:"transplantDate"`
		HarvestStart   *string `json:"harvestStart"`
		HarvestEnd     *string `json:"harvestEnd"`
	}
	if err := json.Unmarshal(args, &in); err != nil || in.PlantingID == "" {
		return toolErr("Invalid arguments for updatePlanting. A planting ID is required.")
	}

	u := store.PlantingUpdate{Notes: in.Notes}
	if in.Status != nil {
		st := domain.PlantingStatus(*in.Status)
		u.Status = &st
	}

	dates := []struct {
		raw  *string
		dest **time.Time
	}{
		{in.SowIndoorDate, &u.SowIndoorDate},
		{in.SowOutdoorDate, &u.SowOutdoorDate},
		{in.TransplantDate, &u.TransplantDate},
		{in.HarvestStart, &u.HarvestStart},
		{in.HarvestEnd, &u.HarvestEnd},
	}
	for _, d := range dates {
		if d.raw == nil {
			continue
		}
		t, ok := parseDate(*d.raw)
		if !ok || t == nil {
			return toolErr("Invalid date format. Use ISO dates like '2026-03-15'.")
		}
		*d.dest = t
	}

	pl, err := r.repo.UpdatePlanting(ctx, in.PlantingID, u)
	if err != nil {
		slog.Error("updatePlanting failed", "planting_id", in.PlantingID, "error", err)
		return toolErr("Failed to update planting. Make sure the planting ID is valid.")
	}
	return toolOK(map[string]any{"planting": map[string]any{
		"id":           pl.ID,
		"plantName":    pl.PlantName,
		"locationName": nilIfEmpty(pl.LocationName),
		"year":         pl.Year,
		"status":       pl.Status,
		"notes":        pl.Notes,
	}})
}

func (r *Registry) deletePlanting(ctx context.Context, args json.RawMessage) json.RawMessage {
	var in struct {
		PlantingID string `json:"plantingId"`
	}
	if err := json.Unmarshal(args, &in); err != nil || in.PlantingID == "" {
		return toolErr("Invalid arguments for deletePlantingTool. A planting ID is required.")
	}

	pl, err := r.repo.DeletePlanting(ctx, in.PlantingID)
	if err != nil {
		slog.Error("deletePlanting failed", "planting_id", in.PlantingID, "error", err)
		return toolErr("Failed to delete planting.")
	}
	return toolOK(map[string]any{"deletedPlantingId": pl.ID})
}

func (r *Registry) getLocations(ctx context.Context, _ json.RawMessage) json.RawMessage {
	locations, err := r.repo.ListLocations(ctx)
	if err != nil {
		slog.Error("getLocations failed", "error", err)
		return toolErr("Failed to get locations.")
	}

	out := make([]map[string]any, 0, len(locations))
	for _, l := range locations {
		out = append(out, map[string]any{
			"id":            l.ID,
			"name":          l.Name,
			"locationType":  l.LocationType,
			"description":   l.Description,
			"sunExposure":   l.SunExposure,
			"plantingCount": l.PlantingCount,
		})
	}
	return toolOK(map[string]any{"locations": out})
}

func (r *Registry) addLocation(ctx context.Context, args json.RawMessage) json.RawMessage {
	var in struct {
		Name         string `json:"name"`
		LocationType string `json:"locationType"`
		Description  string `json:"description"`
		SunExposure  string `json:"sunExposure"`
		SoilType     string `json:"soilType"`
		ClimateZone  string `json:"climateZone"`
	}
	if err := json.Unmarshal(args, &in); err != nil || in.Name == "" {
		return toolErr("Invalid arguments for addLocation. A location name is required.")
	}

	l := &domain.GardenLocation{
		Name:         in.Name,
		LocationType: domain.LocationType(in.LocationType),
		Description:  in.Description,
		SunExposure:  domain.SunRequirement(in.SunExposure),
		SoilType:     in.SoilType,
		ClimateZone:  in.ClimateZone,
	}
	if err := r.repo.CreateLocation(ctx, l); err != nil {
		slog.Error("addLocation failed", "name", in.Name, "error", err)
		return toolErr("Failed to create location. It may already exist with that name.")
	}
	return toolOK(map[string]any{"location": map[string]any{
		"id":           l.ID,
		"name":         l.Name,
		"locationType": l.LocationType,
		"description":  l.Description,
		"sunExposure":  l.SunExposure,
	}})
}

func (r *Registry) updateLocation(ctx context.Context, args json.RawMessage) json.RawMessage {
	var in struct {
		LocationID   string  `json:"locationId"`
		Name         *string `json:"name"`
		LocationType *string `json:"locationType"`
		Description  *string `json:"description"`
		SunExposure  *string `json:"sunExposure"`
		SoilType     *string `json:"soilType"`
		ClimateZone  *string `json:"climateZone"`
	}
	if err := json.Unmarshal(args, &in); err != nil || in.LocationID == "" {
		return toolErr("Invalid arguments for updateLocationTool. A location ID is required.")
	}

	u := store.LocationUpdate{
		Name:        in.Name,
		Description: in.Description,
		SoilType:    in.SoilType,
		ClimateZone: in.ClimateZone,
	}
	if in.LocationType != nil {
		lt := domain.LocationType(*in.LocationType)
		u.LocationType = &lt
	}
	if in.SunExposure != nil {
		se := domain.SunRequirement(*in.SunExposure)
		u.SunExposure = &se
	}

	l, err := r.repo.UpdateLocation(ctx, in.LocationID, u)
	if err != nil {
		slog.Error("updateLocation failed", "location_id", in.LocationID, "error", err)
		return toolErr("Failed to update location.")
	}
	return toolOK(map[string]any{"location": map[string]any{
		"id":           l.ID,
		"name":         l.Name,
		"locationType": l.LocationType,
		"sunExposure":  l.SunExposure,
	}})
}

func (r *Registry) deleteLocation(ctx context.Context, args json.RawMessage) json.RawMessage {
	var in struct {
		LocationID string `json:"locationId"`
	}
	if err := json.Unmarshal(args, &in); err != nil || in.LocationID == "" {
		return toolErr("Invalid arguments for deleteLocationTool. A location ID is required.")
	}

	l, err := r.repo.DeleteLocation(ctx, in.LocationID)
	if err != nil {
		slog.Error("deleteLocation failed", "location_id", in.LocationID, "error", err)
		return toolErr("Failed to delete location.")
	}
	return toolOK(map[string]any{"deletedName": l.Name})
}

func (r *Registry) getDashboardSummary(ctx context.Context, _ json.RawMessage) json.RawMessage {
	summary, err := r.repo.DashboardSummary(ctx)
	if err != nil {
		slog.Error("getDashboardSummary failed", "error", err)
		return toolErr("Failed to get dashboard summary.")
	}

	upcoming := make([]map[string]any, 0, len(summary.UpcomingPlantings))
	for _, pl := range summary.UpcomingPlantings {
		upcoming = append(upcoming, map[string]any{
			"id":             pl.ID,
			"plantName":      pl.PlantName,
			"locationName":   nilIfEmpty(pl.LocationName),
			"status":         pl.Status,
			"sowIndoorDate":  isoDate(pl.SowIndoorDate),
			"sowOutdoorDate": isoDate(pl.SowOutdoorDate),
		})
	}
	return toolOK(map[string]any{"summary": map[string]any{
		"plantCount":          summary.PlantCount,
		"seedCount":           summary.SeedCount,
		"locationCount":       summary.LocationCount,
		"activePlantingCount": summary.ActivePlantingCount,
		"upcomingPlantings":   upcoming,
	}})
}

// navigateTo is pure: it returns a navigation intent for the client to act
// on and touches no data.
func (r *Registry) navigateTo(_ context.Context, args json.RawMessage) json.RawMessage {
	var in struct {
		Page    string `json:"page"`
		PlantID string `json:"plantId"`
		SeedID  string `json:"seedId"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return toolErr("Invalid arguments for navigateTo.")
	}

	return toolOK(map[string]any{"navigateTo": map[string]any{
		"page":    MatchPage(in.Page),
		"plantId": nilIfEmpty(in.PlantID),
		"seedId":  nilIfEmpty(in.SeedID),
	}})
}

// Pages the client can navigate to.
var pages = []string{"dashboard", "plants", "seeds", "garden", "calendar", "chat"}

// MatchPage fuzzy-matches a page name: exact match first, then prefix match,
// else dashboard.
func MatchPage(name string) string {
	for _, p := range pages {
		if name == p {
			return p
		}
	}
	if name != "" {
		for _, p := range pages {
			if len(name) < len(p) && p[:len(name)] == name {
				return p
			}
		}
	}
	return "dashboard"
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
