package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"gardenai/internal/domain"
)

const plantColumns = `
	p.id, p.name, p.variety, p.type, p.days_to_maturity,
	p.sun_requirement, p.water_needs, p.growing_notes,
	p.created_at, p.updated_at,
	(SELECT COUNT(*) FROM seeds s WHERE s.plant_id = p.id),
	(SELECT COUNT(*) FROM plantings pl WHERE pl.plant_id = p.id)`

func scanPlant(row interface{ Scan(...any) error }) (*domain.Plant, error) {
	var p domain.Plant
	var daysToMaturity sql.NullInt64
	var sunReq, waterNeeds sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(
		&p.ID, &p.Name, &p.Variety, &p.Type, &daysToMaturity,
		&sunReq, &waterNeeds, &p.GrowingNotes,
		&createdAt, &updatedAt,
		&p.SeedCount, &p.PlantingCount,
	)
	if err != nil {
		return nil, err
	}

	p.DaysToMaturity = intPtr(daysToMaturity)
	p.SunRequirement = domain.SunRequirement(sunReq.String)
	p.WaterNeeds = domain.WaterNeeds(waterNeeds.String)
	p.CreatedAt = time.Unix(createdAt, 0)
	p.UpdatedAt = time.Unix(updatedAt, 0)
	return &p, nil
}

// ListPlants returns catalog plants matching the filter, ordered by name.
func (s *SQLiteStore) ListPlants(ctx context.Context, f PlantFilter) ([]*domain.Plant, error) {
	query := `SELECT ` + plantColumns + ` FROM plants p`
	var conds []string
	var args []any

	if f.Name != "" {
		conds = append(conds, `(p.name LIKE ? COLLATE NOCASE OR p.variety LIKE ? COLLATE NOCASE)`)
		pattern := "%" + f.Name + "%"
		args = append(args, pattern, pattern)
	}
	if f.Type != "" {
		conds = append(conds, `p.type = ?`)
		args = append(args, string(f.Type))
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	query += ` ORDER BY p.name ASC, p.variety ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query plants: %w", err)
	}
	defer closeRows(rows, "plants")

	var plants []*domain.Plant
	for rows.Next() {
		p, err := scanPlant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plant row: %w", err)
		}
		plants = append(plants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plants: %w", err)
	}
	return plants, nil
}

// GetPlant retrieves a plant by ID.
func (s *SQLiteStore) GetPlant(ctx context.Context, id string) (*domain.Plant, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+plantColumns+` FROM plants p WHERE p.id = ?`, id)
	p, err := scanPlant(row)
	if err == sql.ErrNoRows {
		return nil, notFound("plant", id)
	}
	if err != nil {
		return nil, fmt.Errorf("scan plant row: %w", err)
	}
	return p, nil
}

// CreatePlant inserts a new catalog plant, assigning ID and timestamps.
func (s *SQLiteStore) CreatePlant(ctx context.Context, p *domain.Plant) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Type == "" {
		p.Type = domain.PlantTypeOther
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO plants (id, name, variety, type, days_to_maturity, sun_requirement, water_needs, growing_notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Variety, string(p.Type), nullInt(p.DaysToMaturity),
		nullStr(string(p.SunRequirement)), nullStr(string(p.WaterNeeds)), p.GrowingNotes,
		now.Unix(), now.Unix(),
	)
	if err != nil {
		return classifyWriteError("create plant", err)
	}
	return nil
}

// UpdatePlant applies a partial update and returns the updated plant.
func (s *SQLiteStore) UpdatePlant(ctx context.Context, id string, u PlantUpdate) (*domain.Plant, error) {
	sets := []string{`updated_at = ?`}
	args := []any{time.Now().Unix()}

	if u.Name != nil {
		sets = append(sets, `name = ?`)
		args = append(args, *u.Name)
	}
	if u.Variety != nil {
		sets = append(sets, `variety = ?`)
		args = append(args, *u.Variety)
	}
	if u.Type != nil {
		sets = append(sets, `type = ?`)
		args = append(args, string(*u.Type))
	}
	if u.DaysToMaturity != nil {
		sets = append(sets, `days_to_maturity = ?`)
		args = append(args, *u.DaysToMaturity)
	}
	if u.SunRequirement != nil {
		sets = append(sets, `sun_requirement = ?`)
		args = append(args, string(*u.SunRequirement))
	}
	if u.WaterNeeds != nil {
		sets = append(sets, `water_needs = ?`)
		args = append(args, string(*u.WaterNeeds))
	}
	if u.GrowingNotes != nil {
		sets = append(sets, `growing_notes = ?`)
		args = append(args, *u.GrowingNotes)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, `UPDATE plants SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, classifyWriteError("update plant", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, notFound("plant", id)
	}
	return s.GetPlant(ctx, id)
}

// DeletePlant removes a plant and (via cascade) its seeds and plantings.
// Returns the deleted plant so callers can report its name.
func (s *SQLiteStore) DeletePlant(ctx context.Context, id string) (*domain.Plant, error) {
	p, err := s.GetPlant(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM plants WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("delete plant: %w", err)
	}
	// Cascade manually: the connection pool does not guarantee the
	// foreign_keys pragma on every connection.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM seeds WHERE plant_id = ?`, id); err != nil {
		return nil, fmt.Errorf("delete plant seeds: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM plantings WHERE plant_id = ?`, id); err != nil {
		return nil, fmt.Errorf("delete plant plantings: %w", err)
	}
	return p, nil
}

const seedColumns = `
	s.id, s.plant_id, s.quantity, s.quantity_unit, s.supplier, s.viability,
	s.lot_number, s.notes, s.purchase_date, s.expiry_date,
	s.created_at, s.updated_at, p.name, p.variety`

func scanSeed(row interface{ Scan(...any) error }) (*domain.Seed, error) {
	var sd domain.Seed
	var viability, purchaseDate, expiryDate sql.NullInt64
	var createdAt, updatedAt int64

	err := row.Scan(
		&sd.ID, &sd.PlantID, &sd.Quantity, &sd.QuantityUnit, &sd.Supplier, &viability,
		&sd.LotNumber, &sd.Notes, &purchaseDate, &expiryDate,
		&createdAt, &updatedAt, &sd.PlantName, &sd.PlantVariety,
	)
	if err != nil {
		return nil, err
	}

	sd.Viability = intPtr(viability)
	sd.PurchaseDate = timePtr(purchaseDate)
	sd.ExpiryDate = timePtr(expiryDate)
	sd.CreatedAt = time.Unix(createdAt, 0)
	sd.UpdatedAt = time.Unix(updatedAt, 0)
	return &sd, nil
}

// ListSeeds returns seed inventory entries matching the filter.
func (s *SQLiteStore) ListSeeds(ctx context.Context, f SeedFilter) ([]*domain.Seed, error) {
	query := `SELECT ` + seedColumns + ` FROM seeds s JOIN plants p ON p.id = s.plant_id`
	var conds []string
	var args []any

	if f.PlantID != "" {
		conds = append(conds, `s.plant_id = ?`)
		args = append(args, f.PlantID)
	}
	if f.Supplier != "" {
		conds = append(conds, `s.supplier LIKE ? COLLATE NOCASE`)
		args = append(args, "%"+f.Supplier+"%")
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	query += ` ORDER BY p.name ASC, s.created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query seeds: %w", err)
	}
	defer closeRows(rows, "seeds")

	var seeds []*domain.Seed
	for rows.Next() {
		sd, err := scanSeed(rows)
		if err != nil {
			return nil, fmt.Errorf("scan seed row: %w", err)
		}
		seeds = append(seeds, sd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seeds: %w", err)
	}
	return seeds, nil
}

// GetSeed retrieves a seed entry by ID.
func (s *SQLiteStore) GetSeed(ctx context.Context, id string) (*domain.Seed, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+seedColumns+` FROM seeds s JOIN plants p ON p.id = s.plant_id WHERE s.id = ?`, id)
	sd, err := scanSeed(row)
	if err == sql.ErrNoRows {
		return nil, notFound("seed", id)
	}
	if err != nil {
		return nil, fmt.Errorf("scan seed row: %w", err)
	}
	return sd, nil
}

// CreateSeed inserts a new seed inventory entry. The referenced plant must
// exist; a missing plant fails with NotFound before the insert.
func (s *SQLiteStore) CreateSeed(ctx context.Context, sd *domain.Seed) error {
	plant, err := s.GetPlant(ctx, sd.PlantID)
	if err != nil {
		return err
	}

	if sd.ID == "" {
		sd.ID = uuid.NewString()
	}
	if sd.QuantityUnit == "" {
		sd.QuantityUnit = domain.DefaultQuantityUnit
	}
	now := time.Now()
	sd.CreatedAt = now
	sd.UpdatedAt = now
	sd.PlantName = plant.Name
	sd.PlantVariety = plant.Variety

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO seeds (id, plant_id, quantity, quantity_unit, supplier, viability, lot_number, notes, purchase_date, expiry_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sd.ID, sd.PlantID, sd.Quantity, sd.QuantityUnit, sd.Supplier, nullInt(sd.Viability),
		sd.LotNumber, sd.Notes, nullTime(sd.PurchaseDate), nullTime(sd.ExpiryDate),
		now.Unix(), now.Unix(),
	)
	if err != nil {
		return classifyWriteError("create seed", err)
	}
	return nil
}

// UpdateSeed applies a partial update and returns the updated seed entry.
func (s *SQLiteStore) UpdateSeed(ctx context.Context, id string, u SeedUpdate) (*domain.Seed, error) {
	sets := []string{`updated_at = ?`}
	args := []any{time.Now().Unix()}

	if u.Quantity != nil {
		sets = append(sets, `quantity = ?`)
		args = append(args, *u.Quantity)
	}
	if u.QuantityUnit != nil {
		sets = append(sets, `quantity_unit = ?`)
		args = append(args, *u.QuantityUnit)
	}
	if u.Supplier != nil {
		sets = append(sets, `supplier = ?`)
		args = append(args, *u.Supplier)
	}
	if u.Viability != nil {
		sets = append(sets, `viability = ?`)
		args = append(args, *u.Viability)
	}
	if u.LotNumber != nil {
		sets = append(sets, `lot_number = ?`)
		args = append(args, *u.LotNumber)
	}
	if u.Notes != nil {
		sets = append(sets, `notes = ?`)
		args = append(args, *u.Notes)
	}
	if u.PurchaseDate != nil {
		sets = append(sets, `purchase_date = ?`)
		args = append(args, u.PurchaseDate.Unix())
	}
	if u.ExpiryDate != nil {
		sets = append(sets, `expiry_date = ?`)
		args = append(args, u.ExpiryDate.Unix())
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, `UPDATE seeds SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, classifyWriteError("update seed", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, notFound("seed", id)
	}
	return s.GetSeed(ctx, id)
}

// DeleteSeed removes a seed entry, returning the deleted row.
func (s *SQLiteStore) DeleteSeed(ctx context.Context, id string) (*domain.Seed, error) {
	sd, err := s.GetSeed(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM seeds WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("delete seed: %w", err)
	}
	return sd, nil
}

const locationColumns = `
	l.id, l.name, l.location_type, l.description, l.sun_exposure,
	l.soil_type, l.climate_zone, l.created_at, l.updated_at,
	(SELECT COUNT(*) FROM plantings pl WHERE pl.location_id = l.id)`

func scanLocation(row interface{ Scan(...any) error }) (*domain.GardenLocation, error) {
	var l domain.GardenLocation
	var sunExposure sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(
		&l.ID, &l.Name, &l.LocationType, &l.Description, &sunExposure,
		&l.SoilType, &l.ClimateZone, &createdAt, &updatedAt,
		&l.PlantingCount,
	)
	if err != nil {
		return nil, err
	}

	l.SunExposure = domain.SunRequirement(sunExposure.String)
	l.CreatedAt = time.Unix(createdAt, 0)
	l.UpdatedAt = time.Unix(updatedAt, 0)
	return &l, nil
}

// ListLocations returns all garden locations ordered by name.
func (s *SQLiteStore) ListLocations(ctx context.Context) ([]*domain.GardenLocation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+locationColumns+` FROM garden_locations l ORDER BY l.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer closeRows(rows, "locations")

	var locations []*domain.GardenLocation
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location row: %w", err)
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locations: %w", err)
	}
	return locations, nil
}

// GetLocation retrieves a garden location by ID.
func (s *SQLiteStore) GetLocation(ctx context.Context, id string) (*domain.GardenLocation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+locationColumns+` FROM garden_locations l WHERE l.id = ?`, id)
	l, err := scanLocation(row)
	if err == sql.ErrNoRows {
		return nil, notFound("location", id)
	}
	if err != nil {
		return nil, fmt.Errorf("scan location row: %w", err)
	}
	return l, nil
}

// CreateLocation inserts a new garden location.
func (s *SQLiteStore) CreateLocation(ctx context.Context, l *domain.GardenLocation) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.LocationType == "" {
		l.LocationType = domain.LocationBed
	}
	now := time.Now()
	l.CreatedAt = now
	l.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO garden_locations (id, name, location_type, description, sun_exposure, soil_type, climate_zone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Name, string(l.LocationType), l.Description, nullStr(string(l.SunExposure)),
		l.SoilType, l.ClimateZone, now.Unix(), now.Unix(),
	)
	if err != nil {
		return classifyWriteError("create location", err)
	}
	return nil
}

// UpdateLocation applies a partial update and returns the updated location.
func (s *SQLiteStore) UpdateLocation(ctx context.Context, id string, u LocationUpdate) (*domain.GardenLocation, error) {
	sets := []string{`updated_at = ?`}
	args := []any{time.Now().Unix()}

	if u.Name != nil {
		sets = append(sets, `name = ?`)
		args = append(args, *u.Name)
	}
	if u.LocationType != nil {
		sets = append(sets, `location_type = ?`)
		args = append(args, string(*u.LocationType))
	}
	if u.Description != nil {
		sets = append(sets, `description = ?`)
		args = append(args, *u.Description)
	}
	if u.SunExposure != nil {
		sets = append(sets, `sun_exposure = ?`)
		args = append(args, string(*u.SunExposure))
	}
	if u.SoilType != nil {
		sets = append(sets, `soil_type = ?`)
		args = append(args, *u.SoilType)
	}
	if u.ClimateZone != nil {
		sets = append(sets, `climate_zone = ?`)
		args = append(args, *u.ClimateZone)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, `UPDATE garden_locations SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, classifyWriteError("update location", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, notFound("location", id)
	}
	return s.GetLocation(ctx, id)
}

// DeleteLocation removes a location; plantings there keep their row but lose
// the location reference.
func (s *SQLiteStore) DeleteLocation(ctx context.Context, id string) (*domain.GardenLocation, error) {
	l, err := s.GetLocation(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE plantings SET location_id = NULL WHERE location_id = ?`, id); err != nil {
		return nil, fmt.Errorf("clear planting locations: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM garden_locations WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("delete location: %w", err)
	}
	return l, nil
}

const plantingColumns = `
	pl.id, pl.plant_id, pl.location_id, pl.year, pl.status,
	pl.sow_indoor_date, pl.sow_outdoor_date, pl.transplant_date,
	pl.harvest_start, pl.harvest_end, pl.notes,
	pl.created_at, pl.updated_at,
	p.name, p.variety, COALESCE(l.name, '')`

func scanPlanting(row interface{ Scan(...any) error }) (*domain.Planting, error) {
	var pl domain.Planting
	var locationID sql.NullString
	var sowIndoor, sowOutdoor, transplant, harvestStart, harvestEnd sql.NullInt64
	var createdAt, updatedAt int64

	err := row.Scan(
		&pl.ID, &pl.PlantID, &locationID, &pl.Year, &pl.Status,
		&sowIndoor, &sowOutdoor, &transplant,
		&harvestStart, &harvestEnd, &pl.Notes,
		&createdAt, &updatedAt,
		&pl.PlantName, &pl.PlantVariety, &pl.LocationName,
	)
	if err != nil {
		return nil, err
	}

	pl.LocationID = locationID.String
	pl.SowIndoorDate = timePtr(sowIndoor)
	pl.SowOutdoorDate = timePtr(sowOutdoor)
	pl.TransplantDate = timePtr(transplant)
	pl.HarvestStart = timePtr(harvestStart)
	pl.HarvestEnd = timePtr(harvestEnd)
	pl.CreatedAt = time.Unix(createdAt, 0)
	pl.UpdatedAt = time.Unix(updatedAt, 0)
	return &pl, nil
}

const plantingFrom = ` FROM plantings pl
	JOIN plants p ON p.id = pl.plant_id
	LEFT JOIN garden_locations l ON l.id = pl.location_id`

// ListPlantings returns schedule entries matching the filter, newest first.
func (s *SQLiteStore) ListPlantings(ctx context.Context, f PlantingFilter) ([]*domain.Planting, error) {
	query := `SELECT ` + plantingColumns + plantingFrom
	var conds []string
	var args []any

	if f.PlantID != "" {
		conds = append(conds, `pl.plant_id = ?`)
		args = append(args, f.PlantID)
	}
	if f.LocationID != "" {
		conds = append(conds, `pl.location_id = ?`)
		args = append(args, f.LocationID)
	}
	if f.Year != 0 {
		conds = append(conds, `pl.year = ?`)
		args = append(args, f.Year)
	}
	if f.Status != "" {
		conds = append(conds, `pl.status = ?`)
		args = append(args, string(f.Status))
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	query += ` ORDER BY pl.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query plantings: %w", err)
	}
	defer closeRows(rows, "plantings")

	var plantings []*domain.Planting
	for rows.Next() {
		pl, err := scanPlanting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan planting row: %w", err)
		}
		plantings = append(plantings, pl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plantings: %w", err)
	}
	return plantings, nil
}

// GetPlanting retrieves a planting by ID.
func (s *SQLiteStore) GetPlanting(ctx context.Context, id string) (*domain.Planting, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+plantingColumns+plantingFrom+` WHERE pl.id = ?`, id)
	pl, err := scanPlanting(row)
	if err == sql.ErrNoRows {
		return nil, notFound("planting", id)
	}
	if err != nil {
		return nil, fmt.Errorf("scan planting row: %w", err)
	}
	return pl, nil
}

// CreatePlanting inserts a new schedule entry. The plant (and location, when
// given) must exist; missing references fail with NotFound before the insert.
func (s *SQLiteStore) CreatePlanting(ctx context.Context, pl *domain.Planting) error {
	plant, err := s.GetPlant(ctx, pl.PlantID)
	if err != nil {
		return err
	}
	pl.PlantName = plant.Name
	pl.PlantVariety = plant.Variety

	if pl.LocationID != "" {
		loc, err := s.GetLocation(ctx, pl.LocationID)
		if err != nil {
			return err
		}
		pl.LocationName = loc.Name
	}

	if pl.ID == "" {
		pl.ID = uuid.NewString()
	}
	if pl.Status == "" {
		pl.Status = domain.StatusPlanned
	}
	if pl.Year == 0 {
		pl.Year = time.Now().Year()
	}
	now := time.Now()
	pl.CreatedAt = now
	pl.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO plantings (id, plant_id, location_id, year, status, sow_indoor_date, sow_outdoor_date, transplant_date, harvest_start, harvest_end, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pl.ID, pl.PlantID, nullStr(pl.LocationID), pl.Year, string(pl.Status),
		nullTime(pl.SowIndoorDate), nullTime(pl.SowOutdoorDate), nullTime(pl.TransplantDate),
		nullTime(pl.HarvestStart), nullTime(pl.HarvestEnd), pl.Notes,
		now.Unix(), now.Unix(),
	)
	if err != nil {
		return classifyWriteError("create planting", err)
	}
	return nil
}

// UpdatePlanting applies a partial update and returns the updated planting.
func (s *SQLiteStore) UpdatePlanting(ctx context.Context, id string, u PlantingUpdate) (*domain.Planting, error) {
	if u.LocationID != nil && *u.LocationID != "" {
		if _, err := s.GetLocation(ctx, *u.LocationID); err != nil {
			return nil, err
		}
	}

	sets := []string{`updated_at = ?`}
	args := []any{time.Now().Unix()}

	if u.LocationID != nil {
		sets = append(sets, `location_id = ?`)
		args = append(args, nullStr(*u.LocationID))
	}
	if u.Year != nil {
		sets = append(sets, `year = ?`)
		args = append(args, *u.Year)
	}
	if u.Status != nil {
		sets = append(sets, `status = ?`)
		args = append(args, string(*u.Status))
	}
	if u.SowIndoorDate != nil {
		sets = append(sets, `sow_indoor_date = ?`)
		args = append(args, u.SowIndoorDate.Unix())
	}
	if u.SowOutdoorDate != nil {
		sets = append(sets, `sow_outdoor_date = ?`)
		args = append(args, u.SowOutdoorDate.Unix())
	}
	if u.TransplantDate != nil {
		sets = append(sets, `transplant_date = ?`)
		args = append(args, u.TransplantDate.Unix())
	}
	if u.HarvestStart != nil {
		sets = append(sets, `harvest_start = ?`)
		args = append(args, u.HarvestStart.Unix())
	}
	if u.HarvestEnd != nil {
		sets = append(sets, `harvest_end = ?`)
		args = append(args, u.HarvestEnd.Unix())
	}
	if u.Notes != nil {
		sets = append(sets, `notes = ?`)
		args = append(args, *u.Notes)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, `UPDATE plantings SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, classifyWriteError("update planting", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, notFound("planting", id)
	}
	return s.GetPlanting(ctx, id)
}

// DeletePlanting removes a schedule entry, returning the deleted row.
func (s *SQLiteStore) DeletePlanting(ctx context.Context, id string) (*domain.Planting, error) {
	pl, err := s.GetPlanting(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM plantings WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("delete planting: %w", err)
	}
	return pl, nil
}

// DashboardSummary aggregates counts and upcoming plantings for the overview.
func (s *SQLiteStore) DashboardSummary(ctx context.Context) (*domain.DashboardSummary, error) {
	summary := &domain.DashboardSummary{UpcomingPlantings: []*domain.Planting{}}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM plants`, &summary.PlantCount},
		{`SELECT COUNT(*) FROM seeds`, &summary.SeedCount},
		{`SELECT COUNT(*) FROM garden_locations`, &summary.LocationCount},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("dashboard count: %w", err)
		}
	}

	activeArgs := make([]any, len(domain.ActiveStatuses))
	placeholders := make([]string, len(domain.ActiveStatuses))
	for i, st := range domain.ActiveStatuses {
		activeArgs[i] = string(st)
		placeholders[i] = "?"
	}
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM plantings WHERE status IN (`+strings.Join(placeholders, ",")+`)`,
		activeArgs...,
	).Scan(&summary.ActivePlantingCount)
	if err != nil {
		return nil, fmt.Errorf("dashboard active plantings: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+plantingColumns+plantingFrom+`
		 WHERE pl.status IN (?, ?)
		 ORDER BY COALESCE(pl.sow_indoor_date, pl.sow_outdoor_date) IS NULL,
		          COALESCE(pl.sow_indoor_date, pl.sow_outdoor_date) ASC
		 LIMIT 10`,
		string(domain.StatusPlanned), string(domain.StatusSown),
	)
	if err != nil {
		return nil, fmt.Errorf("query upcoming plantings: %w", err)
	}
	defer closeRows(rows, "upcoming plantings")

	for rows.Next() {
		pl, err := scanPlanting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan upcoming planting: %w", err)
		}
		summary.UpcomingPlantings = append(summary.UpcomingPlantings, pl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate upcoming plantings: %w", err)
	}
	return summary, nil
}

func closeRows(rows *sql.Rows, what string) {
	if err := rows.Close(); err != nil {
		slog.Warn("failed to close rows", "query", what, "error", err)
	}
}
