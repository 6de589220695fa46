package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/containerd/errdefs"
	_ "modernc.org/sqlite"

	"gardenai/internal/shared"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db        *sql.DB
	sessionMu sync.Mutex // serializes chat session writes to prevent SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency. The _pragma form
	// is applied by the driver on every pooled connection.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS plants (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		variety TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL DEFAULT 'OTHER',
		days_to_maturity INTEGER,
		sun_requirement TEXT,
		water_needs TEXT,
		growing_notes TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		UNIQUE(name, variety)
	);

	CREATE TABLE IF NOT EXISTS seeds (
		id TEXT PRIMARY KEY,
		plant_id TEXT NOT NULL REFERENCES plants(id) ON DELETE CASCADE,
		quantity INTEGER NOT NULL,
		quantity_unit TEXT NOT NULL DEFAULT 'packets',
		supplier TEXT NOT NULL DEFAULT '',
		viability INTEGER,
		lot_number TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		purchase_date INTEGER,
		expiry_date INTEGER,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_seeds_plant ON seeds(plant_id);

	CREATE TABLE IF NOT EXISTS garden_locations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		location_type TEXT NOT NULL DEFAULT 'BED',
		description TEXT NOT NULL DEFAULT '',
		sun_exposure TEXT,
		soil_type TEXT NOT NULL DEFAULT '',
		climate_zone TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS plantings (
		id TEXT PRIMARY KEY,
		plant_id TEXT NOT NULL REFERENCES plants(id) ON DELETE CASCADE,
		location_id TEXT REFERENCES garden_locations(id) ON DELETE SET NULL,
		year INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'PLANNED',
		sow_indoor_date INTEGER,
		sow_outdoor_date INTEGER,
		transplant_date INTEGER,
		harvest_start INTEGER,
		harvest_end INTEGER,
		notes TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_plantings_plant ON plantings(plant_id);
	CREATE INDEX IF NOT EXISTS idx_plantings_year ON plantings(year);

	CREATE TABLE IF NOT EXISTS chat_sessions (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		summary TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_sessions_updated ON chat_sessions(updated_at);

	CREATE TABLE IF NOT EXISTS chat_messages (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES chat_sessions(id) ON DELETE CASCADE,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		tool_calls TEXT,
		tool_results TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages(session_id, created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// classifyWriteError maps SQLite constraint failures onto the errdefs
// taxonomy so callers can test with errdefs.IsConflict / IsInvalidArgument.
func classifyWriteError(op string, err error) error {
	switch {
	case shared.IsSQLiteUniqueError(err):
		return fmt.Errorf("%s: %w: %v", op, errdefs.ErrConflict, err)
	case shared.IsSQLiteForeignKeyError(err):
		return fmt.Errorf("%s: %w: %v", op, errdefs.ErrInvalidArgument, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// notFound wraps errdefs.ErrNotFound with entity context.
func notFound(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, errdefs.ErrNotFound)
}

// nullStr converts an empty string to NULL for insertion.
func nullStr(v string) any {
	if v == "" {
		return nil
	}
	return v
}

// nullTime converts a nil time to NULL, otherwise unix seconds.
func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

// nullInt converts a nil int pointer to NULL.
func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func timePtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0)
	return &t
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
