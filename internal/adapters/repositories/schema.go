package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"itinerary-route-service/internal/domain"
	"os"
	"strings"
)

// Initialize the Postgres database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createTripsQuery := `
	CREATE TABLE IF NOT EXISTS trips (
		id TEXT PRIMARY KEY,
		routing_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		is_reversed BOOLEAN NOT NULL DEFAULT FALSE,
		total_distancia_km DOUBLE PRECISION,
		total_tiempo_estimado TEXT,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createStopsQuery := `
	CREATE TABLE IF NOT EXISTS trip_stops (
        trip_id TEXT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
        position INTEGER NOT NULL,
        lat DOUBLE PRECISION,
        lng DOUBLE PRECISION,
        titulo TEXT NOT NULL DEFAULT '',
        orden DOUBLE PRECISION,
        PRIMARY KEY (trip_id, position)
    );
	`

	createRouteCacheQuery := `
	CREATE TABLE IF NOT EXISTS route_cache (
        cache_key TEXT PRIMARY KEY,
        payload BYTEA NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    );
	`

	// Tables created before trips could be reversed lack the column.
	addReversedQuery := `
	ALTER TABLE trips ADD COLUMN IF NOT EXISTS is_reversed BOOLEAN NOT NULL DEFAULT FALSE;
	`

	statements := []string{
		createTripsQuery,
		addReversedQuery,
		createStopsQuery,
		createRouteCacheQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type TripSeed struct {
	ID                  string           `json:"id"`
	Stops               []domain.RawStop `json:"stops"`
	TotalDistanciaKm    *float64         `json:"totalDistanciaKm"`
	TotalTiempoEstimado *string          `json:"totalTiempoEstimado"`
}

// Populate the database with trips from a JSON file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed trips: read %q: %w", jsonPath, err)
	}

	var data []TripSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed trips: parse json: %w", err)
	}

	repo := NewPostgresTripRepository(db)
	for i, item := range data {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			return fmt.Errorf("seed trips: item at index %d: id cannot be empty", i+1)
		}

		rec := tripRecord(id, item.Stops, domain.FallbackTotals{
			DistanceKm:    item.TotalDistanciaKm,
			DurationHours: item.TotalTiempoEstimado,
		})
		if err := repo.save(rec); err != nil {
			return fmt.Errorf("seed trips: insert trip id=%s: %w", id, err)
		}
	}

	return nil
}
