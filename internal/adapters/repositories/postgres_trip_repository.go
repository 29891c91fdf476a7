package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/platform/obs"
	"itinerary-route-service/internal/ports"
)

// Postgres-backed implementation of the TripRepository port.
type PostgresTripRepository struct{ DB *sql.DB }

func NewPostgresTripRepository(db *sql.DB) *PostgresTripRepository {
	return &PostgresTripRepository{DB: db}
}

func tripRecord(id string, stops []domain.RawStop, fallback domain.FallbackTotals) ports.TripRecord {
	return ports.TripRecord{ID: id, RawStops: stops, Fallback: fallback, RoutingEnabled: true}
}

// Return the trip with its stops in stored order.
func (s *PostgresTripRepository) GetTrip(ctx context.Context, id string) (_ ports.TripRecord, err error) {
	defer obs.Time(ctx, "trips.GetTrip")(&err)

	if s.DB == nil {
		return ports.TripRecord{}, errors.New("postgres trip repository: DB is nil")
	}

	rec := ports.TripRecord{ID: id}
	var dist sql.NullFloat64
	var hours sql.NullString

	err = s.DB.QueryRowContext(ctx, `
	SELECT
		routing_enabled,
		is_reversed,
		total_distancia_km,
		total_tiempo_estimado
	FROM trips
	WHERE id = $1;
	`, id).Scan(&rec.RoutingEnabled, &rec.Reversed, &dist, &hours)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.TripRecord{}, ports.ErrTripNotFound
	}
	if err != nil {
		return ports.TripRecord{}, fmt.Errorf("get trip: query trips table: %w", err)
	}
	if dist.Valid {
		rec.Fallback.DistanceKm = &dist.Float64
	}
	if hours.Valid {
		rec.Fallback.DurationHours = &hours.String
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT
		lat,
		lng,
		titulo,
		orden
	FROM trip_stops
	WHERE trip_id = $1
	ORDER BY position;
	`, id)
	if err != nil {
		return ports.TripRecord{}, fmt.Errorf("get trip: query trip_stops table: %w", err)
	}
	defer rows.Close()

	rec.RawStops = make([]domain.RawStop, 0, 16)
	for rows.Next() {
		var lat, lng, orden sql.NullFloat64
		var titulo string
		if err := rows.Scan(&lat, &lng, &titulo, &orden); err != nil {
			return ports.TripRecord{}, fmt.Errorf("get trip: scan row: %w", err)
		}
		rec.RawStops = append(rec.RawStops, domain.RawStop{
			Lat:    nullFloat(lat),
			Lng:    nullFloat(lng),
			Titulo: titulo,
			Orden:  nullFloat(orden),
		})
	}
	if err := rows.Err(); err != nil {
		return ports.TripRecord{}, fmt.Errorf("get trip: row iteration: %w", err)
	}

	return rec, nil
}

// Insert or replace a trip and all of its stops.
func (s *PostgresTripRepository) SaveTrip(ctx context.Context, trip ports.TripRecord) (err error) {
	defer obs.Time(ctx, "trips.SaveTrip")(&err)
	return s.saveContext(ctx, trip)
}

func (s *PostgresTripRepository) save(trip ports.TripRecord) error {
	return s.saveContext(context.Background(), trip)
}

func (s *PostgresTripRepository) saveContext(ctx context.Context, trip ports.TripRecord) error {
	if s.DB == nil {
		return errors.New("postgres trip repository: DB is nil")
	}
	if trip.ID == "" {
		return errors.New("save trip: id must not be empty")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save trip: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO trips (id, routing_enabled, is_reversed, total_distancia_km, total_tiempo_estimado, updated_at)
	VALUES ($1, $2, $3, $4, $5, now())
	ON CONFLICT (id) DO UPDATE
	SET routing_enabled = EXCLUDED.routing_enabled,
		is_reversed = EXCLUDED.is_reversed,
		total_distancia_km = EXCLUDED.total_distancia_km,
		total_tiempo_estimado = EXCLUDED.total_tiempo_estimado,
		updated_at = EXCLUDED.updated_at;
	`, trip.ID, trip.RoutingEnabled, trip.Reversed, trip.Fallback.DistanceKm, trip.Fallback.DurationHours)
	if err != nil {
		return fmt.Errorf("save trip: upsert trip id=%s: %w", trip.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM trip_stops WHERE trip_id = $1;`, trip.ID); err != nil {
		return fmt.Errorf("save trip: clear stops: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO trip_stops (trip_id, position, lat, lng, titulo, orden)
	VALUES ($1, $2, $3, $4, $5, $6);
	`)
	if err != nil {
		return fmt.Errorf("save trip: db prepare: %w", err)
	}
	defer stmt.Close()

	for i, st := range trip.RawStops {
		if _, err := stmt.ExecContext(ctx, trip.ID, i+1, st.Lat, st.Lng, st.Titulo, st.Orden); err != nil {
			return fmt.Errorf("save trip: insert stop position=%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save trip commit: %w", err)
	}

	return nil
}

// Store live totals as the trip's fallback totals.
func (s *PostgresTripRepository) SaveTotals(ctx context.Context, id string, totals domain.TripTotals) (err error) {
	defer obs.Time(ctx, "trips.SaveTotals")(&err)

	if s.DB == nil {
		return errors.New("postgres trip repository: DB is nil")
	}

	fallback := totals.AsFallback()
	res, err := s.DB.ExecContext(ctx, `
	UPDATE trips
	SET total_distancia_km = $2,
		total_tiempo_estimado = $3,
		updated_at = now()
	WHERE id = $1;
	`, id, fallback.DistanceKm, fallback.DurationHours)
	if err != nil {
		return fmt.Errorf("save totals: update trip id=%s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save totals: rows affected: %w", err)
	}
	if n == 0 {
		return ports.ErrTripNotFound
	}

	return nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
