package repositories

import (
	"context"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/ports"
	"sync"
)

// MemoryTripRepository is an in-memory implementation of TripRepository.
// It is safe for concurrent use.
type MemoryTripRepository struct {
	mu   sync.RWMutex
	byID map[string]ports.TripRecord
}

func NewMemoryTripRepository() *MemoryTripRepository {
	return &MemoryTripRepository{byID: make(map[string]ports.TripRecord)}
}

func (r *MemoryTripRepository) GetTrip(ctx context.Context, id string) (ports.TripRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return ports.TripRecord{}, ports.ErrTripNotFound
	}
	return cloneRecord(rec), nil
}

func (r *MemoryTripRepository) SaveTrip(ctx context.Context, trip ports.TripRecord) error {
	if trip.ID == "" {
		return ports.ErrTripNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[trip.ID] = cloneRecord(trip)
	return nil
}

func (r *MemoryTripRepository) SaveTotals(ctx context.Context, id string, totals domain.TripTotals) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[id]
	if !ok {
		return ports.ErrTripNotFound
	}

	rec.Fallback = totals.AsFallback()
	r.byID[id] = rec
	return nil
}

func cloneRecord(rec ports.TripRecord) ports.TripRecord {
	out := rec
	out.RawStops = append([]domain.RawStop(nil), rec.RawStops...)
	if rec.Fallback.DistanceKm != nil {
		d := *rec.Fallback.DistanceKm
		out.Fallback.DistanceKm = &d
	}
	if rec.Fallback.DurationHours != nil {
		h := *rec.Fallback.DurationHours
		out.Fallback.DurationHours = &h
	}
	return out
}
