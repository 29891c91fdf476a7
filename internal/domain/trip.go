package domain

import (
	"fmt"
	"strings"
	"sync"
)

// Immutable view of a trip at one point in time.
type TripSnapshot struct {
	Stops      []Stop
	IsReversed bool
	// Content- and order-derived identity of the displayed stop set.
	Key string
}

// Trip owns the canonical (as-authored) stop order and the reversal flag.
// The display order is always derived; it is never stored on its own.
//
// Every change publishes a fresh TripSnapshot to subscribers. Trip is safe for
// concurrent use, but it has a single logical writer.
type Trip struct {
	mu        sync.Mutex
	canonical []Stop
	reversed  bool
	observers []func(TripSnapshot)
}

func NewTrip(stops []Stop) *Trip {
	return &Trip{canonical: CloneStops(stops)}
}

// Subscribe registers fn to receive every snapshot published after a change.
func (t *Trip) Subscribe(fn func(TripSnapshot)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, fn)
}

// Replace the canonical stops. The reversal flag is kept.
func (t *Trip) SetStops(stops []Stop) TripSnapshot {
	t.mu.Lock()
	t.canonical = CloneStops(stops)
	snap, observers := t.snapshotLocked(), t.observersLocked()
	t.mu.Unlock()

	notify(observers, snap)
	return snap
}

// Flip the visiting order.
func (t *Trip) ToggleReversed() TripSnapshot {
	t.mu.Lock()
	t.reversed = !t.reversed
	snap, observers := t.snapshotLocked(), t.observersLocked()
	t.mu.Unlock()

	notify(observers, snap)
	return snap
}

func (t *Trip) IsReversed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reversed
}

// Stops in display order.
func (t *Trip) DisplayStops() []Stop {
	t.mu.Lock()
	defer t.mu.Unlock()
	return displayOrder(t.canonical, t.reversed)
}

func (t *Trip) Snapshot() TripSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Trip) snapshotLocked() TripSnapshot {
	stops := displayOrder(t.canonical, t.reversed)
	return TripSnapshot{
		Stops:      stops,
		IsReversed: t.reversed,
		Key:        StopsKey(stops),
	}
}

func (t *Trip) observersLocked() []func(TripSnapshot) {
	out := make([]func(TripSnapshot), len(t.observers))
	copy(out, t.observers)
	return out
}

func notify(observers []func(TripSnapshot), snap TripSnapshot) {
	for _, fn := range observers {
		fn(snap)
	}
}

// displayOrder returns the canonical stops, or their reverse renumbered 1..N.
func displayOrder(canonical []Stop, reversed bool) []Stop {
	if !reversed {
		return CloneStops(canonical)
	}

	n := len(canonical)
	out := make([]Stop, n)
	for i, s := range canonical {
		s.VisitOrder = n - i
		out[n-1-i] = s
	}
	return out
}

// StopsKey identifies an ordered stop set by display index and coordinates
// rounded to 5 decimals.
func StopsKey(stops []Stop) string {
	if len(stops) == 0 {
		return "empty"
	}

	parts := make([]string, 0, len(stops))
	for i, s := range stops {
		parts = append(parts, fmt.Sprintf("%d:%.5f,%.5f", i, s.Lat, s.Lon))
	}
	return strings.Join(parts, "|")
}
