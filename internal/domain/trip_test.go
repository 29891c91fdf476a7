package domain

import (
	"reflect"
	"testing"
)

func sampleStops() []Stop {
	return []Stop{
		{Coordinates: Coordinates{Lat: 40.1, Lon: -3.1}, Title: "A", VisitOrder: 1},
		{Coordinates: Coordinates{Lat: 40.2, Lon: -3.2}, Title: "B", VisitOrder: 2},
		{Coordinates: Coordinates{Lat: 40.3, Lon: -3.3}, Title: "C", VisitOrder: 3},
	}
}

func TestTripReverseRenumbersVisitOrder(t *testing.T) {
	trip := NewTrip(sampleStops())
	snap := trip.ToggleReversed()

	want := []string{"C", "B", "A"}
	for i, s := range snap.Stops {
		if s.Title != want[i] || s.VisitOrder != i+1 {
			t.Fatalf("stop %d = %s/%d, want %s/%d", i, s.Title, s.VisitOrder, want[i], i+1)
		}
	}
	if !trip.IsReversed() {
		t.Fatalf("expected reversed")
	}
}

func TestTripToggleTwiceIsIdentity(t *testing.T) {
	trip := NewTrip(sampleStops())
	before := trip.Snapshot()
	trip.ToggleReversed()
	after := trip.ToggleReversed()

	if !reflect.DeepEqual(before, after) {
		t.Fatalf("double toggle: %+v != %+v", before, after)
	}
}

func TestTripKeyChangesWithOrder(t *testing.T) {
	trip := NewTrip(sampleStops())
	k1 := trip.Snapshot().Key
	k2 := trip.ToggleReversed().Key
	if k1 == k2 {
		t.Fatalf("key did not change on reversal: %s", k1)
	}
	if StopsKey(nil) != "empty" {
		t.Fatalf("empty key = %q", StopsKey(nil))
	}
}

func TestTripPublishesSnapshots(t *testing.T) {
	trip := NewTrip(nil)
	var got []TripSnapshot
	trip.Subscribe(func(s TripSnapshot) { got = append(got, s) })

	trip.SetStops(sampleStops())
	trip.ToggleReversed()

	if len(got) != 2 {
		t.Fatalf("snapshots = %d, want 2", len(got))
	}
	if got[0].IsReversed || !got[1].IsReversed {
		t.Fatalf("unexpected orientation: %+v", got)
	}
	// Published snapshots are independent of later changes.
	got[0].Stops[0].Title = "mutated"
	if trip.DisplayStops()[2].Title != "A" {
		t.Fatalf("snapshot shares memory with trip")
	}
}

func TestTripSetStopsKeepsReversal(t *testing.T) {
	trip := NewTrip(sampleStops())
	trip.ToggleReversed()
	snap := trip.SetStops(sampleStops()[:2])
	if !snap.IsReversed || snap.Stops[0].Title != "B" {
		t.Fatalf("snapshot = %+v", snap)
	}
}
