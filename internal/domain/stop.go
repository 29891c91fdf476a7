package domain

// Raw stop record as supplied by the itinerary editor.
// Every field is optional; validation happens during normalization.
type RawStop struct {
	Lat    *float64 `json:"lat"`
	Lng    *float64 `json:"lng"`
	Titulo string   `json:"titulo"`
	Orden  *float64 `json:"orden"`
}

// Represents one visitable location of a trip.
// A Stop is immutable once normalized; reordering produces new values.
type Stop struct {
	Coordinates
	Title      string
	VisitOrder int
}

// Copy the stops into a new slice.
func CloneStops(stops []Stop) []Stop {
	if stops == nil {
		return nil
	}
	out := make([]Stop, len(stops))
	copy(out, stops)
	return out
}

// Extract the coordinates of the stops in order.
func StopCoordinates(stops []Stop) []Coordinates {
	out := make([]Coordinates, 0, len(stops))
	for _, s := range stops {
		out = append(out, s.Coordinates)
	}
	return out
}
