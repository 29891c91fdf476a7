package obs

import (
	"context"
	"log"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

// TripIDKey tags background work (route fetches) with the trip it serves.
const TripIDKey ctxKey = "trip_id"

// WithTripID returns a context carrying the trip ID for timing logs.
func WithTripID(ctx context.Context, tripID string) context.Context {
	return context.WithValue(ctx, TripIDKey, tripID)
}

func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID := middleware.GetReqID(ctx)
	tripID, _ := ctx.Value(TripIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Printf("req_id=%s trip_id=%s op=%s dur=%dms err=%v", reqID, tripID, name, dur.Milliseconds(), *errp)
			return
		}
		log.Printf("req_id=%s trip_id=%s op=%s dur=%dms", reqID, tripID, name, dur.Milliseconds())
	}
}
