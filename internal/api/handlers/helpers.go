package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"itinerary-route-service/internal/api/dto"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/nullable"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	var res dto.ErrorResponse
	res.Error.Code = code
	res.Error.Message = msg
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		res.Error.RequestID = nullable.NewNullableWithValue(rid)
	}
	writeJSON(w, r, status, res)
}

// decodeJSON reads exactly one JSON object into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_json", "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, "invalid_json", "body must contain only one JSON object")
		return false
	}
	return true
}
