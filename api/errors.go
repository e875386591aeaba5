package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/itskeerthanraj/NeuroFleetX/core/model"
	"github.com/itskeerthanraj/NeuroFleetX/core/store"
	"github.com/itskeerthanraj/NeuroFleetX/core/trip"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// writeError maps domain errors onto HTTP status codes. Missing
// entities are 404, lifecycle and concurrency rejections 409, identity
// rejections 403, semantic validation failures 422.
func writeError(w http.ResponseWriter, err error) {
	var (
		notFound   store.NotFoundError
		exists     store.AlreadyExistsError
		conflict   store.ConflictError
		invalid    trip.InvalidTransitionError
		busy       trip.UnavailableError
		notDriver  trip.NotTripDriverError
		validation model.ValidationError
	)
	status := http.StatusInternalServerError
	kind := "internal"
	switch {
	case errors.As(err, &notFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.As(err, &exists):
		status, kind = http.StatusConflict, "already_exists"
	case errors.As(err, &conflict):
		status, kind = http.StatusConflict, "conflict"
	case errors.As(err, &invalid):
		status, kind = http.StatusConflict, "invalid_transition"
	case errors.As(err, &busy):
		status, kind = http.StatusConflict, "unavailable"
	case errors.As(err, &notDriver):
		status, kind = http.StatusForbidden, "not_trip_driver"
	case errors.As(err, &validation):
		status, kind = http.StatusUnprocessableEntity, "validation"
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg, Kind: "bad_request"})
}
