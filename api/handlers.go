package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/itskeerthanraj/NeuroFleetX/core/dispatch"
	"github.com/itskeerthanraj/NeuroFleetX/core/model"
	"github.com/itskeerthanraj/NeuroFleetX/core/query"
	"github.com/itskeerthanraj/NeuroFleetX/core/store"
)

type createTripRequest struct {
	PassengerID string         `json:"passenger_id"`
	Pickup      model.Location `json:"pickup_location"`
	Dropoff     model.Location `json:"dropoff_location"`
	Fare        float64        `json:"fare"`
	Notes       string         `json:"notes"`
}

func (s *Server) createTrip(w http.ResponseWriter, r *http.Request) {
	var req createTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request payload")
		return
	}
	t, err := s.svc.CreateTrip(req.PassengerID, req.Pickup, req.Dropoff, req.Fare, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) listTrips(w http.ResponseWriter, r *http.Request) {
	f := query.TripFilter{
		Status:   model.TripStatus(r.URL.Query().Get("status")),
		DriverID: r.URL.Query().Get("driver_id"),
	}
	writeJSON(w, http.StatusOK, s.svc.ListTrips(f))
}

func (s *Server) getTrip(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Trip(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type assignRequest struct {
	DriverID  string `json:"driver_id"`
	VehicleID string `json:"vehicle_id"`
}

func (s *Server) assignTrip(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request payload")
		return
	}
	t, err := s.svc.AssignTrip(mux.Vars(r)["id"], req.DriverID, req.VehicleID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// optimizeResponse reports the dispatch outcome. Assigned is false when
// no candidate was available; the trip stays dispatchable.
type optimizeResponse struct {
	Assigned bool       `json:"assigned"`
	Reason   string     `json:"reason,omitempty"`
	Trip     model.Trip `json:"trip"`
}

func (s *Server) optimizeTrip(w http.ResponseWriter, r *http.Request) {
	tripID := mux.Vars(r)["id"]
	t, err := s.svc.OptimizeAndAssign(tripID)
	var noCand dispatch.NoCandidateError
	if errors.As(err, &noCand) {
		unchanged, terr := s.svc.Trip(tripID)
		if terr != nil {
			writeError(w, terr)
			return
		}
		writeJSON(w, http.StatusOK, optimizeResponse{Assigned: false, Reason: err.Error(), Trip: unchanged})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, optimizeResponse{Assigned: true, Trip: t})
}

type actorRequest struct {
	ActorID string `json:"actor_id"`
}

func (s *Server) startTrip(w http.ResponseWriter, r *http.Request) {
	var req actorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request payload")
		return
	}
	t, err := s.svc.StartTrip(mux.Vars(r)["id"], req.ActorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) completeTrip(w http.ResponseWriter, r *http.Request) {
	var req actorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request payload")
		return
	}
	t, err := s.svc.CompleteTrip(mux.Vars(r)["id"], req.ActorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) cancelTrip(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.CancelTrip(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) driverHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.DriverHistory(mux.Vars(r)["driverID"]))
}

func (s *Server) addVehicle(w http.ResponseWriter, r *http.Request) {
	var v model.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		badRequest(w, "invalid request payload")
		return
	}
	added, err := s.svc.AddVehicle(v)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) listVehicles(w http.ResponseWriter, r *http.Request) {
	status := model.VehicleStatus(r.URL.Query().Get("status"))
	writeJSON(w, http.StatusOK, s.svc.ListVehicles(status))
}

func (s *Server) nearbyVehicles(w http.ResponseWriter, r *http.Request) {
	lat, err1 := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, err2 := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err1 != nil || err2 != nil {
		badRequest(w, "lat and lng query parameters are required")
		return
	}
	radius := 5.0
	if v := r.URL.Query().Get("radius_km"); v != "" {
		radius, err1 = strconv.ParseFloat(v, 64)
		if err1 != nil || radius <= 0 {
			badRequest(w, "radius_km must be a positive number")
			return
		}
	}
	writeJSON(w, http.StatusOK, s.svc.NearbyVehicles(lat, lng, radius))
}

func (s *Server) addDriver(w http.ResponseWriter, r *http.Request) {
	var d model.Driver
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		badRequest(w, "invalid request payload")
		return
	}
	added, err := s.svc.AddDriver(d)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) listDrivers(w http.ResponseWriter, r *http.Request) {
	status := model.DriverStatus(r.URL.Query().Get("status"))
	writeJSON(w, http.StatusOK, s.svc.ListDrivers(status))
}

type locationRequest struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	ObservedAt time.Time `json:"observed_at"`
}

// locationResponse reports whether the observation was applied or
// superseded by a newer one already stored.
type locationResponse struct {
	Applied bool `json:"applied"`
}

func (s *Server) updateLocation(w http.ResponseWriter, r *http.Request, kind store.Kind) {
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request payload")
		return
	}
	if req.ObservedAt.IsZero() {
		req.ObservedAt = time.Now()
	}
	applied, err := s.svc.UpdateLocation(kind, mux.Vars(r)["id"], req.Lat, req.Lng, req.ObservedAt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, locationResponse{Applied: applied})
}

func (s *Server) driverLocation(w http.ResponseWriter, r *http.Request) {
	s.updateLocation(w, r, store.KindDriver)
}

func (s *Server) vehicleLocation(w http.ResponseWriter, r *http.Request) {
	s.updateLocation(w, r, store.KindVehicle)
}

type pairRequest struct {
	VehicleID string `json:"vehicle_id"`
}

func (s *Server) pairDriver(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request payload")
		return
	}
	if err := s.svc.PairDriverVehicle(mux.Vars(r)["id"], req.VehicleID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) unpairDriver(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.UnpairDriverVehicle(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) overview(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Overview())
}

func (s *Server) fareStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.FareStats())
}
