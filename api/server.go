// Package api exposes the dispatch core over HTTP for the dashboard
// and operational tooling.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/itskeerthanraj/NeuroFleetX/core/fleet"
	"github.com/itskeerthanraj/NeuroFleetX/core/logger"
)

// Server holds the HTTP handlers over the fleet service.
type Server struct {
	svc *fleet.Service
	log logger.Logger
}

// NewServer returns a Server.
func NewServer(svc *fleet.Service, log logger.Logger) *Server {
	return &Server{svc: svc, log: log}
}

// Handler builds the router for all API routes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/trips", s.createTrip).Methods(http.MethodPost)
	r.HandleFunc("/api/trips", s.listTrips).Methods(http.MethodGet)
	r.HandleFunc("/api/trips/driver/{driverID}", s.driverHistory).Methods(http.MethodGet)
	r.HandleFunc("/api/trips/{id}", s.getTrip).Methods(http.MethodGet)
	r.HandleFunc("/api/trips/{id}/assign", s.assignTrip).Methods(http.MethodPut)
	r.HandleFunc("/api/trips/{id}/optimize", s.optimizeTrip).Methods(http.MethodPost)
	r.HandleFunc("/api/trips/{id}/start", s.startTrip).Methods(http.MethodPut)
	r.HandleFunc("/api/trips/{id}/complete", s.completeTrip).Methods(http.MethodPut)
	r.HandleFunc("/api/trips/{id}/cancel", s.cancelTrip).Methods(http.MethodPut)

	r.HandleFunc("/api/vehicles", s.addVehicle).Methods(http.MethodPost)
	r.HandleFunc("/api/vehicles", s.listVehicles).Methods(http.MethodGet)
	r.HandleFunc("/api/vehicles/nearby", s.nearbyVehicles).Methods(http.MethodGet)
	r.HandleFunc("/api/vehicles/{id}/location", s.vehicleLocation).Methods(http.MethodPut)

	r.HandleFunc("/api/drivers", s.addDriver).Methods(http.MethodPost)
	r.HandleFunc("/api/drivers", s.listDrivers).Methods(http.MethodGet)
	r.HandleFunc("/api/drivers/{id}/location", s.driverLocation).Methods(http.MethodPut)
	r.HandleFunc("/api/drivers/{id}/pair", s.pairDriver).Methods(http.MethodPut)
	r.HandleFunc("/api/drivers/{id}/pair", s.unpairDriver).Methods(http.MethodDelete)

	r.HandleFunc("/api/fleet/overview", s.overview).Methods(http.MethodGet)
	r.HandleFunc("/api/fleet/stats", s.fareStats).Methods(http.MethodGet)
	return r
}
