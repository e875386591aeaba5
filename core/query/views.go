// Package query provides stateless read views over the entity store.
// Every view is recomputed from a snapshot at call time; pollers get
// pull consistency and never block writers beyond the snapshot read.
package query

import (
	"sort"
	"time"

	"github.com/itskeerthanraj/NeuroFleetX/core/geo"
	"github.com/itskeerthanraj/NeuroFleetX/core/model"
	"github.com/itskeerthanraj/NeuroFleetX/core/store"
	"github.com/itskeerthanraj/NeuroFleetX/internal/geoindex"
)

// Views computes read-only aggregations for dashboards and pollers.
type Views struct {
	store store.Store
	index *geoindex.Index
}

// NewViews returns a Views. index may be nil, which disables
// NearbyVehicles.
func NewViews(st store.Store, index *geoindex.Index) *Views {
	return &Views{store: st, index: index}
}

// Overview is the fleet census the dispatcher dashboard polls.
type Overview struct {
	Vehicles    map[model.VehicleStatus]int `json:"vehicles"`
	Drivers     map[model.DriverStatus]int  `json:"drivers"`
	Trips       map[model.TripStatus]int    `json:"trips"`
	ActiveTrips int                         `json:"active_trips"`
	GeneratedAt time.Time                   `json:"generated_at"`
}

// Overview counts entities by status.
func (q *Views) Overview() Overview {
	ov := Overview{
		Vehicles:    map[model.VehicleStatus]int{},
		Drivers:     map[model.DriverStatus]int{},
		Trips:       map[model.TripStatus]int{},
		GeneratedAt: time.Now().UTC(),
	}
	for _, v := range q.store.Vehicles(nil) {
		ov.Vehicles[v.Status]++
	}
	for _, d := range q.store.Drivers(nil) {
		ov.Drivers[d.Status]++
	}
	for _, t := range q.store.Trips(nil) {
		ov.Trips[t.Status]++
		if t.Active() {
			ov.ActiveTrips++
		}
	}
	return ov
}

// Vehicles lists vehicles, optionally restricted to one status.
func (q *Views) Vehicles(status model.VehicleStatus) []model.Vehicle {
	if status == "" {
		return q.store.Vehicles(nil)
	}
	return q.store.Vehicles(func(v model.Vehicle) bool { return v.Status == status })
}

// Drivers lists drivers, optionally restricted to one status.
func (q *Views) Drivers(status model.DriverStatus) []model.Driver {
	if status == "" {
		return q.store.Drivers(nil)
	}
	return q.store.Drivers(func(d model.Driver) bool { return d.Status == status })
}

// TripFilter restricts a trip listing. Zero values match everything.
type TripFilter struct {
	Status   model.TripStatus
	DriverID string
}

// Trips lists trips matching the filter.
func (q *Views) Trips(f TripFilter) []model.Trip {
	return q.store.Trips(func(t model.Trip) bool {
		if f.Status != "" && t.Status != f.Status {
			return false
		}
		if f.DriverID != "" && t.DriverID != f.DriverID {
			return false
		}
		return true
	})
}

// DriverHistory returns a driver's trips, newest first.
func (q *Views) DriverHistory(driverID string) []model.Trip {
	trips := q.store.Trips(func(t model.Trip) bool { return t.DriverID == driverID })
	sort.Slice(trips, func(i, j int) bool { return trips[i].CreatedAt.After(trips[j].CreatedAt) })
	return trips
}

// NearbyVehicle pairs a vehicle with its distance from a query point.
type NearbyVehicle struct {
	Vehicle    model.Vehicle `json:"vehicle"`
	DistanceKm float64       `json:"distance_km"`
}

// NearbyVehicles returns vehicles within radiusKm of (lat, lng),
// nearest first. The r-tree gives the coarse window; candidates are
// refined with the real great-circle distance.
func (q *Views) NearbyVehicles(lat, lng, radiusKm float64) []NearbyVehicle {
	if q.index == nil {
		return nil
	}
	var res []NearbyVehicle
	for _, id := range q.index.Near(lat, lng, radiusKm) {
		v, _, err := q.store.Vehicle(id)
		if err != nil || v.Location.IsZero() {
			continue
		}
		d := geo.HaversineKm(v.Location.Lat, v.Location.Lng, lat, lng)
		if d <= radiusKm {
			res = append(res, NearbyVehicle{Vehicle: v, DistanceKm: d})
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].DistanceKm != res[j].DistanceKm {
			return res[i].DistanceKm < res[j].DistanceKm
		}
		return res[i].Vehicle.ID < res[j].Vehicle.ID
	})
	return res
}
