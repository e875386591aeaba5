package query

import (
	"math"
	"testing"
	"time"

	"github.com/itskeerthanraj/NeuroFleetX/core/model"
	"github.com/itskeerthanraj/NeuroFleetX/core/store"
	"github.com/itskeerthanraj/NeuroFleetX/internal/geoindex"
)

func seedStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	st := store.NewMemoryStore()
	vehicles := []model.Vehicle{
		{ID: "v1", Status: model.VehicleAvailable},
		{ID: "v2", Status: model.VehicleBusy},
		{ID: "v3", Status: model.VehicleMaintenance},
	}
	for _, v := range vehicles {
		if err := st.PutVehicle(v); err != nil {
			t.Fatalf("put vehicle: %v", err)
		}
	}
	drivers := []model.Driver{
		{ID: "d1", Status: model.DriverAvailable},
		{ID: "d2", Status: model.DriverBusy},
		{ID: "d3", Status: model.DriverOffline},
	}
	for _, d := range drivers {
		if err := st.PutDriver(d); err != nil {
			t.Fatalf("put driver: %v", err)
		}
	}
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	trips := []model.Trip{
		{ID: "t1", Status: model.TripRequested, CreatedAt: base},
		{ID: "t2", Status: model.TripAssigned, DriverID: "d2", VehicleID: "v2", CreatedAt: base.Add(time.Minute)},
		{ID: "t3", Status: model.TripCompleted, DriverID: "d1", VehicleID: "v1", Fare: 120,
			StartTime: base, EndTime: base.Add(20 * time.Minute), CreatedAt: base.Add(2 * time.Minute)},
		{ID: "t4", Status: model.TripCompleted, DriverID: "d1", VehicleID: "v1", Fare: 80,
			StartTime: base.Add(time.Hour), EndTime: base.Add(time.Hour + 10*time.Minute), CreatedAt: base.Add(3 * time.Minute)},
		{ID: "t5", Status: model.TripCancelled, CreatedAt: base.Add(4 * time.Minute)},
	}
	for _, tr := range trips {
		if err := st.PutTrip(tr); err != nil {
			t.Fatalf("put trip: %v", err)
		}
	}
	return st
}

func TestOverviewCounts(t *testing.T) {
	q := NewViews(seedStore(t), nil)
	ov := q.Overview()

	if ov.Vehicles[model.VehicleAvailable] != 1 || ov.Vehicles[model.VehicleBusy] != 1 || ov.Vehicles[model.VehicleMaintenance] != 1 {
		t.Fatalf("vehicle counts: %v", ov.Vehicles)
	}
	if ov.Drivers[model.DriverAvailable] != 1 || ov.Drivers[model.DriverBusy] != 1 || ov.Drivers[model.DriverOffline] != 1 {
		t.Fatalf("driver counts: %v", ov.Drivers)
	}
	if ov.Trips[model.TripCompleted] != 2 || ov.Trips[model.TripRequested] != 1 {
		t.Fatalf("trip counts: %v", ov.Trips)
	}
	if ov.ActiveTrips != 1 {
		t.Fatalf("active trips: %d", ov.ActiveTrips)
	}
}

func TestStatusFilteredLists(t *testing.T) {
	q := NewViews(seedStore(t), nil)

	if got := q.Vehicles(model.VehicleAvailable); len(got) != 1 || got[0].ID != "v1" {
		t.Fatalf("available vehicles: %v", got)
	}
	if got := q.Vehicles(""); len(got) != 3 {
		t.Fatalf("all vehicles: %d", len(got))
	}
	if got := q.Drivers(model.DriverOffline); len(got) != 1 || got[0].ID != "d3" {
		t.Fatalf("offline drivers: %v", got)
	}
}

func TestTripFilter(t *testing.T) {
	q := NewViews(seedStore(t), nil)

	if got := q.Trips(TripFilter{Status: model.TripCompleted}); len(got) != 2 {
		t.Fatalf("completed trips: %d", len(got))
	}
	if got := q.Trips(TripFilter{DriverID: "d1"}); len(got) != 2 {
		t.Fatalf("d1 trips: %d", len(got))
	}
	if got := q.Trips(TripFilter{Status: model.TripAssigned, DriverID: "d1"}); len(got) != 0 {
		t.Fatalf("impossible combination matched: %v", got)
	}
	if got := q.Trips(TripFilter{}); len(got) != 5 {
		t.Fatalf("unfiltered trips: %d", len(got))
	}
}

func TestDriverHistoryNewestFirst(t *testing.T) {
	q := NewViews(seedStore(t), nil)
	got := q.DriverHistory("d1")
	if len(got) != 2 {
		t.Fatalf("history length: %d", len(got))
	}
	if got[0].ID != "t4" || got[1].ID != "t3" {
		t.Fatalf("history order: %s, %s", got[0].ID, got[1].ID)
	}
	if got := q.DriverHistory("nobody"); len(got) != 0 {
		t.Fatalf("unknown driver history: %v", got)
	}
}

func TestFareStats(t *testing.T) {
	q := NewViews(seedStore(t), nil)
	s := q.FareStats()

	if s.Completed != 2 {
		t.Fatalf("completed: %d", s.Completed)
	}
	if math.Abs(s.MeanFare-100) > 1e-9 {
		t.Fatalf("mean fare: %v", s.MeanFare)
	}
	if math.Abs(s.TotalFare-200) > 1e-9 {
		t.Fatalf("total fare: %v", s.TotalFare)
	}
	if s.MeanDurationSec <= 0 {
		t.Fatalf("mean duration: %v", s.MeanDurationSec)
	}
	if math.IsNaN(s.StdDevFare) || math.IsNaN(s.MedianFare) || math.IsNaN(s.P90Fare) {
		t.Fatal("statistics produced NaN")
	}
}

func TestFareStatsEmptyFleet(t *testing.T) {
	q := NewViews(store.NewMemoryStore(), nil)
	s := q.FareStats()
	if s != (FareStats{}) {
		t.Fatalf("empty fleet stats not zero: %+v", s)
	}
}

func TestNearbyVehicles(t *testing.T) {
	st := store.NewMemoryStore()
	idx := geoindex.New(geoindex.DefaultPrecision)
	now := time.Now()
	vehicles := []model.Vehicle{
		{ID: "v-close", Status: model.VehicleAvailable, Location: model.Location{Lat: 12.975, Lng: 77.595, UpdatedAt: now}},
		{ID: "v-closer", Status: model.VehicleBusy, Location: model.Location{Lat: 12.971, Lng: 77.591, UpdatedAt: now}},
		{ID: "v-far", Status: model.VehicleAvailable, Location: model.Location{Lat: 13.30, Lng: 78.10, UpdatedAt: now}},
	}
	for _, v := range vehicles {
		if err := st.PutVehicle(v); err != nil {
			t.Fatalf("put vehicle: %v", err)
		}
		idx.Upsert(v.ID, v.Location.Lat, v.Location.Lng)
	}

	q := NewViews(st, idx)
	got := q.NearbyVehicles(12.97, 77.59, 5)
	if len(got) != 2 {
		t.Fatalf("nearby count: %d", len(got))
	}
	if got[0].Vehicle.ID != "v-closer" || got[1].Vehicle.ID != "v-close" {
		t.Fatalf("nearby order: %s, %s", got[0].Vehicle.ID, got[1].Vehicle.ID)
	}
	if got[0].DistanceKm > got[1].DistanceKm {
		t.Fatalf("distances unordered: %v > %v", got[0].DistanceKm, got[1].DistanceKm)
	}

	if got := NewViews(st, nil).NearbyVehicles(12.97, 77.59, 5); got != nil {
		t.Fatalf("nil index must return nil, got %v", got)
	}
}
