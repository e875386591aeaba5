package simulator

import (
	"testing"
	"time"

	"github.com/itskeerthanraj/NeuroFleetX/core/dispatch"
	"github.com/itskeerthanraj/NeuroFleetX/core/fleet"
	"github.com/itskeerthanraj/NeuroFleetX/core/model"
	"github.com/itskeerthanraj/NeuroFleetX/core/query"
	"github.com/itskeerthanraj/NeuroFleetX/core/store"
	"github.com/itskeerthanraj/NeuroFleetX/core/tracking"
	"github.com/itskeerthanraj/NeuroFleetX/core/trip"
	"github.com/itskeerthanraj/NeuroFleetX/infra/logger"
	"github.com/itskeerthanraj/NeuroFleetX/internal/geoindex"
)

func newSim(t *testing.T, cfg Config) (*Simulator, *fleet.Service) {
	t.Helper()
	st := store.NewMemoryStore()
	idx := geoindex.New(geoindex.DefaultPrecision)
	log := logger.NopLogger{}
	machine := trip.NewMachine(st, log)
	opt := dispatch.NewOptimizer(st, idx, log, dispatch.Config{GeohashPrefilter: true})
	tracker := tracking.NewTracker(st, idx, log, nil, nil)
	views := query.NewViews(st, idx)
	svc := fleet.NewService(st, machine, opt, tracker, views, log, nil, nil)
	return New(svc, cfg, log), svc
}

func baseConfig() Config {
	return Config{
		Drivers:         5,
		Tick:            time.Millisecond,
		CenterLat:       12.9716,
		CenterLng:       77.5946,
		SpreadKm:        8,
		TripProbability: 1,
		Seed:            42,
	}
}

func TestSeedCreatesPairedLocatedFleet(t *testing.T) {
	sim, svc := newSim(t, baseConfig())
	if err := sim.Seed(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	drivers := svc.ListDrivers("")
	vehicles := svc.ListVehicles("")
	if len(drivers) != 5 || len(vehicles) != 5 {
		t.Fatalf("expected 5 drivers and 5 vehicles, got %d and %d", len(drivers), len(vehicles))
	}
	for _, d := range drivers {
		if d.VehicleID == "" {
			t.Errorf("driver %s unpaired", d.ID)
		}
		if d.Location.IsZero() {
			t.Errorf("driver %s has no location", d.ID)
		}
	}
	for _, v := range vehicles {
		if v.Location.IsZero() {
			t.Errorf("vehicle %s has no location", v.ID)
		}
	}
}

func TestTicksKeepFleetConsistent(t *testing.T) {
	sim, svc := newSim(t, baseConfig())
	if err := sim.Seed(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	for i := 0; i < 60; i++ {
		sim.Tick()

		perDriver := map[string]int{}
		for _, tr := range svc.ListTrips(query.TripFilter{}) {
			if tr.Status == model.TripAssigned || tr.Status == model.TripInProgress {
				perDriver[tr.DriverID]++
			}
		}
		for id, n := range perDriver {
			if n > 1 {
				t.Fatalf("tick %d: driver %s holds %d active trips", i, id, n)
			}
		}
	}

	stats := svc.FareStats()
	if stats.Completed == 0 {
		t.Fatalf("expected completed trips after 60 ticks")
	}
	if stats.TotalFare <= 0 {
		t.Fatalf("expected positive total fare, got %f", stats.TotalFare)
	}
}

func TestBusyDriversAreNotRedispatched(t *testing.T) {
	cfg := baseConfig()
	cfg.Drivers = 1
	sim, svc := newSim(t, cfg)
	if err := sim.Seed(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// With one pair and a trip every tick, later requests must queue
	// as REQUESTED rather than double-booking the driver.
	for i := 0; i < 10; i++ {
		sim.Tick()
	}
	active := 0
	for _, tr := range svc.ListTrips(query.TripFilter{}) {
		if tr.Status == model.TripAssigned || tr.Status == model.TripInProgress {
			active++
		}
	}
	if active > 1 {
		t.Fatalf("single pair carries %d active trips", active)
	}
}
