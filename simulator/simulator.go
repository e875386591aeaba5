// Package simulator drives the fleet core with a synthetic city:
// drivers random-walk around a center point, reporting positions and
// picking up randomly generated trips.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/itskeerthanraj/NeuroFleetX/core/dispatch"
	"github.com/itskeerthanraj/NeuroFleetX/core/fleet"
	"github.com/itskeerthanraj/NeuroFleetX/core/logger"
	"github.com/itskeerthanraj/NeuroFleetX/core/model"
	"github.com/itskeerthanraj/NeuroFleetX/core/store"
)

const kmPerDegLat = 110.574

// Config holds simulation parameters.
type Config struct {
	Drivers         int
	Tick            time.Duration
	CenterLat       float64
	CenterLng       float64
	SpreadKm        float64
	TripProbability float64
	Seed            int64
}

// tripRuntime tracks how far along a simulated trip is.
type tripRuntime struct {
	id       string
	driverID string
	phase    model.TripStatus
	ticks    int
}

// Simulator seeds a paired fleet and advances it one tick at a time.
type Simulator struct {
	svc    *fleet.Service
	cfg    Config
	log    logger.Logger
	rng    *rand.Rand
	active []*tripRuntime
	seq    int
}

// New creates a Simulator. Seed zero derives one from the clock.
func New(svc *fleet.Service, cfg Config, log logger.Logger) *Simulator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.Tick <= 0 {
		cfg.Tick = 500 * time.Millisecond
	}
	return &Simulator{svc: svc, cfg: cfg, log: log, rng: rand.New(rand.NewSource(seed))}
}

// Seed registers the simulated drivers, their vehicles and starting
// positions.
func (s *Simulator) Seed() error {
	types := []model.VehicleType{model.VehicleSedan, model.VehicleSUV}
	for i := 0; i < s.cfg.Drivers; i++ {
		driverID := fmt.Sprintf("sim-driver-%03d", i+1)
		vehicleID := fmt.Sprintf("sim-vehicle-%03d", i+1)
		if _, err := s.svc.AddDriver(model.Driver{ID: driverID, FirstName: "Sim", LastName: fmt.Sprintf("Driver %d", i+1)}); err != nil {
			return fmt.Errorf("seed driver %s: %w", driverID, err)
		}
		v := model.Vehicle{ID: vehicleID, Type: types[i%len(types)], LicensePlate: fmt.Sprintf("SIM-%03d", i+1)}
		if _, err := s.svc.AddVehicle(v); err != nil {
			return fmt.Errorf("seed vehicle %s: %w", vehicleID, err)
		}
		if err := s.svc.PairDriverVehicle(driverID, vehicleID); err != nil {
			return fmt.Errorf("pair %s: %w", driverID, err)
		}
		lat, lng := s.randomPoint()
		if _, err := s.svc.UpdateLocation(store.KindDriver, driverID, lat, lng, time.Now()); err != nil {
			return fmt.Errorf("seed location %s: %w", driverID, err)
		}
	}
	return nil
}

// Run advances the simulation until the context is cancelled.
func (s *Simulator) Run(ctx context.Context) error {
	if err := s.Seed(); err != nil {
		return err
	}
	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick advances every driver and trip by one step.
func (s *Simulator) Tick() {
	now := time.Now()
	for i := 0; i < s.cfg.Drivers; i++ {
		driverID := fmt.Sprintf("sim-driver-%03d", i+1)
		lat, lng := s.randomPoint()
		if _, err := s.svc.UpdateLocation(store.KindDriver, driverID, lat, lng, now); err != nil {
			s.log.Warnf("location for %s: %v", driverID, err)
		}
	}
	if s.rng.Float64() < s.cfg.TripProbability {
		s.requestTrip()
	}
	s.advanceTrips()
}

func (s *Simulator) requestTrip() {
	s.seq++
	pickLat, pickLng := s.randomPoint()
	dropLat, dropLng := s.randomPoint()
	fare := 50 + s.rng.Float64()*250
	t, err := s.svc.CreateTrip(
		fmt.Sprintf("sim-passenger-%03d", s.seq),
		model.Location{Lat: pickLat, Lng: pickLng},
		model.Location{Lat: dropLat, Lng: dropLng},
		math.Round(fare*100)/100,
		"",
	)
	if err != nil {
		s.log.Warnf("create trip: %v", err)
		return
	}
	assigned, err := s.svc.OptimizeAndAssign(t.ID)
	if err != nil {
		var nc dispatch.NoCandidateError
		if errors.As(err, &nc) {
			s.log.Debugf("trip %s waiting for a free pair", t.ID)
			s.active = append(s.active, &tripRuntime{id: t.ID, phase: model.TripRequested})
			return
		}
		s.log.Warnf("dispatch trip %s: %v", t.ID, err)
		return
	}
	s.active = append(s.active, &tripRuntime{id: assigned.ID, driverID: assigned.DriverID, phase: model.TripAssigned})
}

// advanceTrips walks every active trip one phase forward. Waiting
// trips retry dispatch; moving trips start after one tick and complete
// after a few more.
func (s *Simulator) advanceTrips() {
	remaining := s.active[:0]
	for _, rt := range s.active {
		rt.ticks++
		switch rt.phase {
		case model.TripRequested:
			t, err := s.svc.OptimizeAndAssign(rt.id)
			if err == nil {
				rt.driverID = t.DriverID
				rt.phase = model.TripAssigned
				rt.ticks = 0
			}
			remaining = append(remaining, rt)
		case model.TripAssigned:
			if _, err := s.svc.StartTrip(rt.id, rt.driverID); err != nil {
				s.log.Warnf("start trip %s: %v", rt.id, err)
			} else {
				rt.phase = model.TripInProgress
				rt.ticks = 0
			}
			remaining = append(remaining, rt)
		case model.TripInProgress:
			if rt.ticks < 2+s.rng.Intn(3) {
				remaining = append(remaining, rt)
				continue
			}
			if _, err := s.svc.CompleteTrip(rt.id, rt.driverID); err != nil {
				s.log.Warnf("complete trip %s: %v", rt.id, err)
				remaining = append(remaining, rt)
			}
		}
	}
	s.active = remaining
}

// randomPoint picks a uniform point inside the configured disc.
func (s *Simulator) randomPoint() (float64, float64) {
	r := s.cfg.SpreadKm * math.Sqrt(s.rng.Float64())
	theta := s.rng.Float64() * 2 * math.Pi
	dLat := (r * math.Cos(theta)) / kmPerDegLat
	kmPerDegLng := kmPerDegLat * math.Cos(s.cfg.CenterLat*math.Pi/180)
	dLng := (r * math.Sin(theta)) / kmPerDegLng
	return s.cfg.CenterLat + dLat, s.cfg.CenterLng + dLng
}
