// Package fleet is the typed operation surface of the dispatch core.
// It composes the entity store, the trip state machine, the optimizer,
// the tracker and the query views behind the operations the service
// layer exposes.
package fleet

import (
	"time"

	"github.com/google/uuid"

	"github.com/itskeerthanraj/NeuroFleetX/core/dispatch"
	"github.com/itskeerthanraj/NeuroFleetX/core/events"
	"github.com/itskeerthanraj/NeuroFleetX/core/geo"
	"github.com/itskeerthanraj/NeuroFleetX/core/logger"
	"github.com/itskeerthanraj/NeuroFleetX/core/metrics"
	"github.com/itskeerthanraj/NeuroFleetX/core/model"
	"github.com/itskeerthanraj/NeuroFleetX/core/query"
	"github.com/itskeerthanraj/NeuroFleetX/core/store"
	"github.com/itskeerthanraj/NeuroFleetX/core/tracking"
	"github.com/itskeerthanraj/NeuroFleetX/core/trip"
	"github.com/itskeerthanraj/NeuroFleetX/internal/eventbus"
)

// Service implements the dispatch core's command and query operations.
type Service struct {
	store     store.Store
	machine   *trip.Machine
	optimizer *dispatch.Optimizer
	tracker   *tracking.Tracker
	views     *query.Views
	log       logger.Logger
	sink      metrics.Sink
	tripBus   *eventbus.TypedBus[events.TripEvent]
	now       func() time.Time
}

// NewService wires the core components into a Service. sink and tripBus
// may be nil.
func NewService(
	st store.Store,
	machine *trip.Machine,
	optimizer *dispatch.Optimizer,
	tracker *tracking.Tracker,
	views *query.Views,
	log logger.Logger,
	sink metrics.Sink,
	tripBus *eventbus.TypedBus[events.TripEvent],
) *Service {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Service{
		store:     st,
		machine:   machine,
		optimizer: optimizer,
		tracker:   tracker,
		views:     views,
		log:       log,
		sink:      sink,
		tripBus:   tripBus,
		now:       time.Now,
	}
}

// SetClock overrides the clock, for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// CreateTrip validates the request and stores a new REQUESTED trip.
func (s *Service) CreateTrip(passengerID string, pickup, dropoff model.Location, fare float64, notes string) (model.Trip, error) {
	if passengerID == "" {
		return model.Trip{}, model.ValidationError{Field: "passenger_id", Reason: "passenger is required"}
	}
	if err := model.ValidateCoordinates(pickup.Lat, pickup.Lng); err != nil {
		return model.Trip{}, err
	}
	if err := model.ValidateCoordinates(dropoff.Lat, dropoff.Lng); err != nil {
		return model.Trip{}, err
	}
	if fare < 0 {
		return model.Trip{}, model.ValidationError{Field: "fare", Reason: "fare must not be negative"}
	}

	t := model.Trip{
		ID:          uuid.NewString(),
		PassengerID: passengerID,
		Pickup:      pickup,
		Dropoff:     dropoff,
		Fare:        fare,
		Notes:       notes,
		Status:      model.TripRequested,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.PutTrip(t); err != nil {
		return model.Trip{}, err
	}
	s.log.Infof("trip %s created for passenger %s", t.ID, passengerID)
	s.publish(events.TripCreated, t)
	return t, nil
}

// Trip returns a single trip by ID.
func (s *Service) Trip(id string) (model.Trip, error) {
	t, _, err := s.store.Trip(id)
	return t, err
}

// AssignTrip commits a driver/vehicle pair chosen by a dispatcher.
func (s *Service) AssignTrip(tripID, driverID, vehicleID string) (model.Trip, error) {
	return s.assign(tripID, driverID, vehicleID, false)
}

// OptimizeAndAssign asks the optimizer for the lowest-cost pair and
// commits it. The two steps are deliberately separate: the assign
// re-validates against fresh state and surfaces UnavailableError if the
// pair was taken between the optimize and the commit. NoCandidateError
// passes through as a soft outcome with the trip left REQUESTED.
func (s *Service) OptimizeAndAssign(tripID string) (model.Trip, error) {
	c, err := s.optimizer.Optimize(tripID)
	if err != nil {
		return model.Trip{}, err
	}
	return s.assign(tripID, c.DriverID, c.VehicleID, true)
}

func (s *Service) assign(tripID, driverID, vehicleID string, optimized bool) (model.Trip, error) {
	t, err := s.machine.Assign(tripID, driverID, vehicleID)
	if err != nil {
		return model.Trip{}, err
	}

	distance := -1.0
	if v, _, verr := s.store.Vehicle(vehicleID); verr == nil && !v.Location.IsZero() {
		distance = geo.HaversineKm(v.Location.Lat, v.Location.Lng, t.Pickup.Lat, t.Pickup.Lng)
	}
	s.record(s.sink.RecordAssignment(metrics.AssignmentEvent{
		TripID: tripID, DriverID: driverID, VehicleID: vehicleID,
		DistanceKm: distance, Optimized: optimized, Time: s.now(),
	}))
	s.record(s.sink.RecordTransition(metrics.TransitionEvent{
		TripID: tripID, From: model.TripRequested, To: model.TripAssigned, Time: s.now(),
	}))
	s.publish(events.TripAssigned, t)
	return t, nil
}

// StartTrip moves the trip to IN_PROGRESS. Only the assigned driver may
// call it; actorID is the caller's identity.
func (s *Service) StartTrip(tripID, actorID string) (model.Trip, error) {
	t, err := s.machine.Start(tripID, actorID)
	if err != nil {
		return model.Trip{}, err
	}
	s.record(s.sink.RecordTransition(metrics.TransitionEvent{
		TripID: tripID, From: model.TripAssigned, To: model.TripInProgress, Time: s.now(),
	}))
	s.publish(events.TripStarted, t)
	return t, nil
}

// CompleteTrip moves the trip to COMPLETED and releases its driver and
// vehicle. Only the assigned driver may call it.
func (s *Service) CompleteTrip(tripID, actorID string) (model.Trip, error) {
	t, err := s.machine.Complete(tripID, actorID)
	if err != nil {
		return model.Trip{}, err
	}
	s.record(s.sink.RecordTransition(metrics.TransitionEvent{
		TripID: tripID, From: model.TripInProgress, To: model.TripCompleted, Time: s.now(),
	}))
	s.publish(events.TripCompleted, t)
	return t, nil
}

// CancelTrip cancels a REQUESTED or ASSIGNED trip. Cancelling a trip
// already in a terminal state is an idempotent no-op that returns the
// unchanged trip.
func (s *Service) CancelTrip(tripID string) (model.Trip, error) {
	before, _, err := s.store.Trip(tripID)
	if err != nil {
		return model.Trip{}, err
	}
	t, err := s.machine.Cancel(tripID)
	if err != nil {
		return model.Trip{}, err
	}
	if !before.Status.Terminal() {
		s.record(s.sink.RecordTransition(metrics.TransitionEvent{
			TripID: tripID, From: before.Status, To: model.TripCancelled, Time: s.now(),
		}))
		s.publish(events.TripCancelled, t)
	}
	return t, nil
}

// UpdateLocation forwards a position report to the tracker. The boolean
// result is false when the report was superseded by a newer one.
func (s *Service) UpdateLocation(kind store.Kind, id string, lat, lng float64, observedAt time.Time) (bool, error) {
	return s.tracker.UpdateLocation(kind, id, lat, lng, observedAt)
}

// ListVehicles lists vehicles with an optional status filter.
func (s *Service) ListVehicles(status model.VehicleStatus) []model.Vehicle {
	return s.views.Vehicles(status)
}

// ListDrivers lists drivers with an optional status filter.
func (s *Service) ListDrivers(status model.DriverStatus) []model.Driver {
	return s.views.Drivers(status)
}

// ListTrips lists trips matching the filter.
func (s *Service) ListTrips(f query.TripFilter) []model.Trip {
	return s.views.Trips(f)
}

// Overview returns the fleet census.
func (s *Service) Overview() query.Overview { return s.views.Overview() }

// DriverHistory returns a driver's trips, newest first.
func (s *Service) DriverHistory(driverID string) []model.Trip {
	return s.views.DriverHistory(driverID)
}

// FareStats summarizes completed trips.
func (s *Service) FareStats() query.FareStats { return s.views.FareStats() }

// NearbyVehicles returns vehicles within radiusKm of a point.
func (s *Service) NearbyVehicles(lat, lng, radiusKm float64) []query.NearbyVehicle {
	return s.views.NearbyVehicles(lat, lng, radiusKm)
}

// FleetCounts snapshots the census for the metric sinks.
func (s *Service) FleetCounts() metrics.FleetCounts {
	ov := s.views.Overview()
	return metrics.FleetCounts{
		Vehicles:    ov.Vehicles,
		Drivers:     ov.Drivers,
		Trips:       ov.Trips,
		ActiveTrips: ov.ActiveTrips,
		Time:        ov.GeneratedAt,
	}
}

func (s *Service) publish(typ events.TripEventType, t model.Trip) {
	if s.tripBus != nil {
		s.tripBus.Publish(events.TripEvent{Type: typ, Trip: t, Time: s.now()})
	}
}

func (s *Service) record(err error) {
	if err != nil {
		s.log.Warnf("metrics sink: %v", err)
	}
}
