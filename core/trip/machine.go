// Package trip enforces the trip lifecycle. Every transition is
// committed through the entity store as one atomic batch covering the
// trip and, when held, its driver and vehicle, so the three are never
// observed inconsistent with each other.
package trip

import (
	"time"

	"github.com/itskeerthanraj/NeuroFleetX/core/logger"
	"github.com/itskeerthanraj/NeuroFleetX/core/model"
	"github.com/itskeerthanraj/NeuroFleetX/core/store"
)

// Machine performs trip status transitions against the entity store.
type Machine struct {
	store store.Store
	log   logger.Logger
	now   func() time.Time
}

// NewMachine returns a Machine using the wall clock.
func NewMachine(st store.Store, log logger.Logger) *Machine {
	return &Machine{store: st, log: log, now: time.Now}
}

// SetClock overrides the clock, for tests.
func (m *Machine) SetClock(now func() time.Time) { m.now = now }

// Assign moves a REQUESTED trip to ASSIGNED and marks the driver and
// vehicle BUSY, all in one atomic update. The vehicle must be the one
// the driver is paired with and both must be AVAILABLE. Concurrent
// assigns racing for the same pair resolve to exactly one winner; the
// loser observes an UnavailableError against fresh state.
func (m *Machine) Assign(tripID, driverID, vehicleID string) (model.Trip, error) {
	err := m.store.Retry(func() ([]store.Op, error) {
		t, tVer, err := m.store.Trip(tripID)
		if err != nil {
			return nil, err
		}
		if t.Status != model.TripRequested {
			return nil, InvalidTransitionError{TripID: tripID, From: t.Status, Attempted: "assign"}
		}
		d, dVer, err := m.store.Driver(driverID)
		if err != nil {
			return nil, err
		}
		v, vVer, err := m.store.Vehicle(vehicleID)
		if err != nil {
			return nil, err
		}
		if d.Status != model.DriverAvailable {
			return nil, UnavailableError{Kind: store.KindDriver, ID: driverID, Reason: "status is " + string(d.Status)}
		}
		if v.Status != model.VehicleAvailable {
			return nil, UnavailableError{Kind: store.KindVehicle, ID: vehicleID, Reason: "status is " + string(v.Status)}
		}
		if v.DriverID != driverID || d.VehicleID != vehicleID {
			return nil, UnavailableError{Kind: store.KindVehicle, ID: vehicleID, Reason: "not paired with driver " + driverID}
		}
		return []store.Op{
			{Kind: store.KindTrip, ID: tripID, Version: tVer, Mutate: store.MutateTrip(func(t model.Trip) (model.Trip, error) {
				t.Status = model.TripAssigned
				t.DriverID = driverID
				t.VehicleID = vehicleID
				return t, nil
			})},
			{Kind: store.KindDriver, ID: driverID, Version: dVer, Mutate: store.MutateDriver(func(d model.Driver) (model.Driver, error) {
				d.Status = model.DriverBusy
				return d, nil
			})},
			{Kind: store.KindVehicle, ID: vehicleID, Version: vVer, Mutate: store.MutateVehicle(func(v model.Vehicle) (model.Vehicle, error) {
				v.Status = model.VehicleBusy
				return v, nil
			})},
		}, nil
	})
	if err != nil {
		return model.Trip{}, err
	}
	m.log.Infof("trip %s assigned to driver %s vehicle %s", tripID, driverID, vehicleID)
	t, _, err := m.store.Trip(tripID)
	return t, err
}

// Start moves an ASSIGNED trip to IN_PROGRESS and stamps StartTime.
// Only the trip's assigned driver may start it.
func (m *Machine) Start(tripID, actorID string) (model.Trip, error) {
	err := m.store.Retry(func() ([]store.Op, error) {
		t, tVer, err := m.store.Trip(tripID)
		if err != nil {
			return nil, err
		}
		if t.Status != model.TripAssigned {
			return nil, InvalidTransitionError{TripID: tripID, From: t.Status, Attempted: "start"}
		}
		if actorID != t.DriverID {
			return nil, NotTripDriverError{TripID: tripID, ActorID: actorID}
		}
		start := m.now()
		return []store.Op{
			{Kind: store.KindTrip, ID: tripID, Version: tVer, Mutate: store.MutateTrip(func(t model.Trip) (model.Trip, error) {
				t.Status = model.TripInProgress
				t.StartTime = start
				return t, nil
			})},
		}, nil
	})
	if err != nil {
		return model.Trip{}, err
	}
	m.log.Infof("trip %s started", tripID)
	t, _, err := m.store.Trip(tripID)
	return t, err
}

// Complete moves an IN_PROGRESS trip to COMPLETED, stamps EndTime and
// releases the driver and vehicle back to AVAILABLE. Only the trip's
// assigned driver may complete it.
func (m *Machine) Complete(tripID, actorID string) (model.Trip, error) {
	err := m.store.Retry(func() ([]store.Op, error) {
		t, tVer, err := m.store.Trip(tripID)
		if err != nil {
			return nil, err
		}
		if t.Status != model.TripInProgress {
			return nil, InvalidTransitionError{TripID: tripID, From: t.Status, Attempted: "complete"}
		}
		if actorID != t.DriverID {
			return nil, NotTripDriverError{TripID: tripID, ActorID: actorID}
		}
		end := m.now()
		ops := []store.Op{
			{Kind: store.KindTrip, ID: tripID, Version: tVer, Mutate: store.MutateTrip(func(t model.Trip) (model.Trip, error) {
				t.Status = model.TripCompleted
				t.EndTime = end
				return t, nil
			})},
		}
		release, err := m.releaseOps(t)
		if err != nil {
			return nil, err
		}
		return append(ops, release...), nil
	})
	if err != nil {
		return model.Trip{}, err
	}
	m.log.Infof("trip %s completed", tripID)
	t, _, err := m.store.Trip(tripID)
	return t, err
}

// Cancel moves a REQUESTED or ASSIGNED trip to CANCELLED, releasing the
// driver and vehicle if they were held. Cancelling an already terminal
// trip is an idempotent no-op returning the unchanged trip; cancelling
// an IN_PROGRESS trip is an error.
func (m *Machine) Cancel(tripID string) (model.Trip, error) {
	err := m.store.Retry(func() ([]store.Op, error) {
		t, tVer, err := m.store.Trip(tripID)
		if err != nil {
			return nil, err
		}
		switch t.Status {
		case model.TripCompleted, model.TripCancelled:
			return nil, nil // idempotent: nothing to do
		case model.TripInProgress:
			return nil, InvalidTransitionError{TripID: tripID, From: t.Status, Attempted: "cancel"}
		}
		ops := []store.Op{
			{Kind: store.KindTrip, ID: tripID, Version: tVer, Mutate: store.MutateTrip(func(t model.Trip) (model.Trip, error) {
				t.Status = model.TripCancelled
				return t, nil
			})},
		}
		if t.Status == model.TripAssigned {
			release, err := m.releaseOps(t)
			if err != nil {
				return nil, err
			}
			ops = append(ops, release...)
		}
		return ops, nil
	})
	if err != nil {
		return model.Trip{}, err
	}
	t, _, err := m.store.Trip(tripID)
	if err == nil && t.Status == model.TripCancelled {
		m.log.Infof("trip %s cancelled", tripID)
	}
	return t, err
}

// releaseOps returns the ops freeing a trip's held driver and vehicle.
func (m *Machine) releaseOps(t model.Trip) ([]store.Op, error) {
	_, dVer, err := m.store.Driver(t.DriverID)
	if err != nil {
		return nil, err
	}
	_, vVer, err := m.store.Vehicle(t.VehicleID)
	if err != nil {
		return nil, err
	}
	return []store.Op{
		{Kind: store.KindDriver, ID: t.DriverID, Version: dVer, Mutate: store.MutateDriver(func(d model.Driver) (model.Driver, error) {
			d.Status = model.DriverAvailable
			return d, nil
		})},
		{Kind: store.KindVehicle, ID: t.VehicleID, Version: vVer, Mutate: store.MutateVehicle(func(v model.Vehicle) (model.Vehicle, error) {
			v.Status = model.VehicleAvailable
			return v, nil
		})},
	}, nil
}
