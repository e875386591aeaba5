// Package metrics defines the observability events the core emits and
// the sink interfaces infra adapters implement.
package metrics

import (
	"time"

	"github.com/itskeerthanraj/NeuroFleetX/core/model"
)

// AssignmentEvent records a committed trip assignment. DistanceKm is
// the vehicle-to-pickup cost of the chosen pair; it is negative when
// the vehicle had no recorded location. Optimized distinguishes
// optimizer-driven assignments from manual dispatcher ones.
type AssignmentEvent struct {
	TripID     string
	DriverID   string
	VehicleID  string
	DistanceKm float64
	Optimized  bool
	Time       time.Time
}

// TransitionEvent records a trip status change.
type TransitionEvent struct {
	TripID string
	From   model.TripStatus
	To     model.TripStatus
	Time   time.Time
}

// LocationUpdateEvent records the outcome of one location report.
type LocationUpdateEvent struct {
	Kind    string
	ID      string
	Applied bool
	Time    time.Time
}

// FleetCounts is a point-in-time census of entity statuses.
type FleetCounts struct {
	Vehicles    map[model.VehicleStatus]int
	Drivers     map[model.DriverStatus]int
	Trips       map[model.TripStatus]int
	ActiveTrips int
	Time        time.Time
}

// Sink records core events for observability purposes.
type Sink interface {
	RecordAssignment(ev AssignmentEvent) error
	RecordTransition(ev TransitionEvent) error
	RecordLocationUpdate(ev LocationUpdateEvent) error
	RecordFleetCounts(ev FleetCounts) error
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) RecordAssignment(AssignmentEvent) error         { return nil }
func (NopSink) RecordTransition(TransitionEvent) error         { return nil }
func (NopSink) RecordLocationUpdate(LocationUpdateEvent) error { return nil }
func (NopSink) RecordFleetCounts(FleetCounts) error            { return nil }
