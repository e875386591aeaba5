package model

import "time"

// TripStatus is the lifecycle state of a trip.
type TripStatus string

const (
	TripRequested  TripStatus = "REQUESTED"
	TripAssigned   TripStatus = "ASSIGNED"
	TripInProgress TripStatus = "IN_PROGRESS"
	TripCompleted  TripStatus = "COMPLETED"
	TripCancelled  TripStatus = "CANCELLED"
)

// Terminal reports whether no further transition is permitted.
func (s TripStatus) Terminal() bool {
	return s == TripCompleted || s == TripCancelled
}

// CanTransition reports whether the lifecycle permits moving from s to
// next. The graph never moves backward and terminal states are final.
func (s TripStatus) CanTransition(next TripStatus) bool {
	switch s {
	case TripRequested:
		return next == TripAssigned || next == TripCancelled
	case TripAssigned:
		return next == TripInProgress || next == TripCancelled
	case TripInProgress:
		return next == TripCompleted
	}
	return false
}

// Trip is a passenger trip moving through the dispatch lifecycle.
// DriverID and VehicleID are set together on assignment and never one
// without the other. StartTime and EndTime are stamped by the start and
// complete transitions respectively.
type Trip struct {
	ID          string     `json:"id"`
	PassengerID string     `json:"passenger_id"`
	Pickup      Location   `json:"pickup_location"`
	Dropoff     Location   `json:"dropoff_location"`
	Fare        float64    `json:"fare"`
	Notes       string     `json:"notes,omitempty"`
	Status      TripStatus `json:"status"`
	DriverID    string     `json:"driver_id,omitempty"`
	VehicleID   string     `json:"vehicle_id,omitempty"`
	StartTime   time.Time  `json:"start_time,omitempty"`
	EndTime     time.Time  `json:"end_time,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Active reports whether the trip currently holds its driver and vehicle.
func (t Trip) Active() bool {
	return t.Status == TripAssigned || t.Status == TripInProgress
}
