// Package events defines the domain events published on the internal
// event bus. Subscribers (metric recorders, the MQTT notifier) consume
// them without coupling to the packages that emit them.
package events

import (
	"time"

	"github.com/itskeerthanraj/NeuroFleetX/core/model"
)

// TripEventType names a lifecycle change.
type TripEventType string

const (
	TripCreated   TripEventType = "created"
	TripAssigned  TripEventType = "assigned"
	TripStarted   TripEventType = "started"
	TripCompleted TripEventType = "completed"
	TripCancelled TripEventType = "cancelled"
)

// TripEvent is published after a trip transition commits.
type TripEvent struct {
	Type TripEventType
	Trip model.Trip
	Time time.Time
}

// LocationEvent is published after a location update is processed.
// Applied is false when the update was superseded by a newer
// observation already in the store.
type LocationEvent struct {
	Kind    string
	ID      string
	Lat     float64
	Lng     float64
	Applied bool
	Time    time.Time
}
