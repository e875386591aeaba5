package trip

import (
	"fmt"

	"github.com/itskeerthanraj/NeuroFleetX/core/model"
	"github.com/itskeerthanraj/NeuroFleetX/core/store"
)

// InvalidTransitionError reports an operation not permitted from the
// trip's current status.
type InvalidTransitionError struct {
	TripID    string
	From      model.TripStatus
	Attempted string
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("trip %s: cannot %s from %s", e.TripID, e.Attempted, e.From)
}

// UnavailableError reports a driver or vehicle that is not eligible for
// assignment, either because of its status or because the pair is not
// mutually referenced.
type UnavailableError struct {
	Kind   store.Kind
	ID     string
	Reason string
}

func (e UnavailableError) Error() string {
	return fmt.Sprintf("%s %s unavailable: %s", e.Kind, e.ID, e.Reason)
}

// NotTripDriverError reports a start or complete call by an actor other
// than the trip's assigned driver.
type NotTripDriverError struct {
	TripID  string
	ActorID string
}

func (e NotTripDriverError) Error() string {
	return fmt.Sprintf("actor %s is not the assigned driver of trip %s", e.ActorID, e.TripID)
}
