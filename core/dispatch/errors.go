package dispatch

import "fmt"

// NoCandidateError reports that no eligible driver/vehicle pair exists
// for a trip. It is an expected, recoverable outcome: the trip stays
// REQUESTED and a later invocation may succeed.
type NoCandidateError struct {
	TripID string
}

func (e NoCandidateError) Error() string {
	return fmt.Sprintf("no candidate driver/vehicle pair available for trip %s", e.TripID)
}
