package model

import "fmt"

// ValidationError reports malformed input, such as out-of-range
// coordinates or a negative fare.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
