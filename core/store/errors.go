package store

import "fmt"

// NotFoundError reports that a referenced entity does not exist.
type NotFoundError struct {
	Kind Kind
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// ConflictError reports a version mismatch on a compare-and-set. The
// store retries transient conflicts internally; callers only see this
// after the retry budget is exhausted.
type ConflictError struct {
	Kind Kind
	ID   string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("concurrent modification of %s %s", e.Kind, e.ID)
}

// AlreadyExistsError reports an insert with a duplicate identity.
type AlreadyExistsError struct {
	Kind Kind
	ID   string
}

func (e AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s %s already exists", e.Kind, e.ID)
}
