// Package store holds the canonical in-memory state of vehicles,
// drivers and trips. All mutation goes through version-checked
// compare-and-set operations; multi-entity updates commit atomically or
// not at all.
package store

import (
	"github.com/itskeerthanraj/NeuroFleetX/core/model"
)

// Kind identifies an entity family.
type Kind string

const (
	KindVehicle Kind = "vehicle"
	KindDriver  Kind = "driver"
	KindTrip    Kind = "trip"
)

// Op is a single-entity mutation inside an atomic batch. Version must
// be the version the caller observed when reading the entity; the batch
// aborts if any entity has moved on since.
type Op struct {
	Kind    Kind
	ID      string
	Version int64
	Mutate  func(any) (any, error)
}

// MutateVehicle wraps a typed vehicle mutation for use in an Op.
func MutateVehicle(fn func(model.Vehicle) (model.Vehicle, error)) func(any) (any, error) {
	return func(v any) (any, error) { return fn(v.(model.Vehicle)) }
}

// MutateDriver wraps a typed driver mutation for use in an Op.
func MutateDriver(fn func(model.Driver) (model.Driver, error)) func(any) (any, error) {
	return func(v any) (any, error) { return fn(v.(model.Driver)) }
}

// MutateTrip wraps a typed trip mutation for use in an Op.
func MutateTrip(fn func(model.Trip) (model.Trip, error)) func(any) (any, error) {
	return func(v any) (any, error) { return fn(v.(model.Trip)) }
}

// Store is the entity store contract consumed by the state machine, the
// tracker and the query layer.
type Store interface {
	PutVehicle(v model.Vehicle) error
	PutDriver(d model.Driver) error
	PutTrip(t model.Trip) error

	Vehicle(id string) (model.Vehicle, int64, error)
	Driver(id string) (model.Driver, int64, error)
	Trip(id string) (model.Trip, int64, error)

	// List functions return snapshot copies in insertion order. A nil
	// predicate selects everything.
	Vehicles(pred func(model.Vehicle) bool) []model.Vehicle
	Drivers(pred func(model.Driver) bool) []model.Driver
	Trips(pred func(model.Trip) bool) []model.Trip

	// CompareAndSet applies a single-entity mutation if the version
	// still matches, returning the new version.
	CompareAndSet(op Op) (int64, error)

	// Apply commits every op or none. Referential integrity between the
	// touched drivers and vehicles is verified before commit.
	Apply(ops ...Op) error

	// Retry runs build to assemble a batch against fresh state and
	// applies it, retrying a bounded number of times on version
	// conflicts before surfacing the ConflictError.
	Retry(build func() ([]Op, error)) error
}
