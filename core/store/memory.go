package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/itskeerthanraj/NeuroFleetX/core/model"
)

// retryAttempts bounds the internal re-read + re-apply loop for
// transient version conflicts.
const retryAttempts = 3

type record struct {
	version int64
	val     any
}

// MemoryStore is the single-process Store implementation. One mutex
// guards all three entity families, so a multi-entity Apply is atomic
// and deadlock-free by construction; ops are still sorted by (kind, id)
// so batches touch entities in a deterministic order.
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[Kind]map[string]*record
	order map[Kind][]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: map[Kind]map[string]*record{
			KindVehicle: {},
			KindDriver:  {},
			KindTrip:    {},
		},
		order: map[Kind][]string{},
	}
}

func (s *MemoryStore) put(kind Kind, id string, val any) error {
	if id == "" {
		return model.ValidationError{Field: "id", Reason: "identity is required"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[kind][id]; ok {
		return AlreadyExistsError{Kind: kind, ID: id}
	}
	s.data[kind][id] = &record{version: 1, val: val}
	s.order[kind] = append(s.order[kind], id)
	return nil
}

// PutVehicle inserts a new vehicle at version 1.
func (s *MemoryStore) PutVehicle(v model.Vehicle) error {
	if !v.Status.Valid() {
		return model.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown vehicle status %q", v.Status)}
	}
	return s.put(KindVehicle, v.ID, v)
}

// PutDriver inserts a new driver at version 1.
func (s *MemoryStore) PutDriver(d model.Driver) error {
	if !d.Status.Valid() {
		return model.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown driver status %q", d.Status)}
	}
	return s.put(KindDriver, d.ID, d)
}

// PutTrip inserts a new trip at version 1.
func (s *MemoryStore) PutTrip(t model.Trip) error {
	return s.put(KindTrip, t.ID, t)
}

func (s *MemoryStore) get(kind Kind, id string) (any, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.data[kind][id]
	if !ok {
		return nil, 0, NotFoundError{Kind: kind, ID: id}
	}
	return r.val, r.version, nil
}

// Vehicle returns a copy of the vehicle and the version observed.
func (s *MemoryStore) Vehicle(id string) (model.Vehicle, int64, error) {
	v, ver, err := s.get(KindVehicle, id)
	if err != nil {
		return model.Vehicle{}, 0, err
	}
	return v.(model.Vehicle), ver, nil
}

// Driver returns a copy of the driver and the version observed.
func (s *MemoryStore) Driver(id string) (model.Driver, int64, error) {
	v, ver, err := s.get(KindDriver, id)
	if err != nil {
		return model.Driver{}, 0, err
	}
	return v.(model.Driver), ver, nil
}

// Trip returns a copy of the trip and the version observed.
func (s *MemoryStore) Trip(id string) (model.Trip, int64, error) {
	v, ver, err := s.get(KindTrip, id)
	if err != nil {
		return model.Trip{}, 0, err
	}
	return v.(model.Trip), ver, nil
}

// Vehicles returns a snapshot of vehicles matching pred in insertion order.
func (s *MemoryStore) Vehicles(pred func(model.Vehicle) bool) []model.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.Vehicle, 0, len(s.order[KindVehicle]))
	for _, id := range s.order[KindVehicle] {
		v := s.data[KindVehicle][id].val.(model.Vehicle)
		if pred == nil || pred(v) {
			res = append(res, v)
		}
	}
	return res
}

// Drivers returns a snapshot of drivers matching pred in insertion order.
func (s *MemoryStore) Drivers(pred func(model.Driver) bool) []model.Driver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.Driver, 0, len(s.order[KindDriver]))
	for _, id := range s.order[KindDriver] {
		d := s.data[KindDriver][id].val.(model.Driver)
		if pred == nil || pred(d) {
			res = append(res, d)
		}
	}
	return res
}

// Trips returns a snapshot of trips matching pred in insertion order.
func (s *MemoryStore) Trips(pred func(model.Trip) bool) []model.Trip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.Trip, 0, len(s.order[KindTrip]))
	for _, id := range s.order[KindTrip] {
		t := s.data[KindTrip][id].val.(model.Trip)
		if pred == nil || pred(t) {
			res = append(res, t)
		}
	}
	return res
}

// CompareAndSet applies one mutation if the version matches and returns
// the new version.
func (s *MemoryStore) CompareAndSet(op Op) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data[op.Kind][op.ID]
	if !ok {
		return 0, NotFoundError{Kind: op.Kind, ID: op.ID}
	}
	if r.version != op.Version {
		return 0, ConflictError{Kind: op.Kind, ID: op.ID}
	}
	next, err := op.Mutate(r.val)
	if err != nil {
		return 0, err
	}
	if err := s.checkStaged(map[Kind]map[string]any{op.Kind: {op.ID: next}}); err != nil {
		return 0, err
	}
	r.val = next
	r.version++
	return r.version, nil
}

// Apply commits every op or none. Versions are checked first, then all
// mutations run against copies; the staged result must satisfy the
// cross-entity invariants before anything is written back.
func (s *MemoryStore) Apply(ops ...Op) error {
	if len(ops) == 0 {
		return nil
	}
	sorted := make([]Op, len(ops))
	copy(sorted, ops)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Kind != sorted[j].Kind {
			return sorted[i].Kind < sorted[j].Kind
		}
		return sorted[i].ID < sorted[j].ID
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Kind == sorted[i-1].Kind && sorted[i].ID == sorted[i-1].ID {
			return model.ValidationError{Field: "ops", Reason: fmt.Sprintf("duplicate %s %s in batch", sorted[i].Kind, sorted[i].ID)}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, op := range sorted {
		r, ok := s.data[op.Kind][op.ID]
		if !ok {
			return NotFoundError{Kind: op.Kind, ID: op.ID}
		}
		if r.version != op.Version {
			return ConflictError{Kind: op.Kind, ID: op.ID}
		}
	}

	staged := make(map[Kind]map[string]any, 3)
	for _, op := range sorted {
		next, err := op.Mutate(s.data[op.Kind][op.ID].val)
		if err != nil {
			return err
		}
		if staged[op.Kind] == nil {
			staged[op.Kind] = map[string]any{}
		}
		staged[op.Kind][op.ID] = next
	}

	if err := s.checkStaged(staged); err != nil {
		return err
	}

	for _, op := range sorted {
		r := s.data[op.Kind][op.ID]
		r.val = staged[op.Kind][op.ID]
		r.version++
	}
	return nil
}

// checkStaged verifies the invariants of the entities a batch touches:
// driver/vehicle back-references must be mutually consistent and a
// trip's driver and vehicle references are set together or not at all.
func (s *MemoryStore) checkStaged(staged map[Kind]map[string]any) error {
	lookupVehicle := func(id string) (model.Vehicle, bool) {
		if v, ok := staged[KindVehicle][id]; ok {
			return v.(model.Vehicle), true
		}
		if r, ok := s.data[KindVehicle][id]; ok {
			return r.val.(model.Vehicle), true
		}
		return model.Vehicle{}, false
	}
	lookupDriver := func(id string) (model.Driver, bool) {
		if d, ok := staged[KindDriver][id]; ok {
			return d.(model.Driver), true
		}
		if r, ok := s.data[KindDriver][id]; ok {
			return r.val.(model.Driver), true
		}
		return model.Driver{}, false
	}

	for id, v := range staged[KindDriver] {
		d := v.(model.Driver)
		if !d.Status.Valid() {
			return model.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown driver status %q", d.Status)}
		}
		if d.VehicleID != "" {
			veh, ok := lookupVehicle(d.VehicleID)
			if !ok {
				return NotFoundError{Kind: KindVehicle, ID: d.VehicleID}
			}
			if veh.DriverID != id {
				return model.ValidationError{Field: "vehicle_id", Reason: fmt.Sprintf("vehicle %s is paired with driver %q, not %s", d.VehicleID, veh.DriverID, id)}
			}
		}
	}
	for id, v := range staged[KindVehicle] {
		veh := v.(model.Vehicle)
		if !veh.Status.Valid() {
			return model.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown vehicle status %q", veh.Status)}
		}
		if veh.DriverID != "" {
			d, ok := lookupDriver(veh.DriverID)
			if !ok {
				return NotFoundError{Kind: KindDriver, ID: veh.DriverID}
			}
			if d.VehicleID != id {
				return model.ValidationError{Field: "driver_id", Reason: fmt.Sprintf("driver %s is paired with vehicle %q, not %s", veh.DriverID, d.VehicleID, id)}
			}
		}
	}
	for _, v := range staged[KindTrip] {
		t := v.(model.Trip)
		if (t.DriverID == "") != (t.VehicleID == "") {
			return model.ValidationError{Field: "driver_id", Reason: "trip driver and vehicle references must be set together"}
		}
	}
	return nil
}

// Retry re-runs build against fresh state on version conflicts, a
// bounded number of times, before surfacing the conflict.
func (s *MemoryStore) Retry(build func() ([]Op, error)) error {
	var err error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		var ops []Op
		ops, err = build()
		if err != nil {
			return err
		}
		err = s.Apply(ops...)
		var conflict ConflictError
		if !errors.As(err, &conflict) {
			return err
		}
	}
	return err
}
