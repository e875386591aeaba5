// Package tracking ingests concurrent position reports from driver
// devices and vehicles. Conflicts between out-of-order reports resolve
// last-write-wins on the observation timestamp; a stale report is
// dropped without error and the caller is told it was superseded.
package tracking

import (
	"fmt"
	"time"

	"github.com/itskeerthanraj/NeuroFleetX/core/events"
	"github.com/itskeerthanraj/NeuroFleetX/core/logger"
	"github.com/itskeerthanraj/NeuroFleetX/core/metrics"
	"github.com/itskeerthanraj/NeuroFleetX/core/model"
	"github.com/itskeerthanraj/NeuroFleetX/core/store"
	"github.com/itskeerthanraj/NeuroFleetX/internal/eventbus"
	"github.com/itskeerthanraj/NeuroFleetX/internal/geoindex"
)

// Tracker applies location updates to the entity store and keeps the
// spatial index in sync.
type Tracker struct {
	store store.Store
	index *geoindex.Index
	log   logger.Logger
	sink  metrics.Sink
	bus   *eventbus.TypedBus[events.LocationEvent]
}

// NewTracker returns a Tracker. index, sink and bus may be nil.
func NewTracker(st store.Store, index *geoindex.Index, log logger.Logger, sink metrics.Sink, bus *eventbus.TypedBus[events.LocationEvent]) *Tracker {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Tracker{store: st, index: index, log: log, sink: sink, bus: bus}
}

// UpdateLocation records a position observation for a driver or
// vehicle. It returns false without error when the observation is older
// than the stored one (superseded). A driver update also moves the
// driver's paired vehicle in the same atomic batch, so readers never
// see the pair split.
func (t *Tracker) UpdateLocation(kind store.Kind, id string, lat, lng float64, observedAt time.Time) (bool, error) {
	if err := model.ValidateCoordinates(lat, lng); err != nil {
		return false, err
	}
	if observedAt.IsZero() {
		return false, model.ValidationError{Field: "observed_at", Reason: "observation timestamp is required"}
	}

	var applied bool
	var indexVehicle string
	var err error
	switch kind {
	case store.KindDriver:
		applied, indexVehicle, err = t.updateDriver(id, lat, lng, observedAt)
	case store.KindVehicle:
		applied, indexVehicle, err = t.updateVehicle(id, lat, lng, observedAt)
	default:
		return false, model.ValidationError{Field: "kind", Reason: fmt.Sprintf("location updates accept drivers and vehicles, not %q", kind)}
	}
	if err != nil {
		return false, err
	}

	if applied && indexVehicle != "" && t.index != nil {
		t.index.Upsert(indexVehicle, lat, lng)
	}
	if !applied {
		t.log.Debugf("stale location for %s %s superseded (observed %s)", kind, id, observedAt.Format(time.RFC3339))
	}
	if recErr := t.sink.RecordLocationUpdate(metrics.LocationUpdateEvent{Kind: string(kind), ID: id, Applied: applied, Time: observedAt}); recErr != nil {
		t.log.Warnf("record location update: %v", recErr)
	}
	if t.bus != nil {
		t.bus.Publish(events.LocationEvent{Kind: string(kind), ID: id, Lat: lat, Lng: lng, Applied: applied, Time: observedAt})
	}
	return applied, nil
}

func (t *Tracker) updateDriver(id string, lat, lng float64, observedAt time.Time) (applied bool, indexVehicle string, err error) {
	err = t.store.Retry(func() ([]store.Op, error) {
		applied = false
		indexVehicle = ""
		d, dVer, err := t.store.Driver(id)
		if err != nil {
			return nil, err
		}
		if observedAt.Before(d.Location.UpdatedAt) {
			return nil, nil
		}
		applied = true
		loc := model.Location{Lat: lat, Lng: lng, Address: d.Location.Address, UpdatedAt: observedAt}
		ops := []store.Op{
			{Kind: store.KindDriver, ID: id, Version: dVer, Mutate: store.MutateDriver(func(d model.Driver) (model.Driver, error) {
				d.Location = loc
				if observedAt.After(d.LastActive) {
					d.LastActive = observedAt
				}
				return d, nil
			})},
		}
		if d.VehicleID != "" {
			v, vVer, err := t.store.Vehicle(d.VehicleID)
			if err != nil {
				return nil, err
			}
			// Last-write-wins holds per entity: the vehicle keeps a
			// direct report newer than this driver observation.
			if !observedAt.Before(v.Location.UpdatedAt) {
				indexVehicle = v.ID
				vloc := model.Location{Lat: lat, Lng: lng, Address: v.Location.Address, UpdatedAt: observedAt}
				ops = append(ops, store.Op{Kind: store.KindVehicle, ID: v.ID, Version: vVer, Mutate: store.MutateVehicle(func(v model.Vehicle) (model.Vehicle, error) {
					v.Location = vloc
					return v, nil
				})})
			}
		}
		return ops, nil
	})
	return applied, indexVehicle, err
}

func (t *Tracker) updateVehicle(id string, lat, lng float64, observedAt time.Time) (applied bool, indexVehicle string, err error) {
	err = t.store.Retry(func() ([]store.Op, error) {
		applied = false
		v, vVer, err := t.store.Vehicle(id)
		if err != nil {
			return nil, err
		}
		if observedAt.Before(v.Location.UpdatedAt) {
			return nil, nil
		}
		applied = true
		loc := model.Location{Lat: lat, Lng: lng, Address: v.Location.Address, UpdatedAt: observedAt}
		return []store.Op{
			{Kind: store.KindVehicle, ID: id, Version: vVer, Mutate: store.MutateVehicle(func(v model.Vehicle) (model.Vehicle, error) {
				v.Location = loc
				return v, nil
			})},
		}, nil
	})
	return applied, id, err
}
