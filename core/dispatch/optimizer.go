// Package dispatch selects the best driver/vehicle pair for a pending
// trip. The optimizer only reads the entity store; committing the
// proposed pair is the caller's decision, which re-validates through
// the state machine and fails gracefully if the pair was taken in the
// meantime.
package dispatch

import (
	"math"

	"github.com/itskeerthanraj/NeuroFleetX/core/geo"
	"github.com/itskeerthanraj/NeuroFleetX/core/logger"
	"github.com/itskeerthanraj/NeuroFleetX/core/model"
	"github.com/itskeerthanraj/NeuroFleetX/core/store"
	"github.com/itskeerthanraj/NeuroFleetX/core/trip"
	"github.com/itskeerthanraj/NeuroFleetX/internal/geoindex"
)

// Candidate is an eligible driver with the vehicle it is paired with
// and the cost of sending it to the pickup point. CostKm is +Inf when
// the vehicle has no recorded location, making it a last resort that is
// never chosen over a located candidate.
type Candidate struct {
	DriverID  string
	VehicleID string
	CostKm    float64
}

// Config tunes the optimizer.
type Config struct {
	// GeohashPrefilter narrows the candidate scan to vehicles indexed
	// in the pickup's geohash cell and its neighbors. When the narrowed
	// set is empty the optimizer falls back to the full scan, so the
	// outcome set is never reduced to nothing by the prefilter.
	GeohashPrefilter bool `json:"geohash_prefilter"`
}

// Optimizer proposes the lowest-cost driver/vehicle pair for a trip.
type Optimizer struct {
	store store.Store
	index *geoindex.Index
	log   logger.Logger
	cfg   Config
}

// NewOptimizer returns an Optimizer. index may be nil, which disables
// the geohash prefilter regardless of configuration.
func NewOptimizer(st store.Store, index *geoindex.Index, log logger.Logger, cfg Config) *Optimizer {
	return &Optimizer{store: st, index: index, log: log, cfg: cfg}
}

// Optimize returns the minimum-cost candidate for the trip, with ties
// broken by lowest driver ID so the result is deterministic for a given
// entity snapshot. The trip must still be REQUESTED. An empty candidate
// set yields NoCandidateError and leaves the trip untouched.
func (o *Optimizer) Optimize(tripID string) (Candidate, error) {
	t, _, err := o.store.Trip(tripID)
	if err != nil {
		return Candidate{}, err
	}
	if t.Status != model.TripRequested {
		return Candidate{}, trip.InvalidTransitionError{TripID: tripID, From: t.Status, Attempted: "optimize"}
	}

	candidates := o.candidates(t.Pickup)
	if len(candidates) == 0 {
		return Candidate{}, NoCandidateError{TripID: tripID}
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.CostKm < best.CostKm || (c.CostKm == best.CostKm && c.DriverID < best.DriverID) {
			best = c
		}
	}
	o.log.Debugw("optimizer selected candidate", map[string]any{
		"trip_id":    tripID,
		"driver_id":  best.DriverID,
		"vehicle_id": best.VehicleID,
		"cost_km":    best.CostKm,
	})
	return best, nil
}

// candidates scans available drivers paired with available vehicles and
// costs each pair against the pickup point.
func (o *Optimizer) candidates(pickup model.Location) []Candidate {
	drivers := o.store.Drivers(func(d model.Driver) bool { return d.Assignable() })

	var prefilter map[string]struct{}
	if o.cfg.GeohashPrefilter && o.index != nil {
		prefilter = o.index.CellMembers(pickup.Lat, pickup.Lng)
	}

	build := func(restrict map[string]struct{}) []Candidate {
		var res []Candidate
		for _, d := range drivers {
			if restrict != nil {
				if _, ok := restrict[d.VehicleID]; !ok {
					continue
				}
			}
			v, _, err := o.store.Vehicle(d.VehicleID)
			if err != nil || v.Status != model.VehicleAvailable || v.DriverID != d.ID {
				continue
			}
			cost := math.Inf(1)
			if !v.Location.IsZero() {
				cost = geo.HaversineKm(v.Location.Lat, v.Location.Lng, pickup.Lat, pickup.Lng)
			}
			res = append(res, Candidate{DriverID: d.ID, VehicleID: v.ID, CostKm: cost})
		}
		return res
	}

	if prefilter != nil {
		if narrowed := build(prefilter); len(narrowed) > 0 {
			return narrowed
		}
	}
	return build(nil)
}
