package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/itskeerthanraj/NeuroFleetX/core/metrics"
)

// PromSink records dispatch core events in Prometheus metrics.
type PromSink struct {
	transitions *prometheus.CounterVec
	assignments *prometheus.CounterVec
	distance    prometheus.Histogram
	locations   *prometheus.CounterVec
	vehicles    *prometheus.GaugeVec
	drivers     *prometheus.GaugeVec
	trips       *prometheus.GaugeVec
	activeTrips prometheus.Gauge
}

// NewPromSink registers dispatch metrics on the default Prometheus
// registerer. The Prometheus server is started separately using
// cfg.PrometheusPort.
func NewPromSink() (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trip_transitions_total",
		Help: "Total number of trip status transitions",
	}, []string{"from", "to"})
	assignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trip_assignments_total",
		Help: "Total number of committed trip assignments",
	}, []string{"optimized"})
	distance := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "trip_assignment_distance_km",
		Help:    "Vehicle-to-pickup distance of committed assignments",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 50},
	})
	locations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "location_updates_total",
		Help: "Total number of location reports processed",
	}, []string{"kind", "applied"})
	vehicles := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fleet_vehicles",
		Help: "Number of vehicles by status",
	}, []string{"status"})
	drivers := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fleet_drivers",
		Help: "Number of drivers by status",
	}, []string{"status"})
	trips := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fleet_trips",
		Help: "Number of trips by status",
	}, []string{"status"})
	activeTrips := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_active_trips",
		Help: "Number of trips currently holding a driver and vehicle",
	})

	var err error
	if transitions, err = register(reg, transitions); err != nil {
		return nil, err
	}
	if assignments, err = register(reg, assignments); err != nil {
		return nil, err
	}
	if distance, err = register(reg, distance); err != nil {
		return nil, err
	}
	if locations, err = register(reg, locations); err != nil {
		return nil, err
	}
	if vehicles, err = register(reg, vehicles); err != nil {
		return nil, err
	}
	if drivers, err = register(reg, drivers); err != nil {
		return nil, err
	}
	if trips, err = register(reg, trips); err != nil {
		return nil, err
	}
	if activeTrips, err = register(reg, activeTrips); err != nil {
		return nil, err
	}

	return &PromSink{
		transitions: transitions,
		assignments: assignments,
		distance:    distance,
		locations:   locations,
		vehicles:    vehicles,
		drivers:     drivers,
		trips:       trips,
		activeTrips: activeTrips,
	}, nil
}

// register adds c to reg, reusing the already registered collector when
// the sink is constructed twice against the same registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(C), nil
		}
		return c, err
	}
	return c, nil
}

// RecordAssignment counts the assignment and observes its distance when
// the vehicle had a known position.
func (s *PromSink) RecordAssignment(ev coremetrics.AssignmentEvent) error {
	s.assignments.WithLabelValues(strconv.FormatBool(ev.Optimized)).Inc()
	if ev.DistanceKm >= 0 {
		s.distance.Observe(ev.DistanceKm)
	}
	return nil
}

// RecordTransition counts the status change.
func (s *PromSink) RecordTransition(ev coremetrics.TransitionEvent) error {
	s.transitions.WithLabelValues(string(ev.From), string(ev.To)).Inc()
	return nil
}

// RecordLocationUpdate counts the report, split by applied/superseded.
func (s *PromSink) RecordLocationUpdate(ev coremetrics.LocationUpdateEvent) error {
	s.locations.WithLabelValues(ev.Kind, strconv.FormatBool(ev.Applied)).Inc()
	return nil
}

// RecordFleetCounts sets the census gauges.
func (s *PromSink) RecordFleetCounts(ev coremetrics.FleetCounts) error {
	for status, n := range ev.Vehicles {
		s.vehicles.WithLabelValues(string(status)).Set(float64(n))
	}
	for status, n := range ev.Drivers {
		s.drivers.WithLabelValues(string(status)).Set(float64(n))
	}
	for status, n := range ev.Trips {
		s.trips.WithLabelValues(string(status)).Set(float64(n))
	}
	s.activeTrips.Set(float64(ev.ActiveTrips))
	return nil
}
