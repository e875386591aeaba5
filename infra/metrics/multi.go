package metrics

import coremetrics "github.com/itskeerthanraj/NeuroFleetX/core/metrics"

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAssignment forwards to all sinks, returning the first error.
func (m *MultiSink) RecordAssignment(ev coremetrics.AssignmentEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordAssignment(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordTransition forwards to all sinks, returning the first error.
func (m *MultiSink) RecordTransition(ev coremetrics.TransitionEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordTransition(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordLocationUpdate forwards to all sinks, returning the first error.
func (m *MultiSink) RecordLocationUpdate(ev coremetrics.LocationUpdateEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordLocationUpdate(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordFleetCounts forwards to all sinks, returning the first error.
func (m *MultiSink) RecordFleetCounts(ev coremetrics.FleetCounts) error {
	for _, s := range m.Sinks {
		if err := s.RecordFleetCounts(ev); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every wrapped sink that holds resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
