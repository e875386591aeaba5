package metrics

import (
	coremetrics "github.com/itskeerthanraj/NeuroFleetX/core/metrics"
)

// FromConfig builds the sink selected by the configuration. Multiple
// enabled backends are wrapped in a MultiSink; none yields a NopSink.
func FromConfig(cfg coremetrics.Config) (coremetrics.Sink, error) {
	var sinks []coremetrics.Sink
	if cfg.PrometheusEnabled {
		prom, err := NewPromSink()
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, prom)
	}
	if cfg.InfluxEnabled {
		sinks = append(sinks, NewInfluxSinkWithFallback(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket))
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return NewMultiSink(sinks...), nil
	}
}
