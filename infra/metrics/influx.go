package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/itskeerthanraj/NeuroFleetX/core/metrics"
	"github.com/itskeerthanraj/NeuroFleetX/infra/logger"
)

// InfluxSink writes dispatch core events to an InfluxDB instance using
// the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails, so a missing time-series backend
// never blocks dispatching.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }

// RecordAssignment writes the committed assignment as a point.
func (s *InfluxSink) RecordAssignment(ev coremetrics.AssignmentEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("trip_assignment").
		AddTag("trip_id", ev.TripID).
		AddTag("driver_id", ev.DriverID).
		AddTag("vehicle_id", ev.VehicleID).
		AddTag("optimized", strconv.FormatBool(ev.Optimized)).
		AddTag("component", "dispatch").
		AddField("distance_km", round3(ev.DistanceKm)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTransition writes the status change as a point.
func (s *InfluxSink) RecordTransition(ev coremetrics.TransitionEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("trip_transition").
		AddTag("trip_id", ev.TripID).
		AddTag("from", string(ev.From)).
		AddTag("to", string(ev.To)).
		AddTag("component", "dispatch").
		AddField("count", 1).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordLocationUpdate writes the report outcome as a point.
func (s *InfluxSink) RecordLocationUpdate(ev coremetrics.LocationUpdateEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("location_update").
		AddTag("kind", ev.Kind).
		AddTag("entity_id", ev.ID).
		AddTag("applied", strconv.FormatBool(ev.Applied)).
		AddTag("component", "tracking").
		AddField("count", 1).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordFleetCounts writes the census snapshot as one point per status.
func (s *InfluxSink) RecordFleetCounts(ev coremetrics.FleetCounts) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("fleet_census").
		AddTag("component", "fleet").
		AddField("active_trips", ev.ActiveTrips).
		SetTime(ev.Time)
	for status, n := range ev.Vehicles {
		p.AddField("vehicles_"+strings.ToLower(string(status)), n)
	}
	for status, n := range ev.Drivers {
		p.AddField("drivers_"+strings.ToLower(string(status)), n)
	}
	for status, n := range ev.Trips {
		p.AddField("trips_"+strings.ToLower(string(status)), n)
	}
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
