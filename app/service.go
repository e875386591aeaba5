package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/itskeerthanraj/NeuroFleetX/api"
	"github.com/itskeerthanraj/NeuroFleetX/config"
	"github.com/itskeerthanraj/NeuroFleetX/core/dispatch"
	"github.com/itskeerthanraj/NeuroFleetX/core/events"
	"github.com/itskeerthanraj/NeuroFleetX/core/fleet"
	coremetrics "github.com/itskeerthanraj/NeuroFleetX/core/metrics"
	"github.com/itskeerthanraj/NeuroFleetX/core/query"
	"github.com/itskeerthanraj/NeuroFleetX/core/store"
	"github.com/itskeerthanraj/NeuroFleetX/core/tracking"
	"github.com/itskeerthanraj/NeuroFleetX/core/trip"
	"github.com/itskeerthanraj/NeuroFleetX/infra/logger"
	"github.com/itskeerthanraj/NeuroFleetX/infra/metrics"
	"github.com/itskeerthanraj/NeuroFleetX/infra/mqtt"
	"github.com/itskeerthanraj/NeuroFleetX/internal/eventbus"
	"github.com/itskeerthanraj/NeuroFleetX/internal/geoindex"
)

// Service wires the dispatch core to its HTTP, MQTT and metrics edges.
type Service struct {
	Fleet *fleet.Service

	cfg     *config.Config
	log     logger.Logger
	sink    coremetrics.Sink
	tripBus *eventbus.TypedBus[events.TripEvent]
	locBus  *eventbus.TypedBus[events.LocationEvent]
	mqttCli *mqtt.Client
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	sink, err := metrics.FromConfig(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	tripBus := eventbus.NewTyped[events.TripEvent]()
	locBus := eventbus.NewTyped[events.LocationEvent]()

	st := store.NewMemoryStore()
	idx := geoindex.New(uint(cfg.Dispatch.GeohashPrecision))
	machine := trip.NewMachine(st, logger.New("trip-machine"))
	optimizer := dispatch.NewOptimizer(st, idx, logger.New("dispatch"), cfg.Dispatch.Optimizer)
	tracker := tracking.NewTracker(st, idx, logger.New("tracker"), sink, locBus)
	views := query.NewViews(st, idx)
	svc := fleet.NewService(st, machine, optimizer, tracker, views, logg, sink, tripBus)

	s := &Service{
		Fleet:   svc,
		cfg:     cfg,
		log:     logg,
		sink:    sink,
		tripBus: tripBus,
		locBus:  locBus,
	}

	if cfg.MQTT.Enabled {
		cli, err := mqtt.NewClient(cfg.MQTT.Client)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		s.mqttCli = cli
	}
	return s, nil
}

// Run starts the edges and blocks until the context is cancelled. The
// HTTP listener failing tears the whole service down.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	if s.mqttCli != nil {
		ingestor := mqtt.NewIngestor(s.Fleet, logger.New("mqtt-ingestor"))
		if err := ingestor.Start(s.mqttCli); err != nil {
			return fmt.Errorf("location ingestor: %w", err)
		}
		notifier := mqtt.NewNotifier(s.mqttCli, s.tripBus, logger.New("mqtt-notifier"))
		go notifier.Run(ctx)
	}

	if s.cfg.Metrics.FleetSampleSeconds > 0 {
		go s.sampleFleet(ctx, time.Duration(s.cfg.Metrics.FleetSampleSeconds)*time.Second)
	}

	httpSrv := &http.Server{
		Addr:    s.cfg.API.Addr,
		Handler: api.NewServer(s.Fleet, logger.New("api")).Handler(),
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("http api listening on %s", s.cfg.API.Addr)
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(s.cfg.API.ShutdownSeconds)*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		s.log.Errorf("http shutdown: %v", err)
	}
	return nil
}

// sampleFleet periodically pushes a census snapshot to the sink.
func (s *Service) sampleFleet(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.sink.RecordFleetCounts(s.Fleet.FleetCounts()); err != nil {
				s.log.Warnf("fleet census: %v", err)
			}
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.mqttCli != nil {
		s.mqttCli.Disconnect()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	s.tripBus.Close()
	s.locBus.Close()
	return nil
}
