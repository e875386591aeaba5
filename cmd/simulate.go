package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/itskeerthanraj/NeuroFleetX/app"
	"github.com/itskeerthanraj/NeuroFleetX/config"
	"github.com/itskeerthanraj/NeuroFleetX/infra/logger"
	"github.com/itskeerthanraj/NeuroFleetX/simulator"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the service with a synthetic driver fleet",
	RunE:  runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	logg := logger.New("simulate")
	defer func() {
		if err := svc.Close(); err != nil {
			logg.Errorf("service close: %v", err)
		}
	}()

	sim := simulator.New(svc.Fleet, simulator.Config{
		Drivers:         cfg.Simulator.Drivers,
		Tick:            time.Duration(cfg.Simulator.TickMS) * time.Millisecond,
		CenterLat:       cfg.Simulator.CenterLat,
		CenterLng:       cfg.Simulator.CenterLng,
		SpreadKm:        cfg.Simulator.SpreadKm,
		TripProbability: cfg.Simulator.TripProbability,
		Seed:            cfg.Simulator.Seed,
	}, logg)
	go func() {
		if err := sim.Run(ctx); err != nil {
			logg.Errorf("simulator: %v", err)
			stop()
		}
	}()
	return svc.Run(ctx)
}
