// Package config loads the service configuration from a yaml or json
// file with NFX_ environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/itskeerthanraj/NeuroFleetX/core/dispatch"
	"github.com/itskeerthanraj/NeuroFleetX/core/metrics"
	"github.com/itskeerthanraj/NeuroFleetX/infra/mqtt"
)

type Config struct {
	API       APIConfig       `json:"api"`
	MQTT      MQTTConfig      `json:"mqtt"`
	Dispatch  DispatchConfig  `json:"dispatch"`
	Metrics   metrics.Config  `json:"metrics"`
	Simulator SimulatorConfig `json:"simulator"`
}

// APIConfig configures the HTTP API server.
type APIConfig struct {
	Addr            string `json:"addr"`
	ShutdownSeconds int    `json:"shutdown_seconds"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.ShutdownSeconds == 0 {
		c.ShutdownSeconds = 5
	}
}

// MQTTConfig enables the broker connection; the embedded client config
// holds the connection parameters.
type MQTTConfig struct {
	Enabled bool        `json:"enabled"`
	Client  mqtt.Config `json:"client"`
}

// Validate checks mandatory fields.
func (c MQTTConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Client.Broker == "" {
		return fmt.Errorf("mqtt broker is required when mqtt is enabled")
	}
	if c.Client.ClientID == "" {
		return fmt.Errorf("mqtt client_id is required when mqtt is enabled")
	}
	return nil
}

// DispatchConfig tunes the optimizer and the spatial index.
type DispatchConfig struct {
	Optimizer        dispatch.Config `json:"optimizer"`
	GeohashPrecision int             `json:"geohash_precision"`
}

// SetDefaults applies sane defaults.
func (c *DispatchConfig) SetDefaults() {
	if c.GeohashPrecision == 0 {
		c.GeohashPrecision = 5
	}
}

// Validate checks bounds.
func (c DispatchConfig) Validate() error {
	if c.GeohashPrecision < 1 || c.GeohashPrecision > 12 {
		return fmt.Errorf("geohash_precision must be in [1,12], got %d", c.GeohashPrecision)
	}
	return nil
}

// SimulatorConfig sizes the simulated driver fleet.
type SimulatorConfig struct {
	Drivers         int     `json:"drivers"`
	TickMS          int     `json:"tick_ms"`
	CenterLat       float64 `json:"center_lat"`
	CenterLng       float64 `json:"center_lng"`
	SpreadKm        float64 `json:"spread_km"`
	TripProbability float64 `json:"trip_probability"`
	Seed            int64   `json:"seed"`
}

// SetDefaults applies sane defaults.
func (c *SimulatorConfig) SetDefaults() {
	if c.Drivers == 0 {
		c.Drivers = 10
	}
	if c.TickMS == 0 {
		c.TickMS = 500
	}
	if c.CenterLat == 0 && c.CenterLng == 0 {
		c.CenterLat = 12.9716
		c.CenterLng = 77.5946
	}
	if c.SpreadKm == 0 {
		c.SpreadKm = 8
	}
	if c.TripProbability == 0 {
		c.TripProbability = 0.2
	}
}

// Validate checks bounds.
func (c SimulatorConfig) Validate() error {
	if c.Drivers < 1 {
		return fmt.Errorf("simulator needs at least one driver, got %d", c.Drivers)
	}
	if c.TripProbability < 0 || c.TripProbability > 1 {
		return fmt.Errorf("trip_probability must be in [0,1], got %v", c.TripProbability)
	}
	return nil
}

// Load reads the configuration file at path, applies NFX_ environment
// overrides, defaults and validation.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides, e.g. NFX_API__ADDR=":9000". The
	// callback maps NFX_SECTION__KEY onto the dotted config path.
	if err := k.Load(env.Provider("NFX_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "nfx_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.API.SetDefaults()
	cfg.Dispatch.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Simulator.SetDefaults()
	if err := cfg.MQTT.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Dispatch.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Simulator.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
