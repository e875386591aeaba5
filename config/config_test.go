package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `api:
  addr: ":9000"
mqtt:
  enabled: true
  client:
    broker: "tcp://localhost:1883"
    client_id: "nfx"
    username: "user"
    password: "pass"
dispatch:
  optimizer:
    geohash_prefilter: true
  geohash_precision: 6
metrics:
  prometheus_enabled: true
  prometheus_port: ":9100"
simulator:
  drivers: 25
  tick_ms: 100
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.API.Addr)
	assert.Equal(t, 5, cfg.API.ShutdownSeconds, "default applied")
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Client.Broker)
	assert.Equal(t, "nfx", cfg.MQTT.Client.ClientID)
	assert.True(t, cfg.Dispatch.Optimizer.GeohashPrefilter)
	assert.Equal(t, 6, cfg.Dispatch.GeohashPrecision)
	assert.True(t, cfg.Metrics.PrometheusEnabled)
	assert.Equal(t, ":9100", cfg.Metrics.PrometheusPort)
	assert.Equal(t, 15, cfg.Metrics.FleetSampleSeconds, "default applied")
	assert.Equal(t, 25, cfg.Simulator.Drivers)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{"api":{"addr":":7070"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.API.Addr)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", `api: {}`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.API.Addr)
	assert.Equal(t, 5, cfg.Dispatch.GeohashPrecision)
	assert.Equal(t, ":9090", cfg.Metrics.PrometheusPort)
	assert.Equal(t, 10, cfg.Simulator.Drivers)
	assert.InDelta(t, 12.9716, cfg.Simulator.CenterLat, 1e-9)
	assert.False(t, cfg.MQTT.Enabled)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("NFX_API__ADDR", ":6060")
	t.Setenv("NFX_DISPATCH__GEOHASH_PRECISION", "7")
	path := writeConfig(t, "config.yaml", `api:
  addr: ":9000"
dispatch:
  geohash_precision: 4
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":6060", cfg.API.Addr)
	assert.Equal(t, 7, cfg.Dispatch.GeohashPrecision)
}

func TestLoadRejectsInvalid(t *testing.T) {
	_, err := Load(writeConfig(t, "config.toml", `x = 1`))
	assert.Error(t, err, "unsupported format")

	_, err = Load(writeConfig(t, "config.yaml", `mqtt:
  enabled: true
`))
	assert.Error(t, err, "mqtt enabled without broker")

	_, err = Load(writeConfig(t, "config.yaml", `dispatch:
  geohash_precision: 40
`))
	assert.Error(t, err, "geohash precision out of range")

	_, err = Load(writeConfig(t, "config.yaml", `simulator:
  trip_probability: 2.0
`))
	assert.Error(t, err, "trip probability out of range")
}
