package metrics

// Config selects the metric sinks to enable.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
	// FleetSampleSeconds is the period of fleet census snapshots; zero
	// disables them.
	FleetSampleSeconds int `json:"fleet_sample_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusPort == "" {
		c.PrometheusPort = ":9090"
	}
	if c.FleetSampleSeconds == 0 {
		c.FleetSampleSeconds = 15
	}
}
