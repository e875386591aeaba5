// Package infra holds technical adapters: the zerolog logger, the
// Prometheus and InfluxDB metric sinks and the paho MQTT edge. These
// packages depend only on interfaces defined under core.
package infra
