// Package infra groups the orderbot adapters: the zerolog logger setup,
// the Prometheus and InfluxDB metrics sinks, Sentry monitoring and the MQTT
// event publisher and command listener. They depend on core types only.
package infra
