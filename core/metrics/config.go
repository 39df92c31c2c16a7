package metrics

import "github.com/kilianp07/orderbot/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	// PrometheusAddr exposes /metrics when not empty.
	PrometheusAddr string                 `json:"prometheus_addr"`
	Sinks          []factory.ModuleConfig `json:"sinks"`
}
