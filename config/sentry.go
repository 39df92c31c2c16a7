package config

import "fmt"

// DefaultSentryServerName tags events sent by this service.
const DefaultSentryServerName = "orderbot"

// SentryConfig enables error monitoring when DSN is set. Recovered dispatch
// failures and MQTT publish errors are reported with their module tag.
type SentryConfig struct {
	DSN              string  `json:"dsn"`
	Environment      string  `json:"environment"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
	Release          string  `json:"release"`
	ServerName       string  `json:"server_name"`
}

func (c *SentryConfig) SetDefaults() {
	if c.ServerName == "" {
		c.ServerName = DefaultSentryServerName
	}
}

// Validate rejects a sample rate outside [0,1].
func (c SentryConfig) Validate() error {
	if c.TracesSampleRate < 0 || c.TracesSampleRate > 1 {
		return fmt.Errorf("sentry.traces_sample_rate must be within [0,1]")
	}
	return nil
}
