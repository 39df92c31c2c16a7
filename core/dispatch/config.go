package dispatch

import "time"

// Config defines dispatcher settings.
type Config struct {
	// PollIntervalMS enables a fixed-interval safety pass when positive.
	PollIntervalMS int `json:"poll_interval_ms"`
}

// PollInterval returns the polling interval, zero when polling is disabled.
func (c Config) PollInterval() time.Duration {
	if c.PollIntervalMS <= 0 {
		return 0
	}
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}
