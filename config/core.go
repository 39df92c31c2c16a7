package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/orderbot/core/model"
)

const (
	DefaultProcessingTimeMS = 10000
	DefaultPollIntervalMS   = 1000
	DefaultFirstOrderID     = 101
	DefaultHTTPAddr         = ":8080"
)

// BotConfig defines how long a bot works on an order by default.
type BotConfig struct {
	ProcessingTimeMS int `json:"processing_time_ms"`
}

func (c *BotConfig) SetDefaults() {
	if c.ProcessingTimeMS == 0 {
		c.ProcessingTimeMS = DefaultProcessingTimeMS
	}
}

func (c BotConfig) Validate() error {
	if c.ProcessingTimeMS <= 0 {
		return fmt.Errorf("bot.processing_time_ms must be positive")
	}
	if _, err := model.DurationFromMS(int64(c.ProcessingTimeMS)); err != nil {
		return fmt.Errorf("bot.processing_time_ms: %w", err)
	}
	return nil
}

// ProcessingTime returns the default processing duration.
func (c BotConfig) ProcessingTime() time.Duration {
	return time.Duration(c.ProcessingTimeMS) * time.Millisecond
}

// OrdersConfig defines order numbering.
type OrdersConfig struct {
	FirstID int `json:"first_id"`
}

func (c *OrdersConfig) SetDefaults() {
	if c.FirstID == 0 {
		c.FirstID = DefaultFirstOrderID
	}
}

func (c OrdersConfig) Validate() error {
	if c.FirstID <= 0 {
		return fmt.Errorf("orders.first_id must be positive")
	}
	return nil
}

// HTTPConfig defines the control API listener. An empty token disables
// authentication.
type HTTPConfig struct {
	Addr  string `json:"addr"`
	Token string `json:"token"`
}

func (c *HTTPConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultHTTPAddr
	}
}
