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

	"github.com/kilianp07/orderbot/core/dispatch"
	"github.com/kilianp07/orderbot/core/factory"
	"github.com/kilianp07/orderbot/core/metrics"
	"github.com/kilianp07/orderbot/infra/logger"
	"github.com/kilianp07/orderbot/infra/mqtt"
)

// EnvPrefix marks environment overrides. Nested keys use "__", for example
// ORDERBOT_BOT__PROCESSING_TIME_MS.
const EnvPrefix = "ORDERBOT_"

type Config struct {
	Bot        BotConfig            `json:"bot"`
	Dispatcher dispatch.Config      `json:"dispatcher"`
	Orders     OrdersConfig         `json:"orders"`
	HTTP       HTTPConfig           `json:"http"`
	Metrics    metrics.Config       `json:"metrics"`
	Journal    factory.ModuleConfig `json:"journal"`
	Logging    logger.Config        `json:"logging"`
	MQTT       mqtt.Config          `json:"mqtt"`
	Sentry     SentryConfig         `json:"sentry"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{Dispatcher: dispatch.Config{PollIntervalMS: DefaultPollIntervalMS}}
	cfg.SetDefaults()
	return cfg
}

// Load reads a YAML or JSON file, applies ORDERBOT_ environment overrides,
// fills defaults and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Set("dispatcher.poll_interval_ms", DefaultPollIntervalMS); err != nil {
		return nil, err
	}
	if path != "" {
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
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section's zero values.
func (c *Config) SetDefaults() {
	c.Bot.SetDefaults()
	c.Orders.SetDefaults()
	c.HTTP.SetDefaults()
	c.Logging.SetDefaults()
	c.Sentry.SetDefaults()
	if c.Journal.Type == "" {
		c.Journal.Type = "memory"
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Bot.Validate(); err != nil {
		return err
	}
	if c.Dispatcher.PollIntervalMS < 0 {
		return fmt.Errorf("dispatcher.poll_interval_ms must not be negative")
	}
	if err := c.Orders.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.MQTT.Validate(); err != nil {
		return err
	}
	return c.Sentry.Validate()
}
