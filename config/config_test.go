package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

//nolint:gocyclo
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `bot:
  processing_time_ms: 2500
dispatcher:
  poll_interval_ms: 0
orders:
  first_id: 1
http:
  addr: ":9000"
  token: "secret"
metrics:
  prometheus_addr: ":2112"
  sinks:
    - type: "nop"
journal:
  type: "sqlite"
  conf:
    path: "journal.db"
logging:
  level: "debug"
  file: "logs/app.log"
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
  topic_prefix: "shop/events"
  qos: 1
sentry:
  dsn: "https://public@example.com/1"
  traces_sample_rate: 0.5
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"processing", cfg.Bot.ProcessingTime(), 2500 * time.Millisecond},
		{"poll disabled", cfg.Dispatcher.PollInterval(), time.Duration(0)},
		{"first_id", cfg.Orders.FirstID, 1},
		{"http.addr", cfg.HTTP.Addr, ":9000"},
		{"http.token", cfg.HTTP.Token, "secret"},
		{"prometheus_addr", cfg.Metrics.PrometheusAddr, ":2112"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"journal.type", cfg.Journal.Type, "sqlite"},
		{"journal.path", cfg.Journal.Conf["path"], "journal.db"},
		{"logging.level", cfg.Logging.Level, "debug"},
		{"logging.file", cfg.Logging.File, "logs/app.log"},
		{"logging.max_size_mb default", cfg.Logging.MaxSizeMB, 10},
		{"mqtt.broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt.topic_prefix", cfg.MQTT.TopicPrefix, "shop/events"},
		{"mqtt.qos", cfg.MQTT.QoS, byte(1)},
		{"sentry.rate", cfg.Sentry.TracesSampleRate, 0.5},
		{"sentry.server_name default", cfg.Sentry.ServerName, DefaultSentryServerName},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Bot.ProcessingTimeMS != DefaultProcessingTimeMS {
		t.Errorf("processing default: %d", cfg.Bot.ProcessingTimeMS)
	}
	if cfg.Dispatcher.PollIntervalMS != DefaultPollIntervalMS {
		t.Errorf("poll default: %d", cfg.Dispatcher.PollIntervalMS)
	}
	if cfg.Orders.FirstID != DefaultFirstOrderID {
		t.Errorf("first id default: %d", cfg.Orders.FirstID)
	}
	if cfg.HTTP.Addr != DefaultHTTPAddr || cfg.Journal.Type != "memory" || cfg.Logging.Level != "info" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	def := Default()
	if def.Bot != cfg.Bot || def.Dispatcher != cfg.Dispatcher || def.Orders != cfg.Orders {
		t.Errorf("Default() and Load(\"\") differ")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ORDERBOT_BOT__PROCESSING_TIME_MS", "500")
	t.Setenv("ORDERBOT_HTTP__TOKEN", "from-env")
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"bot":{"processing_time_ms":2000},"http":{"addr":":7000"}}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Bot.ProcessingTimeMS != 500 {
		t.Errorf("env override not applied: %d", cfg.Bot.ProcessingTimeMS)
	}
	if cfg.HTTP.Addr != ":7000" || cfg.HTTP.Token != "from-env" {
		t.Errorf("unexpected http config %+v", cfg.HTTP)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"bad.toml":      "",
		"neg.yaml":      "bot:\n  processing_time_ms: -1\n",
		"huge.yaml":     "bot:\n  processing_time_ms: 9223372036855\n",
		"level.yaml":    "logging:\n  level: chatty\n",
		"mqtt.yaml":     "mqtt:\n  enabled: true\n",
		"poll.yaml":     "dispatcher:\n  poll_interval_ms: -5\n",
		"sentry.yaml":   "sentry:\n  traces_sample_rate: 2\n",
		"first_id.yaml": "orders:\n  first_id: -3\n",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing file: expected error")
	}
}
