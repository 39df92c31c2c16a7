package journal

import (
	"fmt"

	"github.com/kilianp07/orderbot/core/factory"
)

type fileConf struct {
	Path string `json:"path"`
}

type rotatingConf struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

var registry = factory.NewRegistry[Store]()

func init() {
	registry.MustRegister("memory", func(map[string]any) (Store, error) {
		return NewMemoryStore(), nil
	})
	registry.MustRegister("jsonl", func(conf map[string]any) (Store, error) {
		var c fileConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			return nil, fmt.Errorf("journal jsonl: path required")
		}
		return NewJSONLStore(c.Path)
	})
	registry.MustRegister("rotating", func(conf map[string]any) (Store, error) {
		c := rotatingConf{MaxSizeMB: 10, MaxBackups: 3, MaxAgeDays: 7}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			return nil, fmt.Errorf("journal rotating: path required")
		}
		return NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	})
	registry.MustRegister("sqlite", func(conf map[string]any) (Store, error) {
		var c fileConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			return nil, fmt.Errorf("journal sqlite: path required")
		}
		return NewSQLiteStore(c.Path)
	})
}

// New builds the store described by cfg. An empty type selects the memory
// store.
func New(cfg factory.ModuleConfig) (Store, error) {
	if cfg.Type == "" {
		cfg.Type = "memory"
	}
	s, err := registry.Create(cfg)
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	return s, nil
}
