// Package factory provides a small generic registry used to build pluggable
// modules (journal stores, metrics sinks) from configuration. A module is
// described by a type string and a map of raw settings decoded into a typed
// struct by the registered factory.
//
// Example usage:
//
//	reg := factory.NewRegistry[journal.Store]()
//	reg.MustRegister("sqlite", func(conf map[string]any) (journal.Store, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return journal.NewSQLiteStore(c.Path)
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "sqlite", Conf: map[string]any{"path": "orders.db"}})
package factory
