package factory

import (
	"errors"
	"testing"
	"time"
)

type sink struct {
	Addr   string
	Period time.Duration
	Size   int
}

type sinkConf struct {
	Addr   string        `json:"addr"`
	Period time.Duration `json:"period"`
	Size   int           `json:"size"`
}

func sinkFactory(conf map[string]any) (*sink, error) {
	var c sinkConf
	if err := Decode(conf, &c); err != nil {
		return nil, err
	}
	return &sink{Addr: c.Addr, Period: c.Period, Size: c.Size}, nil
}

func TestRegistry_Create(t *testing.T) {
	reg := NewRegistry[*sink]()
	if err := reg.Register("s", sinkFactory); err != nil {
		t.Fatalf("register: %v", err)
	}
	inst, err := reg.Create(ModuleConfig{Type: "s", Conf: map[string]any{"addr": "localhost:1", "size": 3}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inst.Addr != "localhost:1" || inst.Size != 3 {
		t.Fatalf("unexpected instance %+v", inst)
	}
}

// Values coming from environment overrides arrive as strings.
func TestDecode_WeakTypes(t *testing.T) {
	var c sinkConf
	if err := Decode(map[string]any{"size": "42", "period": "1500ms"}, &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Size != 42 || c.Period != 1500*time.Millisecond {
		t.Fatalf("unexpected conf %+v", c)
	}
}

func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry[int]()
	if err := reg.Register("x", func(map[string]any) (int, error) { return 1, nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("x", func(map[string]any) (int, error) { return 2, nil }); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := reg.Register("z", nil); err == nil {
		t.Fatal("expected nil factory error")
	}
	if _, err := reg.Create(ModuleConfig{Type: "y"}); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestRegistry_NamesAndMustRegister(t *testing.T) {
	reg := NewRegistry[int]()
	reg.MustRegister("b", func(map[string]any) (int, error) { return 0, nil })
	reg.MustRegister("a", func(map[string]any) (int, error) { return 0, nil })
	names := reg.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("unexpected names %v", names)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate")
		}
	}()
	reg.MustRegister("a", func(map[string]any) (int, error) { return 0, nil })
}
