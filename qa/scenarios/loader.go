// Package scenarios replays scripted order and bot actions on a fake clock.
package scenarios

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/orderbot/core/model"
)

// Actions understood by a step.
const (
	ActionVIP       = "vip"
	ActionNormal    = "normal"
	ActionAddBot    = "add_bot"
	ActionRemoveBot = "remove_bot"
)

// Step is one action applied at AtMS milliseconds after the start.
type Step struct {
	AtMS       int64  `yaml:"at_ms"`
	Action     string `yaml:"action"`
	DurationMS int64  `yaml:"duration_ms,omitempty"`
}

// At returns the step offset.
func (s Step) At() time.Duration { return time.Duration(s.AtMS) * time.Millisecond }

// Duration returns the processing override, zero meaning the default.
func (s Step) Duration() time.Duration { return time.Duration(s.DurationMS) * time.Millisecond }

// Expected lists the order ids the scenario must end with.
type Expected struct {
	Completed []int `yaml:"completed"`
	Pending   []int `yaml:"pending,omitempty"`
}

type Scenario struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description,omitempty"`
	ProcessingMS int64    `yaml:"processing_ms,omitempty"`
	FirstOrderID int      `yaml:"first_order_id,omitempty"`
	Steps        []Step   `yaml:"steps"`
	Expected     Expected `yaml:"expected"`
}

var (
	ErrNoSteps       = errors.New("scenario has no steps")
	ErrUnknownAction = errors.New("unknown action")
	ErrStepOrder     = errors.New("steps must be sorted by at_ms")
)

// Load reads and validates a YAML scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates a YAML scenario.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) Validate() error {
	if len(sc.Steps) == 0 {
		return ErrNoSteps
	}
	if _, err := model.DurationFromMS(sc.ProcessingMS); err != nil {
		return fmt.Errorf("processing_ms: %w", err)
	}
	var last int64
	for i, st := range sc.Steps {
		switch st.Action {
		case ActionVIP, ActionNormal, ActionAddBot, ActionRemoveBot:
		default:
			return fmt.Errorf("step %d: %w %q", i, ErrUnknownAction, st.Action)
		}
		if st.AtMS < last {
			return fmt.Errorf("step %d: %w", i, ErrStepOrder)
		}
		if _, err := model.DurationFromMS(st.DurationMS); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if _, err := model.DurationFromMS(st.AtMS); err != nil {
			return fmt.Errorf("step %d: at_ms: %w", i, err)
		}
		last = st.AtMS
	}
	return nil
}
