package scenarios

import (
	"fmt"
	"slices"
	"time"

	"github.com/kilianp07/orderbot/core/clock"
	"github.com/kilianp07/orderbot/core/controller"
	"github.com/kilianp07/orderbot/core/events"
	"github.com/kilianp07/orderbot/core/logger"
	"github.com/kilianp07/orderbot/core/model"
)

// Epoch is the fake clock's start time.
var Epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// maxIdleAdvances bounds the drain loop after the last step.
const maxIdleAdvances = 100000

// Result is the state after every step ran and every timer fired.
type Result struct {
	Snapshot controller.Snapshot
	Events   []events.Event
	// Elapsed is the simulated time from Epoch to quiescence.
	Elapsed time.Duration
}

// CompletedIDs returns completed order ids in completion order.
func (r *Result) CompletedIDs() []int { return orderIDs(r.Snapshot.Completed) }

// PendingIDs returns pending order ids, VIP first.
func (r *Result) PendingIDs() []int { return orderIDs(r.Snapshot.Pending) }

// Run replays sc on a fake clock and advances until no timer is armed.
func Run(sc *Scenario, log logger.Logger) (*Result, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	clk := clock.NewFake(Epoch)
	rec := &events.Recorder{}
	ctrl, err := controller.New(controller.Config{
		FirstOrderID:   sc.FirstOrderID,
		ProcessingTime: time.Duration(sc.ProcessingMS) * time.Millisecond,
	}, clk, rec, log)
	if err != nil {
		return nil, err
	}

	for _, st := range sc.Steps {
		if d := Epoch.Add(st.At()).Sub(clk.Now()); d > 0 {
			clk.Advance(d)
		}
		switch st.Action {
		case ActionVIP:
			ctrl.SubmitOrder(model.ClassVIP, st.Duration())
		case ActionNormal:
			ctrl.SubmitOrder(model.ClassNormal, st.Duration())
		case ActionAddBot:
			ctrl.AddBot()
		case ActionRemoveBot:
			ctrl.RemoveBot()
		}
	}

	for i := 0; clk.Pending() > 0; i++ {
		if i >= maxIdleAdvances {
			return nil, fmt.Errorf("scenario %q did not settle", sc.Name)
		}
		next, ok := clk.NextDeadline()
		if !ok {
			break
		}
		clk.Advance(next.Sub(clk.Now()))
	}

	return &Result{
		Snapshot: ctrl.Snapshot(),
		Events:   rec.Events(),
		Elapsed:  clk.Now().Sub(Epoch),
	}, nil
}

// Check compares the result with the scenario expectations.
func (sc *Scenario) Check(r *Result) error {
	if got := r.CompletedIDs(); !slices.Equal(got, sc.Expected.Completed) {
		return fmt.Errorf("completed orders %v, want %v", got, sc.Expected.Completed)
	}
	if got := r.PendingIDs(); !slices.Equal(got, sc.Expected.Pending) {
		return fmt.Errorf("pending orders %v, want %v", got, sc.Expected.Pending)
	}
	return nil
}

func orderIDs(os []model.Order) []int {
	var ids []int
	for _, o := range os {
		ids = append(ids, o.ID)
	}
	return ids
}
