package metrics

import (
	"time"

	"github.com/kilianp07/orderbot/core/model"
)

// OrderCompletion describes one finished order.
type OrderCompletion struct {
	OrderID        int
	BotID          int
	Class          model.OrderClass
	WaitTime       time.Duration
	ProcessingTime time.Duration
	CompletedAt    time.Time
}

// CompletionFromOrder derives the completion record of a completed order.
// ok is false when o has not finished processing.
func CompletionFromOrder(o model.Order) (OrderCompletion, bool) {
	proc, ok := o.ProcessingTime()
	if !ok {
		return OrderCompletion{}, false
	}
	wait, _ := o.WaitTime()
	return OrderCompletion{
		OrderID:        o.ID,
		BotID:          o.BotID,
		Class:          o.Class,
		WaitTime:       wait,
		ProcessingTime: proc,
		CompletedAt:    *o.ProcessEndAt,
	}, true
}

// MetricsSink records completed orders for observability purposes.
type MetricsSink interface {
	RecordOrderCompletion(c []OrderCompletion) error
}

// OrderEvent is a lifecycle transition of an order or a bot.
type OrderEvent struct {
	Type    string
	OrderID int
	BotID   int
	Class   model.OrderClass
	Time    time.Time
}

// EventRecorder records lifecycle transitions.
type EventRecorder interface {
	RecordOrderEvent(ev OrderEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordOrderCompletion([]OrderCompletion) error { return nil }
func (NopSink) RecordOrderEvent(OrderEvent) error              { return nil }
