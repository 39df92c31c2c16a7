package metrics

import (
	"context"

	"github.com/kilianp07/orderbot/core/events"
	coremetrics "github.com/kilianp07/orderbot/core/metrics"
	"github.com/kilianp07/orderbot/infra/logger"
	"github.com/kilianp07/orderbot/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for events.
// Completed orders are additionally reported through RecordOrderCompletion.
// It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.Event], sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	log := logger.New("metrics_collector")
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				record(sink, ev, log)
			}
		}
	}()
}

func record(sink coremetrics.MetricsSink, ev events.Event, log logger.Logger) {
	if r, ok := sink.(coremetrics.EventRecorder); ok {
		err := r.RecordOrderEvent(coremetrics.OrderEvent{
			Type:    string(ev.Type),
			OrderID: ev.OrderID,
			BotID:   ev.BotID,
			Class:   ev.Class,
			Time:    ev.At,
		})
		if err != nil {
			log.Warnf("record %s: %v", ev.Type, err)
		}
	}
	if ev.Type != events.OrderCompleted || ev.Order == nil {
		return
	}
	if c, ok := coremetrics.CompletionFromOrder(*ev.Order); ok {
		if err := sink.RecordOrderCompletion([]coremetrics.OrderCompletion{c}); err != nil {
			log.Warnf("record completion of order #%d: %v", c.OrderID, err)
		}
	}
}
