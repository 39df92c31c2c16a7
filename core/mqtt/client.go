package mqtt

import (
	"context"

	"github.com/kilianp07/orderbot/core/events"
	"github.com/kilianp07/orderbot/internal/eventbus"
)

// EventPublisher forwards lifecycle events to an MQTT broker.
type EventPublisher interface {
	// PublishEvent sends one event, retrying transient failures.
	PublishEvent(e events.Event) error
	// Disconnect closes the broker connection.
	Disconnect()
}

// Forward publishes every bus event through pub until ctx is canceled or the
// bus is closed. Failed publishes are left to pub to report.
func Forward(ctx context.Context, bus *eventbus.TypedBus[events.Event], pub EventPublisher) {
	if bus == nil || pub == nil {
		return
	}
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
				_ = pub.PublishEvent(ev)
			}
		}
	}()
}
