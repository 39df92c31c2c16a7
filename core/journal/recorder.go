package journal

import (
	"context"

	"github.com/kilianp07/orderbot/core/events"
	"github.com/kilianp07/orderbot/core/logger"
	"github.com/kilianp07/orderbot/internal/eventbus"
)

// StartRecorder subscribes to the bus and appends one record per event until
// ctx is canceled or the bus is closed. The returned channel is closed when
// the recorder has stopped.
func StartRecorder(ctx context.Context, bus *eventbus.TypedBus[events.Event], store Store, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || store == nil {
		close(done)
		return done
	}
	log = logger.OrNop(log)
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := store.Append(ctx, FromEvent(ev)); err != nil {
					log.Errorf("journal append %s: %v", ev.Type, err)
				}
			}
		}
	}()
	return done
}
