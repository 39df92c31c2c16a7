package dispatch

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/kilianp07/orderbot/core/logger"
	"github.com/kilianp07/orderbot/core/model"
	"github.com/kilianp07/orderbot/core/monitoring"
)

// OrderSource yields pending orders in priority order.
type OrderSource interface {
	HasPending() bool
	Next() *model.Order
}

// BotSource yields available bots and assigns orders to them.
type BotSource interface {
	HasAvailable() bool
	TakeAvailable() *model.Bot
	Restore(b *model.Bot)
	Assign(b *model.Bot, o *model.Order, then func()) error
}

// Dispatcher runs dispatch passes over an order source and a bot source.
type Dispatcher struct {
	orders OrderSource
	bots   BotSource
	logger logger.Logger

	running atomic.Bool
	passes  atomic.Uint64
}

// NewDispatcher creates a dispatcher. A nil logger disables logging.
func NewDispatcher(orders OrderSource, bots BotSource, log logger.Logger) (*Dispatcher, error) {
	if orders == nil || bots == nil {
		return nil, fmt.Errorf("dispatch: nil source provided to NewDispatcher")
	}
	return &Dispatcher{orders: orders, bots: bots, logger: logger.OrNop(log)}, nil
}

// Trigger runs a dispatch pass unless one is already in progress, in which
// case it returns false immediately. Callers mutate state before triggering,
// so after releasing the flag the winner re-checks for work a contested
// trigger from another goroutine may have left behind.
func (d *Dispatcher) Trigger() bool {
	if !d.running.CompareAndSwap(false, true) {
		contestedTriggers.Inc()
		return false
	}
	for {
		drained := d.safePass()
		d.running.Store(false)
		if !drained || !d.hasWork() || !d.running.CompareAndSwap(false, true) {
			return true
		}
	}
}

func (d *Dispatcher) hasWork() bool {
	return d.orders.HasPending() && d.bots.HasAvailable()
}

// Passes returns the number of dispatch passes executed so far.
func (d *Dispatcher) Passes() uint64 { return d.passes.Load() }

// Run triggers a pass every interval until ctx is canceled. It is an optional
// safety net on top of event-driven triggering.
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Trigger()
		}
	}
}

// safePass runs one pass and reports whether it stopped because one side was
// exhausted. A recovered panic or an inconsistent source reports false.
func (d *Dispatcher) safePass() (drained bool) {
	start := time.Now()
	defer func() {
		passDuration.Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			err := fmt.Errorf("dispatch pass panic: %v", r)
			passFailures.Inc()
			d.logger.Errorf("error during order dispatch: %v", err)
			monitoring.CaptureException(err, map[string]string{"module": "dispatch"})
			drained = false
		}
	}()
	d.passes.Add(1)
	passesTotal.Inc()
	var n int
	n, drained = d.dispatchOrders()
	if n > 0 {
		d.logger.Debugf("dispatch pass assigned %d orders", n)
	}
	return drained
}

// dispatchOrders assigns available bots to pending orders until one side is
// exhausted and returns the number of assignments made. drained is false
// when a source reported work it could not hand out.
func (d *Dispatcher) dispatchOrders() (assigned int, drained bool) {
	for {
		if !d.orders.HasPending() {
			return assigned, true
		}
		if !d.bots.HasAvailable() {
			return assigned, true
		}
		bot := d.bots.TakeAvailable()
		if bot == nil {
			return assigned, false
		}
		order := d.orders.Next()
		if order == nil {
			d.bots.Restore(bot)
			return assigned, false
		}
		if err := d.bots.Assign(bot, order, d.onComplete); err != nil {
			passFailures.Inc()
			d.logger.Errorf("assign order #%d to bot %d: %v", order.ID, bot.ID, err)
			monitoring.CaptureException(err, map[string]string{"module": "dispatch"})
			continue
		}
		assignmentsTotal.WithLabelValues(string(order.Class)).Inc()
		assigned++
	}
}

func (d *Dispatcher) onComplete() { d.Trigger() }
