// Package controller is the entry point used by front-ends. Every mutation
// is followed by a dispatch trigger so new work is matched immediately.
package controller

import (
	"context"
	"sort"
	"time"

	"github.com/kilianp07/orderbot/core/bots"
	"github.com/kilianp07/orderbot/core/clock"
	"github.com/kilianp07/orderbot/core/dispatch"
	"github.com/kilianp07/orderbot/core/events"
	"github.com/kilianp07/orderbot/core/logger"
	"github.com/kilianp07/orderbot/core/model"
	"github.com/kilianp07/orderbot/core/orders"
	"github.com/kilianp07/orderbot/core/prediction"
	"github.com/kilianp07/orderbot/core/report"
)

// Config defines the order numbering and default processing duration.
type Config struct {
	FirstOrderID   int
	ProcessingTime time.Duration
}

// Snapshot is a point-in-time view of the system for display.
type Snapshot struct {
	At        time.Time      `json:"at"`
	Pending   []model.Order  `json:"pending"`
	Completed []model.Order  `json:"completed"`
	Bots      []model.Bot    `json:"bots"`
	Available []int          `json:"available"`
	Stats     orders.Stats   `json:"stats"`
	Report    report.Summary `json:"report"`

	// Forecast holds one ETA per pending order, empty without bots.
	Forecast []prediction.ETA `json:"forecast"`
}

// Controller owns the order registry, the bot pool and the dispatcher.
type Controller struct {
	clock      clock.Clock
	orders     *orders.Registry
	bots       *bots.Pool
	dispatcher *dispatch.Dispatcher
	predictor  prediction.Engine
	log        logger.Logger
}

// New wires a registry, a pool and a dispatcher together. Nil collaborators
// default to the wall clock, a discarding publisher and a no-op logger.
func New(cfg Config, clk clock.Clock, pub events.Publisher, log logger.Logger) (*Controller, error) {
	if clk == nil {
		clk = clock.Real{}
	}
	log = logger.OrNop(log)
	reg := orders.NewRegistry(orders.Config{FirstID: cfg.FirstOrderID, DefaultDuration: cfg.ProcessingTime}, clk, pub, log)
	pool := bots.NewPool(reg, clk, pub, log)
	d, err := dispatch.NewDispatcher(reg, pool, log)
	if err != nil {
		return nil, err
	}
	return &Controller{clock: clk, orders: reg, bots: pool, dispatcher: d, predictor: prediction.Greedy{}, log: log}, nil
}

// SubmitOrder creates an order and dispatches it if a bot is idle. A
// non-positive duration selects the default processing time.
func (c *Controller) SubmitOrder(class model.OrderClass, duration time.Duration) model.Order {
	o := c.orders.Submit(class, duration)
	id := o.ID
	c.dispatcher.Trigger()
	if snap, ok := c.findOrder(id); ok {
		return snap
	}
	return model.Order{ID: id, Class: class, Status: model.OrderPending}
}

// AddBot registers a new idle bot and dispatches pending work to it.
func (c *Controller) AddBot() model.Bot {
	b := c.bots.Add()
	c.dispatcher.Trigger()
	for _, cur := range c.bots.List() {
		if cur.ID == b.ID {
			return cur
		}
	}
	return b
}

// RemoveBot destroys the newest bot. Its in-flight order is requeued and
// dispatched to another idle bot if one exists. It returns nil when there is
// no bot.
func (c *Controller) RemoveBot() *model.Bot {
	b := c.bots.RemoveNewest()
	if b == nil {
		return nil
	}
	c.dispatcher.Trigger()
	return b
}

// Trigger runs a dispatch pass.
func (c *Controller) Trigger() bool { return c.dispatcher.Trigger() }

// Run polls the dispatcher every interval until ctx is canceled.
func (c *Controller) Run(ctx context.Context, interval time.Duration) {
	c.dispatcher.Run(ctx, interval)
}

// ProcessingTime returns the default processing duration.
func (c *Controller) ProcessingTime() time.Duration { return c.orders.DefaultDuration() }

// Stats returns the per-state order counts.
func (c *Controller) Stats() orders.Stats { return c.orders.Stats() }

// Snapshot returns pending orders (VIP first), completed orders, and bots
// with busy bots first, then by id.
func (c *Controller) Snapshot() Snapshot {
	completed := c.orders.Completed()
	bs := c.bots.List()
	sort.SliceStable(bs, func(i, j int) bool {
		bi, bj := bs[i].Status == model.BotBusy, bs[j].Status == model.BotBusy
		if bi != bj {
			return bi
		}
		return bs[i].ID < bs[j].ID
	})
	now := c.clock.Now()
	pending := c.orders.Pending()
	return Snapshot{
		At:        now,
		Pending:   pending,
		Completed: completed,
		Bots:      bs,
		Available: c.bots.Available(),
		Stats:     c.orders.Stats(),
		Report:    report.Summarize(completed),
		Forecast:  c.predictor.Forecast(prediction.State{Now: now, Pending: pending, Bots: bs}),
	}
}

// Estimate predicts when an order of the given class submitted now would
// start and end. A non-positive duration selects the default. ok is false
// when there is no bot.
func (c *Controller) Estimate(class model.OrderClass, duration time.Duration) (prediction.ETA, bool) {
	if duration <= 0 {
		duration = c.orders.DefaultDuration()
	}
	st := prediction.State{Now: c.clock.Now(), Pending: c.orders.Pending(), Bots: c.bots.List()}
	return c.predictor.Estimate(st, class, duration)
}

// Report summarizes wait and processing times of completed orders.
func (c *Controller) Report() report.Summary {
	return report.Summarize(c.orders.Completed())
}

// findOrder looks the order up in the direction orders move: pending, then
// processing, then completed.
func (c *Controller) findOrder(id int) (model.Order, bool) {
	for _, o := range c.orders.Pending() {
		if o.ID == id {
			return o, true
		}
	}
	for _, b := range c.bots.ListBusy() {
		if b.CurrentOrder != nil && b.CurrentOrder.ID == id {
			return *b.CurrentOrder, true
		}
	}
	for _, o := range c.orders.Completed() {
		if o.ID == id {
			return o, true
		}
	}
	return model.Order{}, false
}
