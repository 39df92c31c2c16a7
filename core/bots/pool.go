// Package bots owns the bot lifecycle: the registry of processing units, the
// FIFO of available bots, job assignment and per-job completion timers.
package bots

import (
	"errors"
	"sync"

	"github.com/kilianp07/orderbot/core/clock"
	"github.com/kilianp07/orderbot/core/events"
	"github.com/kilianp07/orderbot/core/logger"
	"github.com/kilianp07/orderbot/core/model"
	"github.com/kilianp07/orderbot/core/queue"
)

var (
	// ErrInvalidAssignment is returned when Assign is called without a bot or
	// an order. No state is changed.
	ErrInvalidAssignment = errors.New("bots: assignment requires a bot and an order")
	// ErrUnknownBot is returned when the bot was removed before the assignment
	// took place. The order is requeued.
	ErrUnknownBot = errors.New("bots: bot is not registered")
)

// OrderSink receives orders leaving a bot, either finished or handed back.
type OrderSink interface {
	Complete(o *model.Order)
	Requeue(o *model.Order)
}

// Pool tracks bots and their availability. Lock order is pool then order
// sink: the sink must never call back into the pool.
type Pool struct {
	mu        sync.Mutex
	bots      map[int]*model.Bot
	ids       []int
	available *queue.Queue[int]
	nextID    int

	orders OrderSink
	clock  clock.Clock
	pub    events.Publisher
	log    logger.Logger
}

// NewPool creates an empty pool whose finished and orphaned orders go to
// orders.
func NewPool(orders OrderSink, clk clock.Clock, pub events.Publisher, log logger.Logger) *Pool {
	if clk == nil {
		clk = clock.Real{}
	}
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Pool{
		bots:      make(map[int]*model.Bot),
		available: queue.New[int](),
		nextID:    1,
		orders:    orders,
		clock:     clk,
		pub:       pub,
		log:       logger.OrNop(log),
	}
}

// Add registers a new idle bot at the back of the availability FIFO.
func (p *Pool) Add() model.Bot {
	p.mu.Lock()
	b := &model.Bot{ID: p.nextID, Status: model.BotIdle}
	p.nextID++
	p.bots[b.ID] = b
	p.ids = append(p.ids, b.ID)
	p.available.PushBack(b.ID)
	snap := b.Snapshot()
	p.mu.Unlock()

	p.log.Infof("added new bot %d", b.ID)
	p.pub.Publish(events.ForBot(events.BotAdded, p.clock.Now(), b.ID))
	return snap
}

// RemoveNewest removes the registered bot with the largest id. A busy bot has
// its timer stopped and its order requeued before it is deleted. The returned
// snapshot reflects the bot as it was before removal; nil means the pool was
// empty.
func (p *Pool) RemoveNewest() *model.Bot {
	p.mu.Lock()
	if len(p.bots) == 0 {
		p.mu.Unlock()
		return nil
	}
	newest := 0
	for id := range p.bots {
		if id > newest {
			newest = id
		}
	}
	b := p.bots[newest]
	snap := b.Snapshot()
	if b.Timer != nil {
		b.Timer.Stop()
		b.Timer = nil
	}
	delete(p.bots, newest)
	p.ids = removeID(p.ids, newest)
	p.available.Remove(newest)
	o := b.CurrentOrder
	b.CurrentOrder = nil
	b.Status = model.BotIdle
	if o != nil {
		p.orders.Requeue(o)
	}
	p.mu.Unlock()

	p.log.Infof("deleted bot %d", newest)
	p.pub.Publish(events.ForBot(events.BotRemoved, p.clock.Now(), newest))
	return &snap
}

// HasAvailable reports whether an idle bot is waiting for work.
func (p *Pool) HasAvailable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.available.Empty()
}

// TakeAvailable pops the head of the availability FIFO. The caller reserves
// the bot and must assign it (or Restore it) immediately.
func (p *Pool) TakeAvailable() *model.Bot {
	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		id, ok := p.available.PopFront()
		if !ok {
			return nil
		}
		if b, ok := p.bots[id]; ok {
			return b
		}
	}
}

// Restore puts a bot taken with TakeAvailable back at the head of the FIFO.
func (p *Pool) Restore(b *model.Bot) {
	if b == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if cur, ok := p.bots[b.ID]; ok && cur == b && b.CurrentOrder == nil {
		p.available.Remove(b.ID)
		p.available.PushFront(b.ID)
	}
}

// Assign starts processing o on b and arms the completion timer. When the
// timer fires the order is completed, the bot returns to the availability
// FIFO and then, if not nil, is invoked.
func (p *Pool) Assign(b *model.Bot, o *model.Order, then func()) error {
	if b == nil || o == nil {
		p.log.Errorf("invalid assignment: bot=%v order=%v", b != nil, o != nil)
		return ErrInvalidAssignment
	}
	p.mu.Lock()
	if cur, ok := p.bots[b.ID]; !ok || cur != b {
		p.orders.Requeue(o)
		p.mu.Unlock()
		p.log.Warnf("bot %d removed before order #%d could be assigned", b.ID, o.ID)
		return ErrUnknownBot
	}
	if b.Timer != nil {
		p.log.Warnf("bot %d had a stale completion timer", b.ID)
		b.Timer.Stop()
		b.Timer = nil
	}
	if prev := b.CurrentOrder; prev != nil && prev != o {
		p.log.Warnf("bot %d still held order #%d, requeueing it", b.ID, prev.ID)
		p.orders.Requeue(prev)
	}
	p.available.Remove(b.ID)

	now := p.clock.Now()
	b.Status = model.BotBusy
	b.CurrentOrder = o
	o.BotID = b.ID
	o.Status = model.OrderProcessing
	if o.ProcessStartAt == nil {
		o.ProcessStartAt = &now
	}
	b.Timer = p.clock.AfterFunc(o.ProcessDuration, func() {
		if p.complete(b, o) && then != nil {
			then()
		}
	})
	ev := events.ForOrder(events.OrderAssigned, now, o)
	p.mu.Unlock()

	p.log.Infof("assigned order #%d to bot %d", o.ID, b.ID)
	p.pub.Publish(ev)
	return nil
}

// complete runs when a completion timer fires. It does nothing unless b is
// still registered and still working on o.
func (p *Pool) complete(b *model.Bot, o *model.Order) bool {
	p.mu.Lock()
	if cur, ok := p.bots[b.ID]; !ok || cur != b || b.CurrentOrder != o {
		p.mu.Unlock()
		p.log.Debugf("ignoring stale completion of order #%d on bot %d", o.ID, b.ID)
		return false
	}
	p.orders.Complete(o)
	b.CurrentOrder = nil
	b.Status = model.BotIdle
	b.Timer = nil
	p.available.PushBack(b.ID)
	p.mu.Unlock()

	p.pub.Publish(events.ForBot(events.BotIdle, p.clock.Now(), b.ID))
	return true
}

// List returns snapshots of all bots in registration order.
func (p *Pool) List() []model.Bot {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.Bot, 0, len(p.ids))
	for _, id := range p.ids {
		out = append(out, p.bots[id].Snapshot())
	}
	return out
}

// ListBusy returns snapshots of the busy bots in registration order.
func (p *Pool) ListBusy() []model.Bot {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []model.Bot
	for _, id := range p.ids {
		if b := p.bots[id]; b.Status == model.BotBusy {
			out = append(out, b.Snapshot())
		}
	}
	return out
}

// Available returns the ids waiting in the availability FIFO, head first.
func (p *Pool) Available() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.available.Items()
}

// Len returns the number of registered bots.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.bots)
}

func removeID(ids []int, id int) []int {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
