package orders

import (
	"sync"
	"time"

	"github.com/kilianp07/orderbot/core/clock"
	"github.com/kilianp07/orderbot/core/events"
	"github.com/kilianp07/orderbot/core/logger"
	"github.com/kilianp07/orderbot/core/model"
	"github.com/kilianp07/orderbot/core/queue"
)

const (
	// DefaultFirstID is the id given to the first order.
	DefaultFirstID = 101
	// DefaultProcessDuration is used when an order is submitted without one.
	DefaultProcessDuration = 10 * time.Second
)

// Config defines order numbering and the default processing duration.
type Config struct {
	FirstID         int           `json:"first_id"`
	DefaultDuration time.Duration `json:"-"`
}

// Stats counts orders per lifecycle state. Pending+Processing+Completed always
// equals Total.
type Stats struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Total      int `json:"total"`
}

// Registry owns the priority lanes and the completed list.
type Registry struct {
	mu        sync.Mutex
	vip       *queue.Queue[*model.Order]
	normal    *queue.Queue[*model.Order]
	completed []*model.Order
	nextID    int
	total     int
	duration  time.Duration

	clock clock.Clock
	pub   events.Publisher
	log   logger.Logger
}

// NewRegistry creates an empty registry. Nil collaborators are replaced by the
// wall clock, a discarding publisher and a no-op logger.
func NewRegistry(cfg Config, clk clock.Clock, pub events.Publisher, log logger.Logger) *Registry {
	if cfg.FirstID <= 0 {
		cfg.FirstID = DefaultFirstID
	}
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = DefaultProcessDuration
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Registry{
		vip:      queue.New[*model.Order](),
		normal:   queue.New[*model.Order](),
		nextID:   cfg.FirstID,
		duration: cfg.DefaultDuration,
		clock:    clk,
		pub:      pub,
		log:      logger.OrNop(log),
	}
}

// Submit creates a pending order of the given class and appends it to its
// lane. A non-positive duration selects the registry default.
func (r *Registry) Submit(class model.OrderClass, duration time.Duration) *model.Order {
	if duration <= 0 {
		duration = r.duration
	}
	now := r.clock.Now()
	r.mu.Lock()
	o := &model.Order{
		ID:              r.nextID,
		Class:           class,
		Status:          model.OrderPending,
		CreatedAt:       now,
		ProcessDuration: duration,
	}
	r.nextID++
	r.total++
	r.lane(class).PushBack(o)
	ev := events.ForOrder(events.OrderCreated, now, o)
	r.mu.Unlock()

	r.log.Infof("new %s order #%d", class, o.ID)
	r.pub.Publish(ev)
	return o
}

// HasPending reports whether either lane holds an order.
func (r *Registry) HasPending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.vip.Empty() || !r.normal.Empty()
}

// Next pops the oldest VIP order, or the oldest normal order when the VIP lane
// is empty. It returns nil when nothing is pending.
func (r *Registry) Next() *model.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.vip.PopFront(); ok {
		return o
	}
	if o, ok := r.normal.PopFront(); ok {
		return o
	}
	return nil
}

// Complete marks o completed and appends it to the completed list. The caller
// must hold an order previously returned by Next and complete it once.
func (r *Registry) Complete(o *model.Order) {
	now := r.clock.Now()
	r.mu.Lock()
	o.Status = model.OrderCompleted
	o.ProcessEndAt = &now
	r.completed = append(r.completed, o)
	ev := events.ForOrder(events.OrderCompleted, now, o)
	r.mu.Unlock()

	r.log.Infof("order #%d completed by bot %d", o.ID, o.BotID)
	r.pub.Publish(ev)
}

// Requeue returns an in-flight order to the front of its lane and clears its
// assignment.
func (r *Registry) Requeue(o *model.Order) {
	now := r.clock.Now()
	r.mu.Lock()
	o.Status = model.OrderPending
	o.BotID = 0
	o.ProcessStartAt = nil
	o.ProcessEndAt = nil
	r.lane(o.Class).PushFront(o)
	ev := events.ForOrder(events.OrderRequeued, now, o)
	r.mu.Unlock()

	r.log.Infof("order #%d requeued", o.ID)
	r.pub.Publish(ev)
}

// Pending returns copies of the pending orders, VIP lane first.
func (r *Registry) Pending() []model.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Order, 0, r.vip.Len()+r.normal.Len())
	for _, o := range r.vip.Items() {
		out = append(out, *o.Clone())
	}
	for _, o := range r.normal.Items() {
		out = append(out, *o.Clone())
	}
	return out
}

// Completed returns copies of the completed orders in completion order.
func (r *Registry) Completed() []model.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Order, 0, len(r.completed))
	for _, o := range r.completed {
		out = append(out, *o.Clone())
	}
	return out
}

// Stats returns the per-state order counts.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	pending := r.vip.Len() + r.normal.Len()
	return Stats{
		Pending:    pending,
		Processing: r.total - pending - len(r.completed),
		Completed:  len(r.completed),
		Total:      r.total,
	}
}

// DefaultDuration returns the processing duration applied when none is given.
func (r *Registry) DefaultDuration() time.Duration { return r.duration }

func (r *Registry) lane(c model.OrderClass) *queue.Queue[*model.Order] {
	if c == model.ClassVIP {
		return r.vip
	}
	return r.normal
}
