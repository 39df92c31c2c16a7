package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/orderbot/core/model"
)

// Type names a lifecycle signal.
type Type string

const (
	OrderCreated   Type = "order.created"
	OrderAssigned  Type = "order.assigned"
	OrderCompleted Type = "order.completed"
	OrderRequeued  Type = "order.requeued"
	BotAdded       Type = "bot.added"
	BotIdle        Type = "bot.idle"
	BotRemoved     Type = "bot.removed"
)

// WakesDispatcher reports whether the signal can make a new match possible.
func (t Type) WakesDispatcher() bool {
	switch t {
	case OrderCreated, OrderRequeued, BotAdded, BotIdle:
		return true
	default:
		return false
	}
}

// Event is one emitted signal. Order, when set, is a snapshot taken at
// emission time.
type Event struct {
	ID      string           `json:"id"`
	Type    Type             `json:"type"`
	At      time.Time        `json:"at"`
	OrderID int              `json:"order_id,omitempty"`
	BotID   int              `json:"bot_id,omitempty"`
	Class   model.OrderClass `json:"class,omitempty"`
	Order   *model.Order     `json:"order,omitempty"`
}

// Publisher receives emitted events. Implementations must not block.
type Publisher interface {
	Publish(Event)
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}

// ForOrder builds an event carrying a snapshot of o.
func ForOrder(t Type, at time.Time, o *model.Order) Event {
	return Event{
		ID:      uuid.NewString(),
		Type:    t,
		At:      at,
		OrderID: o.ID,
		BotID:   o.BotID,
		Class:   o.Class,
		Order:   o.Clone(),
	}
}

// ForBot builds a bot event.
func ForBot(t Type, at time.Time, botID int) Event {
	return Event{ID: uuid.NewString(), Type: t, At: at, BotID: botID}
}
