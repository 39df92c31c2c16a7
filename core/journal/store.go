package journal

import (
	"context"
	"time"

	"github.com/kilianp07/orderbot/core/events"
	"github.com/kilianp07/orderbot/core/model"
)

// Record is one journaled lifecycle event.
type Record struct {
	EventID   string           `json:"event_id"`
	Timestamp time.Time        `json:"timestamp"`
	Event     events.Type      `json:"event"`
	OrderID   int              `json:"order_id,omitempty"`
	BotID     int              `json:"bot_id,omitempty"`
	Class     model.OrderClass `json:"class,omitempty"`
}

// FromEvent converts a bus event into a journal record.
func FromEvent(e events.Event) Record {
	return Record{
		EventID:   e.ID,
		Timestamp: e.At,
		Event:     e.Type,
		OrderID:   e.OrderID,
		BotID:     e.BotID,
		Class:     e.Class,
	}
}

// Query defines filters for retrieving records. Zero values match everything.
type Query struct {
	Start   time.Time
	End     time.Time
	Event   events.Type
	OrderID int
	BotID   int
}

// Match reports whether r satisfies every filter of q.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Event != "" && r.Event != q.Event {
		return false
	}
	if q.OrderID != 0 && r.OrderID != q.OrderID {
		return false
	}
	if q.BotID != 0 && r.BotID != q.BotID {
		return false
	}
	return true
}

// Store persists records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
