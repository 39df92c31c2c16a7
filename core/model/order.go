package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// MaxDurationMS is the largest millisecond count a time.Duration can hold.
const MaxDurationMS = math.MaxInt64 / int64(time.Millisecond)

// ErrDurationRange rejects millisecond counts that are negative or do not fit
// in a time.Duration.
var ErrDurationRange = errors.New("duration_ms out of range")

// DurationFromMS converts a millisecond count from the API, MQTT commands or
// scenarios. Zero stays zero and selects the default processing time.
func DurationFromMS(ms int64) (time.Duration, error) {
	if ms < 0 || ms > MaxDurationMS {
		return 0, fmt.Errorf("%w: %d", ErrDurationRange, ms)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// OrderClass selects the priority lane of an order.
type OrderClass string

const (
	// ClassNormal orders are served after every pending VIP order.
	ClassNormal OrderClass = "NORMAL"
	// ClassVIP orders are expedited.
	ClassVIP OrderClass = "VIP"
)

// ParseOrderClass accepts the class names used by the CLI, API and scenarios.
func ParseOrderClass(s string) (OrderClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vip", "expedited":
		return ClassVIP, nil
	case "normal", "standard":
		return ClassNormal, nil
	default:
		return "", fmt.Errorf("unknown order class %q", s)
	}
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderCompleted  OrderStatus = "COMPLETED"
)

// Order is a unit of work waiting for, or handled by, a bot.
type Order struct {
	ID        int         `json:"id"`
	Class     OrderClass  `json:"class"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	// BotID is zero while the order is not assigned.
	BotID           int           `json:"bot_id,omitempty"`
	ProcessStartAt  *time.Time    `json:"process_start_at,omitempty"`
	ProcessEndAt    *time.Time    `json:"process_end_at,omitempty"`
	ProcessDuration time.Duration `json:"process_duration"`
}

// Clone returns a deep copy safe to hand out to readers.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	if o.ProcessStartAt != nil {
		t := *o.ProcessStartAt
		c.ProcessStartAt = &t
	}
	if o.ProcessEndAt != nil {
		t := *o.ProcessEndAt
		c.ProcessEndAt = &t
	}
	return &c
}

// WaitTime is the time between creation and the start of processing.
func (o Order) WaitTime() (time.Duration, bool) {
	if o.ProcessStartAt == nil {
		return 0, false
	}
	return o.ProcessStartAt.Sub(o.CreatedAt), true
}

// ProcessingTime is the time between processing start and end.
func (o Order) ProcessingTime() (time.Duration, bool) {
	if o.ProcessStartAt == nil || o.ProcessEndAt == nil {
		return 0, false
	}
	return o.ProcessEndAt.Sub(*o.ProcessStartAt), true
}
