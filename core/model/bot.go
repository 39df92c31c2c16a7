package model

import "github.com/kilianp07/orderbot/core/clock"

// BotStatus reports whether a bot is working on an order.
type BotStatus string

const (
	BotIdle BotStatus = "IDLE"
	BotBusy BotStatus = "BUSY"
)

// Bot is a processing unit. A busy bot holds exactly one order and one armed
// completion timer; an idle bot holds neither.
type Bot struct {
	ID           int         `json:"id"`
	Status       BotStatus   `json:"status"`
	CurrentOrder *Order      `json:"current_order,omitempty"`
	Timer        clock.Timer `json:"-"`
}

// Snapshot copies the bot for reporting. The timer handle is not exposed.
func (b *Bot) Snapshot() Bot {
	return Bot{ID: b.ID, Status: b.Status, CurrentOrder: b.CurrentOrder.Clone()}
}
