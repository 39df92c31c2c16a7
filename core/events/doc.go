// Package events defines the lifecycle signals emitted by the order registry
// and the bot pool.
//
// Signal names are a contract for observers such as status displays:
//   - order.created, order.completed, order.requeued
//   - bot.added, bot.idle
//
// order.assigned and bot.removed are informational and never wake the
// dispatcher.
package events
