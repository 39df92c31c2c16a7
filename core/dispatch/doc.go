// Package dispatch pairs pending orders with available bots.
//
// A dispatch pass greedily drains every currently matchable pair: it takes the
// head of the bot availability FIFO and the highest priority pending order
// (VIP lane first, FIFO within a lane) and assigns them, until either side is
// exhausted.
//
// Passes never overlap. Trigger acts as a try-lock: a caller that finds a pass
// in progress returns immediately instead of blocking or queueing. Completion
// timers fire on their own goroutines, so after releasing the guard the winner
// checks once more for a pending order and an available bot and drains again
// if both exist. Every trigger follows a state change, so work a contested
// trigger left behind is still picked up, while a nested trigger that found
// nothing new costs no extra pass.
//
// A panic or assignment error inside a pass is recovered, logged and reported
// to the monitor. The guard is always released.
package dispatch
