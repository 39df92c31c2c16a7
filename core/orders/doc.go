// Package orders owns the order lifecycle: creation into one of two priority
// lanes, the single priority-ordered dequeue, completion and requeue.
//
// The VIP lane is always drained before the normal lane and each lane is
// FIFO, except that a requeued order goes back to the front of its lane so it
// keeps precedence over work that arrived after it.
package orders
