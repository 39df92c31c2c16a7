// Package queue provides the FIFO used for order lanes and bot availability.
package queue

// Queue is a FIFO that also supports insertion at the front. It is not safe
// for concurrent use; owners guard it with their own lock.
type Queue[T comparable] struct {
	items []T
}

// New returns an empty queue.
func New[T comparable]() *Queue[T] { return &Queue[T]{} }

// PushBack appends v at the tail.
func (q *Queue[T]) PushBack(v T) { q.items = append(q.items, v) }

// PushFront inserts v ahead of every queued item.
func (q *Queue[T]) PushFront(v T) {
	var zero T
	q.items = append(q.items, zero)
	copy(q.items[1:], q.items)
	q.items[0] = v
}

// PopFront removes and returns the head.
func (q *Queue[T]) PopFront() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	v := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return v, true
}

// Remove deletes the first occurrence of v and reports whether it was found.
func (q *Queue[T]) Remove(v T) bool {
	for i, it := range q.items {
		if it == v {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

func (q *Queue[T]) Len() int { return len(q.items) }

func (q *Queue[T]) Empty() bool { return len(q.items) == 0 }

// Items returns a copy of the queued items, head first.
func (q *Queue[T]) Items() []T {
	out := make([]T, len(q.items))
	copy(out, q.items)
	return out
}
