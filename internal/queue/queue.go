// Package queue provides a generic thread-safe FIFO with an optional bound.
package queue

import "sync"

// Queue is a thread-safe FIFO. A bounded queue drops its oldest items to
// make room for new ones.
type Queue[T any] struct {
	mu       sync.Mutex
	items    []T
	capacity int
}

// New creates an empty queue. capacity <= 0 means unbounded.
func New[T any](capacity int) *Queue[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Queue[T]{items: make([]T, 0, min(capacity, 1024)), capacity: capacity}
}

// Push appends items and returns how many old items were evicted.
func (q *Queue[T]) Push(items ...T) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
	if q.capacity == 0 || len(q.items) <= q.capacity {
		return 0
	}
	evicted := len(q.items) - q.capacity
	var zero T
	for i := range evicted {
		q.items[i] = zero
	}
	q.items = q.items[evicted:]
	return evicted
}

// Pop removes and returns the oldest item.
func (q *Queue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	item := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return item, true
}

// Last returns the newest item without removing it.
func (q *Queue[T]) Last() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	return q.items[len(q.items)-1], true
}

func (q *Queue[T]) Empty() bool {
	return q.Len() == 0
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Cap returns the bound, 0 when unbounded.
func (q *Queue[T]) Cap() int {
	return q.capacity
}

func (q *Queue[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
}

// Items returns a copy of the queued items, oldest first.
func (q *Queue[T]) Items() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]T, len(q.items))
	copy(out, q.items)
	return out
}

// Drain removes and returns up to n items, all of them when n <= 0.
func (q *Queue[T]) Drain(n int) []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n <= 0 || n >= len(q.items) {
		out := q.items
		q.items = nil
		return out
	}
	out := make([]T, n)
	copy(out, q.items[:n])
	q.items = q.items[n:]
	return out
}
