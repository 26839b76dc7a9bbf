// Package queue provides the observable in-memory queues backing playback
// ordering and download scheduling. Every mutation publishes an event while
// the queue lock is still held, so observers see changes in exactly the
// order they were applied.
package queue

import (
	"sync"

	"scuttle/internal/events"
)

// observable is the shared base of the concrete queues: a linked list, a
// mutex, a condition variable for blocking consumers, and an event source
// name. emit runs under the lock on purpose; releasing it first would let
// two mutations publish out of order.
type observable[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	list   list[T]
	bus    *events.Bus
	source string
}

func (o *observable[T]) init(bus *events.Bus, source string) {
	o.bus = bus
	o.source = source
	o.cond = sync.NewCond(&o.mu)
}

// emit publishes an event for this queue. Callers hold o.mu.
func (o *observable[T]) emit(action string, payload map[string]any) {
	o.bus.Publish(events.Event{Source: o.source, Action: action, Payload: payload})
}

func (o *observable[T]) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.list.len()
}
