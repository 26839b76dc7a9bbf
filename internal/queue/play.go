package queue

import (
	"scuttle/internal/config"
	"scuttle/internal/events"
)

// PlayQueue is the ordered list of track ids awaiting playback. All
// operations are non-blocking; an empty pop simply reports ok=false.
type PlayQueue struct {
	observable[string]
}

func NewPlayQueue(bus *events.Bus) *PlayQueue {
	q := &PlayQueue{}
	q.init(bus, config.PlayQueueName)
	return q
}

// SetAll replaces the whole queue with ids, preserving their order.
func (q *PlayQueue) SetAll(ids []string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.list.clear()
	for _, id := range ids {
		q.list.push(id)
	}
	q.emit(events.ActionSetAll, map[string]any{"content": q.list.items()})
}

// SetFirst puts id at the front of the queue.
func (q *PlayQueue) SetFirst(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.list.insertAt(0, id)
	q.emit(events.ActionSetFirst, map[string]any{"id": id, "content": q.list.items()})
}

// InsertNext places id right after the current head, so it plays after
// whatever is playing now. On an empty or single-item queue this appends.
func (q *PlayQueue) InsertNext(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.list.insertAt(1, id)
	q.emit(events.ActionInsertNext, map[string]any{"id": id, "content": q.list.items()})
}

// Push appends id at the tail.
func (q *PlayQueue) Push(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.list.push(id)
	q.emit(events.ActionPush, map[string]any{"id": id, "content": q.list.items()})
}

// Pop removes and returns the head. ok is false on an empty queue; playback
// never parks waiting for material.
func (q *PlayQueue) Pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	id, ok := q.list.pop()
	if !ok {
		return "", false
	}
	q.emit(events.ActionPop, map[string]any{"id": id, "content": q.list.items()})
	return id, true
}

// RemoveAt deletes the entry at index. Out-of-range indices are ignored.
func (q *PlayQueue) RemoveAt(index int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	id, ok := q.list.removeAt(index)
	if !ok {
		return
	}
	q.emit(events.ActionRemove, map[string]any{"index": index, "id": id, "content": q.list.items()})
}

// Clear empties the queue.
func (q *PlayQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.list.clear()
	q.emit(events.ActionClear, map[string]any{"content": q.list.items()})
}

// SendContent publishes the current contents without mutating them, for
// clients that just connected and need the full state.
func (q *PlayQueue) SendContent() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.emit(events.ActionSendContent, map[string]any{"content": q.list.items()})
}

// Contains reports whether id is queued.
func (q *PlayQueue) Contains(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.list.contains(func(v string) bool { return v == id })
}

// Items returns a snapshot of the queue in order.
func (q *PlayQueue) Items() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.list.items()
}
