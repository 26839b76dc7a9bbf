package queue

import (
	"scuttle/internal/config"
	"scuttle/internal/events"
	"scuttle/internal/models"
)

// DownloadQueue holds pending fetch jobs. Unlike the play queue its Pop
// blocks: the worker parks here until material arrives. Enqueue operations
// suppress duplicates by job identifier so a track cannot be fetched twice
// concurrently.
type DownloadQueue struct {
	observable[*models.DownloadJob]
}

func NewDownloadQueue(bus *events.Bus) *DownloadQueue {
	q := &DownloadQueue{}
	q.init(bus, config.DownloadQueueName)
	return q
}

// Push appends job at the tail. Returns false without enqueueing when a job
// with the same identifier is already queued. The containment check and the
// insert happen under one lock acquisition, so concurrent pushes of the same
// identifier admit exactly one.
func (q *DownloadQueue) Push(job *models.DownloadJob) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.containsLocked(job.Identifier()) {
		return false
	}
	q.list.push(job)
	q.emit(events.ActionPush, map[string]any{"job": job, "content": q.list.items()})
	q.cond.Signal()
	return true
}

// SetFirst places job at the very front, ahead of whatever is being fetched
// next. Duplicate identifiers are rejected like Push.
func (q *DownloadQueue) SetFirst(job *models.DownloadJob) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.containsLocked(job.Identifier()) {
		return false
	}
	q.list.insertAt(0, job)
	q.emit(events.ActionSetFirst, map[string]any{"job": job, "content": q.list.items()})
	q.cond.Signal()
	return true
}

// InsertNext places job right after the current head, so it is fetched once
// the job in front of it finishes. On an empty or single-item queue this
// appends. Duplicate identifiers are rejected like Push.
func (q *DownloadQueue) InsertNext(job *models.DownloadJob) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.containsLocked(job.Identifier()) {
		return false
	}
	q.list.insertAt(1, job)
	q.emit(events.ActionInsertNext, map[string]any{"job": job, "content": q.list.items()})
	q.cond.Signal()
	return true
}

// PushSentinel enqueues the shutdown sentinel, bypassing duplicate
// suppression so it always lands even when an empty job is somehow present.
// No event is emitted; the sentinel is internal and never shown to clients.
func (q *DownloadQueue) PushSentinel() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.list.push(models.SentinelJob())
	q.cond.Signal()
}

// Pop blocks until a job is available, then removes and returns the head.
// Popping the shutdown sentinel emits nothing, mirroring PushSentinel.
func (q *DownloadQueue) Pop() *models.DownloadJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.list.len() == 0 {
		q.cond.Wait()
	}
	job, _ := q.list.pop()
	if job.Identifier() != "" {
		q.emit(events.ActionPop, map[string]any{"job": job, "content": q.list.items()})
	}
	return job
}

// RemoveAt deletes the entry at index. Out-of-range indices are ignored.
func (q *DownloadQueue) RemoveAt(index int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.list.removeAt(index)
	if !ok {
		return
	}
	q.emit(events.ActionRemove, map[string]any{"index": index, "job": job, "content": q.list.items()})
}

// Clear empties the queue.
func (q *DownloadQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.list.clear()
	q.emit(events.ActionClear, map[string]any{"content": q.list.items()})
}

// SendContent publishes the current contents without mutating them.
func (q *DownloadQueue) SendContent() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.emit(events.ActionSendContent, map[string]any{"content": q.list.items()})
}

// Contains reports whether a job with the given identifier is queued.
func (q *DownloadQueue) Contains(identifier string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.containsLocked(identifier)
}

// Items returns a snapshot of the queue in order.
func (q *DownloadQueue) Items() []*models.DownloadJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.list.items()
}

func (q *DownloadQueue) containsLocked(identifier string) bool {
	return q.list.contains(func(j *models.DownloadJob) bool {
		return j.Identifier() == identifier
	})
}
