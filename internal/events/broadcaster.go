package events

import (
	"log/slog"
	"sync"
)

// Broadcaster fans bus events out to every connected websocket session.
// Sessions come and go concurrently with broadcasts, so the set is guarded
// by a mutex.
type Broadcaster struct {
	mu       sync.Mutex
	sessions map[Session]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{sessions: make(map[Session]struct{})}
}

// Connect adds a session to the broadcast set. Adding a session twice is a
// no-op.
func (b *Broadcaster) Connect(s Session) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[s] = struct{}{}
}

// Disconnect removes a session. Removing an absent session is a no-op.
func (b *Broadcaster) Disconnect(s Session) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, s)
}

// Count reports how many sessions are currently connected.
func (b *Broadcaster) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}

// Broadcast encodes the event once and sends the frame to every session.
// Sessions whose send fails are closed and dropped after the loop so one
// dead client never blocks or skips delivery to the rest.
func (b *Broadcaster) Broadcast(event Event) error {
	data, err := MessageFromEvent(event).Encode()
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var failed []Session
	for s := range b.sessions {
		if err := s.Send(data); err != nil {
			slog.Warn("Dropping unresponsive session", "source", event.Source, "action", event.Action, "error", err)
			failed = append(failed, s)
		}
	}
	for _, s := range failed {
		s.Close()
		delete(b.sessions, s)
	}
	return nil
}
