package events

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Session is one connected client capable of receiving broadcast frames.
type Session interface {
	Send(data []byte) error
	Close() error
}

// wsSession wraps a websocket connection with a write lock. Gorilla permits
// only one concurrent writer per connection.
type wsSession struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewSession adopts an upgraded websocket connection.
func NewSession(conn *websocket.Conn) Session {
	return &wsSession{conn: conn}
}

func (s *wsSession) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *wsSession) Close() error {
	return s.conn.Close()
}
