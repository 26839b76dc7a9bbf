package endpoints

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"scuttle/internal/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Same-device personal deployment; the tunnel fronts everything.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWebsocket upgrades the connection and registers it with the
// broadcaster. Clients only listen; the read loop exists to notice the
// disconnect.
func HandleWebsocket(broadcaster *events.Broadcaster) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("Websocket upgrade failed", "error", err)
			return
		}

		session := events.NewSession(conn)
		broadcaster.Connect(session)
		slog.Info("Websocket client connected", "remote", conn.RemoteAddr())

		go func() {
			defer func() {
				broadcaster.Disconnect(session)
				session.Close()
				slog.Info("Websocket client disconnected", "remote", conn.RemoteAddr())
			}()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}
