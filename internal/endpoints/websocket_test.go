package endpoints

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scuttle/internal/events"
)

func TestWebsocketReceivesBroadcasts(t *testing.T) {
	broadcaster := events.NewBroadcaster()
	router := gin.New()
	router.GET("/ws", HandleWebsocket(broadcaster))

	server := httptest.NewServer(router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.Eventually(t, func() bool {
		return broadcaster.Count() == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, broadcaster.Broadcast(events.Event{
		Source:  "play_queue",
		Action:  events.ActionPush,
		Payload: map[string]any{"id": "YT___abc"},
	}))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg events.Message
	require.NoError(t, json.Unmarshal(frame, &msg))
	assert.Equal(t, "play_queue", msg.Source)
	assert.Equal(t, events.ActionPush, msg.Action)
	assert.Equal(t, "YT___abc", msg.Payload["id"])
}

func TestWebsocketDisconnectRemovesSession(t *testing.T) {
	broadcaster := events.NewBroadcaster()
	router := gin.New()
	router.GET("/ws", HandleWebsocket(broadcaster))

	server := httptest.NewServer(router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Eventually(t, func() bool {
		return broadcaster.Count() == 1
	}, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool {
		return broadcaster.Count() == 0
	}, time.Second, 10*time.Millisecond)
}
