package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveHub(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(conn, "staff")
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		hub.Unregister(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBroadcastReachesClients(t *testing.T) {
	hub := NewHub()
	srv := serveHub(t, hub)
	conn := dial(t, srv)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(Message{Event: EventBookingCreated, Data: map[string]interface{}{"table_id": 3}})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var got Message
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, EventBookingCreated, got.Event)
	assert.Equal(t, float64(3), got.Data.(map[string]interface{})["table_id"])
}

func TestUnregisterOnDisconnect(t *testing.T) {
	hub := NewHub()
	srv := serveHub(t, hub)
	conn := dial(t, srv)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestNilHubBroadcastIsNoop(t *testing.T) {
	var hub *Hub
	assert.NotPanics(t, func() {
		hub.Broadcast(Message{Event: EventTableUpdate})
	})
}
