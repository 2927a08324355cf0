package daemon

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func websocketConnPair(t *testing.T) (*websocket.Conn, *websocket.Conn, func()) {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	serverConnCh := make(chan *websocket.Conn, 1)
	errCh := make(chan error, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			errCh <- err
			return
		}
		serverConnCh <- conn
	}))

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	var serverConn *websocket.Conn
	select {
	case serverConn = <-serverConnCh:
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for server websocket connection")
	}

	cleanup := func() {
		_ = clientConn.Close()
		_ = serverConn.Close()
		srv.Close()
	}

	return serverConn, clientConn, cleanup
}

func TestEventHub_Broadcast(t *testing.T) {
	serverConn, clientConn, cleanup := websocketConnPair(t)
	defer cleanup()

	hub := NewEventHub(zerolog.Nop())
	hub.Add("client-1", serverConn)

	hub.Broadcast("deployment.deployed", map[string]interface{}{"artifact": "orders"})
	hub.Broadcast("deployment.undeployed", map[string]interface{}{"artifact": "orders"})

	var first EventMessage
	require.NoError(t, clientConn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, clientConn.ReadJSON(&first))

	var second EventMessage
	require.NoError(t, clientConn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, clientConn.ReadJSON(&second))

	assert.Equal(t, "event", first.Type)
	assert.Equal(t, "deployment.deployed", first.Event)
	assert.NotZero(t, first.Seq)
	assert.NotZero(t, first.Timestamp)
	data, ok := first.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "orders", data["artifact"])

	assert.Equal(t, "deployment.undeployed", second.Event)
	assert.Greater(t, second.Seq, first.Seq)
}

func TestEventHub_AddRemove(t *testing.T) {
	serverConn, _, cleanup := websocketConnPair(t)
	defer cleanup()

	hub := NewEventHub(zerolog.Nop())
	assert.Equal(t, 0, hub.Count())

	hub.Add("client-1", serverConn)
	assert.Equal(t, 1, hub.Count())

	hub.Remove("client-1")
	assert.Equal(t, 0, hub.Count())

	hub.Remove("client-1")
	assert.Equal(t, 0, hub.Count())
}

func TestEventHub_BroadcastWithoutClients(t *testing.T) {
	hub := NewEventHub(zerolog.Nop())
	hub.Broadcast("deployment.deployed", map[string]interface{}{"artifact": "orders"})
}

func TestEventHub_BroadcastSurvivesDeadClient(t *testing.T) {
	deadConn, _, deadCleanup := websocketConnPair(t)
	defer deadCleanup()
	liveConn, liveClient, liveCleanup := websocketConnPair(t)
	defer liveCleanup()

	hub := NewEventHub(zerolog.Nop())
	hub.Add("dead", deadConn)
	hub.Add("live", liveConn)

	require.NoError(t, deadConn.Close())

	hub.Broadcast("deployment.deployed", map[string]interface{}{"artifact": "orders"})

	var msg EventMessage
	require.NoError(t, liveClient.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, liveClient.ReadJSON(&msg))
	assert.Equal(t, "deployment.deployed", msg.Event)
}

func TestEventHub_CloseAll(t *testing.T) {
	serverConn, clientConn, cleanup := websocketConnPair(t)
	defer cleanup()

	hub := NewEventHub(zerolog.Nop())
	hub.Add("client-1", serverConn)

	hub.CloseAll()
	assert.Equal(t, 0, hub.Count())

	require.NoError(t, clientConn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := clientConn.ReadMessage()
	assert.Error(t, err)
}
