package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRegistry sets up a Registry behind a test HTTP server that upgrades
// connections. Returns the registry, a dial function, and a channel carrying
// the server-side connection for each accepted client.
func testRegistry(t *testing.T, maxClients int) (*Registry, func() *ws.Conn, <-chan *ws.Conn) {
	t.Helper()

	registry := NewRegistry(maxClients, clockwork.NewRealClock())
	t.Cleanup(func() { registry.Stop() })

	serverConns := make(chan *ws.Conn, 16)
	upgrader := ws.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		if err := registry.Register(conn); err != nil {
			return
		}
		serverConns <- conn

		// Read pump to detect disconnects
		go func() {
			defer registry.Unregister(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					break
				}
			}
		}()
	}))
	t.Cleanup(server.Close)

	dial := func() *ws.Conn {
		t.Helper()
		url := "ws" + strings.TrimPrefix(server.URL, "http")
		conn, _, err := ws.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		return conn
	}

	return registry, dial, serverConns
}

// waitForClientCount polls until the registry reports the expected count.
func waitForClientCount(registry *Registry, expected int) bool {
	for range 200 {
		if registry.ClientCount() == expected {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func readEnvelope(t *testing.T, conn *ws.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal(msg, &result))
	return result
}

func TestRegistry_RegisterAndBroadcast(t *testing.T) {
	registry, dial, _ := testRegistry(t, 50)

	conn := dial()
	require.True(t, waitForClientCount(registry, 1))

	registry.Broadcast([]byte(`{"type":"new_question","data":{"id":"q1"}}`))

	result := readEnvelope(t, conn)
	assert.Equal(t, "new_question", result["type"])
}

func TestRegistry_MultipleClients(t *testing.T) {
	registry, dial, _ := testRegistry(t, 50)

	conn1 := dial()
	conn2 := dial()
	conn3 := dial()
	require.True(t, waitForClientCount(registry, 3))

	registry.Broadcast([]byte(`{"type":"question_updated","data":{"id":"q7"}}`))

	for _, conn := range []*ws.Conn{conn1, conn2, conn3} {
		result := readEnvelope(t, conn)
		assert.Equal(t, "question_updated", result["type"])
	}
}

func TestRegistry_FailedConnectionIsIsolated(t *testing.T) {
	registry, dial, serverConns := testRegistry(t, 50)

	conn1 := dial()
	s1 := <-serverConns
	_ = s1
	conn2 := dial()
	s2 := <-serverConns
	conn3 := dial()
	<-serverConns
	require.True(t, waitForClientCount(registry, 3))

	// Kill the second connection server-side so writes to it fail mid-fan-out.
	require.NoError(t, s2.Close())

	registry.Broadcast([]byte(`{"type":"new_question","data":{"id":"q1"}}`))

	// The surviving connections still receive the payload.
	assert.Equal(t, "new_question", readEnvelope(t, conn1)["type"])
	assert.Equal(t, "new_question", readEnvelope(t, conn3)["type"])

	// Keep broadcasting until the dead client's send buffer fills and the
	// registry evicts it; the survivors drain their copies concurrently.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			conn1.SetReadDeadline(time.Now().Add(2 * time.Second))
			if _, _, err := conn1.ReadMessage(); err != nil {
				return
			}
		}
	}()
	go func() {
		for {
			conn3.SetReadDeadline(time.Now().Add(2 * time.Second))
			if _, _, err := conn3.ReadMessage(); err != nil {
				return
			}
		}
	}()

	evicted := false
	for range 200 {
		registry.Broadcast([]byte(`{"type":"question_updated","data":{"id":"q1"}}`))
		if registry.ClientCount() == 2 {
			evicted = true
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	assert.True(t, evicted, "dead connection should be evicted from the active set")
	_ = conn2
}

func TestRegistry_UnregisterIsIdempotent(t *testing.T) {
	registry, dial, serverConns := testRegistry(t, 50)

	conn1 := dial()
	s1 := <-serverConns
	dial()
	<-serverConns
	require.True(t, waitForClientCount(registry, 2))

	registry.Unregister(s1)
	require.True(t, waitForClientCount(registry, 1))

	// Second unregister of the same connection is a no-op.
	registry.Unregister(s1)
	require.True(t, waitForClientCount(registry, 1))

	// The remaining connection still receives broadcasts.
	registry.Broadcast([]byte(`{"type":"new_question","data":{"id":"q9"}}`))

	// conn1 was unregistered; only the second client gets the payload.
	conn1.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := conn1.ReadMessage()
	assert.Error(t, err, "unregistered connection must not receive broadcasts")
}

func TestRegistry_DisconnectRemovesClient(t *testing.T) {
	registry, dial, _ := testRegistry(t, 50)

	conn1 := dial()
	dial()
	require.True(t, waitForClientCount(registry, 2))

	conn1.Close()
	require.True(t, waitForClientCount(registry, 1))
}

func TestRegistry_MaxClients(t *testing.T) {
	registry, dial, serverConns := testRegistry(t, 1)

	dial()
	<-serverConns
	require.True(t, waitForClientCount(registry, 1))

	// Second dial succeeds at the HTTP layer but registration is rejected
	// and the connection closed.
	rejected := dial()
	rejected.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := rejected.ReadMessage()
	assert.Error(t, err)

	assert.Equal(t, 1, registry.ClientCount())
}

func TestRegistry_ClientCountEmpty(t *testing.T) {
	registry, _, _ := testRegistry(t, 50)
	assert.Equal(t, 0, registry.ClientCount())
}

func TestRegistry_BroadcastWithNoClients(t *testing.T) {
	registry, _, _ := testRegistry(t, 50)

	// Must not panic or block.
	registry.Broadcast([]byte(`{"type":"new_question","data":{}}`))
	assert.Equal(t, 0, registry.ClientCount())
}
