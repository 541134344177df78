package notifications

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastReachesSubscriber(t *testing.T) {
	hub := NewHub()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve("user-1", w, r)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	// Wait for the server side to register the client.
	require.Eventually(t, func() bool {
		return hub.Subscribers("user-1") == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.Broadcast("user-1", Event{Event: "notification.created", NotificationID: "n-1"})

	var received Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&received))
	require.Equal(t, "notification.created", received.Event)
	require.Equal(t, "n-1", received.NotificationID)
}

func TestHubBroadcastIgnoresUnknownUser(t *testing.T) {
	hub := NewHub()
	// No subscribers registered; must not panic or block.
	hub.Broadcast("ghost", Event{Event: "notification.created"})
	require.Zero(t, hub.Subscribers("ghost"))
}

func TestHostWithoutPort(t *testing.T) {
	require.Equal(t, "example.com", hostWithoutPort("https://example.com:8443"))
	require.Equal(t, "example.com", hostWithoutPort("example.com:80"))
	require.Equal(t, "example.com", hostWithoutPort("example.com"))
	require.Equal(t, "", hostWithoutPort("  "))
}

func TestIsLoopback(t *testing.T) {
	require.True(t, isLoopback("localhost"))
	require.True(t, isLoopback("127.0.0.1"))
	require.False(t, isLoopback("example.com"))
}
