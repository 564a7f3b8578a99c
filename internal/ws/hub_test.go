package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecomm-labs/realtime-catalog/internal/broadcast"
	"github.com/ecomm-labs/realtime-catalog/internal/model"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestClientReceivesPublishedSnapshot(t *testing.T) {
	bus := broadcast.New()
	srv := httptest.NewServer(NewHub(bus))
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return bus.SubscriberCount() == 1 }, time.Second, 10*time.Millisecond)

	bus.Publish([]model.Product{{ID: 3, Title: "Mouse"}})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame Frame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "updateProducts", frame.Event)
	require.Len(t, frame.Products, 1)
	assert.Equal(t, 3, frame.Products[0].ID)
}

func TestDisconnectRemovesSubscription(t *testing.T) {
	bus := broadcast.New()
	srv := httptest.NewServer(NewHub(bus))
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return bus.SubscriberCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return bus.SubscriberCount() == 0 }, 2*time.Second, 10*time.Millisecond,
		"subscription must be removed when the transport closes")
}

func TestSlowClientSeesLatestSnapshot(t *testing.T) {
	bus := broadcast.New()
	srv := httptest.NewServer(NewHub(bus))
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return bus.SubscriberCount() == 1 }, time.Second, 10*time.Millisecond)

	// Publish a burst, then a final state after the burst has settled. The
	// client is guaranteed the final state, not every intermediate frame.
	for i := 1; i <= 9; i++ {
		bus.Publish([]model.Product{{ID: i}})
	}
	time.Sleep(100 * time.Millisecond)
	bus.Publish([]model.Product{{ID: 10}})

	deadline := time.Now().Add(2 * time.Second)
	var last Frame
	for time.Now().Before(deadline) {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
		var frame Frame
		if err := conn.ReadJSON(&frame); err != nil {
			break
		}
		last = frame
	}
	require.Len(t, last.Products, 1)
	assert.Equal(t, 10, last.Products[0].ID)
}
