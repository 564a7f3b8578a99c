// Package ws delivers catalog snapshots to connected clients over WebSocket.
// The socket is a one-way push channel: clients receive updateProducts frames
// and send nothing of interest.
package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ecomm-labs/realtime-catalog/internal/broadcast"
	"github.com/ecomm-labs/realtime-catalog/internal/model"
	"github.com/ecomm-labs/realtime-catalog/internal/obs"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// Frame is the wire format pushed to clients, matching the event the
// original frontend listens for.
type Frame struct {
	Event    string          `json:"event"`
	Products []model.Product `json:"products"`
}

// Hub upgrades connections and forwards bus publishes to them. A slow client
// only ever sees the most recent snapshot: a pending stale frame is replaced,
// never queued behind.
type Hub struct {
	bus      *broadcast.Bus
	upgrader websocket.Upgrader
}

// NewHub returns a Hub subscribing its connections to bus.
func NewHub(bus *broadcast.Bus) *Hub {
	return &Hub{
		bus: bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// SubscriberCount reports the number of active bus subscriptions.
func (h *Hub) SubscriberCount() int { return h.bus.SubscriberCount() }

// ServeHTTP upgrades the request and streams updateProducts frames until the
// client goes away. The bus subscription is removed on disconnect.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		obs.Logger.Error("ws_upgrade_failed", "error", err)
		return
	}
	send := make(chan []model.Product, 1)
	sub := h.bus.Subscribe(func(snapshot []model.Product) {
		// Latest wins: drop a pending stale frame rather than block the bus.
		for {
			select {
			case send <- snapshot:
				return
			default:
			}
			select {
			case <-send:
			default:
			}
		}
	})
	obs.Logger.Info("ws_client_connected", "remote", conn.RemoteAddr().String())
	go h.writePump(conn, send)
	h.readPump(conn, sub)
}

// readPump discards inbound messages until the connection drops, then tears
// the subscription down.
func (h *Hub) readPump(conn *websocket.Conn, sub *broadcast.Subscription) {
	defer func() {
		sub.Cancel()
		conn.Close()
		obs.Logger.Info("ws_client_disconnected", "remote", conn.RemoteAddr().String())
	}()
	conn.SetReadLimit(512)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump serializes all writes to the connection: snapshot frames and
// keepalive pings.
func (h *Hub) writePump(conn *websocket.Conn, send <-chan []model.Product) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()
	for {
		select {
		case snapshot := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(Frame{Event: "updateProducts", Products: snapshot}); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
