package integration

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ecomm-labs/realtime-catalog/internal/model"
	"github.com/ecomm-labs/realtime-catalog/internal/ws"
)

func (e *env) dialWS(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUpdate reads frames until one carries the updateProducts event or the
// deadline passes.
func readUpdate(t *testing.T, conn *websocket.Conn) ws.Frame {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatalf("set deadline: %v", err)
	}
	for {
		var frame ws.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			t.Fatalf("read frame: %v", err)
		}
		if frame.Event == "updateProducts" {
			return frame
		}
	}
}

func TestMutationPushedToConnectedClient(t *testing.T) {
	e := startService(t)
	conn := e.dialWS(t)
	time.Sleep(50 * time.Millisecond) // let the subscription register

	p := e.createProduct(t, "LAMP-1")

	frame := readUpdate(t, conn)
	if len(frame.Products) != 1 || frame.Products[0].ID != p.ID {
		t.Fatalf("unexpected snapshot: %+v", frame.Products)
	}
}

func TestExternalEditPushedToConnectedClient(t *testing.T) {
	e := startService(t)
	conn := e.dialWS(t)
	time.Sleep(50 * time.Millisecond)

	external := []model.Product{{
		ID: 55, Title: "Desk", Description: "Standing desk", Code: "DESK-1",
		Price: 400, Status: true, Stock: 1, Category: "furniture",
	}}
	raw, err := json.MarshalIndent(external, "", "  ")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(e.productsPath, raw, 0o644); err != nil {
		t.Fatalf("external write: %v", err)
	}

	frame := readUpdate(t, conn)
	if len(frame.Products) != 1 || frame.Products[0].ID != 55 {
		t.Fatalf("unexpected snapshot: %+v", frame.Products)
	}
}

func TestEveryClientReceivesTheBroadcast(t *testing.T) {
	e := startService(t)
	conns := make([]*websocket.Conn, 3)
	for i := range conns {
		conns[i] = e.dialWS(t)
	}
	time.Sleep(50 * time.Millisecond)

	e.createProduct(t, "LAMP-1")

	for i, conn := range conns {
		frame := readUpdate(t, conn)
		if len(frame.Products) != 1 {
			t.Fatalf("client %d: unexpected snapshot: %+v", i, frame.Products)
		}
	}
}

func TestDisconnectedClientDoesNotBlockMutations(t *testing.T) {
	e := startService(t)
	conn := e.dialWS(t)
	time.Sleep(50 * time.Millisecond)
	conn.Close()

	// Publishing into a dead connection must not affect the write path.
	for i := 0; i < 5; i++ {
		e.createProduct(t, fmt.Sprintf("LAMP-%d", i))
	}
	if got := e.listProducts(t); len(got) != 5 {
		t.Fatalf("expected 5 products, got %d", len(got))
	}
}
