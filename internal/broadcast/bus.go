// Package broadcast fans full catalog snapshots out to subscribers. Delivery
// is fire-and-forget: no history replay, no queuing, no guarantees.
package broadcast

import (
	"sync"

	"github.com/ecomm-labs/realtime-catalog/internal/model"
	"github.com/ecomm-labs/realtime-catalog/internal/obs"
)

// Handler receives the full catalog snapshot on every publish.
type Handler func(snapshot []model.Product)

// Bus is the publish/subscribe channel between the catalog store and the
// transport layer.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]Handler
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[int]Handler)}
}

// Subscription identifies a registered handler.
type Subscription struct {
	bus *Bus
	id  int
}

// Cancel removes the handler. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.bus.mu.Lock()
	delete(s.bus.subs, s.id)
	s.bus.mu.Unlock()
}

// Subscribe registers handler for every future publish.
func (b *Bus) Subscribe(handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.subs[b.next] = handler
	return &Subscription{bus: b, id: b.next}
}

// Publish delivers snapshot to every current subscriber. Each handler runs in
// its own goroutine; a panicking handler is logged and does not affect the
// others. Delivery order across handlers is unspecified.
func (b *Bus) Publish(snapshot []model.Product) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.subs))
	for _, h := range b.subs {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()
	for _, h := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					obs.Logger.Error("broadcast_handler_panic", "panic", r)
				}
			}()
			h(snapshot)
		}(h)
	}
}

// SubscriberCount reports the number of registered handlers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
