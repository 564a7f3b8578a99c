package broadcast

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecomm-labs/realtime-catalog/internal/model"
)

func snapshot(ids ...int) []model.Product {
	out := make([]model.Product, len(ids))
	for i, id := range ids {
		out[i] = model.Product{ID: id}
	}
	return out
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := New()
	got1 := make(chan []model.Product, 1)
	got2 := make(chan []model.Product, 1)
	b.Subscribe(func(s []model.Product) { got1 <- s })
	b.Subscribe(func(s []model.Product) { got2 <- s })

	b.Publish(snapshot(1, 2))

	for _, ch := range []chan []model.Product{got1, got2} {
		select {
		case s := <-ch:
			assert.Len(t, s, 2)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive snapshot")
		}
	}
}

func TestPanickingHandlerDoesNotAffectOthers(t *testing.T) {
	b := New()
	b.Subscribe(func([]model.Product) { panic("boom") })
	got := make(chan []model.Product, 1)
	b.Subscribe(func(s []model.Product) { got <- s })

	b.Publish(snapshot(7))

	select {
	case s := <-got:
		require.Len(t, s, 1)
		assert.Equal(t, 7, s[0].ID)
	case <-time.After(time.Second):
		t.Fatal("healthy subscriber did not receive snapshot")
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	b := New()
	var calls atomic.Int32
	sub := b.Subscribe(func([]model.Product) { calls.Add(1) })

	b.Publish(snapshot(1))
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 10*time.Millisecond)

	sub.Cancel()
	sub.Cancel() // idempotent
	assert.Equal(t, 0, b.SubscriberCount())

	b.Publish(snapshot(2))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}
