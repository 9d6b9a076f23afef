package eventbus

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type shipmentEvent struct {
	OrderID uint64
	Status  string
}

type settlementEvent struct {
	Amount int64
}

func TestEventBus_Subscribe_And_Publish(t *testing.T) {
	bus := New()

	var received shipmentEvent
	var wg sync.WaitGroup
	wg.Add(1)

	bus.Subscribe(shipmentEvent{}, func(event interface{}) {
		if e, ok := event.(shipmentEvent); ok {
			received = e
			wg.Done()
		}
	})

	bus.Publish(shipmentEvent{OrderID: 7, Status: "in_transit"})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		assert.Equal(t, uint64(7), received.OrderID)
		assert.Equal(t, "in_transit", received.Status)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestEventBus_PublishSync(t *testing.T) {
	bus := New()

	var received shipmentEvent

	bus.Subscribe(shipmentEvent{}, func(event interface{}) {
		if e, ok := event.(shipmentEvent); ok {
			received = e
		}
	})

	bus.PublishSync(shipmentEvent{OrderID: 3, Status: "delivered"})

	assert.Equal(t, "delivered", received.Status)
}

func TestEventBus_PublishSync_Order(t *testing.T) {
	bus := New()

	var got []int
	bus.Subscribe(settlementEvent{}, func(event interface{}) {
		got = append(got, 1)
	})
	bus.Subscribe(settlementEvent{}, func(event interface{}) {
		got = append(got, 2)
	})

	bus.PublishSync(settlementEvent{Amount: 10})

	assert.Equal(t, []int{1, 2}, got)
}

func TestEventBus_SubscribeFunc(t *testing.T) {
	bus := New()

	var received settlementEvent
	bus.SubscribeFunc(func(evt settlementEvent) {
		received = evt
	})

	bus.PublishSync(settlementEvent{Amount: 42})
	assert.Equal(t, int64(42), received.Amount)

	// Pointer publish reaches value subscribers too.
	bus.PublishSync(&settlementEvent{Amount: 99})
	assert.Equal(t, int64(99), received.Amount)
}

func TestEventBus_MultipleSubscribers(t *testing.T) {
	bus := New()

	var count int
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(3)

	handler := func(event interface{}) {
		mu.Lock()
		count++
		mu.Unlock()
		wg.Done()
	}

	bus.Subscribe(shipmentEvent{}, handler)
	bus.Subscribe(shipmentEvent{}, handler)
	bus.Subscribe(shipmentEvent{}, handler)

	bus.Publish(shipmentEvent{OrderID: 1})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		mu.Lock()
		assert.Equal(t, 3, count)
		mu.Unlock()
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for events")
	}
}

func TestEventBus_DifferentEventTypes(t *testing.T) {
	bus := New()

	var gotShipment, gotSettlement bool

	bus.Subscribe(shipmentEvent{}, func(event interface{}) {
		gotShipment = true
	})
	bus.Subscribe(settlementEvent{}, func(event interface{}) {
		gotSettlement = true
	})

	bus.PublishSync(shipmentEvent{OrderID: 1})
	bus.PublishSync(settlementEvent{Amount: 2})

	assert.True(t, gotShipment)
	assert.True(t, gotSettlement)
}

func TestEventBus_NoSubscribers(t *testing.T) {
	bus := New()

	// Should not panic
	bus.Publish(shipmentEvent{OrderID: 1})
	bus.PublishSync(shipmentEvent{OrderID: 2})
}

func TestEventBus_HasSubscribers(t *testing.T) {
	bus := New()

	assert.False(t, bus.HasSubscribers(shipmentEvent{}))

	bus.Subscribe(shipmentEvent{}, func(event interface{}) {})

	assert.True(t, bus.HasSubscribers(shipmentEvent{}))
	assert.False(t, bus.HasSubscribers(settlementEvent{}))
}

func TestEventBus_SubscriberCount(t *testing.T) {
	bus := New()

	assert.Equal(t, 0, bus.SubscriberCount(shipmentEvent{}))

	bus.Subscribe(shipmentEvent{}, func(event interface{}) {})
	assert.Equal(t, 1, bus.SubscriberCount(shipmentEvent{}))

	bus.Subscribe(shipmentEvent{}, func(event interface{}) {})
	assert.Equal(t, 2, bus.SubscriberCount(shipmentEvent{}))
}
