package events

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusSubscribeReceivesMatchingType(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var received []*Event
	bus.Subscribe(TypeItemCreated, func(e *Event) {
		received = append(received, e)
	})

	bus.Publish(Event{Type: TypeItemCreated, Payload: map[string]string{"item_id": "a"}})
	bus.Publish(Event{Type: TypeRatesSynced})

	require.Len(t, received, 1)
	assert.Equal(t, TypeItemCreated, received[0].Type)
	assert.False(t, received[0].Timestamp.IsZero())
}

func TestBusSubscribeAllReceivesEverything(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	ch, unsubscribe := bus.SubscribeAll(10)
	defer unsubscribe()

	bus.Publish(Event{Type: TypeItemCreated})
	bus.Publish(Event{Type: TypeRatesSynced})

	first := <-ch
	second := <-ch
	assert.Equal(t, TypeItemCreated, first.Type)
	assert.Equal(t, TypeRatesSynced, second.Type)
}

func TestBusDropsForSlowSubscriber(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	ch, unsubscribe := bus.SubscribeAll(1)
	defer unsubscribe()

	// Second publish finds the buffer full and must not block.
	bus.Publish(Event{Type: TypeItemCreated})
	bus.Publish(Event{Type: TypeItemUpdated})

	assert.Len(t, ch, 1)
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	ch, unsubscribe := bus.SubscribeAll(1)
	unsubscribe()
	unsubscribe() // Idempotent

	_, open := <-ch
	assert.False(t, open)

	// Publishing after unsubscribe must not panic.
	bus.Publish(Event{Type: TypeItemCreated})
}
