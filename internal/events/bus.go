package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Handler is a callback invoked synchronously for each published event.
type Handler func(event *Event)

// Bus is a small in-process pub/sub bus. Handlers registered with Subscribe
// run synchronously on the publisher's goroutine; channel subscribers from
// SubscribeAll receive asynchronously with drop-on-full semantics so a slow
// consumer can never stall a publisher.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler
	streams  map[int]chan *Event
	nextID   int
	log      zerolog.Logger
}

// NewBus creates a new event bus.
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[Type][]Handler),
		streams:  make(map[int]chan *Event),
		log:      log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers a handler for one event type.
func (b *Bus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// SubscribeAll returns a buffered channel receiving every published event
// and an unsubscribe function. Events are dropped for subscribers whose
// buffer is full.
func (b *Bus) SubscribeAll(buffer int) (<-chan *Event, func()) {
	if buffer <= 0 {
		buffer = 100
	}

	ch := make(chan *Event, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.streams[id] = ch
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if existing, ok := b.streams[id]; ok {
			delete(b.streams, id)
			close(existing)
		}
	}

	return ch, unsubscribe
}

// Publish delivers an event to all matching handlers and stream
// subscribers. A zero timestamp is filled with the current time.
func (b *Bus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.mu.RLock()
	handlers := b.handlers[event.Type]
	streams := make([]chan *Event, 0, len(b.streams))
	for _, ch := range b.streams {
		streams = append(streams, ch)
	}
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(&event)
	}

	for _, ch := range streams {
		select {
		case ch <- &event:
		default:
			b.log.Debug().
				Str("event_type", string(event.Type)).
				Msg("Dropping event for slow stream subscriber")
		}
	}
}
