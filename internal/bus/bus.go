package bus

import (
	"fmt"
	"sync"
)

// Handler processes a single published event.
//
// Handlers run synchronously on the publisher's goroutine. Returning an
// error aborts the remainder of the dispatch; the error is wrapped and
// returned from Publish.
type Handler func(ev Event) error

// Subscription identifies one registration and is the token needed to
// unsubscribe. The zero value is never a valid subscription.
type Subscription struct {
	eventType EventType
	id        uint64
}

// entry is one registered handler within an event type's dispatch list.
type entry struct {
	id      uint64
	handler Handler
}

// Bus dispatches events to subscribers synchronously in registration order.
//
// One Bus exists per running kiln application; it is created explicitly and
// passed by reference, never held as a process-wide singleton.
type Bus struct {
	mu       sync.Mutex
	nextID   uint64
	handlers map[EventType][]entry
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{
		handlers: make(map[EventType][]entry),
	}
}

// Subscribe registers a handler for the given event type.
//
// Handlers for a type are invoked in the order they were registered. The
// returned Subscription is the token for Unsubscribe.
func (b *Bus) Subscribe(t EventType, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := Subscription{eventType: t, id: b.nextID}
	b.handlers[t] = append(b.handlers[t], entry{id: sub.id, handler: h})
	return sub
}

// Unsubscribe removes exactly the registration identified by sub.
//
// Unsubscribing during a dispatch excludes the handler from later publishes
// but does not retract its participation in the in-flight dispatch, which
// iterates a snapshot. Unsubscribing an unknown or already-removed
// subscription is a no-op.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.handlers[sub.eventType]
	for i, e := range entries {
		if e.id == sub.id {
			b.handlers[sub.eventType] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

// Publish synchronously invokes every handler registered for the event's
// type, in registration order, on the calling goroutine.
//
// Dispatch is re-entrant: handlers may publish further events, and those
// nested dispatches complete before the outer one continues. Publishing an
// event type with no subscribers is a no-op.
//
// The first handler error aborts the remaining handlers and is returned
// wrapped with the event type.
func (b *Bus) Publish(ev Event) error {
	b.mu.Lock()
	entries := b.handlers[ev.Type()]
	snapshot := make([]entry, len(entries))
	copy(snapshot, entries)
	b.mu.Unlock()

	for _, e := range snapshot {
		if err := e.handler(ev); err != nil {
			return fmt.Errorf("dispatching %s: %w", ev.Type(), err)
		}
	}
	return nil
}

// SubscriberCount returns the number of handlers currently registered for
// the given event type. Intended for tests and diagnostics.
func (b *Bus) SubscriberCount(t EventType) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[t])
}
