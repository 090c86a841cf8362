// Package events implements single-pass event delivery. Handlers observe
// events; anything they publish while being dispatched is delivered after
// the current event finishes, never recursively.
package events

import (
	"sync"

	"github.com/remarqUK/sixstones/types"
)

// Handler observes one event.
type Handler func(types.Event)

// Wildcard subscribes a handler to every event type.
const Wildcard = "*"

// Bus delivers events to subscribers in subscription order.
type Bus struct {
	mu       sync.Mutex
	handlers map[string][]Handler
	queue    []types.Event
	draining bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// Subscribe registers h for eventType (or Wildcard).
func (b *Bus) Subscribe(eventType string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

// Publish delivers evt to its subscribers. A Publish from inside a handler
// is queued and delivered once the outer event is done.
func (b *Bus) Publish(evt types.Event) {
	b.mu.Lock()
	b.queue = append(b.queue, evt)
	if b.draining {
		b.mu.Unlock()
		return
	}
	b.draining = true
	for len(b.queue) > 0 {
		next := b.queue[0]
		b.queue = b.queue[1:]
		hs := b.matching(next.Type)
		b.mu.Unlock()
		for _, h := range hs {
			h(next)
		}
		b.mu.Lock()
	}
	b.draining = false
	b.mu.Unlock()
}

func (b *Bus) matching(eventType string) []Handler {
	var hs []Handler
	hs = append(hs, b.handlers[eventType]...)
	hs = append(hs, b.handlers[Wildcard]...)
	return hs
}

// Dispatch runs handlers keyed by event type against a batch of events.
// Single pass: handlers cannot add events to the batch.
func Dispatch(evts []types.Event, handlers map[string][]Handler) {
	for _, evt := range evts {
		for _, h := range handlers[evt.Type] {
			h(evt)
		}
	}
}
