package storage

import (
	"sync"

	"github.com/google/uuid"
)

// EventType names a lifecycle event. Item-key events use the item key as
// their type.
type EventType string

const (
	EventAddItem    EventType = "addItem"
	EventAddItems   EventType = "addItems"
	EventAddList    EventType = "addList"
	EventLoad       EventType = "load"
	EventItem       EventType = "item"
	EventCollection EventType = "collection"
	EventCreate     EventType = "create"
	EventList       EventType = "list"
)

// Event is the payload delivered to handlers
type Event struct {
	ID      string
	Type    EventType
	Key     string
	Item    *Item
	Store   Store
	Args    []any
	Source  string
	Options *Options
}

// Handler receives events synchronously on the emitting goroutine
type Handler func(Event)

// Emitter dispatches events to subscribers in registration order
type Emitter struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	catchAll []Handler
}

// NewEmitter creates an emitter with no subscribers
func NewEmitter() *Emitter {
	return &Emitter{handlers: make(map[EventType][]Handler)}
}

// On subscribes h to events of type t
func (e *Emitter) On(t EventType, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[t] = append(e.handlers[t], h)
}

// OnAny subscribes h to every event
func (e *Emitter) OnAny(h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.catchAll = append(e.catchAll, h)
}

// Emit delivers ev to the handlers for its type, then to catch-all handlers.
// Handlers may subscribe further handlers; those see the next event.
func (e *Emitter) Emit(ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}

	e.mu.RLock()
	handlers := append(append([]Handler(nil), e.handlers[ev.Type]...), e.catchAll...)
	e.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}

// Listeners returns the number of handlers subscribed to t
func (e *Emitter) Listeners(t EventType) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.handlers[t])
}
