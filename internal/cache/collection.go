package cache

import (
	"sync"
)

// EventType describes a collection mutation
type EventType string

const (
	EventReloaded EventType = "reloaded"
	EventCreated  EventType = "created"
	EventUpdated  EventType = "updated"
	EventDeleted  EventType = "deleted"
)

// Event is delivered to subscribers after a confirmed mutation
type Event struct {
	Type EventType
	ID   string
}

// Collection is a shared in-memory mirror of one entity table. All consumers
// observe the same mirror: a confirmed write is applied once and every
// subscriber is notified. Mutations are applied only after the database has
// confirmed them, so the mirror never needs rollback.
type Collection[T any] struct {
	name string
	key  func(T) string

	mu      sync.RWMutex
	items   map[string]T
	order   []string
	loaded  bool
	subs    map[int]chan Event
	nextSub int
}

// NewCollection creates an empty, unloaded collection mirror. key extracts
// the entity's primary key.
func NewCollection[T any](name string, key func(T) string) *Collection[T] {
	return &Collection[T]{
		name:  name,
		key:   key,
		items: make(map[string]T),
		subs:  make(map[int]chan Event),
	}
}

// Name returns the collection's name (the table it mirrors)
func (c *Collection[T]) Name() string {
	return c.name
}

// Loading reports whether the initial load has not yet completed
func (c *Collection[T]) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.loaded
}

// Load replaces the mirror contents with a fresh fetch. On fetch error the
// mirror is left untouched and the collection stays in its previous state;
// the loading flag clears only on success.
func (c *Collection[T]) Load(fetch func() ([]T, error)) error {
	items, err := fetch()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.items = make(map[string]T, len(items))
	c.order = c.order[:0]
	for _, item := range items {
		id := c.key(item)
		c.items[id] = item
		c.order = append(c.order, id)
	}
	c.loaded = true
	c.mu.Unlock()

	c.notify(Event{Type: EventReloaded})
	return nil
}

// Snapshot returns the mirrored items in load/insert order
func (c *Collection[T]) Snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

// Get returns one mirrored item by key
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[id]
	return item, ok
}

// Len returns the number of mirrored items
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// ApplyCreate appends a confirmed new item to the mirror
func (c *Collection[T]) ApplyCreate(item T) {
	id := c.key(item)
	c.mu.Lock()
	if _, exists := c.items[id]; !exists {
		c.order = append(c.order, id)
	}
	c.items[id] = item
	c.mu.Unlock()

	c.notify(Event{Type: EventCreated, ID: id})
}

// ApplyUpdate replaces a confirmed updated item in place
func (c *Collection[T]) ApplyUpdate(item T) {
	id := c.key(item)
	c.mu.Lock()
	if _, exists := c.items[id]; !exists {
		// update for an item the mirror never saw; treat as create
		c.order = append(c.order, id)
	}
	c.items[id] = item
	c.mu.Unlock()

	c.notify(Event{Type: EventUpdated, ID: id})
}

// ApplyDelete removes a confirmed deleted item from the mirror
func (c *Collection[T]) ApplyDelete(id string) {
	c.mu.Lock()
	if _, exists := c.items[id]; exists {
		delete(c.items, id)
		for i, existing := range c.order {
			if existing == id {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
	c.mu.Unlock()

	c.notify(Event{Type: EventDeleted, ID: id})
}

// Subscribe registers an observer. The returned cancel func must be called
// to release the subscription. Events are dropped rather than blocking a
// slow subscriber.
func (c *Collection[T]) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if existing, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(existing)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

func (c *Collection[T]) notify(ev Event) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
