package docstore

import "github.com/hupe1980/docstore/document"

// EventType names a committed mutation.
type EventType string

const (
	// EventInsert is emitted once per inserted document.
	EventInsert EventType = "insert"
	// EventUpdate is emitted once per updated document.
	EventUpdate EventType = "update"
	// EventRemove is emitted once per removed document.
	EventRemove EventType = "remove"
)

// Event describes one committed mutation. Record and Old are private copies;
// mutating them never reaches the collection.
type Event struct {
	Type       EventType
	Collection string
	// Record is the document after the mutation (the removed document for
	// EventRemove).
	Record *document.Record
	// Old is the document before an update. It is nil when the caller
	// modified the stored record in place, since no prior state survives.
	Old *document.Record
}

// Listener receives events after the mutation is committed and the collection
// lock is released. Listeners may call back into the collection.
type Listener func(Event)

// On registers l for events of type t.
func (c *Collection) On(t EventType, l Listener) {
	if l == nil {
		return
	}
	c.lmu.Lock()
	defer c.lmu.Unlock()
	c.listeners[t] = append(c.listeners[t], l)
}

func (c *Collection) event(t EventType, rec, old *document.Record) Event {
	return Event{
		Type:       t,
		Collection: c.name,
		Record:     c.cloneRecord(rec, c.cfg.CloneMethod),
		Old:        c.cloneRecord(old, c.cfg.CloneMethod),
	}
}

func (c *Collection) emit(events ...Event) {
	if len(events) == 0 {
		return
	}
	c.lmu.RLock()
	byType := make(map[EventType][]Listener, len(c.listeners))
	for t, ls := range c.listeners {
		byType[t] = ls
	}
	c.lmu.RUnlock()

	for _, e := range events {
		for _, l := range byType[e.Type] {
			l(e)
		}
	}
}
