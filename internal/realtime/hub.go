// package realtime implements an in-process change feed keyed by table name and event type.
//
// Repositories publish an [Event] after every successful write; consumers such as list views
// subscribe with a [Handler] and re-fetch when their table changes.
package realtime

import (
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// EventType is the kind of row change.
type EventType string

const (
	Insert EventType = "INSERT"
	Update EventType = "UPDATE"
	Delete EventType = "DELETE"
	Any    EventType = "*"
)

// Table names published by the repositories.
const (
	TableProfiles          = "profiles"
	TableExternalPlaylists = "external_playlists"
	TableExternalVideos    = "external_videos"
	TableVideos            = "videos"
)

// Event describes one row change. Old is nil for inserts and New is nil for deletes.
type Event struct {
	Table string
	Type  EventType
	ID    string
	New   any
	Old   any
	At    time.Time
}

// Handler receives events for a subscription.
type Handler func(Event)

// Publisher is the write side of the feed.
type Publisher interface {
	Publish(Event)
}

type subscription struct {
	id      uint64
	table   string
	event   EventType
	handler Handler
}

// Hub fans events out to subscribers. The zero value is not usable; call [NewHub].
type Hub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]subscription
	logger *log.Logger
}

// NewHub creates an empty hub. logger may be nil.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{subs: make(map[uint64]subscription), logger: logger}
}

// Subscribe registers handler for events on table with the given type ([Any] matches all types,
// and a table of "*" matches all tables). The returned function removes the subscription.
func (h *Hub) Subscribe(table string, event EventType, handler Handler) func() {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs[id] = subscription{id: id, table: table, event: event, handler: handler}
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// Publish delivers e synchronously to every matching subscriber in subscription order.
// A panicking handler is logged and does not stop delivery to the others.
func (h *Hub) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	h.mu.RLock()
	matched := make([]subscription, 0, len(h.subs))
	for _, s := range h.subs {
		if s.matches(e) {
			matched = append(matched, s)
		}
	}
	h.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].id < matched[j].id })
	for _, s := range matched {
		h.deliver(s, e)
	}
}

// Len returns the number of active subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) deliver(s subscription, e Event) {
	defer func() {
		if r := recover(); r != nil && h.logger != nil {
			h.logger.Error("subscriber panicked", "table", e.Table, "event", e.Type, "panic", r)
		}
	}()
	s.handler(e)
}

func (s subscription) matches(e Event) bool {
	return (s.table == "*" || s.table == e.Table) && (s.event == Any || s.event == e.Type)
}
