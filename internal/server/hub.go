package server

import (
	"sync"

	"github.com/tasklist/taskboard/internal/task"
)

// subscriberBuffer is the number of events a subscriber may fall behind before it is disconnected.
const subscriberBuffer = 16

// Hub fans out task events to all subscribers.
// A subscriber that cannot keep up is dropped, its channel is closed. It is expected to resubscribe
// and reload the full list.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan task.Event]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: map[chan task.Event]struct{}{}}
}

// Subscribe registers a new subscriber. The returned function unsubscribes; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan task.Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan task.Event, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.drop(ch)
	}
}

// Publish sends ev to all subscribers without blocking.
func (h *Hub) Publish(ev task.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.drop(ch)
		}
	}
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close disconnects all subscribers and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for ch := range h.subs {
		h.drop(ch)
	}
}

func (h *Hub) drop(ch chan task.Event) {
	if _, ok := h.subs[ch]; !ok {
		return
	}
	delete(h.subs, ch)
	close(ch)
}
