package sse

import (
	"sync"
)

// Event represents an SSE event to be sent to subscribers
type Event struct {
	Topic string
	Event string
	Data  interface{}
}

// Hub manages SSE subscribers per topic and event broadcasting
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a new subscriber for a topic and returns the event channel and cleanup function
func (h *Hub) Subscribe(topic string) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 10)

	if h.subscribers[topic] == nil {
		h.subscribers[topic] = make(map[chan Event]struct{})
	}
	h.subscribers[topic][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[topic], ch)
			close(ch)
			if len(h.subscribers[topic]) == 0 {
				delete(h.subscribers, topic)
			}
		})
	}

	return ch, cleanup
}

// Publish sends an event to all subscribers of a topic. The event's Topic is
// overwritten with topic.
func (h *Hub) Publish(topic string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	event.Topic = topic
	for ch := range h.subscribers[topic] {
		select {
		case ch <- event:
		default:
			// Skip if channel is full (non-blocking to prevent deadlock)
		}
	}
}

// SubscriberCount returns the number of active subscribers for a topic
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[topic])
}

// TotalSubscribers returns the total number of active subscribers across all topics
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}
