package progress

import (
	"sync"
	"time"
)

const (
	bufferSize = 64
	// how long a closed request ID keeps turning late subscribers away
	finishedTTL = 10 * time.Minute
)

type Client struct {
	Channel chan interface{}
}

// Hub fans progress events out to whoever subscribed to a request ID.
// Send never blocks: events for slow or absent subscribers are dropped.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	finished map[string]time.Time
	now      func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		clients:  make(map[string]*Client),
		finished: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Register subscribes to id, replacing (and closing) any previous subscriber.
// Subscribing to an id that was already closed yields a closed channel.
func (h *Hub) Register(id string) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	if at, ok := h.finished[id]; ok && h.now().Sub(at) < finishedTTL {
		client := &Client{Channel: make(chan interface{})}
		close(client.Channel)
		return client
	}

	if old, ok := h.clients[id]; ok {
		close(old.Channel)
	}
	client := &Client{
		Channel: make(chan interface{}, bufferSize),
	}
	h.clients[id] = client
	return client
}

func (h *Hub) Get(id string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[id]
}

// Unregister closes client's channel if it is still the subscriber for id.
func (h *Hub) Unregister(id string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.clients[id]; ok && current == client {
		close(current.Channel)
		delete(h.clients, id)
	}
}

// Close ends the stream for id, whoever is subscribed, and marks id finished.
func (h *Hub) Close(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client, ok := h.clients[id]; ok {
		close(client.Channel)
		delete(h.clients, id)
	}

	now := h.now()
	for old, at := range h.finished {
		if now.Sub(at) >= finishedTTL {
			delete(h.finished, old)
		}
	}
	h.finished[id] = now
}

func (h *Hub) Send(id string, data interface{}) {
	// the read lock is held while sending so Close cannot race the channel
	h.mu.RLock()
	defer h.mu.RUnlock()

	if client := h.clients[id]; client != nil {
		select {
		case client.Channel <- data:
		default:
		}
	}
}
