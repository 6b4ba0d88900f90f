// Package realtime fans document changes out to the streams watching a path.
package realtime

import (
	"sync"

	"go.uber.org/zap"
)

// DefaultBuffer is the per-listener queue length used when none is given.
const DefaultBuffer = 64

// Change is one document event on a collection path such as
// messages/<owner>/<peer>.
type Change struct {
	Path       string         `json:"path"`
	Type       string         `json:"type"`
	DocumentID string         `json:"document_id"`
	Data       map[string]any `json:"data"`
}

// Relay forwards locally published changes to other instances.
type Relay interface {
	Forward(Change) error
}

// Subscription is a registered listener. C is closed when the listener is
// removed, either by Unsubscribe or because it fell behind.
type Subscription struct {
	ID   int64
	Path string
	C    <-chan Change

	ch chan Change
}

// Hub maps paths to their active listeners.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[int64]*Subscription
	nextID int64
	buffer int
	relay  Relay
	log    *zap.Logger
}

// NewHub creates a hub whose listeners queue up to buffer changes.
func NewHub(buffer int, log *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		subs:   make(map[string]map[int64]*Subscription),
		buffer: buffer,
		log:    log,
	}
}

// SetRelay installs the relay used by Publish. Call before serving.
func (h *Hub) SetRelay(r Relay) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.relay = r
}

// Subscribe registers a listener on path.
func (h *Hub) Subscribe(path string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[path]; !ok {
		h.subs[path] = make(map[int64]*Subscription)
	}

	h.nextID++
	ch := make(chan Change, h.buffer)
	sub := &Subscription{ID: h.nextID, Path: path, C: ch, ch: ch}
	h.subs[path][sub.ID] = sub
	return sub
}

// Unsubscribe removes a listener. Removing twice is a no-op.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(sub)
}

// remove must be called with h.mu held.
func (h *Hub) remove(sub *Subscription) {
	conns, ok := h.subs[sub.Path]
	if !ok {
		return
	}
	if _, ok := conns[sub.ID]; !ok {
		return
	}
	delete(conns, sub.ID)
	close(sub.ch)
	if len(conns) == 0 {
		delete(h.subs, sub.Path)
	}
}

// Publish delivers c to local listeners and hands it to the relay, if any.
func (h *Hub) Publish(c Change) {
	h.Deliver(c)

	h.mu.Lock()
	relay := h.relay
	h.mu.Unlock()
	if relay == nil {
		return
	}
	if err := relay.Forward(c); err != nil {
		h.log.Warn("relay forward failed", zap.String("path", c.Path), zap.Error(err))
	}
}

// Deliver sends c to the local listeners of c.Path without blocking. A
// listener whose queue is full is dropped and its channel closed.
func (h *Hub) Deliver(c Change) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var slow []*Subscription
	for _, sub := range h.subs[c.Path] {
		select {
		case sub.ch <- c:
		default:
			slow = append(slow, sub)
		}
	}

	for _, sub := range slow {
		h.log.Warn("dropping slow listener", zap.String("path", c.Path), zap.Int64("listener", sub.ID))
		h.remove(sub)
	}
}

// Listeners reports how many listeners watch path.
func (h *Hub) Listeners(path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[path])
}
