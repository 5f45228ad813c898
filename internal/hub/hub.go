// Package hub maintains the set of live viewer connections and fans status
// notifications out to all of them.
package hub

import (
	"sync"

	"go.uber.org/zap"

	"github.com/kstepanov/dormhub/internal/model"
)

// Subscriber is one live viewer connection. Send must be safe to call from
// the broadcasting goroutine; a failed Send gets the subscriber dropped.
type Subscriber interface {
	Send(n model.Notification) error
	Close() error
}

// Hub owns the subscriber set. Subscribe/Unsubscribe/Broadcast may be called
// concurrently; a broadcast operates on a point-in-time snapshot, so a viewer
// joining mid-broadcast never receives a message sent before it joined.
type Hub struct {
	log *zap.Logger

	mu   sync.RWMutex
	subs map[Subscriber]struct{}
}

// New constructs an empty hub.
func New(log *zap.Logger) *Hub {
	return &Hub{log: log, subs: make(map[Subscriber]struct{})}
}

// Subscribe registers a viewer connection.
func (h *Hub) Subscribe(s Subscriber) {
	h.mu.Lock()
	h.subs[s] = struct{}{}
	n := len(h.subs)
	h.mu.Unlock()
	h.log.Info("viewer subscribed", zap.Int("viewers", n))
}

// Unsubscribe removes a viewer connection. Idempotent.
func (h *Hub) Unsubscribe(s Subscriber) {
	h.mu.Lock()
	_, ok := h.subs[s]
	if ok {
		delete(h.subs, s)
	}
	n := len(h.subs)
	h.mu.Unlock()
	if ok {
		h.log.Info("viewer unsubscribed", zap.Int("viewers", n))
	}
}

// Count returns the number of currently subscribed viewers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Broadcast delivers n to every viewer in the current snapshot, best-effort.
// A viewer whose send fails is dropped and closed, never retried; one bad
// connection cannot fail the delivery to the rest.
func (h *Hub) Broadcast(n model.Notification) {
	h.mu.RLock()
	snapshot := make([]Subscriber, 0, len(h.subs))
	for s := range h.subs {
		snapshot = append(snapshot, s)
	}
	h.mu.RUnlock()

	for _, s := range snapshot {
		if err := s.Send(n); err != nil {
			h.log.Warn("dropping viewer after failed send", zap.Error(err))
			h.Unsubscribe(s)
			_ = s.Close()
		}
	}
}

// Shutdown closes and forgets every subscriber.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[Subscriber]struct{})
	h.mu.Unlock()

	for s := range subs {
		_ = s.Close()
	}
	h.log.Info("hub stopped")
}
