// Package broadcast fans controller notifications out to independent
// subscribers: the terminal UI, the MPRIS bridge, and websocket clients.
// A slow subscriber never blocks the controller; each subscriber has a
// bounded buffer where the oldest unread notification is dropped in
// favor of the newest.
package broadcast

import (
	"sync"

	"github.com/chime-audio/chime/internal/core"
)

// DefaultBufferSize is the per-subscriber channel capacity.
const DefaultBufferSize = 32

// Subscriber is one independent receiver of notifications.
type Subscriber struct {
	ch   chan core.Notification
	done chan struct{}
	once sync.Once
}

// C returns the receive channel. It is closed when the subscriber is
// pruned after Close.
func (s *Subscriber) C() <-chan core.Notification { return s.ch }

// Close marks the subscriber dead. The hub prunes it lazily on the next
// publish.
func (s *Subscriber) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Subscriber) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Hub delivers every published notification to all live subscribers, and
// replays a bootstrap set of the latest sticky notifications to each new
// subscriber so an observer attached mid-session never starts blank.
type Hub struct {
	mu      sync.Mutex
	subs    map[*Subscriber]struct{}
	bufSize int

	// Latest notification per sticky variant, replayed on subscribe in
	// bootstrap order: track list, position, status, then the rest.
	lastTrackList *core.Notification
	lastPosition  *core.Notification
	lastStatus    *core.Notification
	lastDuration  *core.Notification
	lastQuality   *core.Notification
	lastBuffering *core.Notification
}

// New creates a hub with the default per-subscriber buffer size.
func New() *Hub {
	return NewWithBuffer(DefaultBufferSize)
}

// NewWithBuffer creates a hub with the given per-subscriber buffer size.
func NewWithBuffer(size int) *Hub {
	if size < 1 {
		size = 1
	}
	return &Hub{
		subs:    make(map[*Subscriber]struct{}),
		bufSize: size,
	}
}

// Subscribe registers a new subscriber. The returned subscriber first
// receives the bootstrap set reflecting current state, then subsequent
// notifications in publish order.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{
		ch:   make(chan core.Notification, h.bufSize),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, n := range []*core.Notification{
		h.lastTrackList,
		h.lastPosition,
		h.lastStatus,
		h.lastDuration,
		h.lastQuality,
		h.lastBuffering,
	} {
		if n != nil {
			h.send(sub, *n)
		}
	}

	h.subs[sub] = struct{}{}
	return sub
}

// Publish delivers n to every live subscriber and prunes dead ones.
func (h *Hub) Publish(n core.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.remember(n)

	for sub := range h.subs {
		if sub.closed() {
			delete(h.subs, sub)
			close(sub.ch)
			continue
		}
		h.send(sub, n)
	}
}

// SubscriberCount reports the number of registered subscribers; dead ones
// linger until the next publish.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// send delivers without blocking: when the buffer is full the oldest
// unread notification is dropped for the newest. Last-state-wins is safe
// because every notification is a full state of its facet, not a delta.
func (h *Hub) send(sub *Subscriber, n core.Notification) {
	for {
		select {
		case sub.ch <- n:
			return
		default:
		}
		select {
		case <-sub.ch:
		default:
		}
	}
}

func (h *Hub) remember(n core.Notification) {
	cp := n
	switch {
	case n.CurrentTrackList != nil:
		h.lastTrackList = &cp
	case n.Position != nil:
		h.lastPosition = &cp
	case n.Status != nil:
		h.lastStatus = &cp
	case n.Duration != nil:
		h.lastDuration = &cp
	case n.AudioQuality != nil:
		h.lastQuality = &cp
	case n.Buffering != nil:
		h.lastBuffering = &cp
	}
}
