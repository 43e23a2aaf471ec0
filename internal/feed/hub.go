// Package feed fans marketplace events out to WebSocket subscribers. The
// persisted event log is the source of truth; this feed is best-effort and
// may drop events for slow consumers.
package feed

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/edd34/nft-marketplace/internal/domain"
)

const subscriberBuffer = 64

type Hub struct {
	logger   *logrus.Logger
	upgrader websocket.Upgrader

	mu     sync.Mutex
	subs   map[int]chan domain.Event
	nextID int
	closed bool
}

func NewHub(logger *logrus.Logger) *Hub {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin checks are handled by the CORS layer for the REST
			// surface; the feed is read-only so any origin may subscribe.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		subs: make(map[int]chan domain.Event),
	}
}

// Publish sends an event to every subscriber without blocking. Subscribers
// that cannot keep up lose events rather than stalling the publisher.
func (h *Hub) Publish(e domain.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

func (h *Hub) subscribe() (int, chan domain.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan domain.Event, subscriberBuffer)
	h.subs[id] = ch
	return id, ch
}

func (h *Hub) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Close drops all subscribers; subsequent publishes are no-ops.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

// ServeHTTP upgrades the connection and streams events as JSON messages
// until the client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("feed upgrade failed")
		return
	}

	id, events := h.subscribe()
	defer h.unsubscribe(id)

	// The read loop only exists to observe the close handshake.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() { _ = conn.Close() }()
	for {
		select {
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
