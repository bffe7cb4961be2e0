// ABOUTME: In-memory fan-out hub pushing session notifications to live observers
// ABOUTME: Observers are SSE connections; sends are non-blocking and never stall the session loop

package hub

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

const (
	// observerBufferSize is the channel buffer for each observer. A full
	// buffer means the observer is too slow and the notification is dropped
	// for it rather than blocking the session event loop.
	observerBufferSize = 64
)

// Kind identifies the type of a notification pushed to observers.
type Kind string

const (
	KindQRCode Kind = "qrcode"
	KindLogin  Kind = "login"
	KindLogout Kind = "logout"
	KindLog    Kind = "log"
)

// Notification is the typed, ephemeral record fanned out to all observers.
// It is serialized as-is onto the SSE wire.
type Notification struct {
	Type    Kind   `json:"type"`
	Message string `json:"message"`
}

// Observer is a handle to one live outbound channel. Receive from C until it
// is closed; call Hub.Unsubscribe when the underlying connection goes away.
type Observer struct {
	id string
	C  <-chan Notification
	ch chan Notification
}

// Hub maintains the set of currently connected observers and pushes
// notifications to all of them. When disabled (no HTTP operator surface
// configured) every Broadcast is a no-op beyond a single flag check.
type Hub struct {
	mu        sync.RWMutex
	observers map[string]*Observer
	enabled   bool
	logger    *slog.Logger
}

// New creates a hub. Pass enabled=false to turn Broadcast into a no-op.
// Pass nil logger for default.
func New(enabled bool, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		observers: make(map[string]*Observer),
		enabled:   enabled,
		logger:    logger.With("component", "hub"),
	}
}

// Subscribe registers a new observer and returns its handle.
func (h *Hub) Subscribe() *Observer {
	ch := make(chan Notification, observerBufferSize)
	obs := &Observer{
		id: uuid.New().String(),
		C:  ch,
		ch: ch,
	}

	h.mu.Lock()
	h.observers[obs.id] = obs
	h.mu.Unlock()

	h.logger.Debug("observer added", "observer_id", obs.id)
	return obs
}

// Unsubscribe removes an observer and closes its channel. Idempotent:
// removing an observer that is not a member is a no-op.
func (h *Hub) Unsubscribe(obs *Observer) {
	if obs == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.observers[obs.id]; !ok {
		return
	}
	delete(h.observers, obs.id)
	close(obs.ch)

	h.logger.Debug("observer removed", "observer_id", obs.id)
}

// Broadcast delivers a notification to every currently subscribed observer.
// Delivery is fire-and-forget per observer: a slow observer has the
// notification dropped and never delays the others.
func (h *Hub) Broadcast(n Notification) {
	if !h.enabled {
		return
	}

	// Sends are non-blocking, so holding the read lock is cheap and keeps
	// Unsubscribe from closing a channel mid-send.
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, obs := range h.observers {
		select {
		case obs.ch <- n:
		default:
			h.logger.Debug("dropped notification for slow observer", "type", n.Type)
		}
	}
}

// Len reports the number of currently subscribed observers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.observers)
}

// Close removes and closes all observers.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, obs := range h.observers {
		close(obs.ch)
		delete(h.observers, id)
	}

	h.logger.Debug("hub closed")
}
