package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/tnqbao/gau-object-gallery/entity"
	"github.com/tnqbao/gau-object-gallery/infra"
)

const broadcastBufferSize = 256

type broadcastMessage struct {
	seq  uint64
	data []byte
}

// Hub fans object events out to every connected session.
// Run owns the session set; delivery is best-effort and at-most-once.
// A session only receives events broadcast after Register was called.
type Hub struct {
	sessions   map[*Session]struct{}
	broadcast  chan broadcastMessage
	seq        atomic.Uint64
	register   chan *Session
	unregister chan *Session
	done       chan struct{}
	mu         sync.RWMutex
	logger     *infra.LoggerClient
}

func NewHub(logger *infra.LoggerClient) *Hub {
	return &Hub{
		sessions:   make(map[*Session]struct{}),
		broadcast:  make(chan broadcastMessage, broadcastBufferSize),
		register:   make(chan *Session),
		unregister: make(chan *Session),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.logger.InfoWithContextf(ctx, "[Realtime] Hub started")
	defer h.shutdown(ctx)

	for {
		select {
		case <-ctx.Done():
			return

		case session := <-h.register:
			h.mu.Lock()
			h.sessions[session] = struct{}{}
			count := len(h.sessions)
			h.mu.Unlock()
			h.logger.DebugWithContextf(ctx, "[Realtime] Session registered, total: %d", count)

		case session := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.sessions[session]; ok {
				delete(h.sessions, session)
				close(session.send)
			}
			count := len(h.sessions)
			h.mu.Unlock()
			h.logger.DebugWithContextf(ctx, "[Realtime] Session unregistered, total: %d", count)

		case message := <-h.broadcast:
			h.mu.Lock()
			for session := range h.sessions {
				if session.joinedAt >= message.seq {
					continue
				}
				select {
				case session.send <- message.data:
				default:
					close(session.send)
					delete(h.sessions, session)
					h.logger.WarningWithContextf(ctx, "[Realtime] Session send buffer full, disconnected")
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) shutdown(ctx context.Context) {
	close(h.done)

	h.mu.Lock()
	for session := range h.sessions {
		close(session.send)
		delete(h.sessions, session)
	}
	h.mu.Unlock()

	h.logger.InfoWithContextf(ctx, "[Realtime] Hub stopped")
}

// Register adds a session. It returns false once the hub has stopped.
func (h *Hub) Register(session *Session) bool {
	session.joinedAt = h.seq.Load()
	select {
	case h.register <- session:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(session *Session) {
	select {
	case h.unregister <- session:
	case <-h.done:
	}
}

// Broadcast encodes the event once and queues it without blocking.
func (h *Hub) Broadcast(event entity.ObjectEvent) {
	message, err := json.Marshal(event)
	if err != nil {
		h.logger.ErrorWithContextf(context.Background(), err, "[Realtime] Failed to encode %s event: %v", event.Type, err)
		return
	}

	select {
	case <-h.done:
		return
	default:
	}

	queued := broadcastMessage{seq: h.seq.Add(1), data: message}
	select {
	case h.broadcast <- queued:
	default:
		h.logger.WarningWithContextf(context.Background(), "[Realtime] Broadcast queue full, dropping %s for %s", event.Type, event.ObjectID)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
