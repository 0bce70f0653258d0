// Package hub fans verified envelopes out to connected websocket sessions.
// Routing (broadcast vs reply-to-sender) is decided here from the envelope's
// scope tag; the signing core knows nothing about delivery.
package hub

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/parley-protocol/parley/internal/models"
)

const sendBuffer = 32

// Hub tracks connected sessions.
type Hub struct {
	logger   zerolog.Logger
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// New creates an empty hub.
func New(logger zerolog.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sessions: make(map[string]*session),
	}
}

// Attach upgrades the request to a websocket and registers the session. The
// session id comes from the "session" query parameter; a duplicate id
// replaces the previous connection.
func (h *Hub) Attach(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session")
	if id == "" {
		http.Error(w, `{"error":"session query parameter is required"}`, http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	s := &session{id: id, conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if old, ok := h.sessions[id]; ok {
		close(old.send)
	}
	h.sessions[id] = s
	h.mu.Unlock()

	h.logger.Info().Str("session", id).Msg("session attached")

	go h.writePump(s)
	go h.readPump(s)
}

// Deliver routes an envelope according to its scope tag: replies scoped to
// the sender go only to the originating session, everything else is
// broadcast.
func (h *Hub) Deliver(env *models.Envelope, origin string) {
	data, err := json.Marshal(env)
	if err != nil {
		h.logger.Error().Err(err).Msg("envelope marshal failed")
		return
	}

	if env.Scope == models.ScopeSender {
		h.sendTo(origin, data)
		return
	}
	h.broadcast(data)
}

func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.sessions {
		select {
		case s.send <- data:
		default:
			// Slow consumer; drop rather than block the fan-out.
		}
	}
}

func (h *Hub) sendTo(id string, data []byte) {
	h.mu.RLock()
	s, ok := h.sessions[id]
	h.mu.RUnlock()
	if !ok {
		return
	}
	select {
	case s.send <- data:
	default:
	}
}

// Sessions returns the number of attached sessions.
func (h *Hub) Sessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *Hub) writePump(s *session) {
	for data := range s.send {
		if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			break
		}
	}
	s.conn.Close()
}

func (h *Hub) readPump(s *session) {
	// Inbound frames are ignored; messages enter through the HTTP API where
	// they are verified before fan-out.
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	if cur, ok := h.sessions[s.id]; ok && cur == s {
		delete(h.sessions, s.id)
		close(s.send)
	}
	h.mu.Unlock()

	h.logger.Info().Str("session", s.id).Msg("session detached")
}
