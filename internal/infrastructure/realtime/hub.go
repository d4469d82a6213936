package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub tracks at most one live websocket connection per actor and pushes
// notification payloads to connected recipients. Unlike a chat room router,
// notifications fan out per recipient, so no room bookkeeping is needed.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Connection // actor ref string -> connection
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]*Connection)}
}

// Attach registers a connection for the actor, displacing any previous one,
// and starts its write loop.
func (h *Hub) Attach(actorRef string, ws *websocket.Conn) *Connection {
	conn := newConnection(actorRef, ws)

	h.mu.Lock()
	prev := h.conns[actorRef]
	h.conns[actorRef] = conn
	h.mu.Unlock()

	if prev != nil {
		prev.Close(websocket.ClosePolicyViolation, "superseded by a newer session")
	}
	go conn.writeLoop()
	return conn
}

// Detach removes the connection if it is still the actor's current one.
func (h *Hub) Detach(conn *Connection) {
	h.mu.Lock()
	if cur, ok := h.conns[conn.ActorRef]; ok && cur.ID == conn.ID {
		delete(h.conns, conn.ActorRef)
	}
	h.mu.Unlock()
	conn.Close(websocket.CloseNormalClosure, "detached")
}

// Push delivers payload to the actor if connected. Returns false when the
// actor has no live connection or the send failed.
func (h *Hub) Push(actorRef string, payload []byte) bool {
	h.mu.RLock()
	conn := h.conns[actorRef]
	h.mu.RUnlock()
	if conn == nil {
		return false
	}
	return conn.Send(payload) == nil
}
