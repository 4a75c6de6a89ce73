package handlers

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Courtroom push event types. Push is an optimization over the 2s poll:
// every event here is also discoverable by refetching the case or the
// current-witness state.
const (
	EventCrossExaminationComplete = "cross_examination_complete"
	EventVerdictDelivered         = "verdict_delivered"
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub stores connected users (userId -> *websocket.Conn)
type Hub struct {
	clients map[string]*websocket.Conn
	mutex   sync.Mutex
}

// NewHub creates an empty notification hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*websocket.Conn),
	}
}

// HandleWebSocket upgrades the connection and registers the user for pushes
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("websocket upgrade error", "error", err)
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		conn.Close()
		return
	}

	h.mutex.Lock()
	h.clients[userID] = conn
	h.mutex.Unlock()
	zap.S().Debugw("user connected to notifications socket", "userId", userID)

	conn.SetCloseHandler(func(code int, text string) error {
		h.mutex.Lock()
		delete(h.clients, userID)
		h.mutex.Unlock()
		zap.S().Debugw("user disconnected from notifications socket", "userId", userID)
		return nil
	})

	// Keep connection alive
	for {
		if _, _, err := conn.NextReader(); err != nil {
			conn.Close()
			break
		}
	}
}

// Push sends an event to a single user. Losing the message is acceptable;
// the client discovers the same state change on its next poll.
func (h *Hub) Push(userID, event string, data interface{}) {
	if h == nil {
		return
	}
	h.mutex.Lock()
	conn, exists := h.clients[userID]
	h.mutex.Unlock()

	if !exists {
		return
	}
	err := conn.WriteJSON(map[string]interface{}{
		"event": event,
		"data":  data,
	})
	if err != nil {
		zap.S().Warnw("error pushing event, dropping client", "userId", userID, "event", event, "error", err)
		h.mutex.Lock()
		delete(h.clients, userID)
		h.mutex.Unlock()
		conn.Close()
	}
}
