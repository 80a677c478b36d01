package discuss

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const defaultHistorySize = 50

const (
	TypeMessage = "message"
	TypeJoin    = "user_join"
	TypeLeave   = "user_leave"
)

type Message struct {
	Type    string    `json:"type"`
	TopicID string    `json:"topic_id"`
	User    string    `json:"user"`
	Text    string    `json:"text,omitempty"`
	At      time.Time `json:"at"`
}

// room is one topic's discussion: live connections plus a bounded history.
type room struct {
	connections map[*websocket.Conn]string
	history     []Message
}

type Hub struct {
	mu          sync.Mutex
	rooms       map[string]*room
	historySize int
}

func NewHub(historySize int) *Hub {
	if historySize <= 0 {
		historySize = defaultHistorySize
	}
	return &Hub{
		rooms:       make(map[string]*room),
		historySize: historySize,
	}
}

// Join replays the room's history to ws, then registers it. Both happen
// under the hub lock so no broadcast can interleave with the replay.
func (h *Hub) Join(topicID string, ws *websocket.Conn, user string) []Message {
	h.mu.Lock()
	r := h.roomLocked(topicID)
	history := append([]Message(nil), r.history...)
	for _, msg := range history {
		_ = ws.WriteJSON(msg)
	}
	r.connections[ws] = user
	h.mu.Unlock()

	h.Broadcast(Message{Type: TypeJoin, TopicID: topicID, User: user})
	return history
}

func (h *Hub) Leave(topicID string, ws *websocket.Conn) {
	var user string
	h.mu.Lock()
	if r, ok := h.rooms[topicID]; ok {
		user = r.connections[ws]
		delete(r.connections, ws)
		if len(r.connections) == 0 && len(r.history) == 0 {
			delete(h.rooms, topicID)
		}
	}
	h.mu.Unlock()

	_ = ws.Close()

	if user != "" {
		h.Broadcast(Message{Type: TypeLeave, TopicID: topicID, User: user})
	}
}

// Broadcast records chat messages in history and fans msg out to the room.
func (h *Hub) Broadcast(msg Message) {
	if msg.At.IsZero() {
		msg.At = time.Now().UTC()
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[msg.TopicID]
	if !ok {
		return
	}

	if msg.Type == TypeMessage {
		r.history = append(r.history, msg)
		if len(r.history) > h.historySize {
			r.history = r.history[len(r.history)-h.historySize:]
		}
	}

	for ws := range r.connections {
		if err := ws.WriteMessage(websocket.TextMessage, payload); err != nil {
			_ = ws.Close()
			delete(r.connections, ws)
		}
	}
}

func (h *Hub) History(topicID string) []Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[topicID]; ok {
		return append([]Message(nil), r.history...)
	}
	return nil
}

func (h *Hub) User(topicID string, ws *websocket.Conn) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[topicID]; ok {
		return r.connections[ws]
	}
	return ""
}

func (h *Hub) roomLocked(topicID string) *room {
	r, ok := h.rooms[topicID]
	if !ok {
		r = &room{connections: make(map[*websocket.Conn]string)}
		h.rooms[topicID] = r
	}
	return r
}
