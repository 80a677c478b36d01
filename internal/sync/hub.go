package sync

import (
	"encoding/json"
	"sync"
	"time"
)

const writeWait = 2 * time.Second

type client struct {
	transport string
	filter    Filter
	write     func([]byte) error
	close     func() error
}

// Hub fans events out to TCP and websocket subscribers. All writes happen
// under mu, so a connection never sees two concurrent writers.
type Hub struct {
	mu      sync.Mutex
	nextID  uint64
	clients map[uint64]*client
}

type Stats struct {
	TCPClients int `json:"tcp_clients"`
	WSClients  int `json:"ws_clients"`
}

func NewHub() *Hub {
	return &Hub{clients: make(map[uint64]*client)}
}

// subscribe registers a client and sends it a subscribed event.
func (h *Hub) subscribe(transport string, f Filter, write func([]byte) error, closeFn func() error) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	h.clients[id] = &client{transport: transport, filter: f, write: write, close: closeFn}
	h.ackLocked(id)
	return id
}

// SetFilter replaces a client's filter and acknowledges it.
func (h *Hub) SetFilter(id uint64, f Filter) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[id]
	if !ok {
		return false
	}
	c.filter = f
	return h.ackLocked(id)
}

func (h *Hub) Unsubscribe(id uint64) {
	h.mu.Lock()
	c, ok := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()
	if ok {
		_ = c.close()
	}
}

// Broadcast delivers ev to every client whose filter matches and returns
// how many received it. Clients whose write fails are dropped.
func (h *Hub) Broadcast(ev Event) int {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return 0
	}
	b = append(b, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	sent := 0
	for id, c := range h.clients {
		if !c.filter.Match(ev) {
			continue
		}
		if err := c.write(b); err != nil {
			h.dropLocked(id)
			continue
		}
		sent++
	}
	return sent
}

func (h *Hub) ackLocked(id uint64) bool {
	c := h.clients[id]
	ev := Event{
		Type:      EventSubscribed,
		UserID:    c.filter.UserID,
		CourseKey: c.filter.CourseKey,
		Transport: c.transport,
		Clients:   h.countLocked(c.transport),
		At:        time.Now().UTC(),
	}
	b, _ := json.Marshal(ev)
	if err := c.write(append(b, '\n')); err != nil {
		h.dropLocked(id)
		return false
	}
	return true
}

func (h *Hub) dropLocked(id uint64) {
	if c, ok := h.clients[id]; ok {
		_ = c.close()
		delete(h.clients, id)
	}
}

func (h *Hub) countLocked(transport string) int {
	n := 0
	for _, c := range h.clients {
		if c.transport == transport {
			n++
		}
	}
	return n
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		TCPClients: h.countLocked(TransportTCP),
		WSClients:  h.countLocked(TransportWS),
	}
}

// CloseAll disconnects every client; used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id := range h.clients {
		h.dropLocked(id)
	}
}
