package notify

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"sync"
	"time"
)

const (
	RegisterMessageType        = "register"
	CatalogReloadedMessageType = "catalog_reloaded"
)

type RegisterMessage struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

// CatalogReloadedMessage tells clients to refetch topics and navigation.
type CatalogReloadedMessage struct {
	Type    string    `json:"type"`
	Courses int       `json:"courses"`
	Topics  int       `json:"topics"`
	BuiltAt time.Time `json:"built_at"`
}

type Client struct {
	UserID string
	Addr   *net.UDPAddr
}

type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

func (r *Registry) Register(userID string, addr *net.UDPAddr) {
	if userID == "" || addr == nil {
		return
	}
	r.mu.Lock()
	r.clients[userID] = Client{UserID: userID, Addr: addr}
	r.mu.Unlock()
}

func (r *Registry) Remove(userID string) {
	r.mu.Lock()
	delete(r.clients, userID)
	r.mu.Unlock()
}

func (r *Registry) Snapshot() []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clients := make([]Client, 0, len(r.clients))
	for _, client := range r.clients {
		clients = append(clients, client)
	}
	return clients
}

type Server struct {
	addr     string
	registry *Registry
	logger   *log.Logger
	mu       sync.Mutex
	conn     *net.UDPConn
}

func NewServer(addr string, registry *Registry, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{addr: addr, registry: registry, logger: logger}
}

func (s *Server) Run() error {
	udpAddr, err := net.ResolveUDPAddr("udp", s.addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	return s.Serve(conn)
}

// Serve reads register messages from conn until it is closed.
func (s *Server) Serve(conn *net.UDPConn) error {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	defer conn.Close()

	s.logger.Printf("[udp-notify] listening on %s", conn.LocalAddr())

	buffer := make([]byte, 2048)
	for {
		n, addr, err := conn.ReadFromUDP(buffer)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		msg, err := parseRegisterMessage(buffer[:n])
		if err != nil {
			s.logger.Printf("[udp-notify] invalid message from %s: %v", addr, err)
			continue
		}
		if msg.Type != RegisterMessageType {
			continue
		}
		s.registry.Register(msg.UserID, addr)
		s.logger.Printf("[udp-notify] registered %s (%s)", msg.UserID, addr)
	}
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// BroadcastCatalogReloaded sends msg to every registered client. It returns
// the number of clients reached.
func (s *Server) BroadcastCatalogReloaded(msg CatalogReloadedMessage) int {
	s.mu.Lock()
	running := s.conn != nil
	s.mu.Unlock()
	if !running {
		s.logger.Printf("[udp-notify] server not running")
		return 0
	}

	msg.Type = CatalogReloadedMessageType
	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Printf("[udp-notify] marshal broadcast: %v", err)
		return 0
	}

	sent := 0
	for _, client := range s.registry.Snapshot() {
		if s.sendWithRetry(client, payload) {
			sent++
		}
	}
	return sent
}

// sendWithRetry tries twice, then drops the client from the registry.
func (s *Server) sendWithRetry(client Client, payload []byte) bool {
	if err := s.sendOnce(client, payload); err == nil {
		return true
	}
	if err := s.sendOnce(client, payload); err != nil {
		s.logger.Printf("[udp-notify] failed to notify %s at %s: %v", client.UserID, client.Addr, err)
		s.registry.Remove(client.UserID)
		return false
	}
	return true
}

func (s *Server) sendOnce(client Client, payload []byte) error {
	if client.Addr == nil {
		return errors.New("missing client address")
	}
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	_, err := conn.WriteToUDP(payload, client.Addr)
	return err
}

func parseRegisterMessage(data []byte) (RegisterMessage, error) {
	var msg RegisterMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, err
	}
	if msg.UserID == "" || msg.Type == "" {
		return msg, errors.New("missing required fields")
	}
	return msg, nil
}
