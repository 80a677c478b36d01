package sync

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net"
	"sync"
	"time"
)

// Server accepts line-oriented TCP clients that receive hub events as JSON.
// Each line a client sends is read as a Filter for its stream.
type Server struct {
	Addr string
	Hub  *Hub

	mu sync.Mutex
	ln net.Listener
}

func NewServer(addr string, hub *Hub) *Server {
	return &Server{Addr: addr, Hub: hub}
}

func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve returns nil once Close has been called.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	log.Printf("[tcp-sync] listening on %s", ln.Addr())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			continue
		}

		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	id := s.Hub.subscribe(TransportTCP, Filter{}, func(b []byte) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_, err := conn.Write(b)
		return err
	}, conn.Close)
	log.Printf("[tcp-sync] client %d connected: %s", id, conn.RemoteAddr())
	defer func() {
		s.Hub.Unsubscribe(id)
		log.Printf("[tcp-sync] client %d disconnected", id)
	}()

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var f Filter
		if err := json.Unmarshal(line, &f); err != nil {
			log.Printf("[tcp-sync] client %d sent a bad filter: %v", id, err)
			continue
		}
		s.Hub.SetFilter(id, f)
	}
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}
