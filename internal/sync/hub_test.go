package sync

import (
	"bufio"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func startTCP(t *testing.T, hub *Hub) (net.Conn, *bufio.Reader) {
	t.Helper()
	srv := NewServer("127.0.0.1:0", hub)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()
	t.Cleanup(func() {
		if err := srv.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
		if err := <-done; err != nil {
			t.Errorf("Serve after Close = %v, want nil", err)
		}
	})

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	return conn, bufio.NewReader(conn)
}

func readEvent(t *testing.T, rd *bufio.Reader) Event {
	t.Helper()
	line, err := rd.ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev Event
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		t.Fatalf("decode %q: %v", line, err)
	}
	return ev
}

func TestFilter_Match(t *testing.T) {
	tests := []struct {
		f    Filter
		ev   Event
		want bool
	}{
		{Filter{}, Event{UserID: "u1", CourseKey: "html"}, true},
		{Filter{UserID: "u1"}, Event{UserID: "u1", CourseKey: "html"}, true},
		{Filter{UserID: "u1"}, Event{UserID: "u2"}, false},
		{Filter{CourseKey: "css"}, Event{UserID: "u1", CourseKey: "html"}, false},
		{Filter{UserID: "u1", CourseKey: "css"}, Event{Type: EventCatalogReloaded}, true},
	}
	for _, tt := range tests {
		if got := tt.f.Match(tt.ev); got != tt.want {
			t.Errorf("%+v.Match(%+v) = %v, want %v", tt.f, tt.ev, got, tt.want)
		}
	}
}

func TestServer_TCPClientReceivesEvents(t *testing.T) {
	hub := NewHub()
	_, rd := startTCP(t, hub)

	if ev := readEvent(t, rd); ev.Type != EventSubscribed || ev.Transport != TransportTCP || ev.Clients != 1 {
		t.Fatalf("subscribed = %+v", ev)
	}

	if n := hub.Broadcast(Event{Type: EventProgressCompleted, UserID: "u1", TopicID: "t1"}); n != 1 {
		t.Fatalf("Broadcast delivered to %d", n)
	}
	ev := readEvent(t, rd)
	if ev.Type != EventProgressCompleted || ev.TopicID != "t1" || ev.At.IsZero() {
		t.Fatalf("event = %+v", ev)
	}
}

func TestServer_TCPFilterLine(t *testing.T) {
	hub := NewHub()
	conn, rd := startTCP(t, hub)
	readEvent(t, rd)

	if _, err := conn.Write([]byte(`{"user_id":"u1","course_key":"html"}` + "\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if ev := readEvent(t, rd); ev.Type != EventSubscribed || ev.UserID != "u1" || ev.CourseKey != "html" {
		t.Fatalf("ack = %+v", ev)
	}

	hub.Broadcast(Event{Type: EventProgressCompleted, UserID: "u2", CourseKey: "html"})
	hub.Broadcast(Event{Type: EventEnrollmentUpdate, UserID: "u1", CourseKey: "css"})
	hub.Broadcast(Event{Type: EventEnrollmentUpdate, UserID: "u1", CourseKey: "html", TopicID: "h2"})

	if ev := readEvent(t, rd); ev.Type != EventEnrollmentUpdate || ev.TopicID != "h2" {
		t.Fatalf("first delivered event = %+v, want the u1/html update", ev)
	}
}

func TestWSHandler_FiltersByQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	r := gin.New()
	r.GET("/ws", WSHandler(hub, nil))
	ts := httptest.NewServer(r)
	defer ts.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws?course=css", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()
	_ = ws.SetReadDeadline(time.Now().Add(3 * time.Second))

	var ev Event
	if err := ws.ReadJSON(&ev); err != nil || ev.Type != EventSubscribed || ev.Transport != TransportWS || ev.CourseKey != "css" {
		t.Fatalf("subscribed = %+v, %v", ev, err)
	}
	if hub.Stats().WSClients != 1 {
		t.Fatalf("stats = %+v", hub.Stats())
	}

	if n := hub.Broadcast(Event{Type: EventProgressCompleted, UserID: "u1", CourseKey: "html"}); n != 0 {
		t.Fatalf("html event delivered to %d clients", n)
	}
	hub.Broadcast(Event{Type: EventCatalogReloaded, Topics: 42})

	if err := ws.ReadJSON(&ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.Type != EventCatalogReloaded || ev.Topics != 42 {
		t.Fatalf("event = %+v", ev)
	}

	hub.CloseAll()
	if s := hub.Stats(); s.WSClients != 0 || s.TCPClients != 0 {
		t.Fatalf("stats after CloseAll = %+v", s)
	}
}

func TestWSHandler_RejectsForeignOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", WSHandler(NewHub(), []string{"https://learn.example.com"}))
	ts := httptest.NewServer(r)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, res, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example"}})
	if err == nil || res == nil || res.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign origin: err = %v, res = %+v", err, res)
	}
}
