package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"net"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"coursehub/internal/catalog"
	"coursehub/internal/grpcserver"
	synchub "coursehub/internal/sync"
	"coursehub/internal/testutil"
)

const contentDoc = `
html:
  title: HTML
  sections:
    basics:
      title: Basics
      topics:
        - id: h1
          title: Intro
        - id: h2
          title: Head
css:
  title: CSS
  sections:
    basics:
      title: Basics
      topics:
        - id: c1
          title: Selectors
        - id: h1
          title: Shadowed
`

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	if err := app.Run(context.Background(), append([]string{"coursehub"}, args...)); err != nil {
		t.Fatalf("run %v: %v (%s)", args, err, out.String())
	}
	return out.String()
}

func writeContent(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "courses.yaml")
	if err := os.WriteFile(p, []byte(contentDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestValidate(t *testing.T) {
	out := run(t, "validate", writeContent(t))
	if !strings.Contains(out, "2 courses, 4 topics, 1 duplicate ids") {
		t.Fatalf("output = %q", out)
	}
	if !strings.Contains(out, `topic id "h1" at position 3 shadowed by position 0`) {
		t.Errorf("missing duplicate warning: %q", out)
	}
}

func TestFlatten_Table(t *testing.T) {
	out := run(t, "flatten", writeContent(t))
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines: %q", len(lines), out)
	}
	want := []string{"h1", "h2", "c1", "h1"}
	for i, id := range want {
		fields := strings.Fields(lines[i+1])
		if fields[1] != id {
			t.Errorf("row %d id = %s, want %s", i, fields[1], id)
		}
	}
}

func TestFetchTopicsAndWriteCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	catalog.NewHandler(testutil.Store()).RegisterRoutes(r.Group(""))
	srv := httptest.NewServer(r)
	defer srv.Close()

	items, err := fetchTopics(context.Background(), srv.Client(), srv.URL, "")
	if err != nil {
		t.Fatalf("fetchTopics: %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("got %d topics", len(items))
	}

	css, err := fetchTopics(context.Background(), srv.Client(), srv.URL, "css")
	if err != nil || len(css) != 2 {
		t.Fatalf("css topics = %d, %v", len(css), err)
	}

	var buf bytes.Buffer
	if err := writeTopicsCSV(&buf, items); err != nil {
		t.Fatalf("writeTopicsCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 6 || rows[0][1] != "id" || rows[3][1] != "h3" || rows[3][5] != "forms" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "token.json")
	if _, err := readToken(p); err == nil {
		t.Fatal("expected error before login")
	}
	if err := saveToken(p, "abc"); err != nil {
		t.Fatalf("saveToken: %v", err)
	}
	if tok, err := readToken(p); err != nil || tok != "abc" {
		t.Fatalf("readToken = %q, %v", tok, err)
	}
	if err := clearToken(p); err != nil {
		t.Fatal(err)
	}
	if err := clearToken(p); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestWebsocketURL(t *testing.T) {
	got, err := websocketURL("https://example.com:8443/api", "/ws")
	if err != nil || got != "wss://example.com:8443/ws" {
		t.Fatalf("websocketURL = %q, %v", got, err)
	}
}

func TestWithFilterQuery(t *testing.T) {
	got, err := withFilterQuery("ws://example.com/ws", synchub.Filter{UserID: "u 1", CourseKey: "html"})
	if err != nil || got != "ws://example.com/ws?course=html&user=u+1" {
		t.Fatalf("withFilterQuery = %q, %v", got, err)
	}
	got, _ = withFilterQuery("ws://example.com/ws", synchub.Filter{})
	if got != "ws://example.com/ws" {
		t.Fatalf("empty filter = %q", got)
	}
}

func TestGRPCTopicPage(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	s, _ := grpcserver.NewGRPCServer(grpcserver.NewServer(testutil.Store(), nil))
	go func() { _ = s.Serve(lis) }()
	defer s.Stop()

	c, err := grpcserver.Dial("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// h3 closes the html course, so next crosses into css
	page, err := grpcTopicPage(ctx, c, "h3")
	if err != nil {
		t.Fatalf("grpcTopicPage: %v", err)
	}
	if page.Topic.ID != "h3" || page.Prev == nil || page.Prev.ID != "h2" || page.Next == nil || page.Next.ID != "c1" {
		t.Fatalf("page = %+v prev=%+v next=%+v", page.Topic, page.Prev, page.Next)
	}

	if _, err := grpcTopicPage(ctx, c, "ghost"); err == nil {
		t.Fatal("unknown topic returned no error")
	}
}
