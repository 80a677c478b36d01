package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	synchub "coursehub/internal/sync"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7070", "TCP sync server address")
	pretty := flag.Bool("pretty", false, "pretty print JSON events instead of one line summaries")
	types := flag.String("types", "", "comma-separated event types to show (default all)")
	user := flag.String("user", "", "only show events for this user id")
	course := flag.String("course", "", "only show events for this course key")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f := newFilter(*types, *user)
	sub := synchub.Filter{UserID: f.user, CourseKey: strings.TrimSpace(*course)}
	for {
		if err := run(ctx, os.Stdout, *addr, *pretty, sub, f); err != nil {
			log.Printf("[sync-client] disconnected: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second): // auto reconnect
		}
	}
}

type filter struct {
	types map[string]bool
	user  string
}

func newFilter(types, user string) filter {
	f := filter{user: strings.TrimSpace(user)}
	for _, t := range strings.Split(types, ",") {
		if t = strings.TrimSpace(t); t != "" {
			if f.types == nil {
				f.types = make(map[string]bool)
			}
			f.types[t] = true
		}
	}
	return f
}

func (f filter) match(ev synchub.Event) bool {
	if f.types != nil && !f.types[ev.Type] {
		return false
	}
	// catalog events have no user and are always shown
	if f.user != "" && ev.UserID != "" && ev.UserID != f.user {
		return false
	}
	return true
}

func run(ctx context.Context, w io.Writer, addr string, pretty bool, sub synchub.Filter, f filter) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	log.Printf("[sync-client] connected to %s", addr)
	if err := subscribe(conn, sub); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	return consume(conn, w, pretty, f)
}

// subscribe asks the server to narrow the stream; an empty filter sends nothing.
func subscribe(w io.Writer, sub synchub.Filter) error {
	if sub == (synchub.Filter{}) {
		return nil
	}
	b, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

func consume(r io.Reader, w io.Writer, pretty bool, f filter) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Bytes()

		var ev synchub.Event
		if err := json.Unmarshal(line, &ev); err != nil || ev.Type == "" {
			// not an event: print raw
			fmt.Fprintln(w, string(line))
			continue
		}
		if !f.match(ev) {
			continue
		}
		if pretty {
			b, _ := json.MarshalIndent(ev, "", "  ")
			fmt.Fprintln(w, string(b))
			continue
		}
		fmt.Fprintln(w, summarize(ev))
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return io.EOF
}

func summarize(ev synchub.Event) string {
	at := ev.At.Local().Format("15:04:05")
	switch ev.Type {
	case synchub.EventProgressCompleted:
		return fmt.Sprintf("%s %s completed %s (%s)", at, ev.UserID, ev.TopicID, ev.CourseKey)
	case synchub.EventEnrollmentUpdate:
		return fmt.Sprintf("%s %s %s %s at %s", at, ev.UserID, ev.Status, ev.CourseKey, ev.TopicID)
	case synchub.EventEnrollmentDelete:
		return fmt.Sprintf("%s %s left %s", at, ev.UserID, ev.CourseKey)
	case synchub.EventCatalogReloaded:
		return fmt.Sprintf("%s catalog reloaded: %d topics", at, ev.Topics)
	case synchub.EventSubscribed:
		return fmt.Sprintf("%s subscribed over %s (%d clients) user=%q course=%q",
			at, ev.Transport, ev.Clients, ev.UserID, ev.CourseKey)
	default:
		return fmt.Sprintf("%s %s", at, ev.Type)
	}
}
