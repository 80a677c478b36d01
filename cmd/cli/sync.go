package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	cli "github.com/urfave/cli/v3"

	"coursehub/internal/notify"
	synchub "coursehub/internal/sync"
)

func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "user", Usage: "only events for this user id"},
		&cli.StringFlag{Name: "course", Usage: "only events for this course key"},
	}
}

func filterFrom(cmd *cli.Command) synchub.Filter {
	return synchub.Filter{UserID: cmd.String("user"), CourseKey: cmd.String("course")}
}

func syncCmd() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Follow live events",
		Commands: []*cli.Command{
			{
				Name:  "listen",
				Usage: "Tail the TCP event stream, reconnecting on failure",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "addr", Value: "127.0.0.1:7070", Usage: "TCP sync server address"},
					&cli.BoolFlag{Name: "pretty", Value: true, Usage: "pretty print JSON events"},
				}, filterFlags()...),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					for {
						if err := runSyncTCP(ctx, cmd.Root().Writer, cmd.String("addr"), cmd.Bool("pretty"), filterFrom(cmd)); err != nil {
							log.Printf("[sync] disconnected: %v", err)
						}
						select {
						case <-ctx.Done():
							return nil
						case <-time.After(time.Second):
						}
					}
				},
			},
			{
				Name:  "ws",
				Usage: "Subscribe to the websocket event stream",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "ws", Usage: "websocket URL (defaults to /ws on the API host)"},
				}, filterFlags()...),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					endpoint := cmd.String("ws")
					if endpoint == "" {
						var err error
						if endpoint, err = websocketURL(cmd.String("api"), "/ws"); err != nil {
							return fmt.Errorf("ws url: %w", err)
						}
					}
					endpoint, err := withFilterQuery(endpoint, filterFrom(cmd))
					if err != nil {
						return fmt.Errorf("ws url: %w", err)
					}
					return runWebSocket(cmd.Root().Writer, endpoint)
				},
			},
			{
				Name:  "notify",
				Usage: "Register for UDP catalog reload notices",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Value: "127.0.0.1:7071", Usage: "UDP notify server address"},
					&cli.StringFlag{Name: "user", Value: "cli", Usage: "id to register under"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runNotifyUDP(ctx, cmd.Root().Writer, cmd.String("addr"), cmd.String("user"))
				},
			},
		},
	}
}

func runSyncTCP(ctx context.Context, w io.Writer, addr string, pretty bool, f synchub.Filter) error {
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

	log.Printf("[sync] connected to %s", addr)
	if f != (synchub.Filter{}) {
		b, _ := json.Marshal(f)
		if _, err := conn.Write(append(b, '\n')); err != nil {
			return fmt.Errorf("subscribe: %w", err)
		}
	}
	reader := bufio.NewScanner(conn)
	for reader.Scan() {
		line := reader.Bytes()
		if !pretty {
			fmt.Fprintln(w, string(line))
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(line, &obj); err != nil {
			fmt.Fprintln(w, string(line))
			continue
		}
		_ = printJSON(w, obj)
	}
	if err := reader.Err(); err != nil {
		return err
	}
	return io.EOF
}

func runWebSocket(w io.Writer, wsURL string) error {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Printf("[sync] connected to %s", wsURL)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(msg))
	}
}

func runNotifyUDP(ctx context.Context, w io.Writer, addr, user string) error {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	reg, _ := json.Marshal(notify.RegisterMessage{Type: notify.RegisterMessageType, UserID: user})
	if _, err := conn.Write(reg); err != nil {
		return err
	}
	log.Printf("[notify] registered as %s at %s", user, addr)

	buf := make([]byte, 2048)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		fmt.Fprintln(w, string(buf[:n]))
	}
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}

func withFilterQuery(endpoint string, f synchub.Filter) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	if f.UserID != "" {
		q.Set("user", f.UserID)
	}
	if f.CourseKey != "" {
		q.Set("course", f.CourseKey)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
