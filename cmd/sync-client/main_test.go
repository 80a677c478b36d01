package main

import (
	"bytes"
	"strings"
	"testing"

	synchub "coursehub/internal/sync"
)

const stream = `{"type":"subscribed","transport":"tcp","clients":1,"user_id":"u1","at":"2024-05-01T10:00:00Z"}
{"type":"progress.completed","user_id":"u1","topic_id":"h1","course_key":"html","at":"2024-05-01T10:00:00Z"}
{"type":"progress.completed","user_id":"u2","topic_id":"h2","course_key":"html","at":"2024-05-01T10:00:00Z"}
{"type":"catalog.reloaded","topics":12,"at":"2024-05-01T10:00:00Z"}
plain text
`

func TestConsume_Filters(t *testing.T) {
	var out bytes.Buffer
	_ = consume(strings.NewReader(stream), &out, false, newFilter("progress.completed, catalog.reloaded", "u1"))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.Contains(lines[0], "u1 completed h1 (html)") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "catalog reloaded: 12 topics") {
		t.Errorf("line 1 = %q", lines[1])
	}
	if lines[2] != "plain text" {
		t.Errorf("line 2 = %q", lines[2])
	}
}

func TestNewFilter_Empty(t *testing.T) {
	f := newFilter(" , ", "")
	if f.types != nil {
		t.Fatalf("types = %v", f.types)
	}
}

func TestConsume_Subscribed(t *testing.T) {
	var out bytes.Buffer
	_ = consume(strings.NewReader(stream), &out, false, newFilter("subscribed", ""))

	got := strings.TrimSpace(out.String())
	if !strings.Contains(got, `subscribed over tcp (1 clients) user="u1"`) {
		t.Fatalf("out = %q", got)
	}
}

func TestSubscribe(t *testing.T) {
	var buf bytes.Buffer
	if err := subscribe(&buf, synchub.Filter{}); err != nil || buf.Len() != 0 {
		t.Fatalf("empty filter wrote %q, %v", buf.String(), err)
	}
	if err := subscribe(&buf, synchub.Filter{UserID: "u1", CourseKey: "html"}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if got := buf.String(); got != `{"user_id":"u1","course_key":"html"}`+"\n" {
		t.Fatalf("wrote %q", got)
	}
}
