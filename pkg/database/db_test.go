package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func TestOpenAndMigrate(t *testing.T) {
	cfg := Config{Path: filepath.Join(t.TempDir(), "nested", "data.db")}
	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	// idempotent
	if err := Migrate(db); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	for _, table := range []string{"users", "topic_progress", "enrollments", "feedback"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestDefaultConfig_Env(t *testing.T) {
	t.Setenv("COURSEHUB_DB_PATH", "/tmp/x.db")
	if got := DefaultConfig().Path; got != "/tmp/x.db" {
		t.Fatalf("Path = %q", got)
	}
}

func TestConfig_DSN(t *testing.T) {
	got := Config{Path: "/data/app.db", BusyTimeout: 2 * time.Second}.DSN()
	want := "/data/app.db?_busy_timeout=2000&_foreign_keys=on&_journal_mode=WAL"
	if got != want {
		t.Fatalf("DSN = %q, want %q", got, want)
	}
	if got := (Config{Path: ":memory:"}).DSN(); got != ":memory:?_busy_timeout=5000&_foreign_keys=on" {
		t.Fatalf("memory DSN = %q", got)
	}
}

// Pragmas must hold on every pooled connection, not just the first.
func TestOpen_PragmasOnEveryConnection(t *testing.T) {
	db, err := Open(Config{Path: filepath.Join(t.TempDir(), "data.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	var conns []*sql.Conn
	for i := 0; i < 3; i++ {
		conn, err := db.Conn(ctx)
		if err != nil {
			t.Fatalf("Conn: %v", err)
		}
		conns = append(conns, conn)

		var fk int
		var mode string
		if err := conn.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&fk); err != nil {
			t.Fatalf("foreign_keys: %v", err)
		}
		if err := conn.QueryRowContext(ctx, `PRAGMA journal_mode`).Scan(&mode); err != nil {
			t.Fatalf("journal_mode: %v", err)
		}
		if fk != 1 || mode != "wal" {
			t.Errorf("conn %d: foreign_keys = %d journal_mode = %q", i, fk, mode)
		}
	}
	for _, c := range conns {
		_ = c.Close()
	}
}

func TestOpen_Memory(t *testing.T) {
	db, err := Open(Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	// a second query must see the same schema
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
}
