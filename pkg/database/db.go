package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const memoryPath = ":memory:"

type Config struct {
	Path        string
	BusyTimeout time.Duration // zero means 5s
}

func DefaultConfig() Config {
	if p := os.Getenv("COURSEHUB_DB_PATH"); p != "" {
		return Config{Path: p}
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return Config{Path: filepath.Join(home, ".coursehub", "data.db")}
}

// DSN carries the pragmas as driver parameters so that every pooled
// connection gets them, not only the first one.
func (c Config) DSN() string {
	timeout := c.BusyTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_busy_timeout", strconv.FormatInt(timeout.Milliseconds(), 10))
	if c.Path != memoryPath {
		q.Set("_journal_mode", "WAL")
	}
	return c.Path + "?" + q.Encode()
}

// Open creates the data directory if needed and returns a pinged handle.
// An in-memory database is pinned to one connection, since each new
// connection would otherwise see an empty database.
func Open(cfg Config) (*sql.DB, error) {
	if cfg.Path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("ensure data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if cfg.Path == memoryPath {
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", cfg.Path, err)
	}
	return db, nil
}

// MustOpen opens the database and applies the schema, exiting on failure.
func MustOpen(cfg Config) *sql.DB {
	db, err := Open(cfg)
	if err == nil {
		if err = Migrate(db); err != nil {
			_ = db.Close()
		}
	}
	if err != nil {
		log.Fatalf("[db] %v", err)
	}
	log.Printf("[db] using %s", cfg.Path)
	return db
}
