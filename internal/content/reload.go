package content

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"coursehub/internal/catalog"
)

// Reloader rebuilds the catalog from Path and publishes it to Store.
// A failed load leaves the current snapshot in place.
type Reloader struct {
	Path     string
	Store    *catalog.Store
	Logger   *log.Logger
	OnReload func(prev, next *catalog.Catalog)

	mu sync.Mutex // one rebuild at a time
}

func NewReloader(path string, store *catalog.Store, logger *log.Logger) *Reloader {
	if logger == nil {
		logger = log.Default()
	}
	return &Reloader{Path: path, Store: store, Logger: logger}
}

func (r *Reloader) Reload() (*catalog.Catalog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	courses, err := Load(r.Path)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}

	next := catalog.New(courses)
	prev := r.Store.Swap(next)

	r.Logger.Printf("[content] catalog loaded from %s: %d courses, %d topics", r.Path, len(courses), next.Len())
	if prev != nil && prev.Len() > 0 {
		if d, err := catalog.Diff(prev, next); err != nil {
			r.Logger.Printf("[content] diff failed: %v", err)
		} else if d != "" {
			r.Logger.Printf("[content] topic order changed:\n%s", strings.TrimRight(d, "\n"))
		}
	}

	if r.OnReload != nil {
		r.OnReload(prev, next)
	}
	return next, nil
}
