package catalog

import (
	"sync/atomic"
)

// Store publishes catalog snapshots. Readers always get a complete snapshot;
// a reload replaces the pointer and never touches the old value.
type Store struct {
	cur atomic.Pointer[Catalog]
}

func NewStore(c *Catalog) *Store {
	if c == nil {
		c = New(nil)
	}
	s := &Store{}
	s.cur.Store(c)
	return s
}

func (s *Store) Load() *Catalog {
	return s.cur.Load()
}

// Swap installs next and returns the snapshot it replaced.
func (s *Store) Swap(next *Catalog) *Catalog {
	if next == nil {
		next = New(nil)
	}
	return s.cur.Swap(next)
}
