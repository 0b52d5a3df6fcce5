package index

import (
	"sync/atomic"

	"github.com/kailas-cloud/tabdex/internal/domain/document"
)

// Live is the store visible to readers. Rebuilds fill a fresh Store and Swap
// it in, so readers never observe a half-built index.
type Live struct {
	cur atomic.Pointer[Store]
}

// NewLive wraps an initial store. A nil store is replaced by an empty one.
func NewLive(s *Store) *Live {
	if s == nil {
		s = NewStore(Config{})
	}
	l := &Live{}
	l.cur.Store(s)
	return l
}

// Current returns the store readers should query.
func (l *Live) Current() *Store { return l.cur.Load() }

// Swap publishes next and returns the previous store.
func (l *Live) Swap(next *Store) *Store { return l.cur.Swap(next) }

// Search queries the current store.
func (l *Live) Search(field document.Field, query string, limit int) []Hit {
	return l.Current().Search(field, query, limit)
}

// Get looks up a document in the current store.
func (l *Live) Get(id string) (document.Document, bool) {
	return l.Current().Get(id)
}

// Len returns the document count of the current store.
func (l *Live) Len() int { return l.Current().Len() }
