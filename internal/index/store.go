// Package index is the in-memory prefix index over document fields.
package index

import (
	"sort"
	"strings"
	"sync"

	"github.com/kailas-cloud/tabdex/internal/domain/document"
)

// Defaults for Config.
const (
	DefaultMaxTokenRunes = 32
	DefaultContextDepth  = 2
)

// Config controls tokenization.
type Config struct {
	// MaxTokenRunes caps the indexed prefix length. Full tokens are always indexed.
	MaxTokenRunes int
	// ContextDepth is how many following tokens pair with each token for proximity.
	ContextDepth int
}

func (c Config) withDefaults() Config {
	if c.MaxTokenRunes <= 0 {
		c.MaxTokenRunes = DefaultMaxTokenRunes
	}
	if c.ContextDepth <= 0 {
		c.ContextDepth = DefaultContextDepth
	}
	return c
}

// Hit is one document matched within one field.
type Hit struct {
	ID string
	// Seq is the insertion sequence of the document.
	Seq uint64
	// Proximity counts consecutive query word pairs found near each other.
	Proximity int
}

type pair struct{ a, b string }

type entry struct {
	doc  document.Document
	seq  uint64
	keys map[document.Field][]string
	toks map[document.Field][]string
	ctx  map[document.Field]map[pair]struct{}
}

// Store holds per-field postings and the document table. Safe for concurrent use.
type Store struct {
	cfg Config

	mu       sync.RWMutex
	postings map[document.Field]map[string]map[string]struct{}
	docs     map[string]*entry
	seq      uint64
}

// NewStore creates an empty store.
func NewStore(cfg Config) *Store {
	s := &Store{cfg: cfg.withDefaults()}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.postings = make(map[document.Field]map[string]map[string]struct{}, len(document.IndexedFields))
	for _, f := range document.IndexedFields {
		s.postings[f] = make(map[string]map[string]struct{})
	}
	s.docs = make(map[string]*entry)
}

// Add indexes docs. A document whose id is already present replaces the old
// one, and the old postings are retracted first.
func (s *Store) Add(docs ...document.Document) {
	prepared := make([]*entry, len(docs))
	for i := range docs {
		prepared[i] = s.prepare(docs[i])
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range prepared {
		if old, ok := s.docs[e.doc.ID()]; ok {
			s.retract(old)
		}
		s.seq++
		e.seq = s.seq
		id := e.doc.ID()
		for f, keys := range e.keys {
			posting := s.postings[f]
			for _, k := range keys {
				ids, ok := posting[k]
				if !ok {
					ids = make(map[string]struct{})
					posting[k] = ids
				}
				ids[id] = struct{}{}
			}
		}
		s.docs[id] = e
	}
}

// prepare tokenizes a document outside the lock.
func (s *Store) prepare(doc document.Document) *entry {
	e := &entry{
		doc:  doc,
		keys: make(map[document.Field][]string, len(document.IndexedFields)),
		toks: make(map[document.Field][]string, len(document.IndexedFields)),
		ctx:  make(map[document.Field]map[pair]struct{}, len(document.IndexedFields)),
	}
	for _, f := range document.IndexedFields {
		toks := Tokenize(doc.Text(f))
		if len(toks) == 0 {
			continue
		}
		seen := make(map[string]struct{})
		for _, t := range toks {
			for _, p := range Prefixes(t, s.cfg.MaxTokenRunes) {
				if _, dup := seen[p]; dup {
					continue
				}
				seen[p] = struct{}{}
				e.keys[f] = append(e.keys[f], p)
			}
		}
		e.toks[f] = toks
		e.ctx[f] = contextPairs(toks, s.cfg.ContextDepth)
	}
	return e
}

// contextPairs records ordered token pairs at most depth positions apart.
func contextPairs(toks []string, depth int) map[pair]struct{} {
	out := make(map[pair]struct{})
	for i := range toks {
		for j := i + 1; j < len(toks) && j <= i+depth; j++ {
			out[pair{toks[i], toks[j]}] = struct{}{}
		}
	}
	return out
}

func (s *Store) retract(e *entry) {
	id := e.doc.ID()
	for f, keys := range e.keys {
		posting := s.postings[f]
		for _, k := range keys {
			ids := posting[k]
			delete(ids, id)
			if len(ids) == 0 {
				delete(posting, k)
			}
		}
	}
	delete(s.docs, id)
}

// Clear empties postings and documents.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// Search returns documents whose field contains every query token as a word
// prefix, in insertion order, at most limit hits (no cap when limit <= 0).
func (s *Store) Search(field document.Field, query string, limit int) []Hit {
	qtoks := Tokenize(query)
	if len(qtoks) == 0 {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	posting, ok := s.postings[field]
	if !ok {
		return nil
	}

	var candidates map[string]struct{}
	for _, qt := range qtoks {
		ids := posting[truncate(qt, s.cfg.MaxTokenRunes)]
		if len(ids) == 0 {
			return nil
		}
		if candidates == nil {
			candidates = make(map[string]struct{}, len(ids))
			for id := range ids {
				candidates[id] = struct{}{}
			}
			continue
		}
		for id := range candidates {
			if _, ok := ids[id]; !ok {
				delete(candidates, id)
			}
		}
		if len(candidates) == 0 {
			return nil
		}
	}

	long := hasLong(qtoks, s.cfg.MaxTokenRunes)
	hits := make([]Hit, 0, len(candidates))
	for id := range candidates {
		e := s.docs[id]
		if long && !prefixesAll(e.toks[field], qtoks) {
			continue
		}
		hits = append(hits, Hit{ID: id, Seq: e.seq, Proximity: proximity(e.ctx[field], qtoks)})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Seq < hits[j].Seq })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// proximity counts consecutive query pairs present in the field context.
func proximity(ctx map[pair]struct{}, qtoks []string) int {
	n := 0
	for i := 0; i+1 < len(qtoks); i++ {
		if _, ok := ctx[pair{qtoks[i], qtoks[i+1]}]; ok {
			n++
		}
	}
	return n
}

func hasLong(qtoks []string, maxRunes int) bool {
	for _, t := range qtoks {
		if truncate(t, maxRunes) != t {
			return true
		}
	}
	return false
}

// prefixesAll verifies query tokens longer than the indexed prefix cap.
func prefixesAll(toks, qtoks []string) bool {
	for _, q := range qtoks {
		found := false
		for _, t := range toks {
			if strings.HasPrefix(t, q) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Get returns a document by id.
func (s *Store) Get(id string) (document.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.docs[id]
	if !ok {
		return document.Document{}, false
	}
	return e.doc, true
}

// Len returns the number of documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Keys returns the number of distinct posting keys across fields.
func (s *Store) Keys() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.postings {
		n += len(p)
	}
	return n
}
