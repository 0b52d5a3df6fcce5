// Package memory implements db.Store in process memory for single-node use and tests.
package memory

import (
	"context"
	"path"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/kailas-cloud/tabdex/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Store keeps hashes and plain values in maps guarded by a mutex.
type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
	hashes map[string]map[string]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		values: make(map[string][]byte),
		hashes: make(map[string]map[string]string),
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// WaitForReady returns immediately.
func (s *Store) WaitForReady(context.Context, time.Duration) error { return nil }

// Get returns a copy of the value at key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set stores a copy of value.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hashes, key)
	s.values[key] = v
	return nil
}

// IncrBy increments a decimal counter and returns the new value.
func (s *Store) IncrBy(_ context.Context, key string, val int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cur int64
	if raw, ok := s.values[key]; ok {
		n, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return 0, &db.Error{Op: db.OpIncrBy, Err: err}
		}
		cur = n
	}
	cur += val
	s.values[key] = []byte(strconv.FormatInt(cur, 10))
	return cur, nil
}

// HSet sets hash fields.
func (s *Store) HSet(_ context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hashes[key]
	if !ok {
		h = make(map[string]string, len(fields))
		s.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

// HGetAll returns a copy of the hash. A missing key yields an empty map.
func (s *Store) HGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneHash(s.hashes[key]), nil
}

// HGetAllMulti returns copies of several hashes.
func (s *Store) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		out[i] = cloneHash(s.hashes[k])
	}
	return out, nil
}

// Del removes keys of any kind.
func (s *Store) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
		delete(s.hashes, k)
	}
	return nil
}

// Exists reports whether key holds a value or hash.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, v := s.values[key]
	_, h := s.hashes[key]
	return v || h, nil
}

// Scan returns keys matching a glob pattern, sorted.
func (s *Store) Scan(_ context.Context, pattern string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.values {
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	for k := range s.hashes {
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func cloneHash(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
