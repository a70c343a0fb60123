package store

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore is the in-process Store used when the renderer runs in the
// same process as the core. Writes are ordered by a monotonic sequence so
// Latest is deterministic even within one clock tick.
type MemoryStore struct {
	mu      sync.RWMutex
	values  map[string][]byte
	seq     uint64
	written map[string]uint64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values:  make(map[string][]byte),
		written: make(map[string]uint64),
	}
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]byte, len(value))
	copy(copied, value)
	s.values[key] = copied
	s.seq++
	s.written[key] = s.seq
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	copied := make([]byte, len(value))
	copy(copied, value)
	return copied, nil
}

// Latest implements Store.
func (s *MemoryStore) Latest(_ context.Context, prefix string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latestKey string
	var latestSeq uint64
	for key, seq := range s.written {
		if !strings.HasPrefix(key, prefix+".") {
			continue
		}
		if seq > latestSeq {
			latestSeq = seq
			latestKey = key
		}
	}
	if latestKey == "" {
		return "", ErrNotFound
	}
	return latestKey, nil
}
