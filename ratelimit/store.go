// Package ratelimit keeps short-lived counters keyed by identifier and builds
// login lockout and request limiting on top of them.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Store is a counter store whose entries expire ttl after the first increment.
type Store interface {
	// Incr adds one to key and returns the new value. A missing or expired
	// key starts a new window of length ttl.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// Get returns the current value, 0 when missing or expired.
	Get(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

// MemoryStore is a Store for a single process.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	nowFunc func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: map[string]memoryEntry{},
		nowFunc: time.Now,
	}
}

func (s *MemoryStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowFunc()
	e, ok := s.entries[key]
	if !ok || !now.Before(e.expiresAt) {
		e = memoryEntry{expiresAt: now.Add(ttl)}
	}
	e.count++
	s.entries[key] = e
	return e.count, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return 0, nil
	}
	if !s.nowFunc().Before(e.expiresAt) {
		delete(s.entries, key)
		return 0, nil
	}
	return e.count, nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
