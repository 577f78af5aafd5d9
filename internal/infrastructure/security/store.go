package security

import (
	"context"
	"sync"
	"time"
)

// RateLimitEntry is the failure history of one (account id, ip) pair.
type RateLimitEntry struct {
	FailureTimestamps []time.Time `json:"failureTimestamps"`
	LockedUntil       *time.Time  `json:"lockedUntil,omitempty"`
}

func (e RateLimitEntry) empty() bool {
	return e.LockedUntil == nil && len(e.FailureTimestamps) == 0
}

// RateLimitStore persists limiter entries. Implementations only store; the
// limiter owns every read-modify-write and never splits one across calls.
type RateLimitStore interface {
	Get(ctx context.Context, key string) (RateLimitEntry, bool, error)
	Set(ctx context.Context, key string, entry RateLimitEntry) error
	Delete(ctx context.Context, key string) error
	// Range calls fn for every entry until fn returns false. fn may call Set
	// and Delete on the same store.
	Range(ctx context.Context, fn func(key string, entry RateLimitEntry) bool) error
}

// MemoryStore is a process-local RateLimitStore.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]RateLimitEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]RateLimitEntry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (RateLimitEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return RateLimitEntry{}, false, nil
	}
	return cloneEntry(e), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, entry RateLimitEntry) error {
	s.mu.Lock()
	s.entries[key] = cloneEntry(entry)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Range iterates over a snapshot taken under the read lock.
func (s *MemoryStore) Range(_ context.Context, fn func(key string, entry RateLimitEntry) bool) error {
	s.mu.RLock()
	snapshot := make(map[string]RateLimitEntry, len(s.entries))
	for k, v := range s.entries {
		snapshot[k] = cloneEntry(v)
	}
	s.mu.RUnlock()

	for k, v := range snapshot {
		if !fn(k, v) {
			return nil
		}
	}
	return nil
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func cloneEntry(e RateLimitEntry) RateLimitEntry {
	out := RateLimitEntry{}
	if len(e.FailureTimestamps) > 0 {
		out.FailureTimestamps = append([]time.Time(nil), e.FailureTimestamps...)
	}
	if e.LockedUntil != nil {
		t := *e.LockedUntil
		out.LockedUntil = &t
	}
	return out
}
