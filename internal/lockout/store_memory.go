package lockout

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the single-process default. TTLs are enforced lazily on
// read; entries for quiet identifiers are reaped when next touched.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	record    Record
	expiresAt time.Time
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.records, key)
		return nil, nil
	}
	record := entry.record
	return &record, nil
}

func (s *MemoryStore) Put(_ context.Context, record *Record, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.Identifier] = memoryEntry{
		record:    *record,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}
