package session

import (
	"context"
	"sync"

	id "admin-gateway/pkg/domain"
)

// MemoryStore keeps sessions in process memory. It is the default for
// single-instance deployments and for tests; Redis takes over when the
// gateway runs replicated.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]Session
}

func NewMemory() *MemoryStore {
	return &MemoryStore{sessions: make(map[id.SessionID]Session)}
}

func (s *MemoryStore) Create(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = *sess
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID id.SessionID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	// Copy so callers cannot mutate the stored record.
	out := sess
	return &out, nil
}

func (s *MemoryStore) Update(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.ID]; !ok {
		return ErrNotFound
	}
	s.sessions[sess.ID] = *sess
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Len reports the number of stored sessions, for tests.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
