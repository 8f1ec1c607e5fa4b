package auth

import (
	"context"
	"sync"
	"time"
)

// StaticSessionStore is an in-memory store for single-process
// deployments and tests.
type StaticSessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStaticSessionStore() *StaticSessionStore {
	return &StaticSessionStore{sessions: make(map[string]*Session)}
}

func (s *StaticSessionStore) Get(_ context.Context, token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok || session.Expired(time.Now().UTC()) {
		return nil, ErrSessionNotFound
	}

	copied := *session

	return &copied, nil
}

func (s *StaticSessionStore) Put(_ context.Context, token string, session *Session, ttl time.Duration) error {
	copied := *session
	if ttl > 0 && copied.ExpiresAt.IsZero() {
		copied.ExpiresAt = time.Now().UTC().Add(ttl)
	}

	s.mu.Lock()
	s.sessions[token] = &copied
	s.mu.Unlock()

	return nil
}

func (s *StaticSessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()

	return nil
}
