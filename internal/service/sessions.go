package service

import (
	"sync"

	"github.com/mvoloshin/exchange-bot/internal/domain"
)

// SessionStore holds the single in-progress session per user. It is
// process-scoped and intentionally not durable: an unconfirmed operation
// carries no persistence guarantee. Sessions are copied on read, so a
// caller mutates its own copy and publishes it back with Set.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]domain.Session
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]domain.Session),
	}
}

// Get returns a copy of the user's session, if any.
func (s *SessionStore) Get(userID int64) (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	return sess, ok
}

// Set stores the session, replacing any existing one for that user.
func (s *SessionStore) Set(sess domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.UserID] = sess
}

// Clear removes the user's session.
func (s *SessionStore) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
