package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long a login session stays valid.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Session ties a session ID to a user for a limited time.
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
}

// Sessions is an in-memory session manager.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

// NewSessions creates a session manager with the given TTL.
// A zero ttl means DefaultSessionTTL.
func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create starts a session for the user and returns its ID.
func (s *Sessions) Create(userID int64) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	s.mu.Unlock()
	return id
}

// Get returns the session for id, or an error if unknown or expired.
// Expired sessions are removed on lookup.
func (s *Sessions) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if time.Now().After(sess.ExpiresAt) {
		s.Delete(id)
		return nil, ErrSessionExpired
	}
	return sess, nil
}

// Delete removes a session.
func (s *Sessions) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}
