package user

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps the token -> user mapping established by the authentication
// handoff. Sessions live in memory only; a restart requires re-authentication.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]User
	nextId   int
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]User),
		nextId:   1,
	}
}

// Handoff registers the user received from the authentication provider and
// returns the session token the client presents on subsequent requests.
func (s *SessionStore) Handoff(u User) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.Id == 0 {
		u.Id = s.nextId
		s.nextId++
	}
	token := uuid.NewString()
	s.sessions[token] = u
	return token
}

// Resolve returns the user associated with the given session token.
func (s *SessionStore) Resolve(token string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.sessions[token]
	if !ok {
		return User{}, ErrSessionNotFound
	}
	return u, nil
}

// Revoke removes the session for the given token. Revoking an unknown token is a no-op.
func (s *SessionStore) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}
