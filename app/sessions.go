package app

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// sessionStore holds the admin login tokens in memory. Tokens do not survive a restart.
type sessionStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	expiry map[string]time.Time
}

func newSessionStore(ttl time.Duration, now func() time.Time) *sessionStore {
	return &sessionStore{
		ttl:    ttl,
		now:    now,
		expiry: make(map[string]time.Time),
	}
}

// Create issues a new token.
func (s *sessionStore) Create() string {
	token := uuid.New().String()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	s.expiry[token] = s.now().Add(s.ttl)
	return token
}

// Valid reports whether token was issued and has not expired or been revoked.
func (s *sessionStore) Valid(token string) bool {
	if token == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.expiry[token]
	if !ok {
		return false
	}
	if !s.now().Before(exp) {
		delete(s.expiry, token)
		return false
	}
	return true
}

func (s *sessionStore) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.expiry, token)
}

func (s *sessionStore) pruneLocked() {
	now := s.now()
	for token, exp := range s.expiry {
		if !now.Before(exp) {
			delete(s.expiry, token)
		}
	}
}
