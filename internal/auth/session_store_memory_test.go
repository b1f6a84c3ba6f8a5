package auth

import (
	"context"
	"sync"
)

// NewInMemorySessionStore returns a SessionStore backed by an in-memory map.
// Production memory mode uses memstore.Sessions.
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{tokens: make(map[string]string)}
}

// InMemorySessionStore implements SessionStore for the manager tests.
type InMemorySessionStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

// SetRefreshToken overwrites the user's current refresh token.
func (s *InMemorySessionStore) SetRefreshToken(_ context.Context, userID, refreshToken string) error {
	s.mu.Lock()
	s.tokens[userID] = refreshToken
	s.mu.Unlock()
	return nil
}

// SwapRefreshToken replaces the token only if it still equals expected.
func (s *InMemorySessionStore) SwapRefreshToken(_ context.Context, userID, expected, next string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.tokens[userID]; !ok || current != expected {
		return false, nil
	}
	s.tokens[userID] = next
	return true, nil
}

// ClearRefreshToken removes the user's refresh token.
func (s *InMemorySessionStore) ClearRefreshToken(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.tokens, userID)
	s.mu.Unlock()
	return nil
}

// Current returns the stored refresh token.
func (s *InMemorySessionStore) Current(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[userID]
}
