package userstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonwraymond/authops/auth"
)

// MemoryStore is an in-memory credential store. Intended for demos and
// tests; everything is lost when the process exits.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*User
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*User)}
}

// Create implements Store.Create.
func (s *MemoryStore) Create(_ context.Context, username, password string, roles ...string) error {
	if username == "" {
		return fmt.Errorf("create user: empty username")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[username]; exists {
		return fmt.Errorf("%w: %q", ErrUserExists, username)
	}
	s.users[username] = &User{
		Username:     username,
		PasswordHash: hash,
		Roles:        normalizeRoles(roles),
	}
	return nil
}

// Lookup implements auth.UserLookup.
func (s *MemoryStore) Lookup(_ context.Context, username string) (*auth.Identity, error) {
	s.mu.RLock()
	u, ok := s.users[username]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", auth.ErrUserNotFound, username)
	}
	return identity(u), nil
}

// Verify implements auth.CredentialVerifier. Unknown user and wrong
// password are indistinguishable to the caller.
func (s *MemoryStore) Verify(_ context.Context, username, password string) (*auth.Identity, error) {
	s.mu.RLock()
	u, ok := s.users[username]
	s.mu.RUnlock()

	if !ok || !VerifyPassword(u.PasswordHash, password) {
		return nil, auth.ErrBadCredentials
	}
	return identity(u), nil
}

// Ping implements Store.Ping. Always healthy.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Close implements Store.Close.
func (s *MemoryStore) Close() error {
	return nil
}
