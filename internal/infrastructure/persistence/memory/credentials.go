package memory

import (
	"context"
	"sync"

	"github.com/sync-campus/sync-hub/internal/domain/shared"
	"github.com/sync-campus/sync-hub/internal/infrastructure/auth"
)

// CredentialStore is an in-memory auth.CredentialStore.
type CredentialStore struct {
	mu      sync.RWMutex
	byEmail map[string]auth.Credential
}

// NewCredentialStore creates an empty CredentialStore.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{byEmail: make(map[string]auth.Credential)}
}

var _ auth.CredentialStore = (*CredentialStore)(nil)

// CreateCredential implements auth.CredentialStore.
func (s *CredentialStore) CreateCredential(ctx context.Context, c auth.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := auth.NormalizeEmail(c.Email)
	if _, ok := s.byEmail[email]; ok {
		return shared.ErrEmailTaken
	}
	c.Email = email
	s.byEmail[email] = c
	return nil
}

// GetCredentialByEmail implements auth.CredentialStore.
func (s *CredentialStore) GetCredentialByEmail(ctx context.Context, email string) (*auth.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byEmail[auth.NormalizeEmail(email)]
	if !ok {
		return nil, shared.ErrInvalidCredentials
	}
	return &c, nil
}

// DeleteCredential implements auth.CredentialStore.
func (s *CredentialStore) DeleteCredential(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for email, c := range s.byEmail {
		if c.UserID == userID {
			delete(s.byEmail, email)
		}
	}
	return nil
}
