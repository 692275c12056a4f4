// Package memory implements an in-process ProfileStore and CredentialStore.
// It backs local development (STORE_DRIVER=memory) and the application tests.
// No external dependencies - uses only standard library.
package memory

import (
	"context"
	"sync"

	"github.com/sync-campus/sync-hub/internal/domain/profile"
	"github.com/sync-campus/sync-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATE
// ══════════════════════════════════════════════════════════════════════════════

type state struct {
	profiles  map[string]*profile.UserProfile
	usernames map[string]string
	buddies   map[string][]profile.BuddyLink
}

func newState() *state {
	return &state{
		profiles:  make(map[string]*profile.UserProfile),
		usernames: make(map[string]string),
		buddies:   make(map[string][]profile.BuddyLink),
	}
}

func (s *state) clone() *state {
	c := newState()
	for id, p := range s.profiles {
		c.profiles[id] = p.Clone()
	}
	for u, id := range s.usernames {
		c.usernames[u] = id
	}
	for owner, links := range s.buddies {
		c.buddies[owner] = profile.CloneBuddies(links)
	}
	return c
}

func (s *state) getProfile(id string) (*profile.UserProfile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, shared.ErrProfileNotFound
	}
	out := p.Clone()
	out.Buddies = []profile.BuddyLink{}
	return out, nil
}

func (s *state) createProfile(p *profile.UserProfile) error {
	if _, ok := s.profiles[p.ID]; ok {
		return shared.ErrProfileExists
	}
	stored := p.Clone()
	stored.Buddies = nil
	s.profiles[p.ID] = stored
	return nil
}

func (s *state) updateProfile(id string, patch profile.Patch) error {
	p, ok := s.profiles[id]
	if !ok {
		return shared.ErrProfileNotFound
	}
	patch.ApplyTo(p)
	return nil
}

func (s *state) deleteProfile(id string) error {
	delete(s.profiles, id)
	delete(s.buddies, id)
	return nil
}

func (s *state) reserveUsername(lower, id string) error {
	if owner, ok := s.usernames[lower]; ok && owner != id {
		return shared.ErrUsernameTaken
	}
	s.usernames[lower] = id
	return nil
}

func (s *state) releaseUsername(lower string) error {
	delete(s.usernames, lower)
	return nil
}

func (s *state) lookupUsername(lower string) (string, error) {
	id, ok := s.usernames[lower]
	if !ok {
		return "", shared.ErrProfileNotFound
	}
	return id, nil
}

func (s *state) listBuddies(ownerID string) []profile.BuddyLink {
	return profile.CloneBuddies(s.buddies[ownerID])
}

func (s *state) putBuddy(ownerID string, link profile.BuddyLink) {
	links := s.buddies[ownerID]
	for i := range links {
		if links[i].BuddyID == link.BuddyID {
			links[i] = profile.CloneBuddies([]profile.BuddyLink{link})[0]
			return
		}
	}
	s.buddies[ownerID] = append(links, profile.CloneBuddies([]profile.BuddyLink{link})...)
}

func (s *state) deleteBuddy(ownerID, buddyID string) {
	links := s.buddies[ownerID]
	out := links[:0]
	for _, l := range links {
		if l.BuddyID != buddyID {
			out = append(out, l)
		}
	}
	s.buddies[ownerID] = out
}

// ══════════════════════════════════════════════════════════════════════════════
// STORE
// ══════════════════════════════════════════════════════════════════════════════

// Store is a mutex-guarded in-memory profile.Store and profile.Transactor.
type Store struct {
	mu    sync.Mutex
	state *state
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{state: newState()}
}

var (
	_ profile.Store      = (*Store)(nil)
	_ profile.Transactor = (*Store)(nil)
)

// GetProfile implements profile.Store.
func (s *Store) GetProfile(ctx context.Context, id string) (*profile.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.getProfile(id)
}

// CreateProfile implements profile.Store.
func (s *Store) CreateProfile(ctx context.Context, p *profile.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.createProfile(p)
}

// UpdateProfile implements profile.Store.
func (s *Store) UpdateProfile(ctx context.Context, id string, patch profile.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.updateProfile(id, patch)
}

// DeleteProfile implements profile.Store.
func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.deleteProfile(id)
}

// ReserveUsername implements profile.Store.
func (s *Store) ReserveUsername(ctx context.Context, usernameLower, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.reserveUsername(usernameLower, id)
}

// ReleaseUsername implements profile.Store.
func (s *Store) ReleaseUsername(ctx context.Context, usernameLower string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.releaseUsername(usernameLower)
}

// LookupUsername implements profile.Store.
func (s *Store) LookupUsername(ctx context.Context, usernameLower string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.lookupUsername(usernameLower)
}

// ListBuddies implements profile.Store.
func (s *Store) ListBuddies(ctx context.Context, ownerID string) ([]profile.BuddyLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.listBuddies(ownerID), nil
}

// PutBuddy implements profile.Store.
func (s *Store) PutBuddy(ctx context.Context, ownerID string, link profile.BuddyLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.putBuddy(ownerID, link)
	return nil
}

// DeleteBuddy implements profile.Store.
func (s *Store) DeleteBuddy(ctx context.Context, ownerID, buddyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.deleteBuddy(ownerID, buddyID)
	return nil
}

// WithinTx runs fn against a copy of the state and commits it only when fn
// returns nil. Transactions are serialized.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx profile.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	if err := fn(ctx, &txStore{state: working}); err != nil {
		return err
	}
	s.state = working
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Transaction-bound store
// ──────────────────────────────────────────────────────────────────────────────

// txStore operates on the working copy; the owning Store's lock is held.
type txStore struct {
	state *state
}

func (t *txStore) GetProfile(ctx context.Context, id string) (*profile.UserProfile, error) {
	return t.state.getProfile(id)
}

func (t *txStore) CreateProfile(ctx context.Context, p *profile.UserProfile) error {
	return t.state.createProfile(p)
}

func (t *txStore) UpdateProfile(ctx context.Context, id string, patch profile.Patch) error {
	return t.state.updateProfile(id, patch)
}

func (t *txStore) DeleteProfile(ctx context.Context, id string) error {
	return t.state.deleteProfile(id)
}

func (t *txStore) ReserveUsername(ctx context.Context, usernameLower, id string) error {
	return t.state.reserveUsername(usernameLower, id)
}

func (t *txStore) ReleaseUsername(ctx context.Context, usernameLower string) error {
	return t.state.releaseUsername(usernameLower)
}

func (t *txStore) LookupUsername(ctx context.Context, usernameLower string) (string, error) {
	return t.state.lookupUsername(usernameLower)
}

func (t *txStore) ListBuddies(ctx context.Context, ownerID string) ([]profile.BuddyLink, error) {
	return t.state.listBuddies(ownerID), nil
}

func (t *txStore) PutBuddy(ctx context.Context, ownerID string, link profile.BuddyLink) error {
	t.state.putBuddy(ownerID, link)
	return nil
}

func (t *txStore) DeleteBuddy(ctx context.Context, ownerID, buddyID string) error {
	t.state.deleteBuddy(ownerID, buddyID)
	return nil
}
