package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sync-campus/sync-hub/internal/domain/profile"
	"github.com/sync-campus/sync-hub/internal/domain/shared"
)

func seedProfile(t *testing.T, s *Store, id, username string) *profile.UserProfile {
	t.Helper()
	p, err := profile.NewUserProfile(profile.NewUserProfileParams{
		ID:       id,
		Username: username,
		Name:     "Test User",
		Now:      time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, s.CreateProfile(context.Background(), p))
	return p
}

func TestStore_ProfileLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedProfile(t, s, "u1", "jane")

	require.ErrorIs(t, s.CreateProfile(ctx, &profile.UserProfile{ID: "u1"}), shared.ErrAlreadyExists)

	require.NoError(t, s.UpdateProfile(ctx, "u1", profile.Patch{TotalPoints: profile.Ptr(70)}))
	got, err := s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 70, got.TotalPoints)
	assert.Equal(t, "jane", got.Username)

	got.TotalPoints = 9999
	again, _ := s.GetProfile(ctx, "u1")
	assert.Equal(t, 70, again.TotalPoints)

	require.NoError(t, s.DeleteProfile(ctx, "u1"))
	_, err = s.GetProfile(ctx, "u1")
	assert.ErrorIs(t, err, shared.ErrProfileNotFound)
	assert.ErrorIs(t, s.UpdateProfile(ctx, "u1", profile.Patch{}), shared.ErrProfileNotFound)
}

func TestStore_UsernameRegistry(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.ReserveUsername(ctx, "jane", "u1"))
	require.NoError(t, s.ReserveUsername(ctx, "jane", "u1"))
	assert.ErrorIs(t, s.ReserveUsername(ctx, "jane", "u2"), shared.ErrUsernameTaken)

	id, err := s.LookupUsername(ctx, "jane")
	require.NoError(t, err)
	assert.Equal(t, "u1", id)

	require.NoError(t, s.ReleaseUsername(ctx, "jane"))
	require.NoError(t, s.ReleaseUsername(ctx, "jane"))
	_, err = s.LookupUsername(ctx, "jane")
	assert.ErrorIs(t, err, shared.ErrProfileNotFound)
}

func TestStore_BuddiesUpsertAndCascade(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedProfile(t, s, "u1", "jane")

	require.NoError(t, s.PutBuddy(ctx, "u1", profile.BuddyLink{BuddyID: "b1", SharedClasses: []string{"CS101"}}))
	require.NoError(t, s.PutBuddy(ctx, "u1", profile.BuddyLink{BuddyID: "b2"}))
	require.NoError(t, s.PutBuddy(ctx, "u1", profile.BuddyLink{BuddyID: "b1", SharedClasses: []string{"ART"}}))

	links, err := s.ListBuddies(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, []string{"ART"}, links[0].SharedClasses)

	require.NoError(t, s.DeleteBuddy(ctx, "u1", "b2"))
	links, _ = s.ListBuddies(ctx, "u1")
	assert.Len(t, links, 1)

	require.NoError(t, s.DeleteProfile(ctx, "u1"))
	links, _ = s.ListBuddies(ctx, "u1")
	assert.Empty(t, links)
}

func TestStore_WithinTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context, tx profile.Store) error {
		require.NoError(t, tx.ReserveUsername(ctx, "jane", "u1"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.LookupUsername(ctx, "jane")
	assert.ErrorIs(t, err, shared.ErrProfileNotFound)

	err = s.WithinTx(ctx, func(ctx context.Context, tx profile.Store) error {
		return tx.ReserveUsername(ctx, "jane", "u1")
	})
	require.NoError(t, err)

	id, err := s.LookupUsername(ctx, "jane")
	require.NoError(t, err)
	assert.Equal(t, "u1", id)
}

func TestCredentialStore(t *testing.T) {
	ctx := context.Background()
	s := NewCredentialStore()

	require.NoError(t, s.CreateCredential(ctx, credential("u1", "Jane@Example.com")))
	assert.ErrorIs(t, s.CreateCredential(ctx, credential("u2", "jane@example.com")), shared.ErrEmailTaken)

	c, err := s.GetCredentialByEmail(ctx, " JANE@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UserID)

	require.NoError(t, s.DeleteCredential(ctx, "u1"))
	_, err = s.GetCredentialByEmail(ctx, "jane@example.com")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
