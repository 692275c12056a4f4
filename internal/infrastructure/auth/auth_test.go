package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sync-campus/sync-hub/internal/domain/shared"
	"github.com/sync-campus/sync-hub/internal/infrastructure/auth"
	"github.com/sync-campus/sync-hub/internal/infrastructure/persistence/memory"
	"github.com/sync-campus/sync-hub/pkg/idgen"
)

func newProvider() *auth.PasswordProvider {
	return auth.NewPasswordProvider(
		memory.NewCredentialStore(),
		auth.NewPasswordHasher(bcrypt.MinCost),
		idgen.NewSequence("user"),
	)
}

func TestPasswordProvider_SignupAndLogin(t *testing.T) {
	ctx := context.Background()
	p := newProvider()

	id, err := p.CreateAccount(ctx, "Jane@Example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)

	got, err := p.Authenticate(ctx, "jane@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = p.Authenticate(ctx, "jane@example.com", "wrong-password")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = p.Authenticate(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestPasswordProvider_Validation(t *testing.T) {
	ctx := context.Background()
	p := newProvider()

	_, err := p.CreateAccount(ctx, "not-an-email", "secret123")
	assert.ErrorIs(t, err, shared.ErrInvalidEmail)

	_, err = p.CreateAccount(ctx, "jane@example.com", "123")
	assert.ErrorIs(t, err, shared.ErrWeakPassword)

	_, err = p.CreateAccount(ctx, "jane@example.com", "secret123")
	require.NoError(t, err)
	_, err = p.CreateAccount(ctx, "JANE@example.com", "other-secret")
	assert.ErrorIs(t, err, shared.ErrEmailTaken)
}

func TestPasswordProvider_DeleteAccount(t *testing.T) {
	ctx := context.Background()
	p := newProvider()

	id, err := p.CreateAccount(ctx, "jane@example.com", "secret123")
	require.NoError(t, err)
	require.NoError(t, p.DeleteAccount(ctx, id))

	_, err = p.Authenticate(ctx, "jane@example.com", "secret123")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestPasswordProvider_CurrentUserID(t *testing.T) {
	p := newProvider()

	_, ok := p.CurrentUserID(context.Background())
	assert.False(t, ok)

	id, ok := p.CurrentUserID(auth.WithUserID(context.Background(), "u1"))
	assert.True(t, ok)
	assert.Equal(t, "u1", id)
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	svc := auth.NewTokenService("test-secret", time.Hour, "sync").WithNow(func() time.Time { return now })

	token, exp, err := svc.Issue("u1")
	require.NoError(t, err)
	assert.True(t, now.Add(time.Hour).Equal(exp))

	id, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", id)

	now = now.Add(2 * time.Hour)
	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestTokenService_RejectsForeignTokens(t *testing.T) {
	a := auth.NewTokenService("secret-a", time.Hour, "sync")
	b := auth.NewTokenService("secret-b", time.Hour, "sync")

	token, _, err := a.Issue("u1")
	require.NoError(t, err)

	_, err = b.Validate(token)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)

	_, err = a.Validate("garbage")
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)

	_, _, err = a.Issue("")
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}
