package auth

import (
	"context"
	"strings"
	"time"

	"github.com/sync-campus/sync-hub/internal/domain/shared"
	"github.com/sync-campus/sync-hub/pkg/idgen"
)

// PasswordProvider is an email/password account provider.
type PasswordProvider struct {
	store  CredentialStore
	hasher *PasswordHasher
	ids    idgen.Provider
	now    func() time.Time
}

// NewPasswordProvider creates a PasswordProvider.
func NewPasswordProvider(store CredentialStore, hasher *PasswordHasher, ids idgen.Provider) *PasswordProvider {
	return &PasswordProvider{
		store:  store,
		hasher: hasher,
		ids:    ids,
		now:    time.Now,
	}
}

// CurrentUserID returns the user authenticated for this request.
func (p *PasswordProvider) CurrentUserID(ctx context.Context) (string, bool) {
	return UserIDFromContext(ctx)
}

// CreateAccount registers email/password and returns the new account id.
func (p *PasswordProvider) CreateAccount(ctx context.Context, email, password string) (string, error) {
	email = NormalizeEmail(email)
	if !strings.Contains(email, "@") || strings.HasPrefix(email, "@") || strings.HasSuffix(email, "@") {
		return "", shared.ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return "", shared.ErrWeakPassword
	}

	hash, err := p.hasher.Hash(password)
	if err != nil {
		return "", shared.WrapError("auth", "CreateAccount", shared.ErrInvalidInput, "failed to hash password", err)
	}

	id := p.ids.NewID()
	if err := p.store.CreateCredential(ctx, Credential{
		UserID:       id,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    p.now().UTC(),
	}); err != nil {
		return "", err
	}
	return id, nil
}

// Authenticate checks email/password and returns the account id.
func (p *PasswordProvider) Authenticate(ctx context.Context, email, password string) (string, error) {
	c, err := p.store.GetCredentialByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return "", err
	}

	ok, err := p.hasher.Verify(c.PasswordHash, password)
	if err != nil {
		return "", shared.WrapError("auth", "Login", shared.ErrUnauthorized, "failed to verify password", err)
	}
	if !ok {
		return "", shared.ErrInvalidCredentials
	}
	return c.UserID, nil
}

// DeleteAccount removes the credential of userID.
func (p *PasswordProvider) DeleteAccount(ctx context.Context, userID string) error {
	return p.store.DeleteCredential(ctx, userID)
}
