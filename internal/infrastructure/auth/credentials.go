// Package auth implements email/password accounts and bearer tokens for Sync.
//
// The profile engine only needs three things from authentication: the id of
// the signed-in user, a way to create an account, and a way to delete one.
// PasswordProvider covers all three on top of a CredentialStore.
package auth

import (
	"context"
	"strings"
	"time"
)

// Credential is a stored email/password account.
type Credential struct {
	UserID       string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// CredentialStore persists credentials.
//
// CreateCredential returns shared.ErrEmailTaken when the email is registered.
// GetCredentialByEmail returns shared.ErrInvalidCredentials when it is not.
// DeleteCredential is a no-op for unknown users.
type CredentialStore interface {
	CreateCredential(ctx context.Context, c Credential) error
	GetCredentialByEmail(ctx context.Context, email string) (*Credential, error)
	DeleteCredential(ctx context.Context, userID string) error
}

// NormalizeEmail lowercases and trims an email. Credentials are keyed by it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
