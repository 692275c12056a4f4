package postgres

import (
	"context"

	"github.com/sync-campus/sync-hub/internal/domain/shared"
	"github.com/sync-campus/sync-hub/internal/infrastructure/auth"
)

// CredentialRepository implements auth.CredentialStore for PostgreSQL.
type CredentialRepository struct {
	conn *Connection
}

// NewCredentialRepository creates a new CredentialRepository.
func NewCredentialRepository(conn *Connection) *CredentialRepository {
	return &CredentialRepository{conn: conn}
}

var _ auth.CredentialStore = (*CredentialRepository)(nil)

// CreateCredential stores a new email/password account.
func (r *CredentialRepository) CreateCredential(ctx context.Context, c auth.Credential) error {
	_, err := r.conn.Pool().Exec(ctx, `
		INSERT INTO credentials (user_id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, c.UserID, auth.NormalizeEmail(c.Email), c.PasswordHash, c.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrEmailTaken
		}
		return shared.NewStoreError("CreateCredential", err)
	}
	return nil
}

// GetCredentialByEmail loads the account registered under email.
func (r *CredentialRepository) GetCredentialByEmail(ctx context.Context, email string) (*auth.Credential, error) {
	var c auth.Credential
	err := r.conn.Pool().QueryRow(ctx, `
		SELECT user_id, email, password_hash, created_at
		FROM credentials
		WHERE email = $1
	`, auth.NormalizeEmail(email)).Scan(&c.UserID, &c.Email, &c.PasswordHash, &c.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, shared.NewStoreError("GetCredentialByEmail", err)
	}
	return &c, nil
}

// DeleteCredential removes the account of userID.
func (r *CredentialRepository) DeleteCredential(ctx context.Context, userID string) error {
	if _, err := r.conn.Pool().Exec(ctx, `DELETE FROM credentials WHERE user_id = $1`, userID); err != nil {
		return shared.NewStoreError("DeleteCredential", err)
	}
	return nil
}
