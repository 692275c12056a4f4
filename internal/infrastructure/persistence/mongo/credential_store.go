package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sync-campus/sync-hub/internal/domain/shared"
	"github.com/sync-campus/sync-hub/internal/infrastructure/auth"
)

// CredentialStore implements auth.CredentialStore on MongoDB.
// Email uniqueness relies on the uniq_email index from EnsureIndexes.
type CredentialStore struct {
	col *mongo.Collection
}

// NewCredentialStore creates a CredentialStore on the connection's database.
func NewCredentialStore(conn *Connection) *CredentialStore {
	return &CredentialStore{col: conn.Database().Collection(CollectionCredentials)}
}

var _ auth.CredentialStore = (*CredentialStore)(nil)

// CreateCredential implements auth.CredentialStore.
func (s *CredentialStore) CreateCredential(ctx context.Context, c auth.Credential) error {
	_, err := s.col.InsertOne(ctx, credentialDoc{
		UserID:       c.UserID,
		Email:        auth.NormalizeEmail(c.Email),
		PasswordHash: c.PasswordHash,
		CreatedAt:    c.CreatedAt.UTC(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return shared.ErrEmailTaken
		}
		return shared.NewStoreError("CreateCredential", err)
	}
	return nil
}

// GetCredentialByEmail implements auth.CredentialStore.
func (s *CredentialStore) GetCredentialByEmail(ctx context.Context, email string) (*auth.Credential, error) {
	var doc credentialDoc
	err := s.col.FindOne(ctx, bson.M{"email": auth.NormalizeEmail(email)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, shared.NewStoreError("GetCredentialByEmail", err)
	}
	return &auth.Credential{
		UserID:       doc.UserID,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt,
	}, nil
}

// DeleteCredential implements auth.CredentialStore.
func (s *CredentialStore) DeleteCredential(ctx context.Context, userID string) error {
	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": userID}); err != nil {
		return shared.NewStoreError("DeleteCredential", err)
	}
	return nil
}
