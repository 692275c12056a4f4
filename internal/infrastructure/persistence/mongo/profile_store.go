package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sync-campus/sync-hub/internal/domain/profile"
	"github.com/sync-campus/sync-hub/internal/domain/shared"
)

// ProfileStore implements profile.Store on MongoDB.
type ProfileStore struct {
	users     *mongo.Collection
	usernames *mongo.Collection
	buddies   *mongo.Collection
	now       func() time.Time
}

// NewProfileStore creates a ProfileStore on the connection's database.
func NewProfileStore(conn *Connection) *ProfileStore {
	db := conn.Database()
	return &ProfileStore{
		users:     db.Collection(CollectionUsers),
		usernames: db.Collection(CollectionUsernames),
		buddies:   db.Collection(CollectionBuddies),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

var _ profile.Store = (*ProfileStore)(nil)

// ─────────────────────────────────────────────────────────────────────────────
// Profiles
// ─────────────────────────────────────────────────────────────────────────────

// GetProfile implements profile.Store.
func (s *ProfileStore) GetProfile(ctx context.Context, id string) (*profile.UserProfile, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.ErrProfileNotFound
		}
		return nil, shared.NewStoreError("GetProfile", err)
	}
	return doc.toProfile(), nil
}

// CreateProfile implements profile.Store.
func (s *ProfileStore) CreateProfile(ctx context.Context, p *profile.UserProfile) error {
	if _, err := s.users.InsertOne(ctx, toUserDoc(p)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return shared.ErrProfileExists
		}
		return shared.NewStoreError("CreateProfile", err)
	}
	return nil
}

// UpdateProfile implements profile.Store.
func (s *ProfileStore) UpdateProfile(ctx context.Context, id string, patch profile.Patch) error {
	if patch.IsEmpty() {
		return nil
	}

	res, err := s.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updateDocument(patch)})
	if err != nil {
		return shared.NewStoreError("UpdateProfile", err)
	}
	if res.MatchedCount == 0 {
		return shared.ErrProfileNotFound
	}
	return nil
}

// DeleteProfile removes the user document and its buddy documents.
func (s *ProfileStore) DeleteProfile(ctx context.Context, id string) error {
	if _, err := s.users.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return shared.NewStoreError("DeleteProfile", err)
	}
	if _, err := s.buddies.DeleteMany(ctx, bson.M{"ownerId": id}); err != nil {
		return shared.NewStoreError("DeleteProfile", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Username registry
// ─────────────────────────────────────────────────────────────────────────────

// ReserveUsername inserts the registry document. The unique _id makes the
// reservation atomic.
func (s *ProfileStore) ReserveUsername(ctx context.Context, usernameLower, id string) error {
	_, err := s.usernames.InsertOne(ctx, usernameDoc{Username: usernameLower, UserID: id})
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return shared.NewStoreError("ReserveUsername", err)
	}

	owner, err := s.LookupUsername(ctx, usernameLower)
	if err != nil {
		return err
	}
	if owner != id {
		return shared.ErrUsernameTaken
	}
	return nil
}

// ReleaseUsername implements profile.Store.
func (s *ProfileStore) ReleaseUsername(ctx context.Context, usernameLower string) error {
	if _, err := s.usernames.DeleteOne(ctx, bson.M{"_id": usernameLower}); err != nil {
		return shared.NewStoreError("ReleaseUsername", err)
	}
	return nil
}

// LookupUsername implements profile.Store.
func (s *ProfileStore) LookupUsername(ctx context.Context, usernameLower string) (string, error) {
	var doc usernameDoc
	if err := s.usernames.FindOne(ctx, bson.M{"_id": usernameLower}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", shared.ErrProfileNotFound
		}
		return "", shared.NewStoreError("LookupUsername", err)
	}
	return doc.UserID, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Buddies
// ─────────────────────────────────────────────────────────────────────────────

// ListBuddies returns the owner's buddies in link order.
func (s *ProfileStore) ListBuddies(ctx context.Context, ownerID string) ([]profile.BuddyLink, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "buddyId", Value: 1}})

	cur, err := s.buddies.Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		return nil, shared.NewStoreError("ListBuddies", err)
	}
	defer cur.Close(ctx)

	var links []profile.BuddyLink
	for cur.Next(ctx) {
		var doc buddyDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, shared.NewStoreError("ListBuddies", err)
		}
		links = append(links, profile.BuddyLink{
			BuddyID:       doc.BuddyID,
			Name:          doc.Name,
			Username:      doc.Username,
			SharedClasses: doc.SharedClasses,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, shared.NewStoreError("ListBuddies", err)
	}
	return links, nil
}

// PutBuddy upserts a buddy document, keeping its original createdAt.
func (s *ProfileStore) PutBuddy(ctx context.Context, ownerID string, link profile.BuddyLink) error {
	classes := link.SharedClasses
	if classes == nil {
		classes = []string{}
	}

	filter := bson.M{"ownerId": ownerID, "buddyId": link.BuddyID}
	update := bson.M{
		"$set": bson.M{
			"name":          link.Name,
			"username":      link.Username,
			"sharedClasses": classes,
		},
		"$setOnInsert": bson.M{"createdAt": s.now()},
	}

	if _, err := s.buddies.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return shared.NewStoreError("PutBuddy", err)
	}
	return nil
}

// DeleteBuddy implements profile.Store.
func (s *ProfileStore) DeleteBuddy(ctx context.Context, ownerID, buddyID string) error {
	if _, err := s.buddies.DeleteOne(ctx, bson.M{"ownerId": ownerID, "buddyId": buddyID}); err != nil {
		return shared.NewStoreError("DeleteBuddy", err)
	}
	return nil
}
