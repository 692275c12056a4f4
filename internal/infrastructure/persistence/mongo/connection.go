// Package mongo implements the document-store persistence layer for Sync Hub.
//
// Collections:
//   - users:       one document per profile
//   - usernames:   lowercase username → owner id (the _id is the username)
//   - buddies:     one document per (owner, buddy) link
//   - credentials: email/password accounts
//
// MongoDB is used without multi-document transactions, so ProfileStore does
// not implement profile.Transactor; callers fall back to compensation.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	CollectionUsers       = "users"
	CollectionUsernames   = "usernames"
	CollectionBuddies     = "buddies"
	CollectionCredentials = "credentials"
)

// Connection holds a connected client and the selected database.
type Connection struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a client for uri, pings it and selects database.
func Connect(ctx context.Context, uri, database string) (*Connection, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	return &Connection{client: client, db: client.Database(database)}, nil
}

// Database returns the selected database.
func (c *Connection) Database() *mongo.Database {
	return c.db
}

// Ping checks that the server is reachable.
func (c *Connection) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, nil)
}

// Disconnect closes the client.
func (c *Connection) Disconnect(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the stores rely on.
func (c *Connection) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		CollectionBuddies: {
			{
				Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "buddyId", Value: 1}},
				Options: options.Index().SetName("uniq_owner_buddy").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: 1}},
				Options: options.Index().SetName("idx_owner_created"),
			},
		},
		CollectionCredentials: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("uniq_email").SetUnique(true),
			},
		},
	}

	for name, models := range indexes {
		if _, err := c.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongo: ensure indexes on %s: %w", name, err)
		}
	}
	return nil
}
