// Package db manages MongoDB connections, collections and the blob bucket.
package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// DefaultDatabase is used when no database name is configured.
const DefaultDatabase = "chat_db"

// BlobBucket is the GridFS bucket holding uploaded files.
const BlobBucket = "blobs"

// Client wraps mongo.Client and exposes collections.
type Client struct {
	// client is the underlying MongoDB connection (thread-safe, can be reused)
	client *mongo.Client

	// db holds the accounts, users, messages and recent_messages collections
	db *mongo.Database
}

// New connects to MongoDB and returns a Client for the named database.
func New(ctx context.Context, mongoURI, database string) (*Client, error) {
	opts := options.Client().
		ApplyURI(mongoURI).
		SetConnectTimeout(10 * time.Second) // fail fast if MongoDB is unreachable

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Connect is lazy; the ping is the actual connection test
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	if database == "" {
		database = DefaultDatabase
	}

	return &Client{
		client: client,
		db:     client.Database(database),
	}, nil
}

// Ping checks that the primary is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// AccountsCollection holds email/password credentials.
func (c *Client) AccountsCollection() *mongo.Collection {
	return c.db.Collection("accounts")
}

// UsersCollection holds profile documents keyed by uid.
func (c *Client) UsersCollection() *mongo.Collection {
	return c.db.Collection("users")
}

// MessagesCollection holds both mailbox copies of every message.
func (c *Client) MessagesCollection() *mongo.Collection {
	return c.db.Collection("messages")
}

// RecentMessagesCollection holds the per-peer conversation pointers.
func (c *Client) RecentMessagesCollection() *mongo.Collection {
	return c.db.Collection("recent_messages")
}

// BlobBucket returns the GridFS bucket for uploaded files.
func (c *Client) BlobBucket() *mongo.GridFSBucket {
	return c.db.GridFSBucket(options.GridFSBucket().SetName(BlobBucket))
}

// Drop removes every collection this package manages. Tests only.
func (c *Client) Drop(ctx context.Context) error {
	for _, coll := range []*mongo.Collection{
		c.AccountsCollection(),
		c.UsersCollection(),
		c.MessagesCollection(),
		c.RecentMessagesCollection(),
	} {
		if err := coll.Drop(ctx); err != nil {
			return err
		}
	}
	return c.BlobBucket().Drop(ctx)
}

// Close disconnects from MongoDB.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// CreateIndexes creates the indexes the stores rely on.
func (c *Client) CreateIndexes(ctx context.Context) error {
	// ===== ACCOUNTS =====
	// unique email: a second signup with the same address fails
	_, err := c.AccountsCollection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create accounts index: %w", err)
	}

	// ===== USERS =====
	// ListUsers sorts by email
	_, err = c.UsersCollection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}

	// ===== MESSAGES =====
	// one mailbox (owner, peer) read in timestamp order
	_, err = c.MessagesCollection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}, {Key: "peer", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}

	// ===== RECENT MESSAGES =====
	_, err = c.RecentMessagesCollection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create recent message indexes: %w", err)
	}

	return nil
}
