// Package database manages the MongoDB connection and index bootstrap.
package database

import (
	"context"
	"fmt"
	"time"

	"inkwell/internal/config"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Collection names used across the repository layer.
const (
	UsersCollection    = "users"
	BlogsCollection    = "blogs"
	CommentsCollection = "comments"
)

// DB bundles the Mongo client with the application database handle.
type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// Connect establishes a MongoDB connection and verifies it with a ping.
func Connect(cfg *config.Config) (*DB, error) {
	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &DB{
		Client:   client,
		Database: client.Database(cfg.MongoDatabase),
	}, nil
}

// Users returns the users collection handle.
func (d *DB) Users() *mongo.Collection {
	return d.Database.Collection(UsersCollection)
}

// Blogs returns the blogs collection handle.
func (d *DB) Blogs() *mongo.Collection {
	return d.Database.Collection(BlogsCollection)
}

// Comments returns the comments collection handle.
func (d *DB) Comments() *mongo.Collection {
	return d.Database.Collection(CommentsCollection)
}

// Ping verifies the connection is still healthy.
func (d *DB) Ping(ctx context.Context) error {
	return d.Client.Ping(ctx, readpref.Primary())
}

// Close disconnects the underlying client.
func (d *DB) Close(ctx context.Context) error {
	return d.Client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the application relies on. Safe to run
// repeatedly; Mongo treats identical definitions as a no-op.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := d.Users().Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}

	blogIndexes := []mongo.IndexModel{
		{
			// Full-text search over title, content and tags.
			Keys: bson.D{
				{Key: "title", Value: "text"},
				{Key: "content", Value: "text"},
				{Key: "tags", Value: "text"},
			},
			Options: options.Index().SetName("blog_text_search"),
		},
		{Keys: bson.D{{Key: "author", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "isPublic", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
	}
	if _, err := d.Blogs().Indexes().CreateMany(ctx, blogIndexes); err != nil {
		return fmt.Errorf("blogs indexes: %w", err)
	}

	commentIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "blog", Value: 1}, {Key: "parentComment", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "author", Value: 1}}},
	}
	if _, err := d.Comments().Indexes().CreateMany(ctx, commentIndexes); err != nil {
		return fmt.Errorf("comments indexes: %w", err)
	}

	return nil
}
