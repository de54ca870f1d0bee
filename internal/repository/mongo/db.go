package mongo

import (
	"context"
	"fmt"
	"time"

	"fitcoach/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB and pings the primary.
// Transactions need a replica set or sharded cluster; a standalone server
// will fail the first confirm.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(uri).
		SetWriteConcern(writeconcern.Majority())

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, fmt.Errorf("ping: %w", err)
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates indexes for every collection this service queries.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := EnsurePlanIndexes(ctx, db.Collection(planCollectionName)); err != nil {
		return fmt.Errorf("%s indexes: %w", planCollectionName, err)
	}
	if err := EnsureSessionIndexes(ctx, db.Collection(sessionCollectionName)); err != nil {
		return fmt.Errorf("%s indexes: %w", sessionCollectionName, err)
	}
	if err := EnsureNotificationIndexes(ctx, db.Collection(notificationCollectionName)); err != nil {
		return fmt.Errorf("%s indexes: %w", notificationCollectionName, err)
	}
	return nil
}

// mongoTransactor implements repository.Transactor with multi-document transactions.
type mongoTransactor struct {
	client *mongo.Client
}

// NewTransactor creates a Transactor bound to client.
func NewTransactor(client *mongo.Client) repository.Transactor {
	return &mongoTransactor{client: client}
}

// WithinTransaction runs fn in a transaction. Repository calls must use the
// ctx handed to fn to take part in it. The driver may re-run fn on transient
// transaction errors, so fn must re-read whatever it decides on.
func (t *mongoTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
