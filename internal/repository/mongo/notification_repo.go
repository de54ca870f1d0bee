package mongo

import (
	"context"
	"errors"
	"time"

	"fitcoach/internal/domain"
	"fitcoach/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const notificationCollectionName = "notifications"

// mongoNotificationRepository implements repository.NotificationRepository
type mongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new notification repository.
func NewMongoNotificationRepository(db *mongo.Database) repository.NotificationRepository {
	return &mongoNotificationRepository{
		collection: db.Collection(notificationCollectionName),
	}
}

// Create stores a notification record.
func (r *mongoNotificationRepository) Create(ctx context.Context, n *domain.ReminderNotification) (primitive.ObjectID, error) {
	if n.SessionID == primitive.NilObjectID || n.Type == "" {
		return primitive.NilObjectID, errors.New("notification requires sessionId and type")
	}
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, n)
	if err != nil {
		// The partial unique index allows one unsent reminder per session.
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted notification ID")
	}
	return insertedID, nil
}

// FindUnsent retrieves the pending notification of a type for a session.
func (r *mongoNotificationRepository) FindUnsent(ctx context.Context, sessionID primitive.ObjectID, notificationType domain.NotificationType) (*domain.ReminderNotification, error) {
	var n domain.ReminderNotification
	filter := bson.M{
		"sessionId": sessionID,
		"type":      notificationType,
		"sent":      false,
	}
	err := r.collection.FindOne(ctx, filter).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// EnsureNotificationIndexes creates necessary indexes for the notifications collection.
func EnsureNotificationIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// At most one unsent reminder per session
			Keys: bson.D{{Key: "sessionId", Value: 1}, {Key: "type", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"sent": false, "type": domain.NotificationReminder}),
		},
		{
			// Dispatch query used by the external notifier
			Keys:    bson.D{{Key: "sent", Value: 1}, {Key: "scheduledFor", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
