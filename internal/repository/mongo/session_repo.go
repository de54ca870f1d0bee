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

const sessionCollectionName = "training_sessions"

// mongoSessionRepository implements repository.SessionRepository
type mongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new TrainingSession repository backed by MongoDB.
func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

// GetByID retrieves a session by its ID.
func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingSession, error) {
	var session domain.TrainingSession
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetForDate retrieves a client's sessions on one calendar date, earliest first.
func (r *mongoSessionRepository) GetForDate(ctx context.Context, clientID primitive.ObjectID, date string, statuses []domain.SessionStatus) ([]domain.TrainingSession, error) {
	var sessions []domain.TrainingSession
	filter := bson.M{
		"clientId":      clientID,
		"scheduledDate": date,
	}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "scheduledTime", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// UpdateStatus performs a compare-and-set on the status field.
func (r *mongoSessionRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, expected domain.SessionStatus, update repository.SessionUpdate) (*domain.TrainingSession, error) {
	if id == primitive.NilObjectID {
		return nil, errors.New("session ID is required for update")
	}

	filter := bson.M{"_id": id, "status": expected}
	updateFields := bson.M{
		"status":    update.Status,
		"updatedAt": time.Now().UTC(),
	}
	if update.Completion != nil {
		updateFields["completion"] = update.Completion
	}
	if update.ConfirmedAt != nil {
		updateFields["confirmedAt"] = *update.ConfirmedAt
	}
	if update.CancelledAt != nil {
		updateFields["cancelledAt"] = *update.CancelledAt
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var session domain.TrainingSession
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": updateFields}, opts).Decode(&session)
	if err == nil {
		return &session, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	// Nothing matched: either the session is gone or its status moved under us.
	count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if countErr != nil {
		return nil, countErr
	}
	if count == 0 {
		return nil, repository.ErrNotFound
	}
	return nil, repository.ErrConflict
}

// EnsureSessionIndexes creates necessary indexes for the sessions collection.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// Day view: a client's sessions on a date ordered by start time
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "scheduledDate", Value: 1}, {Key: "scheduledTime", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "scheduledDate", Value: 1}},
			Options: options.Index(),
		},
		{
			// Used by the external no-show job
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "scheduledDate", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
