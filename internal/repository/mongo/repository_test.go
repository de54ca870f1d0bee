package mongo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"fitcoach/internal/domain"
	"fitcoach/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// newTestDB connects to MONGO_TEST_URI (a replica set, for transactions) or
// skips. Each test gets its own throwaway database.
func newTestDB(t *testing.T) (*mongo.Client, *mongo.Database) {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set, skipping mongo repository tests")
	}
	client, err := ConnectDB(uri)
	require.NoError(t, err)

	db := client.Database("fitcoach_test_" + uuid.NewString()[:8])
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, EnsureIndexes(ctx, db))

	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = DisconnectDB(client)
	})
	return client, db
}

func insertSession(t *testing.T, db *mongo.Database, s domain.TrainingSession) domain.TrainingSession {
	t.Helper()
	s.ID = primitive.NewObjectID()
	s.CreatedAt = time.Now().UTC()
	_, err := db.Collection(sessionCollectionName).InsertOne(context.Background(), s)
	require.NoError(t, err)
	return s
}

func TestPlanRepository_GetActive(t *testing.T) {
	_, db := newTestDB(t)
	repo := NewMongoPlanRepository(db)
	ctx := context.Background()
	clientID := primitive.NewObjectID()

	older := domain.WorkoutPlan{ID: primitive.NewObjectID(), ClientID: clientID, StartDate: "2024-06-01", EndDate: "2024-06-30", CreatedAt: time.Now().Add(-time.Hour)}
	newer := domain.WorkoutPlan{ID: primitive.NewObjectID(), ClientID: clientID, StartDate: "2024-06-10", EndDate: "2024-06-20", CreatedAt: time.Now()}
	_, err := db.Collection(planCollectionName).InsertMany(ctx, []interface{}{older, newer})
	require.NoError(t, err)

	got, err := repo.GetActive(ctx, clientID, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)

	got, err = repo.GetActive(ctx, clientID, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, older.ID, got.ID)

	_, err = repo.GetActive(ctx, clientID, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionRepository_UpdateStatusIsConditional(t *testing.T) {
	_, db := newTestDB(t)
	repo := NewMongoSessionRepository(db)
	ctx := context.Background()
	session := insertSession(t, db, domain.TrainingSession{
		ClientID: primitive.NewObjectID(), ScheduledDate: "2024-06-10", ScheduledTime: "10:00", Status: domain.SessionScheduled,
	})

	confirmedAt := time.Now().UTC().Truncate(time.Millisecond)
	updated, err := repo.UpdateStatus(ctx, session.ID, domain.SessionScheduled, repository.SessionUpdate{
		Status: domain.SessionConfirmed, ConfirmedAt: &confirmedAt,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SessionConfirmed, updated.Status)
	require.NotNil(t, updated.ConfirmedAt)

	_, err = repo.UpdateStatus(ctx, session.ID, domain.SessionScheduled, repository.SessionUpdate{Status: domain.SessionCancelled})
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = repo.UpdateStatus(ctx, primitive.NewObjectID(), domain.SessionScheduled, repository.SessionUpdate{Status: domain.SessionCancelled})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionRepository_GetForDate(t *testing.T) {
	_, db := newTestDB(t)
	repo := NewMongoSessionRepository(db)
	clientID := primitive.NewObjectID()
	insertSession(t, db, domain.TrainingSession{ClientID: clientID, ScheduledDate: "2024-06-10", ScheduledTime: "18:00", Status: domain.SessionScheduled})
	insertSession(t, db, domain.TrainingSession{ClientID: clientID, ScheduledDate: "2024-06-10", ScheduledTime: "07:00", Status: domain.SessionCancelled})
	insertSession(t, db, domain.TrainingSession{ClientID: clientID, ScheduledDate: "2024-06-11", ScheduledTime: "07:00", Status: domain.SessionScheduled})

	got, err := repo.GetForDate(context.Background(), clientID, "2024-06-10", domain.ActiveSessionStatuses)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "18:00", got[0].ScheduledTime)
}

func TestNotificationRepository_OneUnsentReminderPerSession(t *testing.T) {
	_, db := newTestDB(t)
	repo := NewMongoNotificationRepository(db)
	ctx := context.Background()
	sessionID := primitive.NewObjectID()

	_, err := repo.Create(ctx, &domain.ReminderNotification{SessionID: sessionID, Type: domain.NotificationReminder})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.ReminderNotification{SessionID: sessionID, Type: domain.NotificationReminder})
	assert.ErrorIs(t, err, repository.ErrConflict)

	// Confirmations are not deduplicated.
	for i := 0; i < 2; i++ {
		_, err = repo.Create(ctx, &domain.ReminderNotification{SessionID: sessionID, Type: domain.NotificationConfirmation})
		require.NoError(t, err)
	}

	found, err := repo.FindUnsent(ctx, sessionID, domain.NotificationReminder)
	require.NoError(t, err)
	assert.Equal(t, sessionID, found.SessionID)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	client, db := newTestDB(t)
	sessions := NewMongoSessionRepository(db)
	notifications := NewMongoNotificationRepository(db)
	tx := NewTransactor(client)
	session := insertSession(t, db, domain.TrainingSession{ClientID: primitive.NewObjectID(), Status: domain.SessionScheduled})
	boom := errors.New("boom")

	err := tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		if _, err := sessions.UpdateStatus(ctx, session.ID, domain.SessionScheduled, repository.SessionUpdate{Status: domain.SessionConfirmed}); err != nil {
			return err
		}
		if _, err := notifications.Create(ctx, &domain.ReminderNotification{SessionID: session.ID, Type: domain.NotificationReminder}); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	stored, err := sessions.GetByID(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionScheduled, stored.Status)
	_, err = notifications.FindUnsent(context.Background(), session.ID, domain.NotificationReminder)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
