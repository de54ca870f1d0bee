package repository

import (
	"context"
	"time"

	"fitcoach/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound = RepositoryError("not found")
	// ErrConflict means a conditional write found the record in an unexpected state.
	ErrConflict = RepositoryError("conflict: record was modified concurrently")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Transactor runs fn so that every repository call made with the ctx it
// receives commits or rolls back together.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository reads user profiles for access checks.
type UserRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// PlanRepository defines the interface for reading workout plans.
type PlanRepository interface {
	// GetActive returns the client's plan whose range contains date, or ErrNotFound.
	GetActive(ctx context.Context, clientID primitive.ObjectID, date time.Time) (*domain.WorkoutPlan, error)
}

// TemplateRepository defines the interface for reading workout templates.
type TemplateRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutTemplate, error)
}

// SessionUpdate carries the fields written alongside a status transition.
type SessionUpdate struct {
	Status      domain.SessionStatus
	Completion  *domain.CompletionData
	ConfirmedAt *time.Time
	CancelledAt *time.Time
}

// SessionRepository defines the interface for interacting with training sessions.
type SessionRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingSession, error)
	// GetForDate returns the client's sessions on date whose status is one of statuses.
	GetForDate(ctx context.Context, clientID primitive.ObjectID, date string, statuses []domain.SessionStatus) ([]domain.TrainingSession, error)
	// UpdateStatus applies update only if the stored status still equals expected.
	// It returns ErrConflict when the status moved, ErrNotFound when the session is gone.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, expected domain.SessionStatus, update SessionUpdate) (*domain.TrainingSession, error)
}

// NotificationRepository defines the interface for reminder records.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.ReminderNotification) (primitive.ObjectID, error)
	// FindUnsent returns the unsent notification of the given type for a session, or ErrNotFound.
	FindUnsent(ctx context.Context, sessionID primitive.ObjectID, notificationType domain.NotificationType) (*domain.ReminderNotification, error)
}
