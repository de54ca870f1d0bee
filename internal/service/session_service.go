package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitcoach/internal/domain"
	"fitcoach/internal/lock"
	"fitcoach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// sessionAction is a caller-requested lifecycle step.
type sessionAction string

const (
	actionConfirm  sessionAction = "confirm"
	actionComplete sessionAction = "complete"
	actionCancel   sessionAction = "cancel"
	actionNoShow   sessionAction = "no_show"
)

// transitions is the full lifecycle table. Terminal statuses have no entry.
var transitions = map[domain.SessionStatus]map[sessionAction]domain.SessionStatus{
	domain.SessionScheduled: {
		actionConfirm:  domain.SessionConfirmed,
		actionComplete: domain.SessionCompleted,
		actionCancel:   domain.SessionCancelled,
		actionNoShow:   domain.SessionNoShow,
	},
	domain.SessionConfirmed: {
		actionConfirm:  domain.SessionConfirmed, // idempotent
		actionComplete: domain.SessionCompleted,
		actionCancel:   domain.SessionCancelled,
		actionNoShow:   domain.SessionNoShow,
	},
}

// nextStatus looks up the target status of action from the current one.
func nextStatus(from domain.SessionStatus, action sessionAction) (domain.SessionStatus, error) {
	if from.IsTerminal() {
		return "", fmt.Errorf("%w: session is already %s", ErrConflict, from)
	}
	next, ok := transitions[from][action]
	if !ok {
		return "", fmt.Errorf("%w: cannot %s a %s session", ErrConflict, action, from)
	}
	return next, nil
}

// CompletionInput is what a client submits when finishing a session.
type CompletionInput struct {
	ExercisesCompleted []primitive.ObjectID
	Notes              string
	Rating             int // 1-5, 0 when not rated
}

func (in CompletionInput) validate() error {
	if in.Rating < 0 || in.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5, got %d", ErrInvalidCompletion, in.Rating)
	}
	return nil
}

// SessionService owns the status lifecycle of training sessions.
type SessionService interface {
	GetSession(ctx context.Context, sessionID primitive.ObjectID) (*domain.TrainingSession, error)
	ConfirmSession(ctx context.Context, sessionID primitive.ObjectID) (*domain.TrainingSession, error)
	CompleteSession(ctx context.Context, sessionID primitive.ObjectID, input CompletionInput) (*domain.TrainingSession, error)
	CancelSession(ctx context.Context, sessionID primitive.ObjectID) (*domain.TrainingSession, error)
	// MarkNoShow accepts the time-driven transition set by an external job.
	MarkNoShow(ctx context.Context, sessionID primitive.ObjectID) (*domain.TrainingSession, error)
}

// sessionService implements the SessionService interface.
type sessionService struct {
	sessions  repository.SessionRepository
	tx        repository.Transactor
	reminders ReminderScheduler
	locker    lock.Locker
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewSessionService creates a new instance of sessionService.
func NewSessionService(
	sessions repository.SessionRepository,
	tx repository.Transactor,
	reminders ReminderScheduler,
	locker lock.Locker,
	loc *time.Location,
	now func() time.Time,
	logger *zap.Logger,
) SessionService {
	return &sessionService{
		sessions:  sessions,
		tx:        tx,
		reminders: reminders,
		locker:    locker,
		loc:       loc,
		now:       now,
		logger:    logger,
	}
}

// GetSession retrieves a session by ID.
func (s *sessionService) GetSession(ctx context.Context, sessionID primitive.ObjectID) (*domain.TrainingSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, translateRepoError(err, "session", sessionID)
	}
	return session, nil
}

// ConfirmSession moves a scheduled session to confirmed and schedules its
// reminder in the same transaction. Confirming a confirmed session is a no-op.
func (s *sessionService) ConfirmSession(ctx context.Context, sessionID primitive.ObjectID) (*domain.TrainingSession, error) {
	var (
		result   *domain.TrainingSession
		reminder *domain.ReminderNotification
	)

	err := s.serialized(ctx, sessionID, func(ctx context.Context) error {
		result, reminder = nil, nil

		session, err := s.GetSession(ctx, sessionID)
		if err != nil {
			return err
		}
		next, err := nextStatus(session.Status, actionConfirm)
		if err != nil {
			return err
		}
		if next == session.Status {
			result = session
			return nil
		}

		// Validate before any write so a bad schedule never half-confirms.
		if _, err := ReminderTime(session, s.loc); err != nil {
			return err
		}

		confirmedAt := s.now().UTC()
		updated, err := s.sessions.UpdateStatus(ctx, sessionID, session.Status, repository.SessionUpdate{
			Status:      next,
			ConfirmedAt: &confirmedAt,
		})
		if err != nil {
			return translateRepoError(err, "session", sessionID)
		}

		reminder, err = s.reminders.OnConfirm(ctx, updated)
		if err != nil {
			return err
		}
		result = updated
		return nil
	})
	if err != nil {
		s.logFailure("confirm", sessionID, err)
		return nil, err
	}

	if reminder != nil {
		s.logger.Info("session confirmed",
			zap.String("sessionId", sessionID.Hex()),
			zap.Time("reminderAt", reminder.ScheduledFor),
		)
	}
	return result, nil
}

// CompleteSession records the client's completion data and closes the session.
func (s *sessionService) CompleteSession(ctx context.Context, sessionID primitive.ObjectID, input CompletionInput) (*domain.TrainingSession, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	return s.simpleTransition(ctx, sessionID, actionComplete, func(now time.Time) repository.SessionUpdate {
		return repository.SessionUpdate{
			Status: domain.SessionCompleted,
			Completion: &domain.CompletionData{
				ExercisesCompleted: input.ExercisesCompleted,
				Notes:              input.Notes,
				Rating:             input.Rating,
				CompletedAt:        now,
			},
		}
	})
}

// CancelSession cancels a scheduled or confirmed session. Pending reminders
// stay in place; they are void because the session no longer accepts them.
func (s *sessionService) CancelSession(ctx context.Context, sessionID primitive.ObjectID) (*domain.TrainingSession, error) {
	return s.simpleTransition(ctx, sessionID, actionCancel, func(now time.Time) repository.SessionUpdate {
		return repository.SessionUpdate{Status: domain.SessionCancelled, CancelledAt: &now}
	})
}

// MarkNoShow closes a session the client never attended.
func (s *sessionService) MarkNoShow(ctx context.Context, sessionID primitive.ObjectID) (*domain.TrainingSession, error) {
	return s.simpleTransition(ctx, sessionID, actionNoShow, func(time.Time) repository.SessionUpdate {
		return repository.SessionUpdate{Status: domain.SessionNoShow}
	})
}

// simpleTransition handles transitions whose only effect is the session write.
func (s *sessionService) simpleTransition(
	ctx context.Context,
	sessionID primitive.ObjectID,
	action sessionAction,
	build func(now time.Time) repository.SessionUpdate,
) (*domain.TrainingSession, error) {
	var result *domain.TrainingSession

	err := s.serialized(ctx, sessionID, func(ctx context.Context) error {
		session, err := s.GetSession(ctx, sessionID)
		if err != nil {
			return err
		}
		if _, err := nextStatus(session.Status, action); err != nil {
			return err
		}
		updated, err := s.sessions.UpdateStatus(ctx, sessionID, session.Status, build(s.now().UTC()))
		if err != nil {
			return translateRepoError(err, "session", sessionID)
		}
		result = updated
		return nil
	})
	if err != nil {
		s.logFailure(string(action), sessionID, err)
		return nil, err
	}

	s.logger.Info("session status changed",
		zap.String("sessionId", sessionID.Hex()),
		zap.String("status", string(result.Status)),
	)
	return result, nil
}

// serialized takes the per-session lock and runs fn inside a transaction.
func (s *sessionService) serialized(ctx context.Context, sessionID primitive.ObjectID, fn func(ctx context.Context) error) error {
	release, err := s.locker.Acquire(ctx, lock.SessionKey(sessionID.Hex()))
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return fmt.Errorf("%w: session %s is being modified by another request", ErrConflict, sessionID.Hex())
		}
		return err
	}
	defer release()

	return s.tx.WithinTransaction(ctx, fn)
}

func (s *sessionService) logFailure(action string, sessionID primitive.ObjectID, err error) {
	fields := []zap.Field{
		zap.String("action", action),
		zap.String("sessionId", sessionID.Hex()),
		zap.Error(err),
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict),
		errors.Is(err, ErrInvalidSchedule), errors.Is(err, ErrInvalidCompletion):
		s.logger.Warn("session transition rejected", fields...)
	default:
		s.logger.Error("session transition failed", fields...)
	}
}
