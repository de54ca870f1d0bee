package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitcoach/internal/domain"
	"fitcoach/internal/repository"
	"fitcoach/internal/schedule"

	"go.uber.org/zap"
)

// ReminderLeadTime is how long before session start the reminder fires.
const ReminderLeadTime = 15 * time.Minute

// ReminderScheduler persists reminder records for confirmed sessions.
type ReminderScheduler interface {
	// OnConfirm must be called with the ctx of the enclosing confirm transaction.
	OnConfirm(ctx context.Context, session *domain.TrainingSession) (*domain.ReminderNotification, error)
}

// reminderScheduler implements ReminderScheduler.
type reminderScheduler struct {
	notifications repository.NotificationRepository
	loc           *time.Location
	now           func() time.Time
	logger        *zap.Logger
}

// NewReminderScheduler creates a new instance of reminderScheduler.
func NewReminderScheduler(
	notifications repository.NotificationRepository,
	loc *time.Location,
	now func() time.Time,
	logger *zap.Logger,
) ReminderScheduler {
	return &reminderScheduler{
		notifications: notifications,
		loc:           loc,
		now:           now,
		logger:        logger,
	}
}

// SessionStart combines the session's date and time in loc.
func SessionStart(session *domain.TrainingSession, loc *time.Location) (time.Time, error) {
	start, err := schedule.CombineDateTime(session.ScheduledDate, session.ScheduledTime, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: session %s: %v", ErrInvalidSchedule, session.ID.Hex(), err)
	}
	return start, nil
}

// ReminderTime is the instant the reminder for session is due.
func ReminderTime(session *domain.TrainingSession, loc *time.Location) (time.Time, error) {
	start, err := SessionStart(session, loc)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(-ReminderLeadTime), nil
}

// OnConfirm creates the session reminder unless an unsent one exists, and
// always records a confirmation notification for now.
func (s *reminderScheduler) OnConfirm(ctx context.Context, session *domain.TrainingSession) (*domain.ReminderNotification, error) {
	remindAt, err := ReminderTime(session, s.loc)
	if err != nil {
		return nil, err
	}
	now := s.now()

	reminder, err := s.notifications.FindUnsent(ctx, session.ID, domain.NotificationReminder)
	switch {
	case err == nil:
		s.logger.Debug("reminder already scheduled",
			zap.String("sessionId", session.ID.Hex()),
			zap.Time("scheduledFor", reminder.ScheduledFor),
		)
	case errors.Is(err, repository.ErrNotFound):
		reminder = &domain.ReminderNotification{
			SessionID:    session.ID,
			UserID:       session.ClientID,
			Type:         domain.NotificationReminder,
			ScheduledFor: remindAt.UTC(),
		}
		id, err := s.notifications.Create(ctx, reminder)
		if err != nil {
			return nil, translateRepoError(err, "reminder for session", session.ID)
		}
		reminder.ID = id
		if remindAt.Before(now) {
			// Persisted anyway; the notifier decides whether a late reminder is still worth sending.
			s.logger.Info("reminder time already passed",
				zap.String("sessionId", session.ID.Hex()),
				zap.Time("scheduledFor", remindAt),
			)
		}
	default:
		return nil, err
	}

	confirmation := &domain.ReminderNotification{
		SessionID:    session.ID,
		UserID:       session.ClientID,
		Type:         domain.NotificationConfirmation,
		ScheduledFor: now.UTC(),
	}
	if _, err := s.notifications.Create(ctx, confirmation); err != nil {
		return nil, translateRepoError(err, "confirmation for session", session.ID)
	}

	return reminder, nil
}
