package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStatus type for the session lifecycle
type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled" // Initial state, set by the trainer
	SessionConfirmed SessionStatus = "confirmed"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
	SessionNoShow    SessionStatus = "no_show" // Set by a time-driven job
)

// IsTerminal reports whether no further transitions are allowed.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionCompleted || s == SessionCancelled || s == SessionNoShow
}

// ActiveSessionStatuses are the statuses that make a session authoritative for its day.
var ActiveSessionStatuses = []SessionStatus{SessionScheduled, SessionConfirmed, SessionCompleted}

// TrainingSession is a concrete, dated workout with its own lifecycle.
type TrainingSession struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ClientID      primitive.ObjectID  `bson:"clientId" json:"clientId"`
	TrainerID     primitive.ObjectID  `bson:"trainerId" json:"trainerId"`
	ScheduledDate string              `bson:"scheduledDate" json:"scheduledDate"` // YYYY-MM-DD
	ScheduledTime string              `bson:"scheduledTime" json:"scheduledTime"` // HH:MM or HH:MM:SS
	Type          string              `bson:"type" json:"type"`                   // e.g. "personal", "group", "online"
	Status        SessionStatus       `bson:"status" json:"status"`
	TemplateID    *primitive.ObjectID `bson:"templateId,omitempty" json:"templateId,omitempty"`
	Completion    *CompletionData     `bson:"completion,omitempty" json:"completion,omitempty"`
	ConfirmedAt   *time.Time          `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	CancelledAt   *time.Time          `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// AcceptsReminders reports whether reminders for this session are still valid.
// Validity is derived from the current status, never stored on the reminder.
func (s *TrainingSession) AcceptsReminders() bool {
	return s.Status == SessionScheduled || s.Status == SessionConfirmed
}

// CompletionData is what the client reports when finishing a session.
type CompletionData struct {
	ExercisesCompleted []primitive.ObjectID `bson:"exercisesCompleted,omitempty" json:"exercisesCompleted,omitempty"`
	Notes              string               `bson:"notes,omitempty" json:"notes,omitempty"`
	Rating             int                  `bson:"rating,omitempty" json:"rating,omitempty"` // 1-5, 0 = not rated
	CompletedAt        time.Time            `bson:"completedAt" json:"completedAt"`
}
