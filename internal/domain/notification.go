package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType distinguishes reminder records.
type NotificationType string

const (
	NotificationReminder     NotificationType = "reminder"
	NotificationConfirmation NotificationType = "confirmation"
)

// ReminderNotification is a time-stamped notification record. Delivery and the
// Sent flag belong to an external notifier.
type ReminderNotification struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID    primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"` // Recipient
	Type         NotificationType   `bson:"type" json:"type"`
	ScheduledFor time.Time          `bson:"scheduledFor" json:"scheduledFor"`
	Sent         bool               `bson:"sent" json:"sent"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
