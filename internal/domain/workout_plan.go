package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutPlan is a client's recurring weekly assignment of templates, active
// over an inclusive date range.
type WorkoutPlan struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID  primitive.ObjectID `bson:"clientId" json:"clientId"`
	TrainerID primitive.ObjectID `bson:"trainerId" json:"trainerId"` // Who authored the plan
	Name      string             `bson:"name" json:"name"`
	StartDate string             `bson:"startDate" json:"startDate"` // YYYY-MM-DD, inclusive
	EndDate   string             `bson:"endDate" json:"endDate"`     // YYYY-MM-DD, inclusive

	// ScheduleData maps a weekday name ("monday", "Tuesday", ...) to a template.
	// Key casing is whatever the plan author wrote.
	ScheduleData map[string]primitive.ObjectID `bson:"scheduleData" json:"scheduleData"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
