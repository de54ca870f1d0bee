package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutTemplate is a named, ordered set of exercises, or a rest-day marker.
// Templates are authored elsewhere; this service only reads them.
type WorkoutTemplate struct {
	ID                       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID                primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Name                     string             `bson:"name" json:"name"`
	IsRestDay                bool               `bson:"isRestDay" json:"isRestDay"`
	EstimatedDurationMinutes int                `bson:"estimatedDurationMinutes" json:"estimatedDurationMinutes"`
	Exercises                []TemplateExercise `bson:"exercises" json:"exercises"`
	CreatedAt                time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt                time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TemplateExercise is one exercise slot inside a template.
type TemplateExercise struct {
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Name       string             `bson:"name" json:"name"`
	Sequence   int                `bson:"sequence" json:"sequence"`
	Sets       []SetConfig        `bson:"sets" json:"sets"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

// SetConfig describes a single prescribed set. Zero values mean "not prescribed".
type SetConfig struct {
	Reps            int     `bson:"reps,omitempty" json:"reps,omitempty"`
	Weight          float64 `bson:"weight,omitempty" json:"weight,omitempty"` // kg
	DurationSeconds int     `bson:"durationSeconds,omitempty" json:"durationSeconds,omitempty"`
	RestSeconds     int     `bson:"restSeconds,omitempty" json:"restSeconds,omitempty"`
}
