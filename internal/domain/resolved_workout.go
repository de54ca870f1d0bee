package domain

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutSource says where a resolved workout came from.
type WorkoutSource string

const (
	SourceAdhoc       WorkoutSource = "adhoc"
	SourceRestDay     WorkoutSource = "restday" // Ad-hoc session on a rest-day template
	SourcePlan        WorkoutSource = "plan"
	SourcePlanRestDay WorkoutSource = "plan+restday"
	SourceNone        WorkoutSource = "none"
)

// ResolvedWorkout is the authoritative workout for one client and date.
// It is computed on every query and never stored.
type ResolvedWorkout struct {
	Date     string              `json:"date"` // YYYY-MM-DD
	Source   WorkoutSource       `json:"source"`
	Template *WorkoutTemplate    `json:"template,omitempty"`
	Session  *TrainingSession    `json:"session,omitempty"`
	PlanID   *primitive.ObjectID `json:"planId,omitempty"`
}

// IsRestDay reports whether the day is classified as rest.
func (w *ResolvedWorkout) IsRestDay() bool {
	return strings.Contains(string(w.Source), "restday")
}

// CanStart reports whether a "start workout" action is derivable.
func (w *ResolvedWorkout) CanStart() bool {
	if w.Template == nil || w.IsRestDay() {
		return false
	}
	if w.Source == SourcePlan {
		return true
	}
	return w.Source == SourceAdhoc && w.Session != nil && w.Session.AcceptsReminders()
}
