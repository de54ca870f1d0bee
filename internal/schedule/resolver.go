// Package schedule maps calendar dates onto a client's recurring weekly plan.
package schedule

import (
	"strings"
	"time"

	"fitcoach/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WeekdayKey returns the lower-case English weekday name used as a plan key.
func WeekdayKey(d time.Weekday) string {
	return strings.ToLower(d.String())
}

// Resolve returns the template the plan assigns to date. It fails closed: a nil
// plan, a date outside [StartDate, EndDate], an unparseable range or a missing
// weekday all yield ok == false.
func Resolve(plan *domain.WorkoutPlan, date time.Time) (primitive.ObjectID, bool) {
	if plan == nil {
		return primitive.NilObjectID, false
	}
	if !InRange(plan, date) {
		return primitive.NilObjectID, false
	}

	key := WeekdayKey(date.Weekday())
	for day, templateID := range plan.ScheduleData {
		if strings.EqualFold(strings.TrimSpace(day), key) {
			return templateID, true
		}
	}
	return primitive.NilObjectID, false
}

// InRange reports whether the calendar date of date lies within the plan's
// inclusive range. Dates are compared as calendar days in date's location.
func InRange(plan *domain.WorkoutPlan, date time.Time) bool {
	loc := date.Location()
	start, err := ParseDate(plan.StartDate, loc)
	if err != nil {
		return false
	}
	end, err := ParseDate(plan.EndDate, loc)
	if err != nil {
		return false
	}
	day := DateOf(date, loc)
	return !day.Before(start) && !day.After(end)
}

// CanonicalScheduleData lower-cases weekday keys. Plan authors can use it at
// write time; Resolve does not depend on it.
func CanonicalScheduleData(in map[string]primitive.ObjectID) map[string]primitive.ObjectID {
	out := make(map[string]primitive.ObjectID, len(in))
	for day, templateID := range in {
		out[strings.ToLower(strings.TrimSpace(day))] = templateID
	}
	return out
}
