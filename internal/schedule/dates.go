package schedule

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for plan ranges and session dates.
const DateLayout = "2006-01-02"

// timeLayouts are the accepted session start-time formats.
var timeLayouts = []string{"15:04:05", "15:04"}

// ParseDate parses a YYYY-MM-DD string as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
}

// FormatDate renders the calendar date of t in t's own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateOf returns midnight in loc of the calendar day t shows in its own
// location. Convert t with In(loc) first to ask "which day is it in loc".
func DateOf(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// AddDays moves a calendar date forward n days, staying at midnight across DST changes.
func AddDays(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+n, 0, 0, 0, 0, t.Location())
}

// CombineDateTime joins a session's date and time strings into one instant in loc.
func CombineDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}, fmt.Errorf("date %q and time %q are both required", date, clock)
	}
	day, err := ParseDate(date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	for _, layout := range timeLayouts {
		tod, err := time.Parse(layout, clock)
		if err != nil {
			continue
		}
		return time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), tod.Second(), 0, loc), nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q", clock)
}
