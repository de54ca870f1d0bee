package service

import (
	"context"
	"fmt"
	"path"
	"time"

	"fitcoach/internal/domain"
	"fitcoach/internal/schedule"
	"fitcoach/internal/storage"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	icsContentType         = "text/calendar; charset=utf-8"
	defaultSessionDuration = 60 * time.Minute
	calendarProductID      = "-//fitcoach//weekly schedule//EN"
)

// CalendarExport points at a stored iCalendar file for one week.
type CalendarExport struct {
	ObjectKey   string    `json:"objectKey"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Events      int       `json:"events"`
}

// CalendarExporter publishes a client's week as an .ics file.
type CalendarExporter interface {
	ExportWeek(ctx context.Context, clientID primitive.ObjectID, weekStart time.Time) (*CalendarExport, error)
}

// calendarExporter implements CalendarExporter.
type calendarExporter struct {
	schedules   ScheduleService
	fileStorage storage.FileStorage // nil when storage is not configured
	loc         *time.Location
	now         func() time.Time
	logger      *zap.Logger
}

// NewCalendarExporter creates a new instance of calendarExporter.
func NewCalendarExporter(
	schedules ScheduleService,
	fileStorage storage.FileStorage,
	loc *time.Location,
	now func() time.Time,
	logger *zap.Logger,
) CalendarExporter {
	return &calendarExporter{
		schedules:   schedules,
		fileStorage: fileStorage,
		loc:         loc,
		now:         now,
		logger:      logger,
	}
}

// ExportWeek builds the week, uploads it and returns a presigned download URL.
func (e *calendarExporter) ExportWeek(ctx context.Context, clientID primitive.ObjectID, weekStart time.Time) (*CalendarExport, error) {
	if e.fileStorage == nil {
		return nil, ErrExportUnavailable
	}

	week, err := e.schedules.BuildWeek(ctx, clientID, weekStart)
	if err != nil {
		return nil, err
	}

	body, events := RenderWeekICS(week, e.loc, e.now())

	objectKey := path.Join("calendars", clientID.Hex(),
		fmt.Sprintf("%s-%s.ics", week[0].Date, uuid.NewString()))
	if err := e.fileStorage.PutObject(ctx, objectKey, icsContentType, body); err != nil {
		return nil, fmt.Errorf("store calendar: %w", err)
	}

	url, err := e.fileStorage.GeneratePresignedDownloadURL(ctx, objectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign calendar: %w", err)
	}

	e.logger.Info("calendar exported",
		zap.String("clientId", clientID.Hex()),
		zap.String("weekStart", week[0].Date),
		zap.Int("events", events),
	)
	return &CalendarExport{
		ObjectKey:   objectKey,
		DownloadURL: url,
		ExpiresAt:   e.now().Add(storage.DefaultPresignedURLExpiry).UTC(),
		Events:      events,
	}, nil
}

// RenderWeekICS renders one event per scheduled day. Sessions become timed
// events; plan days and rest days become all-day events.
func RenderWeekICS(week Week, loc *time.Location, now time.Time) ([]byte, int) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)

	events := 0
	for i := range week {
		day := &week[i]
		if day.Source == domain.SourceNone {
			continue
		}

		event := cal.AddEvent(eventUID(day))
		event.SetDtStampTime(now.UTC())
		event.SetSummary(eventSummary(day))
		if day.Template != nil && len(day.Template.Exercises) > 0 {
			event.SetDescription(fmt.Sprintf("%d exercises", len(day.Template.Exercises)))
		}

		start, err := sessionStartOf(day, loc)
		if err == nil {
			event.SetStartAt(start)
			event.SetEndAt(start.Add(eventDuration(day)))
			event.SetStatus(eventStatus(day.Session))
		} else {
			date, _ := schedule.ParseDate(day.Date, loc)
			event.SetAllDayStartAt(date)
			event.SetAllDayEndAt(schedule.AddDays(date, 1))
		}
		events++
	}

	return []byte(cal.Serialize()), events
}

func sessionStartOf(day *domain.ResolvedWorkout, loc *time.Location) (time.Time, error) {
	if day.Session == nil {
		return time.Time{}, ErrInvalidSchedule
	}
	return SessionStart(day.Session, loc)
}

func eventUID(day *domain.ResolvedWorkout) string {
	if day.Session != nil {
		return day.Session.ID.Hex() + "@fitcoach"
	}
	if day.PlanID != nil {
		return fmt.Sprintf("%s-%s@fitcoach", day.PlanID.Hex(), day.Date)
	}
	return day.Date + "@fitcoach"
}

func eventSummary(day *domain.ResolvedWorkout) string {
	switch {
	case day.IsRestDay():
		return "Rest day"
	case day.Template != nil:
		return day.Template.Name
	case day.Session != nil && day.Session.Type != "":
		return "Training session (" + day.Session.Type + ")"
	default:
		return "Training session"
	}
}

func eventDuration(day *domain.ResolvedWorkout) time.Duration {
	if day.Template != nil && day.Template.EstimatedDurationMinutes > 0 {
		return time.Duration(day.Template.EstimatedDurationMinutes) * time.Minute
	}
	return defaultSessionDuration
}

func eventStatus(session *domain.TrainingSession) ics.ObjectStatus {
	if session.Status == domain.SessionScheduled {
		return ics.ObjectStatusTentative
	}
	return ics.ObjectStatusConfirmed
}
