package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"fitcoach/internal/domain"
	"fitcoach/internal/repository"
	"fitcoach/internal/schedule"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DaysPerWeek is the length of a calendar week view.
const DaysPerWeek = 7

// Week is one resolved workout per day, index 0 being the requested start date.
type Week [DaysPerWeek]domain.ResolvedWorkout

// ScheduleService answers "what is the workout" for a client and date.
type ScheduleService interface {
	ResolveToday(ctx context.Context, clientID primitive.ObjectID) (*domain.ResolvedWorkout, error)
	ResolveForDate(ctx context.Context, clientID primitive.ObjectID, date time.Time) (*domain.ResolvedWorkout, error)
	BuildWeek(ctx context.Context, clientID primitive.ObjectID, weekStart time.Time) (Week, error)
}

// scheduleService implements the ScheduleService interface. It holds no
// state between calls, so every answer reflects the latest trainer edits.
type scheduleService struct {
	plans     repository.PlanRepository
	templates repository.TemplateRepository
	sessions  repository.SessionRepository
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewScheduleService creates a new instance of scheduleService.
func NewScheduleService(
	plans repository.PlanRepository,
	templates repository.TemplateRepository,
	sessions repository.SessionRepository,
	loc *time.Location,
	now func() time.Time,
	logger *zap.Logger,
) ScheduleService {
	return &scheduleService{
		plans:     plans,
		templates: templates,
		sessions:  sessions,
		loc:       loc,
		now:       now,
		logger:    logger,
	}
}

// ResolveToday resolves the current calendar date in the service timezone.
func (s *scheduleService) ResolveToday(ctx context.Context, clientID primitive.ObjectID) (*domain.ResolvedWorkout, error) {
	return s.ResolveForDate(ctx, clientID, s.now().In(s.loc))
}

// ResolveForDate applies precedence: an ad-hoc session beats the recurring plan.
func (s *scheduleService) ResolveForDate(ctx context.Context, clientID primitive.ObjectID, date time.Time) (*domain.ResolvedWorkout, error) {
	day := schedule.DateOf(date, s.loc)
	dayStr := schedule.FormatDate(day)

	// 1. Ad-hoc sessions
	sessions, err := s.sessions.GetForDate(ctx, clientID, dayStr, domain.ActiveSessionStatuses)
	if err != nil {
		return nil, err
	}
	if session := s.earliest(sessions); session != nil {
		return s.resolveSession(ctx, dayStr, session)
	}

	// 2. Recurring plan
	plan, err := s.plans.GetActive(ctx, clientID, day)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if templateID, ok := schedule.Resolve(plan, day); ok {
		template, err := s.templates.GetByID(ctx, templateID)
		if err != nil {
			return nil, translateRepoError(err, "template", templateID)
		}
		source := domain.SourcePlan
		if template.IsRestDay {
			source = domain.SourcePlanRestDay
		}
		planID := plan.ID
		return &domain.ResolvedWorkout{Date: dayStr, Source: source, Template: template, PlanID: &planID}, nil
	}

	// 3. Nothing scheduled
	return &domain.ResolvedWorkout{Date: dayStr, Source: domain.SourceNone}, nil
}

func (s *scheduleService) resolveSession(ctx context.Context, day string, session *domain.TrainingSession) (*domain.ResolvedWorkout, error) {
	resolved := &domain.ResolvedWorkout{Date: day, Source: domain.SourceAdhoc, Session: session}
	if session.TemplateID == nil {
		return resolved, nil
	}
	template, err := s.templates.GetByID(ctx, *session.TemplateID)
	if err != nil {
		return nil, translateRepoError(err, "template", *session.TemplateID)
	}
	resolved.Template = template
	if template.IsRestDay {
		resolved.Source = domain.SourceRestDay
	}
	return resolved, nil
}

// earliest picks the session with the earliest start time. Unparseable times
// sort last; ties fall back to ID order so the pick is deterministic.
func (s *scheduleService) earliest(sessions []domain.TrainingSession) *domain.TrainingSession {
	if len(sessions) == 0 {
		return nil
	}
	type candidate struct {
		session *domain.TrainingSession
		start   time.Time
		valid   bool
	}
	candidates := make([]candidate, len(sessions))
	for i := range sessions {
		start, err := SessionStart(&sessions[i], s.loc)
		candidates[i] = candidate{session: &sessions[i], start: start, valid: err == nil}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.valid != b.valid {
			return a.valid
		}
		if !a.start.Equal(b.start) {
			return a.start.Before(b.start)
		}
		return a.session.ID.Hex() < b.session.ID.Hex()
	})
	return candidates[0].session
}

// BuildWeek resolves weekStart and the six following days. Days are resolved
// concurrently; each result lands in its own fixed slot.
func (s *scheduleService) BuildWeek(ctx context.Context, clientID primitive.ObjectID, weekStart time.Time) (Week, error) {
	var week Week
	start := schedule.DateOf(weekStart, s.loc)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < DaysPerWeek; i++ {
		i := i
		day := schedule.AddDays(start, i)
		g.Go(func() error {
			resolved, err := s.ResolveForDate(gctx, clientID, day)
			if err != nil {
				return err
			}
			week[i] = *resolved
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("failed to build week",
			zap.String("clientId", clientID.Hex()),
			zap.String("weekStart", schedule.FormatDate(start)),
			zap.Error(err),
		)
		return Week{}, err
	}
	return week, nil
}
