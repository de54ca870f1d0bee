package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"fitcoach/internal/domain"
	"fitcoach/internal/repository"
	"fitcoach/internal/schedule"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ── In-memory store shared by the mock repositories ──
//
// The transactor snapshots the whole store and restores it when fn fails,
// which is what the Mongo transaction gives us in production.

type memStore struct {
	mu            sync.Mutex
	plans         []domain.WorkoutPlan
	templates     map[primitive.ObjectID]domain.WorkoutTemplate
	sessions      map[primitive.ObjectID]domain.TrainingSession
	notifications []domain.ReminderNotification
	users         map[primitive.ObjectID]domain.User

	// Fault injection
	failNotificationCreate error
	failSessionsForDate    error
	// beforeUpdate runs inside UpdateStatus before the compare-and-set.
	beforeUpdate func()

	commits   int
	rollbacks int
}

func newMemStore() *memStore {
	return &memStore{
		templates: make(map[primitive.ObjectID]domain.WorkoutTemplate),
		sessions:  make(map[primitive.ObjectID]domain.TrainingSession),
		users:     make(map[primitive.ObjectID]domain.User),
	}
}

func (m *memStore) addTemplate(name string, rest bool) domain.WorkoutTemplate {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := domain.WorkoutTemplate{ID: primitive.NewObjectID(), Name: name, IsRestDay: rest, EstimatedDurationMinutes: 45}
	m.templates[t.ID] = t
	return t
}

func (m *memStore) addPlan(p domain.WorkoutPlan) domain.WorkoutPlan {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.CreatedAt = time.Now()
	m.plans = append(m.plans, p)
	return p
}

func (m *memStore) addSession(s domain.TrainingSession) domain.TrainingSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	if s.Status == "" {
		s.Status = domain.SessionScheduled
	}
	m.sessions[s.ID] = s
	return s
}

func (m *memStore) session(id primitive.ObjectID) domain.TrainingSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

func (m *memStore) notificationsFor(sessionID primitive.ObjectID, t domain.NotificationType) []domain.ReminderNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ReminderNotification
	for _, n := range m.notifications {
		if n.SessionID == sessionID && n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// ── Transactor ──

type memTransactor struct {
	store *memStore
	// serialize mimics a store that serializes conflicting transactions.
	serialize sync.Mutex
}

func (t *memTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.serialize.Lock()
	defer t.serialize.Unlock()

	m := t.store
	m.mu.Lock()
	sessions := make(map[primitive.ObjectID]domain.TrainingSession, len(m.sessions))
	for k, v := range m.sessions {
		sessions[k] = v
	}
	notifications := append([]domain.ReminderNotification(nil), m.notifications...)
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.sessions = sessions
		m.notifications = notifications
		m.rollbacks++
		m.mu.Unlock()
		return err
	}
	m.mu.Lock()
	m.commits++
	m.mu.Unlock()
	return nil
}

// ── Mock PlanRepository ──

type mockPlanRepo struct{ store *memStore }

func (r *mockPlanRepo) GetActive(_ context.Context, clientID primitive.ObjectID, date time.Time) (*domain.WorkoutPlan, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	day := schedule.FormatDate(date)
	var found *domain.WorkoutPlan
	for i := range r.store.plans {
		p := r.store.plans[i]
		if p.ClientID == clientID && p.StartDate <= day && day <= p.EndDate {
			found = &p
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

// ── Mock TemplateRepository ──

type mockTemplateRepo struct{ store *memStore }

func (r *mockTemplateRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

// ── Mock SessionRepository ──

type mockSessionRepo struct{ store *memStore }

func (r *mockSessionRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.TrainingSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *mockSessionRepo) GetForDate(_ context.Context, clientID primitive.ObjectID, date string, statuses []domain.SessionStatus) ([]domain.TrainingSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failSessionsForDate != nil {
		return nil, r.store.failSessionsForDate
	}
	var out []domain.TrainingSession
	for _, s := range r.store.sessions {
		if s.ClientID != clientID || s.ScheduledDate != date {
			continue
		}
		for _, st := range statuses {
			if s.Status == st {
				out = append(out, s)
				break
			}
		}
	}
	// Map iteration is random; hand results back in a stable but unhelpful order.
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() > out[j].ID.Hex() })
	return out, nil
}

func (r *mockSessionRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, expected domain.SessionStatus, update repository.SessionUpdate) (*domain.TrainingSession, error) {
	if r.store.beforeUpdate != nil {
		r.store.beforeUpdate()
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if s.Status != expected {
		return nil, repository.ErrConflict
	}
	s.Status = update.Status
	if update.Completion != nil {
		s.Completion = update.Completion
	}
	if update.ConfirmedAt != nil {
		s.ConfirmedAt = update.ConfirmedAt
	}
	if update.CancelledAt != nil {
		s.CancelledAt = update.CancelledAt
	}
	s.UpdatedAt = time.Now().UTC()
	r.store.sessions[id] = s
	return &s, nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct{ store *memStore }

func (r *mockNotificationRepo) Create(_ context.Context, n *domain.ReminderNotification) (primitive.ObjectID, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failNotificationCreate != nil {
		return primitive.NilObjectID, r.store.failNotificationCreate
	}
	if n.Type == domain.NotificationReminder {
		for _, existing := range r.store.notifications {
			if existing.SessionID == n.SessionID && existing.Type == n.Type && !existing.Sent {
				return primitive.NilObjectID, repository.ErrConflict
			}
		}
	}
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now().UTC()
	r.store.notifications = append(r.store.notifications, *n)
	return n.ID, nil
}

func (r *mockNotificationRepo) FindUnsent(_ context.Context, sessionID primitive.ObjectID, t domain.NotificationType) (*domain.ReminderNotification, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, n := range r.store.notifications {
		if n.SessionID == sessionID && n.Type == t && !n.Sent {
			return &n, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ── Mock UserRepository ──

type mockUserRepo struct{ store *memStore }

func (r *mockUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

var errStoreUnavailable = errors.New("store unavailable")

// fixedClock returns a clock frozen at t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
