package api

import (
	"errors"
	"net/http"
	"time"

	"fitcoach/internal/domain"
	"fitcoach/internal/repository"
	"fitcoach/internal/schedule"
	"fitcoach/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ScheduleHandler struct {
	schedules service.ScheduleService
	exporter  service.CalendarExporter
	users     repository.UserRepository
	loc       *time.Location
	now       func() time.Time
}

func NewScheduleHandler(
	schedules service.ScheduleService,
	exporter service.CalendarExporter,
	users repository.UserRepository,
	loc *time.Location,
	now func() time.Time,
) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, exporter: exporter, users: users, loc: loc, now: now}
}

// --- DTOs ---

// WorkoutResponse is a resolved workout plus the flags the screens act on.
type WorkoutResponse struct {
	*domain.ResolvedWorkout
	IsRestDay bool `json:"isRestDay"`
	CanStart  bool `json:"canStart"`
}

func MapWorkoutToResponse(w *domain.ResolvedWorkout) WorkoutResponse {
	return WorkoutResponse{ResolvedWorkout: w, IsRestDay: w.IsRestDay(), CanStart: w.CanStart()}
}

type CalendarResponse struct {
	WeekStart string            `json:"weekStart"`
	Days      []WorkoutResponse `json:"days"`
}

func MapWeekToResponse(week service.Week) CalendarResponse {
	days := make([]WorkoutResponse, len(week))
	for i := range week {
		days[i] = MapWorkoutToResponse(&week[i])
	}
	return CalendarResponse{WeekStart: week[0].Date, Days: days}
}

// --- Client endpoints ---

// GetMyToday godoc
// @Summary Get today's workout
// @Description Resolves the authenticated client's workout for the current date.
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {object} WorkoutResponse
// @Failure 404 {object} gin.H "Referenced template not found"
// @Router /client/workouts/today [get]
func (h *ScheduleHandler) GetMyToday(c *gin.Context) {
	clientID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify client.")
		return
	}
	resolved, err := h.schedules.ResolveToday(c.Request.Context(), clientID)
	if err != nil {
		respondServiceError(c, err, "Failed to resolve today's workout.")
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(resolved))
}

// GetMyWorkoutForDate godoc
// @Summary Get my workout for a date
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} WorkoutResponse
// @Failure 400 {object} gin.H "Invalid date"
// @Router /client/workouts/{date} [get]
func (h *ScheduleHandler) GetMyWorkoutForDate(c *gin.Context) {
	clientID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify client.")
		return
	}
	h.workoutForDate(c, clientID)
}

// GetMyCalendar godoc
// @Summary Get my week
// @Description Resolves seven consecutive days starting at weekStart (default: today).
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Param weekStart query string false "First day (YYYY-MM-DD)"
// @Success 200 {object} CalendarResponse
// @Router /client/calendar [get]
func (h *ScheduleHandler) GetMyCalendar(c *gin.Context) {
	clientID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify client.")
		return
	}
	h.calendar(c, clientID)
}

// ExportMyCalendar godoc
// @Summary Export my week as iCalendar
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Param weekStart query string false "First day (YYYY-MM-DD)"
// @Success 201 {object} service.CalendarExport
// @Failure 503 {object} gin.H "Export storage not configured"
// @Router /client/calendar/export [post]
func (h *ScheduleHandler) ExportMyCalendar(c *gin.Context) {
	clientID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify client.")
		return
	}
	weekStart, ok := h.weekStartParam(c)
	if !ok {
		return
	}
	export, err := h.exporter.ExportWeek(c.Request.Context(), clientID, weekStart)
	if err != nil {
		respondServiceError(c, err, "Failed to export calendar.")
		return
	}
	c.JSON(http.StatusCreated, export)
}

// --- Staff endpoints ---

// GetClientWorkoutForDate lets staff look at a client's day.
func (h *ScheduleHandler) GetClientWorkoutForDate(c *gin.Context) {
	clientID, ok := h.authorizedClient(c)
	if !ok {
		return
	}
	h.workoutForDate(c, clientID)
}

// GetClientCalendar lets staff look at a client's week.
func (h *ScheduleHandler) GetClientCalendar(c *gin.Context) {
	clientID, ok := h.authorizedClient(c)
	if !ok {
		return
	}
	h.calendar(c, clientID)
}

// authorizedClient parses :clientId and checks the caller may see that
// client. Trainers only see clients they manage; other staff see everyone.
func (h *ScheduleHandler) authorizedClient(c *gin.Context) (primitive.ObjectID, bool) {
	clientID, err := primitive.ObjectIDFromHex(c.Param("clientId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
		return primitive.NilObjectID, false
	}
	callerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return primitive.NilObjectID, false
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return primitive.NilObjectID, false
	}

	client, err := h.users.GetByID(c.Request.Context(), clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "Client not found.")
		} else {
			_ = c.Error(err)
			abortWithError(c, http.StatusInternalServerError, "Failed to load client.")
		}
		return primitive.NilObjectID, false
	}
	if !client.IsClient() {
		abortWithError(c, http.StatusNotFound, "Client not found.")
		return primitive.NilObjectID, false
	}
	if role == domain.RoleTrainer && !client.IsManagedBy(callerID) {
		abortWithError(c, http.StatusForbidden, "Client is not managed by this trainer.")
		return primitive.NilObjectID, false
	}
	return clientID, true
}

// --- shared ---

func (h *ScheduleHandler) workoutForDate(c *gin.Context, clientID primitive.ObjectID) {
	date, err := schedule.ParseDate(c.Param("date"), h.loc)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD.")
		return
	}
	resolved, err := h.schedules.ResolveForDate(c.Request.Context(), clientID, date)
	if err != nil {
		respondServiceError(c, err, "Failed to resolve workout.")
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(resolved))
}

func (h *ScheduleHandler) calendar(c *gin.Context, clientID primitive.ObjectID) {
	weekStart, ok := h.weekStartParam(c)
	if !ok {
		return
	}
	week, err := h.schedules.BuildWeek(c.Request.Context(), clientID, weekStart)
	if err != nil {
		respondServiceError(c, err, "Failed to build calendar.")
		return
	}
	c.JSON(http.StatusOK, MapWeekToResponse(week))
}

// weekStartParam reads ?weekStart, defaulting to today in the service timezone.
func (h *ScheduleHandler) weekStartParam(c *gin.Context) (time.Time, bool) {
	raw := c.Query("weekStart")
	if raw == "" {
		return schedule.DateOf(h.now().In(h.loc), h.loc), true
	}
	weekStart, err := schedule.ParseDate(raw, h.loc)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid weekStart, expected YYYY-MM-DD.")
		return time.Time{}, false
	}
	return weekStart, true
}
