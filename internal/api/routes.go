package api

import (
	"net/http"
	"time"

	"fitcoach/internal/domain"
	"fitcoach/internal/repository"
	"fitcoach/internal/service"

	"github.com/gin-gonic/gin"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Schedules service.ScheduleService
	Sessions  service.SessionService
	Exporter  service.CalendarExporter
	Users     repository.UserRepository
	Location  *time.Location
	Now       func() time.Time
}

func SetupRoutes(router *gin.Engine, jwtSecret string, svc Services) {
	scheduleHandler := NewScheduleHandler(svc.Schedules, svc.Exporter, svc.Users, svc.Location, svc.Now)
	sessionHandler := NewSessionHandler(svc.Sessions)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(jwtSecret))
	{
		// --- Client Routes ---
		clientGroup := protected.Group("/client")
		clientGroup.Use(RoleMiddleware(domain.RoleClient))
		{
			// GET /api/v1/client/workouts/today
			clientGroup.GET("/workouts/today", scheduleHandler.GetMyToday)
			// GET /api/v1/client/workouts/{date}
			clientGroup.GET("/workouts/:date", scheduleHandler.GetMyWorkoutForDate)
			// GET /api/v1/client/calendar?weekStart=YYYY-MM-DD
			clientGroup.GET("/calendar", scheduleHandler.GetMyCalendar)
			// POST /api/v1/client/calendar/export?weekStart=YYYY-MM-DD
			clientGroup.POST("/calendar/export", scheduleHandler.ExportMyCalendar)
		}

		// --- Staff Routes ---
		staffGroup := protected.Group("/staff")
		staffGroup.Use(RoleMiddleware(domain.StaffRoles...))
		{
			staffGroup.GET("/clients/:clientId/workouts/:date", scheduleHandler.GetClientWorkoutForDate)
			staffGroup.GET("/clients/:clientId/calendar", scheduleHandler.GetClientCalendar)
		}

		// --- Session Lifecycle ---
		// Participation is checked per session in the handler.
		sessionGroup := protected.Group("/sessions/:sessionId")
		{
			sessionGroup.POST("/confirm", RoleMiddleware(domain.RoleClient, domain.RoleTrainer, domain.RoleAdmin), sessionHandler.ConfirmSession)
			sessionGroup.POST("/complete", RoleMiddleware(domain.RoleClient, domain.RoleTrainer, domain.RoleAdmin), sessionHandler.CompleteSession)
			sessionGroup.POST("/cancel", RoleMiddleware(domain.RoleClient, domain.RoleTrainer, domain.RoleAdmin), sessionHandler.CancelSession)
			sessionGroup.POST("/no-show", RoleMiddleware(domain.RoleTrainer, domain.RoleAdmin), sessionHandler.MarkNoShow)
		}
	}
}
