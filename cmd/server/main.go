package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitcoach/internal/api"
	"fitcoach/internal/config"
	"fitcoach/internal/lock"
	"fitcoach/internal/logger"
	"fitcoach/internal/repository/mongo"
	"fitcoach/internal/service"
	"fitcoach/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title Fitcoach Schedule API
// @version 1.0
// @description Workout schedule resolution and training session lifecycle.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	// --- Logging ---
	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("FATAL: Could not build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	loc, _ := cfg.Schedule.Location() // validated by LoadConfig
	zlog.Info("starting fitcoach server",
		zap.String("address", cfg.Server.Address),
		zap.String("timezone", loc.String()),
	)

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		zlog.Fatal("could not connect to MongoDB", zap.Error(err))
	}
	defer func() {
		zlog.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			zlog.Error("failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(ctx, appDB); err != nil {
			zlog.Error("index creation failed", zap.Error(err))
			return
		}
		zlog.Info("database indexes ensured")
	}()

	// --- Session Lock ---
	var locker lock.Locker = lock.Noop{}
	if cfg.Redis.Addr != "" {
		redisLocker, err := lock.NewRedisLocker(cfg.Redis, zlog)
		if err != nil {
			zlog.Fatal("could not connect to Redis", zap.Error(err))
		}
		defer func() { _ = redisLocker.Close() }()
		locker = redisLocker
	} else {
		zlog.Info("redis not configured, session locking relies on the database only")
	}

	// --- Storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled() {
		fileStorage, err = storage.NewS3Storage(cfg.S3, zlog)
		if err != nil {
			zlog.Fatal("failed to initialize S3 storage", zap.Error(err))
		}
	} else {
		zlog.Info("s3 not configured, calendar export disabled")
	}

	// --- Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	planRepo := mongo.NewMongoPlanRepository(appDB)
	templateRepo := mongo.NewMongoTemplateRepository(appDB)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)
	notificationRepo := mongo.NewMongoNotificationRepository(appDB)
	transactor := mongo.NewTransactor(dbClient)

	// --- Services ---
	reminderScheduler := service.NewReminderScheduler(notificationRepo, loc, time.Now, zlog.Named("reminders"))
	sessionService := service.NewSessionService(sessionRepo, transactor, reminderScheduler, locker, loc, time.Now, zlog.Named("sessions"))
	scheduleService := service.NewScheduleService(planRepo, templateRepo, sessionRepo, loc, time.Now, zlog.Named("schedule"))
	calendarExporter := service.NewCalendarExporter(scheduleService, fileStorage, loc, time.Now, zlog.Named("calendar"))

	// --- Gin Engine ---
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestID(), api.RequestLogger(zlog.Named("http")))

	api.SetupRoutes(router, cfg.JWT.Secret, api.Services{
		Schedules: scheduleService,
		Sessions:  sessionService,
		Exporter:  calendarExporter,
		Users:     userRepo,
		Location:  loc,
		Now:       time.Now,
	})

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("listen failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}
	zlog.Info("server exiting")
}
