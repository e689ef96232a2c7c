package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-appointment-manager/config"
	httpDelivery "clinic-appointment-manager/internal/delivery/http"
	"clinic-appointment-manager/internal/delivery/http/handler"
	"clinic-appointment-manager/internal/delivery/http/middleware"
	"clinic-appointment-manager/internal/infrastructure/cache"
	"clinic-appointment-manager/internal/infrastructure/database"
	"clinic-appointment-manager/internal/repository"
	"clinic-appointment-manager/internal/service"
	"clinic-appointment-manager/internal/usecase"
	"clinic-appointment-manager/pkg/jwt"
	"clinic-appointment-manager/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server

	monitor   *service.DeadlineMonitor
	lifecycle service.InvitationLifecycle
}

func New() (*App, error) {
	setupLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.NewPostgresConnection(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	app := &App{
		Config:      cfg,
		DB:          db,
		RedisClient: redisClient,
	}

	app.initializeServer()

	return app, nil
}

func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

func (a *App) initializeServer() {
	log := logrus.StandardLogger()

	// Shared utilities
	jwtService := jwt.NewJWTService(a.Config.JWT)
	customValidator := validator.NewValidator()

	// Repositories
	userRepo := repository.NewUserRepository()
	roleRepo := repository.NewRoleRepository()
	profileRepo := repository.NewPatientProfileRepository()
	auditLogRepo := repository.NewAuditLogRepository()
	clinicServiceRepo := repository.NewClinicServiceRepository()
	waitingListRepo := repository.NewWaitingListRepository()
	invitationRepo := repository.NewInvitationRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	consultationRepo := repository.NewConsultationRepository()

	// Services
	auditService := service.NewAuditService(a.DB, log, auditLogRepo)
	matcher := service.NewSlotMatcher()
	reserver := service.NewRedisSlotReservation(a.RedisClient, log)
	notifier := service.NewLogNotifier(log)

	// The monitor is built before the lifecycle so the lifecycle can register
	// deadlines on it; the lifecycle is handed to the monitor at Start.
	monitor := service.NewDeadlineMonitor(
		a.DB,
		log,
		invitationRepo,
		profileRepo,
		notifier,
		a.Config.Waitlist.MonitorInterval,
		a.Config.Waitlist.ReminderLead,
	)

	lifecycle := service.NewInvitationService(
		a.DB,
		log,
		a.Config.Waitlist,
		matcher,
		reserver,
		notifier,
		monitor,
		auditService,
		waitingListRepo,
		invitationRepo,
		appointmentRepo,
		profileRepo,
		clinicServiceRepo,
	)

	a.monitor = monitor
	a.lifecycle = lifecycle

	// Usecases
	authUsecase := usecase.NewAuthUsecase(a.DB, log, userRepo, roleRepo, profileRepo, jwtService, a.RedisClient, auditService)
	patientProfileUsecase := usecase.NewPatientProfileUsecase(a.DB, log, profileRepo, auditService)
	waitingListUsecase := usecase.NewWaitingListUsecase(a.DB, log, waitingListRepo, invitationRepo, clinicServiceRepo, lifecycle, auditService)
	appointmentUsecase := usecase.NewAppointmentUsecase(a.DB, log, appointmentRepo, lifecycle, auditService)
	clinicServiceUsecase := usecase.NewClinicServiceUsecase(a.DB, log, clinicServiceRepo, waitingListRepo, auditService)
	consultationUsecase := usecase.NewConsultationUsecase(a.DB, log, consultationRepo, appointmentRepo, auditService)

	// Handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	patientHandler := handler.NewPatientHandler(patientProfileUsecase, customValidator)
	waitingListHandler := handler.NewWaitingListHandler(waitingListUsecase, customValidator)
	invitationHandler := handler.NewInvitationHandler(lifecycle, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase)
	clinicServiceHandler := handler.NewClinicServiceHandler(clinicServiceUsecase, customValidator)
	consultationHandler := handler.NewConsultationHandler(consultationUsecase, customValidator)
	monitorHandler := handler.NewMonitorHandler(monitor, lifecycle)
	auditLogHandler := handler.NewAuditLogHandler(auditService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, a.RedisClient)
	corsMiddleware := middleware.NewCORSMiddleware()

	// Router
	router := httpDelivery.NewRouter(
		authHandler,
		patientHandler,
		waitingListHandler,
		invitationHandler,
		appointmentHandler,
		clinicServiceHandler,
		consultationHandler,
		monitorHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
	)

	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.Config.App.Port),
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func (a *App) Run() error {
	ctx := context.Background()

	// Rebuild the deadline registry from the database so invitations issued
	// before the last shutdown are still tracked.
	if err := a.monitor.ReloadPending(ctx); err != nil {
		return fmt.Errorf("failed to reload pending invitations: %w", err)
	}
	a.monitor.Start(ctx, a.lifecycle)

	go func() {
		logrus.Infof("Server starting on port %s", a.Config.App.Port)
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Server failed to start: %v", err)
		}
	}()

	return a.waitForShutdown()
}

func (a *App) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	a.monitor.Stop()

	if err := a.Close(); err != nil {
		return fmt.Errorf("failed to close connections: %w", err)
	}

	logrus.Info("Server exited gracefully")
	return nil
}

func (a *App) Close() error {
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if a.RedisClient != nil {
		a.RedisClient.Close()
	}

	return nil
}
