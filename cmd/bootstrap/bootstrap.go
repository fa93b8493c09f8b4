package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-booking/config"
	deliveryHttp "clinic-booking/internal/delivery/http"
	"clinic-booking/internal/delivery/http/handler"
	"clinic-booking/internal/delivery/http/middleware"
	"clinic-booking/internal/infrastructure/cache"
	"clinic-booking/internal/infrastructure/database"
	"clinic-booking/internal/infrastructure/messaging"
	"clinic-booking/internal/infrastructure/scheduler"
	"clinic-booking/internal/repository"
	"clinic-booking/internal/service"
	"clinic-booking/internal/usecase"
	"clinic-booking/pkg/jwt"
	"clinic-booking/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Publisher   messaging.EventPublisher
	Scheduler   *scheduler.Scheduler
	Server      *http.Server
	Staff       usecase.StaffUsecase

	clock   usecase.Clock
	tickets service.TicketCounter
}

// Load reads the configuration and sets up the logger.
func Load() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := setupLogger(cfg.App)
	log.Info("Configuration loaded successfully")
	return cfg, log, nil
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	cfg, log, err := Load()
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Log: log}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	log.Info("Database connected successfully")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis, log)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	log.Info("Redis connected successfully")

	// Initialize event publishing
	if len(cfg.Kafka.Brokers) > 0 {
		app.Publisher = messaging.NewKafkaProducer(cfg.Kafka, log)
		log.Infof("Publishing appointment events to %s", cfg.Kafka.Topic)
	} else {
		app.Publisher = messaging.NewNoopPublisher()
		log.Info("No Kafka broker configured, appointment events are not published")
	}

	if err := app.initialize(); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(cfg config.AppConfig) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// initialize wires repositories, usecases, the HTTP server and the scheduler.
func (app *App) initialize() error {
	cfg, log, db := app.Config, app.Log, app.DB

	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()
	tx := database.NewTransactor(db)
	app.clock = usecase.NewClock(cfg.App.Location)

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	profileRepo := repository.NewProfileRepository()
	patientRepo := repository.NewPatientRepository()
	accountRepo := repository.NewAccountRepository()
	auditLogRepo := repository.NewAuditLogRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	ticketRepo := repository.NewQueueTicketRepository()
	hoursRepo := repository.NewClinicHoursRepository()
	closureRepo := repository.NewClosureDayRepository()
	serviceRepo := repository.NewServiceRepository()

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	sessions := service.NewRedisSessionStore(app.RedisClient, log)
	app.tickets = service.NewRedisTicketCounter(app.RedisClient, ticketRepo, log)

	// Initialize usecases
	provisioning := usecase.NewProvisioningUsecase(log, profileRepo, patientRepo, accountRepo)
	authUsecase := usecase.NewAuthUsecase(tx, log, userRepo, provisioning, auditService, jwtService, sessions)
	appointmentUsecase := usecase.NewAppointmentUsecase(tx, log, app.clock, appointmentRepo, ticketRepo, hoursRepo, closureRepo, serviceRepo, app.tickets, auditService, app.Publisher)
	queueUsecase := usecase.NewQueueUsecase(tx, log, app.clock, appointmentRepo, ticketRepo, auditService, app.Publisher)
	reportUsecase := usecase.NewReportUsecase(tx, log, app.clock, appointmentRepo)
	clinicUsecase := usecase.NewClinicUsecase(tx, log, hoursRepo, closureRepo, serviceRepo, auditService)
	app.Staff = usecase.NewStaffUsecase(tx, log, userRepo, profileRepo, provisioning, auditService, sessions)
	patientUsecase := usecase.NewPatientUsecase(tx, log, patientRepo)
	auditLogUsecase := usecase.NewAuditLogUsecase(tx, log, auditLogRepo)

	// Initialize handlers
	redirects := handler.Redirects{Login: cfg.HTTP.LoginRedirect, Forbidden: cfg.HTTP.ForbiddenRedirect}
	handlers := deliveryHttp.Handlers{
		Auth:        handler.NewAuthHandler(authUsecase, customValidator, redirects),
		Appointment: handler.NewAppointmentHandler(appointmentUsecase, customValidator, redirects),
		Agent:       handler.NewAgentHandler(queueUsecase, customValidator, redirects),
		Admin:       handler.NewAdminHandler(reportUsecase, app.Staff, customValidator, redirects),
		Clinic:      handler.NewClinicHandler(clinicUsecase, customValidator, redirects),
		Patient:     handler.NewPatientHandler(patientUsecase, redirects),
		AuditLog:    handler.NewAuditLogHandler(auditLogUsecase, redirects),
	}

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, sessions, log, cfg.HTTP.LoginRedirect)
	capabilityMiddleware := middleware.NewCapabilityMiddleware(cfg.HTTP.ForbiddenRedirect, cfg.HTTP.LoginRedirect)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.HTTP.CORSOrigins)
	rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)

	// Initialize router
	router := deliveryHttp.NewRouter(handlers, authMiddleware, capabilityMiddleware, corsMiddleware, rateLimiter, log)
	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Initialize scheduler
	app.Scheduler = scheduler.NewScheduler(log)
	return app.Scheduler.Register(scheduler.Job{
		Name: "ticket-resync",
		Spec: cfg.Scheduler.TicketResyncSpec,
		Run:  app.resyncTickets,
	})
}

// resyncTickets raises today's ticket counter to the highest stored ticket.
func (app *App) resyncTickets(ctx context.Context) error {
	return app.tickets.Resync(ctx, app.DB.WithContext(ctx), app.clock.TicketDay())
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// A stale counter after a redis restart would hand out taken numbers.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := app.resyncTickets(ctx); err != nil {
		app.Log.Warnf("Failed to resync ticket counters at startup: %+v", err)
	}
	cancel()

	app.Scheduler.Start()

	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}
	app.Scheduler.Stop(ctx)

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, kafka)
func (app *App) Close() {
	if app.Publisher != nil {
		if err := app.Publisher.Close(); err != nil {
			app.Log.Warnf("Failed to close event publisher: %+v", err)
		}
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}

// Migrate applies ("up") or rolls back ("down") the embedded migrations.
func Migrate(direction string, steps int) error {
	cfg, log, err := Load()
	if err != nil {
		return err
	}

	migrator, err := database.NewMigrator(cfg.DB.URL(), log)
	if err != nil {
		return err
	}
	defer migrator.Close()

	switch direction {
	case "up":
		return migrator.Up()
	case "down":
		return migrator.Down(steps)
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
}
