package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/shenikar/emergency_dispatch/internal/assignment"
	"github.com/shenikar/emergency_dispatch/internal/config"
	v1 "github.com/shenikar/emergency_dispatch/internal/handler/http/v1"
	"github.com/shenikar/emergency_dispatch/internal/outbox"
	"github.com/shenikar/emergency_dispatch/internal/realtime"
	"github.com/shenikar/emergency_dispatch/internal/repository"
	"github.com/shenikar/emergency_dispatch/internal/scheduler"
	"github.com/shenikar/emergency_dispatch/internal/service"
	"github.com/shenikar/emergency_dispatch/pkg/logger"
	natsclient "github.com/shenikar/emergency_dispatch/pkg/nats"
	"github.com/shenikar/emergency_dispatch/pkg/postgres"
	redisclient "github.com/shenikar/emergency_dispatch/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/emergency_dispatch/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Emergency Dispatch API
// @version 1.0
// @description Dispatch recommendation and assignment lifecycle engine for emergency response.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	policy, err := assignment.PolicyByName(cfg.TransitionPolicy)
	if err != nil {
		log.Fatalf("Invalid assignment transition policy: %v", err)
	}

	// Контекст для graceful shutdown фоновых воркеров
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запуск миграций
	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Real-time updates: local WebSocket hub, optionally fed through NATS
	// so that every instance sees updates produced by the others.
	hub := realtime.NewHub(log)
	var broadcaster outbox.IncidentBroadcaster = hub
	if cfg.NATSURL != "" {
		nc, err := natsclient.NewNATSConn(cfg.NATSURL, "emergency-dispatch")
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer nc.Drain()

		natsBroadcaster := realtime.NewNATSBroadcaster(nc, log)
		if _, err := natsBroadcaster.Relay(hub); err != nil {
			log.Fatalf("Failed to subscribe to incident updates: %v", err)
		}
		broadcaster = natsBroadcaster
		log.Info("Successfully connected to NATS")
	}

	// Outbox: services enqueue, the worker delivers
	queue := outbox.NewRedisQueue(redisClient)
	notifier := outbox.NewWebhookNotifier(cfg.WebhookURL, cfg.WebhookSecret, cfg.WebhookTimeout, log)
	worker := outbox.NewWorker(queue, broadcaster, notifier, log, outbox.WorkerConfig{
		MaxRetries: cfg.OutboxMaxRetries,
		BaseDelay:  cfg.OutboxBaseDelay,
	})
	worker.Start(ctx)

	// Инициализация репозиториев
	incidentRepo := repository.NewIncidentRepository(dbpool, redisClient)
	agencyRepo := repository.NewAgencyRepository(dbpool)
	responderRepo := repository.NewResponderRepository(dbpool)
	assignmentRepo := repository.NewAssignmentRepository(dbpool)
	counterStore := repository.NewCounterStore(dbpool, redisClient, cfg.CounterSnapshotTTL, cfg.AnalyticsWindowDays)

	if _, err := counterStore.Refresh(ctx); err != nil {
		log.WithError(err).Warn("Initial agency counter refresh failed; recommendations fall back to stored counts")
	}
	jobs := scheduler.New(log)
	if err := jobs.ScheduleCounterRefresh(ctx, cfg.CounterRefreshSpec, counterStore); err != nil {
		log.Fatalf("Failed to schedule counter refresh: %v", err)
	}
	jobs.Start()

	// Инициализация сервисов
	incidentService := service.NewIncidentService(incidentRepo, queue, log)
	dispatchService := service.NewDispatchService(service.DispatchDeps{
		Incidents:   incidentRepo,
		Agencies:    agencyRepo,
		Responders:  responderRepo,
		Assignments: assignmentRepo,
		Counters:    counterStore,
		Publisher:   queue,
	}, policy, log)
	analyticsService := service.NewAnalyticsService(incidentRepo, agencyRepo, cfg.AnalyticsWindowDays, log)

	// Инициализация хэндлеров
	handler := v1.NewHandler(v1.Services{
		Incidents: incidentService,
		Dispatch:  dispatchService,
		Analytics: analyticsService,
	}, hub, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.WithField("policy", policy.Name()).Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}
	cancel()
	jobs.Stop()

	log.Info("Server gracefully stopped")
}
