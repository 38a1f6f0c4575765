package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/config"
	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/handlers"
	"github.com/SAP-F-2025/learning-service/internal/notifier"
	"github.com/SAP-F-2025/learning-service/internal/reporting"
	"github.com/SAP-F-2025/learning-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/SAP-F-2025/learning-service/internal/validator"
	"github.com/SAP-F-2025/learning-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(slogLogger)
	logger := utils.NewSlogLogger(slogLogger)

	reporter := reporting.NewReporter(cfg, slogLogger)

	// Initialize database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, caching disabled", "error", err)
			redisClient = nil
		}
	}

	// Initialize repositories
	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:              db,
		RedisClient:     redisClient,
		CatalogCacheTTL: cfg.CatalogCacheTTL,
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	// Completion notifications: publisher side for the services, worker side for delivery
	pubSub, err := events.NewPubSub(cfg.Events, slogLogger)
	if err != nil {
		log.Fatalf("Failed to initialize pub/sub: %v", err)
	}
	completions := events.NewCompletionPublisher(
		events.NewWatermillEventPublisher(pubSub.Publisher, slogLogger),
		cfg.Events.Topic,
	)

	transport, err := notifier.NewTransport(cfg.Mail)
	if err != nil {
		log.Fatalf("Failed to initialize mail transport: %v", err)
	}
	worker, err := notifier.NewWorker(
		pubSub.Subscriber,
		completions.Topic(),
		notifier.NewNotifier(transport, cfg.Mail, slogLogger),
		reporter,
		slogLogger,
	)
	if err != nil {
		log.Fatalf("Failed to initialize notification worker: %v", err)
	}

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go func() {
		if err := worker.Run(workerCtx); err != nil {
			logger.Error("Notification worker stopped", "error", err)
		}
	}()
	<-worker.Running()
	logger.Info("Notification worker started", "backend", pubSub.Backend, "topic", completions.Topic())

	// Initialize validator
	validator := validator.New()

	// Initialize services
	serviceManager := services.NewServiceManager(db, repoManager.GetRepository(), slogLogger, validator, services.ServiceManagerConfig{
		CacheManager: cache.NewCacheManager(redisClient),
		Notifier:     completions,
		Reporter:     reporter,
	})
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Initialize handlers
	authMiddleware := handlers.NewCasdoorAuthMiddleware(cfg.Casdoor, serviceManager.Identity(), logger)
	handlerManager := handlers.NewHandlerManager(serviceManager, validator, logger, authMiddleware)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	stopWorker()
	if err := worker.Close(); err != nil {
		logger.Error("Failed to close notification worker", "error", err)
	}
	if err := pubSub.Close(); err != nil {
		logger.Error("Failed to close pub/sub", "error", err)
	}

	// Closes the database and Redis
	if err := serviceManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}

	if closer, ok := reporter.(interface{ Close() }); ok {
		closer.Close()
	}

	logger.Info("Server exited")
}
