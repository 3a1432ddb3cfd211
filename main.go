package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/aeeconecta/aee-service/internal/cache"
	"github.com/aeeconecta/aee-service/internal/config"
	"github.com/aeeconecta/aee-service/internal/documents"
	"github.com/aeeconecta/aee-service/internal/events"
	"github.com/aeeconecta/aee-service/internal/handlers"
	"github.com/aeeconecta/aee-service/internal/metrics"
	"github.com/aeeconecta/aee-service/internal/repositories/postgres"
	"github.com/aeeconecta/aee-service/internal/services"
	"github.com/aeeconecta/aee-service/internal/session"
	"github.com/aeeconecta/aee-service/internal/storage"
	"github.com/aeeconecta/aee-service/internal/utils"
	"github.com/aeeconecta/aee-service/internal/validator"
	"github.com/aeeconecta/aee-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(slogLogger)
	logger := utils.NewSlogLogger(slogLogger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := postgres.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Redis is optional; without it sessions live in memory and the roster is not cached
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, continuing without it", "error", err)
			redisClient = nil
		}
	}

	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:             db,
		RedisClient:    redisClient,
		RosterCacheTTL: cfg.RosterCacheTTL,
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}
	repo := repoManager.GetRepository()

	store, err := storage.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize photo storage: %v", err)
	}

	bus, err := events.NewBus(cfg.KafkaBrokers, slogLogger)
	if err != nil {
		log.Fatalf("Failed to initialize event bus: %v", err)
	}
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	if err := bus.ConsumeLogins(consumerCtx, repo.LoginLog()); err != nil {
		log.Fatalf("Failed to start login consumer: %v", err)
	}

	sessions := session.NewStore(cache.NewCacheManager(redisClient).Session, cfg.SessionTTL)

	serviceManager := services.NewServiceManager(services.ServiceManagerConfig{
		DB:                 db,
		Repo:               repo,
		Sessions:           sessions,
		Store:              store,
		Publisher:          bus,
		Generator:          documents.NewGenerator(cfg.SchoolName, slogLogger),
		Metrics:            metrics.New(prometheus.DefaultRegisterer),
		Logger:             slogLogger,
		Validator:          validator.New(),
		ProfilePhotoBucket: cfg.ProfilePhotoBucket,
		LessonPhotoBucket:  cfg.LessonPhotoBucket,
	})
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	handlerManager := handlers.NewHandlerManager(serviceManager, logger, prometheus.DefaultGatherer)

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
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment,
			"database", cfg.DatabaseDriver, "storage", cfg.StorageDriver, "kafka", len(cfg.KafkaBrokers) > 0)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	if err := serviceManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}

	// drain received login events before the database goes away
	if err := bus.Close(); err != nil {
		logger.Error("Failed to close event bus", "error", err)
	}
	stopConsumer()

	if err := repoManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to close database", "error", err)
	}

	if redisClient != nil {
		redisClient.Close()
	}

	logger.Info("Server exited")
}
