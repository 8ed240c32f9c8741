package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	timelineapp "github.com/deatl/backend/internal/application/timeline"
	"github.com/deatl/backend/internal/domain/shared"
	"github.com/deatl/backend/internal/infrastructure/auth"
	"github.com/deatl/backend/internal/infrastructure/cache"
	"github.com/deatl/backend/internal/infrastructure/cardsource"
	"github.com/deatl/backend/internal/infrastructure/config"
	"github.com/deatl/backend/internal/infrastructure/logger"
	"github.com/deatl/backend/internal/infrastructure/persistence"
	"github.com/deatl/backend/internal/infrastructure/storage"
	"github.com/deatl/backend/internal/infrastructure/telemetry"
	"github.com/deatl/backend/internal/interfaces/http/handler"
	"github.com/deatl/backend/internal/interfaces/http/middleware"
	"github.com/deatl/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting milestone dashboard backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Tracing
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, cfg.App.Name, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled {
		if err := db.EnableTracing(cfg.Database.DBName); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected")

	// Sync guard: Redis when reachable, in-memory fallback for development.
	var guard shared.SyncGuard
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		if cfg.IsProduction() {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		log.Warn("Redis unreachable, using in-memory sync guard", zap.Error(err))
		guard = cache.NewInMemorySyncGuard()
	} else {
		guard = cache.NewRedisSyncGuard(redisClient)
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// External board client
	boardClient := cardsource.NewClient(cfg.CardSource)
	prober := cardsource.NewHTTPProber()

	// Object store for large files
	objectStore, err := storage.NewS3ObjectStore(&cfg.Storage, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize object store", zap.Error(err))
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		log.Warn("Failed to ensure storage bucket", zap.Error(err))
	}

	// Repositories
	milestoneRepo := persistence.NewGormMilestoneRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	projectRepo := persistence.NewGormProjectRepository(db.DB)

	// Application services
	milestoneService := timelineapp.NewMilestoneService(milestoneRepo, categoryRepo, log)
	categoryService := timelineapp.NewCategoryService(categoryRepo, log)
	fileService := timelineapp.NewFileService(boardClient, objectStore, milestoneRepo, prober, log)
	reconciler := timelineapp.NewReconciler(
		boardClient, milestoneRepo, projectRepo, categoryRepo, guard,
		timelineapp.ReconcilerConfig{
			GuardTTL:           cfg.Reconcile.GuardTTL,
			CategoryKeyword:    cfg.Reconcile.CategoryKeyword,
			CommentsCategoryID: cfg.Reconcile.CommentsCategoryID,
			ActivityCategoryID: cfg.Reconcile.ActivityCategoryID,
		}, log)

	jwtService := auth.NewJWTService(cfg.JWT)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORS())
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.App.Name,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	if cfg.JWT.Enabled {
		engine.Use(middleware.JWTAuthMiddleware(jwtService))
	} else {
		log.Warn("JWT authentication disabled")
	}

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(handler.NewHealthHandler(db, version, log)).
		Register(handler.NewProjectHandler(projectRepo, reconciler, log)).
		Register(handler.NewMilestoneHandler(milestoneService, log)).
		Register(handler.NewCategoryHandler(categoryService, log)).
		Register(handler.NewFileHandler(fileService, log)).
		Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}
