package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/classgotcha-api/api/swagger"
	"github.com/noah-isme/classgotcha-api/internal/handler"
	"github.com/noah-isme/classgotcha-api/internal/middleware"
	"github.com/noah-isme/classgotcha-api/internal/repository"
	"github.com/noah-isme/classgotcha-api/internal/service"
	"github.com/noah-isme/classgotcha-api/pkg/cache"
	"github.com/noah-isme/classgotcha-api/pkg/config"
	"github.com/noah-isme/classgotcha-api/pkg/database"
	"github.com/noah-isme/classgotcha-api/pkg/jobs"
	"github.com/noah-isme/classgotcha-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/classgotcha-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/classgotcha-api/pkg/middleware/requestid"
)

// @title Classgotcha API
// @version 1.0.0
// @description Course catalog ingestion, classroom schedules and feeds
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	metrics := service.NewMetricsService()
	readiness := map[string]handler.ReadinessCheck{"postgres": db.PingContext}

	var cacheSvc *service.CacheService
	if cfg.Feed.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, feed cache disabled", zap.Error(err))
		} else {
			cacheRepo := repository.NewCacheRepository(client, logr)
			defer cacheRepo.Close() //nolint:errcheck
			cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Feed.CacheTTL, logr, true)
			readiness["redis"] = cache.Readiness(client)
		}
	}

	loc := cfg.Schedule.Location()
	validate := validator.New()

	classroomRepo := repository.NewClassroomRepository(db)
	itemRepo := repository.NewScheduleItemRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)

	ingestion := service.NewCourseIngestionService(
		repository.NewPostgresCatalogTxManager(db),
		service.CourseIngestionConfig{DefaultSemester: cfg.Catalog.DefaultSemester, RoomCreatorID: cfg.Catalog.RoomCreatorID},
		metrics,
		logr,
	)
	feed := service.NewFeedService(itemRepo, repository.NewMomentRepository(db), cacheSvc, logr)
	tasks := service.NewTaskService(classroomRepo, itemRepo, service.NewScheduleClassifier(loc), feed, metrics, validate, logr)
	classrooms := service.NewClassroomService(classroomRepo, repository.NewMajorRepository(db), semesterRepo, itemRepo, loc, logr)
	exports := service.NewCatalogExportService(classroomRepo, semesterRepo, logr)

	scheduler := jobs.NewScheduler(jobs.SchedulerConfig{MaxRetries: 2, RetryDelay: 30 * time.Second, Location: loc, Logger: logr})
	if cfg.Catalog.ImportSchedule != "" && cfg.Catalog.ImportPath != "" {
		importPath := cfg.Catalog.ImportPath
		err := scheduler.Register("catalog-import", cfg.Catalog.ImportSchedule, func(ctx context.Context) error {
			_, err := ingestion.IngestFile(ctx, importPath, "")
			return err
		})
		if err != nil {
			logr.Fatal("invalid catalog import schedule", zap.Error(err))
		}
	}
	scheduler.Start()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsHandler := handler.NewMetricsHandler(metrics, readiness)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/metrics", "/health", "/ready"))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Handlers{
		Catalog:    handler.NewCatalogHandler(ingestion, exports, validate, cfg.Catalog.MaxUploadBytes),
		Classrooms: handler.NewClassroomHandler(classrooms, validate),
		Feed:       handler.NewFeedHandler(tasks, feed),
		Metrics:    metricsHandler,
	}.Register(r.Group(cfg.APIPrefix))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	scheduler.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
