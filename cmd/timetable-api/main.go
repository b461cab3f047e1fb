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

	_ "github.com/noah-isme/college-timetable-api/api/swagger"
	"github.com/noah-isme/college-timetable-api/internal/handler"
	"github.com/noah-isme/college-timetable-api/internal/middleware"
	"github.com/noah-isme/college-timetable-api/internal/repository"
	"github.com/noah-isme/college-timetable-api/internal/service"
	"github.com/noah-isme/college-timetable-api/pkg/cache"
	"github.com/noah-isme/college-timetable-api/pkg/config"
	"github.com/noah-isme/college-timetable-api/pkg/database"
	"github.com/noah-isme/college-timetable-api/pkg/jobs"
	"github.com/noah-isme/college-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/college-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/college-timetable-api/pkg/middleware/requestid"
	"github.com/noah-isme/college-timetable-api/pkg/storage"
)

// @title College Timetable API
// @version 1.0.0
// @description Academic calendar, teaching slot placement and instructor workload service
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Workload.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, workload cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			cacheRepo = repository.NewCacheRepository(client, logr)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Workload.CacheTTL, logr, cfg.Workload.CacheEnabled)

	terms := repository.NewTermRepository(db)
	weeks := repository.NewWeekRepository(db)
	rooms := repository.NewRoomRepository(db)
	subjects := repository.NewSubjectRepository(db)
	cohorts := repository.NewCohortRepository(db)
	sections := repository.NewSectionRepository(db)
	instructors := repository.NewInstructorRepository(db)
	slots := repository.NewTeachingSlotRepository(db)
	workloads := repository.NewWorkloadRepository(db)
	jobRepo := repository.NewJobRepository(db)
	users := repository.NewUserRepository(db)

	validate := validator.New()
	locks := service.NewTermLocks()

	authSvc := service.NewAuthService(users, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "college-timetable-api",
	})
	calendarSvc := service.NewCalendarService(terms, weeks, db, locks, metrics, logr, cfg.Scheduler.DefaultTeachingWeeks)
	timetableSvc := service.NewTimetableService(service.TimetableDeps{
		Terms:        terms,
		Weeks:        weeks,
		Sections:     sections,
		Subjects:     subjects,
		Cohorts:      cohorts,
		Rooms:        rooms,
		Availability: instructors,
		Slots:        slots,
		Tx:           db,
		Locks:        locks,
		Cache:        cacheSvc,
		Metrics:      metrics,
	}, validate, logr, service.TimetableConfig{
		BatchTimeout:         cfg.Scheduler.BatchTimeout,
		StrictClassification: cfg.Scheduler.StrictClassification,
	})
	workloadSvc := service.NewWorkloadService(terms, instructors, workloads, db, cacheSvc, metrics,
		cfg.Workload.AcademicYearMonths, cfg.Workload.CacheTTL, logr)

	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("export storage unavailable", "dir", cfg.Exports.StorageDir, "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(service.ExportDeps{
		Timetable: timetableSvc,
		Workload:  workloadSvc,
		Terms:     terms,
		Weeks:     weeks,
		Sections:  sections,
		Subjects:  subjects,
		Rooms:     rooms,
		Slots:     slots,
	}, files, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
		Calendar:  cfg.Calendar,
	}, logr)

	jobSvc := service.NewJobService(jobRepo, nil, exportSvc, logr, service.JobServiceConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
	})
	worker := service.NewJobWorker(jobSvc, timetableSvc, exportSvc, logr)
	queue := jobs.NewQueue("schedule-jobs", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Scheduler.JobWorkers,
		MaxRetries: cfg.Scheduler.JobRetries,
		Exhausted:  jobSvc.MarkExhausted,
		Logger:     logr,
	})
	queue.Start(ctx)
	defer queue.Stop()
	jobSvc.SetQueue(queue)
	jobSvc.RecoverPendingJobs(ctx)
	jobSvc.StartCleanup(ctx)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Auth:      handler.NewAuthHandler(authSvc),
		Calendar:  handler.NewCalendarHandler(calendarSvc),
		Timetable: handler.NewTimetableHandler(timetableSvc, jobSvc),
		Workload:  handler.NewWorkloadHandler(workloadSvc),
		Export:    handler.NewExportHandler(exportSvc),
		Job:       handler.NewJobHandler(jobSvc),
		Metrics:   handler.NewMetricsHandler(metrics, db),
	}, middleware.JWT(authSvc))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

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
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
