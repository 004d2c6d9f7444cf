package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/guru-admin-api/api/swagger"
	"github.com/noah-isme/guru-admin-api/internal/handler"
	"github.com/noah-isme/guru-admin-api/internal/middleware"
	"github.com/noah-isme/guru-admin-api/internal/repository"
	"github.com/noah-isme/guru-admin-api/internal/service"
	"github.com/noah-isme/guru-admin-api/pkg/cache"
	"github.com/noah-isme/guru-admin-api/pkg/config"
	"github.com/noah-isme/guru-admin-api/pkg/database"
	"github.com/noah-isme/guru-admin-api/pkg/jobs"
	"github.com/noah-isme/guru-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/guru-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/guru-admin-api/pkg/middleware/requestid"
	"github.com/noah-isme/guru-admin-api/pkg/storage"
)

const shutdownTimeout = 15 * time.Second

// @title Guru Admin API
// @version 1.0.0
// @description Teacher administration backend: classes, students, attendance, scores and the grade ledger.
// @BasePath /api
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database, cfg.ServiceName)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.RunMigrations {
		if err := database.Migrate(db, logr); err != nil {
			logr.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, cfg.ServiceName, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled && redisClient != nil)

	validate := validator.New()

	classRepo := repository.NewClassRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	scoreRepo := repository.NewScoreRepository(db)
	userRepo := repository.NewUserRepository(db)
	weightRepo := repository.NewWeightRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	journalRepo := repository.NewJournalRepository(db)
	maintenanceRepo := repository.NewMaintenanceRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	weightSvc := service.NewWeightService(weightRepo, cacheSvc, validate, logr)
	classSvc := service.NewClassService(classRepo, cacheSvc, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, classRepo, cacheSvc, validate, logr)
	semesterSvc := service.NewSemesterService(semesterRepo, cacheSvc, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, semesterSvc, cacheSvc, validate, logr)
	scoreSvc := service.NewScoreService(scoreRepo, studentSvc, semesterSvc, cacheSvc, validate, logr)
	materialSvc := service.NewMaterialService(materialRepo, classRepo, cacheSvc, validate, logr)
	journalSvc := service.NewJournalService(service.JournalDeps{
		Repo:      journalRepo,
		Classes:   classRepo,
		Materials: materialRepo,
		Semesters: semesterSvc,
		Cache:     cacheSvc,
	}, validate, logr)
	ledgerSvc := service.NewLedgerService(service.LedgerDeps{
		Classes:    classRepo,
		Semesters:  semesterRepo,
		Roster:     studentRepo,
		Attendance: attendanceRepo,
		Scores:     scoreRepo,
		Weights:    weightSvc,
		Snapshots:  ledgerRepo,
	}, metricsSvc, validate, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Students:   studentRepo,
		Classes:    classRepo,
		Materials:  materialRepo,
		Semesters:  semesterRepo,
		Attendance: attendanceRepo,
		Scores:     scoreRepo,
		Weights:    weightSvc,
		Cache:      cacheSvc,
		CacheTTL:   cfg.Dashboard.CacheTTL,
		Logger:     logr,
	})

	backupStore, err := storage.NewLocalStorage(cfg.Backups.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare backup storage", zap.Error(err))
	}
	backupJobs := service.NewBackupJobStore()
	backupWorker := service.NewBackupWorker(maintenanceRepo, backupStore, backupJobs, metricsSvc, logr)
	backupQueue := jobs.NewQueue("database-backup", backupWorker.Handle, jobs.QueueConfig{
		Workers:    1,
		MaxRetries: cfg.Backups.WorkerRetries,
		RetryDelay: 5 * time.Second,
		Logger:     logr,
		OnFailure:  backupWorker.MarkFailed,
	})
	backupQueue.Start(ctx)
	defer backupQueue.Stop()

	apiPrefix := "/" + strings.Trim(cfg.APIPrefix, "/")
	backupSvc := service.NewBackupService(service.BackupServiceParams{
		Repo:      maintenanceRepo,
		Storage:   backupStore,
		Signer:    storage.NewSignedURLSigner(cfg.Backups.SignedURLSecret, cfg.Backups.SignedURLTTL),
		Queue:     backupQueue,
		Jobs:      backupJobs,
		Cache:     cacheSvc,
		APIPrefix: apiPrefix,
		Validator: validate,
		Logger:    logr,
	})

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc, "/metrics", "/health"))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metricsSvc, map[string]handler.QueueStatsProvider{
		"database_backup": backupQueue,
	})
	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(apiPrefix), handler.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		User:       handler.NewUserHandler(userSvc),
		Class:      handler.NewClassHandler(classSvc),
		Student:    handler.NewStudentHandler(studentSvc),
		Semester:   handler.NewSemesterHandler(semesterSvc),
		Attendance: handler.NewAttendanceHandler(attendanceSvc),
		Score:      handler.NewScoreHandler(scoreSvc),
		Material:   handler.NewMaterialHandler(materialSvc),
		Journal:    handler.NewJournalHandler(journalSvc),
		Ledger:     handler.NewLedgerHandler(ledgerSvc),
		Weight:     handler.NewWeightHandler(weightSvc),
		Dashboard:  handler.NewDashboardHandler(dashboardSvc),
		Database:   handler.NewDatabaseHandler(backupSvc),
	}, authSvc)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "prefix", apiPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
