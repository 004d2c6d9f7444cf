package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/guru-admin-api/internal/repository"
	"github.com/noah-isme/guru-admin-api/internal/service"
	"github.com/noah-isme/guru-admin-api/pkg/config"
	"github.com/noah-isme/guru-admin-api/pkg/database"
	"github.com/noah-isme/guru-admin-api/pkg/logger"
)

// seed creates the administrator account and stores the default grade weights.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg.ServiceName = "guru-admin-seed"

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg.Database, cfg.ServiceName)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db, logr); err != nil {
		logr.Fatal("failed to migrate database", zap.Error(err))
	}

	users := service.NewUserService(repository.NewUserRepository(db), nil, logr)
	admin, created, err := users.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name)
	if err != nil {
		logr.Fatal("failed to seed admin", zap.Error(err))
	}
	logr.Info("admin account ready", zap.String("email", admin.Email), zap.Bool("created", created))

	weights, stored, err := service.NewWeightService(repository.NewWeightRepository(db), nil, nil, logr).EnsureDefaults(ctx)
	if err != nil {
		logr.Fatal("failed to seed grade weights", zap.Error(err))
	}
	logr.Info("grade weights ready",
		zap.Bool("created", stored),
		zap.Int("formative", weights.Formative),
		zap.Int("mid_term", weights.MidTerm),
		zap.Int("final_term", weights.FinalTerm),
		zap.Int("attendance", weights.Attendance),
	)
}
