package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/madadhq/invoice-financing/internal/application/dispatcher"
	"github.com/madadhq/invoice-financing/internal/application/service"
	"github.com/madadhq/invoice-financing/internal/config"
	httpadapter "github.com/madadhq/invoice-financing/internal/interfaces/http"
	"github.com/madadhq/invoice-financing/internal/report"
	"github.com/madadhq/invoice-financing/internal/repository"
	"github.com/madadhq/invoice-financing/internal/seed"
	"github.com/madadhq/invoice-financing/internal/storage"
	"github.com/madadhq/invoice-financing/migrations"
	"github.com/madadhq/invoice-financing/pkg/database"
	"github.com/madadhq/invoice-financing/pkg/utils"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting invoice financing service",
		zap.Int("port", cfg.Server.Port))

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("Failed to create data directory", zap.Error(err))
		}
	}

	db, err := database.Open(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(migrations.FS); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.Storage.UploadDir, 0755); err != nil {
		logger.Fatal("Failed to create upload directory", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db.DB, logger)
	lenderRepo := repository.NewLenderRepository(db.DB, logger)
	appRepo := repository.NewApplicationRepository(db.DB, logger)
	notificationRepo := repository.NewNotificationRepository(db.DB, logger)
	transitionRepo := repository.NewTransitionLogRepository(db.DB, logger)

	kvLogger := utils.NewKVLogger(logger)

	if cfg.Seed.Enabled {
		seed.Run(context.Background(), userRepo, lenderRepo, logger)
	}

	fileStore := storage.NewLocalFileStore(cfg.Storage.UploadDir, cfg.Storage.URLPrefix, logger)
	exporter := report.NewApplicationExporter(logger)

	events := dispatcher.NewDispatcher(dispatcher.WithLogger(kvLogger))
	defer events.Close()

	notificationService := service.NewNotificationService(notificationRepo, kvLogger)
	auditService := service.NewAuditTrailService(transitionRepo, kvLogger)
	service.RegisterAuditTrail(events, auditService)

	financingService := service.NewFinancingService(appRepo, userRepo, lenderRepo, notificationService, events, kvLogger)
	authService := service.NewAuthService(userRepo, service.AuthConfig{
		JWTSecret: cfg.Auth.JWTSecret,
		TokenTTL:  cfg.Auth.TokenTTL,
	}, kvLogger)

	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Debug:        cfg.Server.Debug,
		UploadDir:    cfg.Storage.UploadDir,
	}, authService, financingService, notificationService, auditService, fileStore, exporter, kvLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited")
}
