package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/veritrack/veritrack-api/internal/config"
	"github.com/veritrack/veritrack-api/internal/database"
	"github.com/veritrack/veritrack-api/internal/handler"
	"github.com/veritrack/veritrack-api/internal/middleware"
	"github.com/veritrack/veritrack-api/internal/models"
	"github.com/veritrack/veritrack-api/internal/repository"
	"github.com/veritrack/veritrack-api/internal/router"
	"github.com/veritrack/veritrack-api/internal/service"
	cloud "github.com/veritrack/veritrack-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.FacultyAssignment{},
		&models.Document{},
		&models.ActivityRecord{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	storage, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	recordRepo := repository.NewRecordRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	exportRepo := repository.NewExportRepository(db)

	auditService := service.NewAuditService(auditRepo, validate, logger)
	documentService := service.NewDocumentService(storage, documentRepo, accountRepo, cfg.MaxDocumentSizeMB, logger)
	recordService := service.NewRecordService(recordRepo, accountRepo, documentService, auditService, cfg.ListPageSize, logger)
	reviewService := service.NewReviewService(recordRepo, accountRepo, validate, auditService, logger)
	exportService := service.NewExportService(exportRepo, redisClient, cfg.ExportCacheTTL, logger)
	accountService := service.NewAdminAccountService(accountRepo, validate, auditService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		RecordHandler:   handler.NewRecordHandler(recordService, validate, logger),
		ReviewHandler:   handler.NewReviewHandler(reviewService, validate, logger),
		DocumentHandler: handler.NewDocumentHandler(documentService, logger),
		AccountHandler:  handler.NewAccountHandler(accountService, validate, logger),
		ExportHandler:   handler.NewExportHandler(exportService, logger),
		AuditHandler:    handler.NewAuditHandler(auditService, logger),
		JWTMiddleware:   middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
