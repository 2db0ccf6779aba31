package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-interpret-api/internal/config"
	"github.com/noah-isme/gema-interpret-api/internal/database"
	"github.com/noah-isme/gema-interpret-api/internal/handler"
	"github.com/noah-isme/gema-interpret-api/internal/middleware"
	"github.com/noah-isme/gema-interpret-api/internal/repository"
	"github.com/noah-isme/gema-interpret-api/internal/router"
	"github.com/noah-isme/gema-interpret-api/internal/service"
	cloud "github.com/noah-isme/gema-interpret-api/pkg/cloudinary"
	"github.com/noah-isme/gema-interpret-api/pkg/events"
	applogger "github.com/noah-isme/gema-interpret-api/pkg/logger"
	objectstore "github.com/noah-isme/gema-interpret-api/pkg/minio"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := applogger.New(applogger.Config{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Service: cfg.AppName,
		Pretty:  !cfg.IsProduction(),
	})

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectPostgres(cfg.DatabaseURL, !cfg.IsProduction())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	redisClient, err := database.ConnectRedis(rootCtx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()

	uploader, err := newUploader(rootCtx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create audio uploader")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = events.Connect(cfg.NATSURL, cfg.AppName, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer natsConn.Close()
	}
	publisher := events.NewNATSPublisher(natsConn, cfg.NATSSubject, logger)

	validate := service.NewValidator()

	assignmentRepo := repository.NewAssignmentRepository(db)
	categoryRepo := repository.NewFeedbackCategoryRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	assignmentService := service.NewAssignmentService(assignmentRepo, categoryRepo, validate, uploader, redisClient, cfg.AssignmentCacheTTL, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, validate, uploader, logger)
	authoringService := service.NewAssignmentAuthoringService(assignmentService, submissionService, validate, publisher, logger)

	registry := service.NewFormRegistry(cfg.FormIdleTTL, logger)
	go registry.Run(rootCtx, time.Minute)

	formService := service.NewAssignmentFormService(registry, service.NewAssignmentFormLoader(assignmentService), authoringService, logger)

	submitLimiter := middleware.RateLimit("assignment-form-submit", cfg.SubmitRateLimit, time.Minute)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    64 << 20,
	})

	middleware.Register(app, middleware.Config{
		Logger:    logger,
		AccessLog: !cfg.IsProduction(),
	})
	router.Register(app, cfg, router.Dependencies{
		AssignmentFormHandler: handler.NewAssignmentFormHandler(formService, validate, submitLimiter, logger),
		AssignmentHandler:     handler.NewAssignmentHandler(assignmentService, logger),
		SubmissionHandler:     handler.NewSubmissionHandler(submissionService, logger),
		HealthProbes: map[string]handler.HealthProbe{
			"database": func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		},
		JWTMiddleware:        middleware.JWTProtected(cfg.JWTSecret),
		InstructorMiddleware: middleware.RequireInstructor(),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(rootCtx, app, logger)
}

func newUploader(ctx context.Context, cfg config.Config, logger zerolog.Logger) (service.FileUploader, error) {
	if cfg.StorageDriver == config.StorageDriverMinio {
		store, err := objectstore.New(objectstore.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		}, logger)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	}

	cld, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		return nil, err
	}
	return cld, nil
}

func waitForShutdown(ctx context.Context, app *fiber.App, logger zerolog.Logger) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
