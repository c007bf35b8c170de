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
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/AsadUlm/brainburst-progress-api/internal/config"
	"github.com/AsadUlm/brainburst-progress-api/internal/database"
	"github.com/AsadUlm/brainburst-progress-api/internal/handler"
	"github.com/AsadUlm/brainburst-progress-api/internal/middleware"
	"github.com/AsadUlm/brainburst-progress-api/internal/models"
	"github.com/AsadUlm/brainburst-progress-api/internal/repository"
	"github.com/AsadUlm/brainburst-progress-api/internal/router"
	"github.com/AsadUlm/brainburst-progress-api/internal/service"
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
		&models.Class{},
		&models.ClassMember{},
		&models.Assignment{},
		&models.ProgressRecord{},
		&models.TestResult{},
		&models.GameResult{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Redis and NATS are optional; summaries and notifications degrade
	// gracefully without them.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, summary caching disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, assignment notifications disabled")
			natsConn = nil
		} else {
			defer natsConn.Close()
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	assignmentRepo := repository.NewAssignmentRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	rosterRepo := repository.NewRosterRepository(db)
	resultRepo := repository.NewResultRepository(db)

	notifier := service.NewNATSNotifier(natsConn, cfg.NotifySubject, logger)

	assignmentService := service.NewAssignmentService(assignmentRepo, progressRepo, rosterRepo, notifier, validate, logger)
	progressService := service.NewProgressService(progressRepo, assignmentRepo, rosterRepo, resultRepo, validate, logger)
	aggregationService := service.NewAggregationService(assignmentRepo, progressRepo, rosterRepo, redisClient, cfg.SummaryCacheTTL, logger)

	assignmentHandler := handler.NewAssignmentHandler(assignmentService, validate, logger)
	progressHandler := handler.NewProgressHandler(progressService, validate, logger)
	summaryHandler := handler.NewSummaryHandler(aggregationService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AssignmentHandler: assignmentHandler,
		ProgressHandler:   progressHandler,
		SummaryHandler:    summaryHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
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
