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

	"github.com/quizforge/quiz-api/internal/config"
	"github.com/quizforge/quiz-api/internal/database"
	"github.com/quizforge/quiz-api/internal/grading"
	"github.com/quizforge/quiz-api/internal/handler"
	"github.com/quizforge/quiz-api/internal/middleware"
	"github.com/quizforge/quiz-api/internal/models"
	"github.com/quizforge/quiz-api/internal/repository"
	"github.com/quizforge/quiz-api/internal/router"
	"github.com/quizforge/quiz-api/internal/service"
	"github.com/quizforge/quiz-api/pkg/ai"
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

	if err := db.AutoMigrate(&models.User{}, &models.Problem{}, &models.ProblemOption{}, &models.Submission{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	validate := validator.New(validator.WithRequiredStructEnabled())

	problemRepo := repository.NewProblemRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	queue := grading.NewQueue()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var scheduler *grading.Scheduler
	if cfg.OpenAIAPIKey == "" {
		logger.Warn().Msg("no openai api key configured, subjective grading and problem generation disabled")
	} else {
		grader, err := ai.NewOpenAIClient(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create openai client: %v", err)
		}

		scheduler = grading.NewScheduler(queue, submissionRepo, grader, grading.SchedulerConfig{
			Interval:       cfg.GradingInterval,
			GradingTimeout: cfg.GradingTimeout,
		}, logger)
		scheduler.Start(ctx)

		generation := service.NewProblemGenerationService(grader, problemRepo, cfg.GenerationInterval, logger)
		generation.Start(ctx)
	}

	problemService := service.NewProblemService(problemRepo, redisClient, cfg.ProblemCacheTTL, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, problemRepo, queue, validate, logger)

	problemHandler := handler.NewProblemHandler(problemService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ProblemHandler:    problemHandler,
		SubmissionHandler: submissionHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, cancel, scheduler)
}

func waitForShutdown(app *fiber.App, cancel context.CancelFunc, scheduler *grading.Scheduler) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	// Drain the scheduler before cancelling the worker context, so an
	// in-flight grading result is still applied rather than dropped.
	if scheduler != nil {
		scheduler.Stop()
	}
	cancel()

	ctx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer timeoutCancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
