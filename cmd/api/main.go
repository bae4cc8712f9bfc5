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
	"github.com/rs/zerolog"

	"github.com/dzakyhdr/learntrack-api/internal/config"
	"github.com/dzakyhdr/learntrack-api/internal/database"
	"github.com/dzakyhdr/learntrack-api/internal/handler"
	"github.com/dzakyhdr/learntrack-api/internal/middleware"
	"github.com/dzakyhdr/learntrack-api/internal/models"
	"github.com/dzakyhdr/learntrack-api/internal/repository"
	"github.com/dzakyhdr/learntrack-api/internal/router"
	"github.com/dzakyhdr/learntrack-api/internal/service"
	"github.com/dzakyhdr/learntrack-api/pkg/ai"
	cloud "github.com/dzakyhdr/learntrack-api/pkg/cloudinary"
	"github.com/dzakyhdr/learntrack-api/pkg/videocat"
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

	if err := db.AutoMigrate(&models.User{}, &models.Goal{}, &models.Milestone{}, &models.Lesson{}, &models.CompletionEvent{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, completion events will not be published")
		} else {
			defer natsConn.Close()
		}
	}

	var uploader service.FileStorage
	if cfg.CloudinaryCloudName != "" {
		cloudService, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		uploader = cloudService
	}

	var advisor ai.Advisor
	if cfg.AIProvider == "openai" && cfg.OpenAIAPIKey != "" {
		openAIAdvisor, err := ai.NewOpenAIAdvisor(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create openai advisor: %v", err)
		}
		advisor = openAIAdvisor
	}

	var catalog videocat.Catalog
	if cfg.YouTubeAPIKey != "" {
		client, err := videocat.New(context.Background(), cfg.YouTubeAPIKey, logger)
		if err != nil {
			log.Fatalf("failed to create youtube client: %v", err)
		}
		catalog = client
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	eventRepo := repository.NewCompletionEventRepository(db)

	statsService := service.NewStatsService(userRepo, lessonRepo, eventRepo, natsConn, cfg.NATSCompletionSubject, logger)
	advisorService := service.NewAdvisorService(advisor, logger)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, validate, logger)
	goalService := service.NewGoalService(goalRepo, statsService, advisorService, validate, logger)
	lessonService := service.NewLessonService(lessonRepo, goalRepo, statsService, validate, logger)
	userService := service.NewUserService(userRepo, uploader, validate, logger)
	dashboardService := service.NewDashboardService(userRepo, goalRepo, lessonRepo, statsService, redisClient, cfg.DashboardCacheTTL, logger)
	analyticsService := service.NewAnalyticsService(lessonRepo, redisClient, cfg.AnalyticsCacheTTL, logger)
	insightService := service.NewInsightService(userRepo, goalRepo, lessonRepo, advisorService, logger)
	aiService := service.NewAIService(userRepo, goalRepo, lessonRepo, advisorService, validate, logger)
	videoService := service.NewVideoService(catalog, lessonRepo, goalRepo, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		DB:            db,
		AuthHandler:   handler.NewAuthHandler(authService, logger),
		GoalHandler:   handler.NewGoalHandler(goalService, logger),
		LessonHandler: handler.NewLessonHandler(lessonService, logger),
		UserHandler:   handler.NewUserHandler(userService, dashboardService, analyticsService, logger),
		AIHandler:     handler.NewAIHandler(aiService, insightService, logger),
		VideoHandler:  handler.NewVideoHandler(videoService, logger),
		JWTMiddleware: middleware.JWTProtected(cfg.JWTSecret),
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
